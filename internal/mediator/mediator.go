// Package mediator routes typed commands and queries to their single
// registered handler.
//
// The handler table is assembled with a Builder and frozen by Build.
// Commands run under the write side of a sync.RWMutex for their whole
// execution; queries share the read side. Two commands therefore never
// interleave, and no query observes a command halfway through.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
)

// ErrDuplicateHandler indicates a request type was registered twice.
var ErrDuplicateHandler = errors.New("mediator: request type already registered")

// Kind tells the mediator whether a request mutates state.
type Kind int

const (
	// Command requests mutate state and run exclusively.
	Command Kind = iota
	// Query requests only read state and may run concurrently.
	Query
)

func (k Kind) String() string {
	if k == Query {
		return "query"
	}
	return "command"
}

// Handler executes one request type. A returned error (or a panic) is a
// fault, not a domain failure; domain failures belong in the Result.
type Handler[Req, T any] func(ctx context.Context, req Req) (Result[T], error)

// Validator is implemented by requests that check their own arguments.
// Validation runs before any lock is taken.
type Validator interface {
	Validate() error
}

type entry struct {
	kind       Kind
	name       string
	resultType reflect.Type
	invoke     func(ctx context.Context, req any) (any, error)
}

// Builder collects handler registrations.
type Builder struct {
	entries map[reflect.Type]entry
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[reflect.Type]entry)}
}

// Register binds request type Req to h. Each request type accepts exactly
// one handler.
func Register[Req, T any](b *Builder, kind Kind, h Handler[Req, T]) error {
	if h == nil {
		return errors.New("mediator: handler is required")
	}
	key := reflect.TypeFor[Req]()
	if _, exists := b.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, key)
	}
	b.entries[key] = entry{
		kind:       kind,
		name:       key.String(),
		resultType: reflect.TypeFor[T](),
		invoke: func(ctx context.Context, req any) (any, error) {
			return h(ctx, req.(Req))
		},
	}
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[Req, T any](b *Builder, kind Kind, h Handler[Req, T]) {
	if err := Register(b, kind, h); err != nil {
		panic(err)
	}
}

// Option configures a Mediator.
type Option func(*Mediator)

// WithLogger sets the logger used to report handler faults.
func WithLogger(l *log.Logger) Option {
	return func(m *Mediator) {
		if l != nil {
			m.logger = l
		}
	}
}

// Build freezes the registrations into a Mediator. Later registrations on
// the builder do not affect it.
func (b *Builder) Build(opts ...Option) *Mediator {
	handlers := make(map[reflect.Type]entry, len(b.entries))
	for k, v := range b.entries {
		handlers[k] = v
	}
	m := &Mediator{
		handlers: handlers,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mediator dispatches requests to handlers.
type Mediator struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]entry
	logger   *log.Logger
}

// RequestInfo describes one registered request type.
type RequestInfo struct {
	Name string
	Kind Kind
}

// Requests lists the registered request types sorted by name.
func (m *Mediator) Requests() []RequestInfo {
	out := make([]RequestInfo, 0, len(m.handlers))
	for _, e := range m.handlers {
		out = append(out, RequestInfo{Name: e.name, Kind: e.kind})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Send dispatches req to its handler and returns the completed result.
// It never returns a partial result: unregistered types, invalid arguments,
// handler errors and handler panics all come back as failed results.
//
// Handlers must not call Send on the same Mediator.
func Send[Req, T any](ctx context.Context, m *Mediator, req Req) Result[T] {
	key := reflect.TypeFor[Req]()
	e, ok := m.handlers[key]
	if !ok {
		return Fail[T](apperrors.CodeUnregisteredRequestType,
			fmt.Sprintf("no handler registered for %s", key))
	}
	if want := reflect.TypeFor[T](); e.resultType != want {
		return Fail[T](apperrors.CodeUnregisteredRequestType,
			fmt.Sprintf("%s is registered with result %s, not %s", key, e.resultType, want))
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return Fail[T](apperrors.CodeValidation, err.Error())
		}
	}

	if e.kind == Query {
		m.mu.RLock()
		defer m.mu.RUnlock()
	} else {
		m.mu.Lock()
		defer m.mu.Unlock()
	}

	out, err := m.invoke(ctx, e, req)
	if err != nil {
		m.logger.Error("handler fault", "request", e.name, "err", err)
		return Fail[T](apperrors.CodeHandlerFault, fmt.Sprintf("%s: %v", e.name, err))
	}
	return out.(Result[T])
}

func (m *Mediator) invoke(ctx context.Context, e entry, req any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debug("handler panic", "request", e.name, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.invoke(ctx, req)
}
