package mediator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
)

type addCmd struct{ N int }

func (c addCmd) Validate() error {
	if c.N < 0 {
		return errors.New("n must be non-negative")
	}
	return nil
}

type totalQuery struct{}

type boomCmd struct{ Panic bool }

type counter struct{ total int }

func newTestMediator(t *testing.T, c *counter) *Mediator {
	t.Helper()
	b := NewBuilder()
	if err := Register(b, Command, func(_ context.Context, cmd addCmd) (Result[int], error) {
		c.total += cmd.N
		return OK(c.total), nil
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	MustRegister(b, Query, func(_ context.Context, _ totalQuery) (Result[int], error) {
		return OK(c.total), nil
	})
	MustRegister(b, Command, func(_ context.Context, cmd boomCmd) (Result[string], error) {
		if cmd.Panic {
			panic("kaboom")
		}
		return Result[string]{}, errors.New("disk on fire")
	})
	return b.Build()
}

func TestSendRoutesToHandler(t *testing.T) {
	c := &counter{}
	m := newTestMediator(t, c)
	ctx := context.Background()

	r := Send[addCmd, int](ctx, m, addCmd{N: 3})
	if !r.Success || r.Data != 3 {
		t.Fatalf("Expected success with 3, got %+v", r)
	}
	q := Send[totalQuery, int](ctx, m, totalQuery{})
	if q.Data != 3 {
		t.Errorf("Expected total 3, got %d", q.Data)
	}
}

func TestSendUnregistered(t *testing.T) {
	m := NewBuilder().Build()
	r := Send[addCmd, int](context.Background(), m, addCmd{N: 1})
	if r.Success {
		t.Fatal("Expected failure for unregistered request")
	}
	if r.Code != apperrors.CodeUnregisteredRequestType {
		t.Errorf("Expected %s, got %s", apperrors.CodeUnregisteredRequestType, r.Code)
	}
}

func TestSendWrongResultType(t *testing.T) {
	m := newTestMediator(t, &counter{})
	r := Send[addCmd, string](context.Background(), m, addCmd{N: 1})
	if r.Success || r.Code != apperrors.CodeUnregisteredRequestType {
		t.Errorf("Expected %s for mismatched result type, got %+v", apperrors.CodeUnregisteredRequestType, r)
	}
}

func TestSendValidationRunsBeforeHandler(t *testing.T) {
	c := &counter{}
	m := newTestMediator(t, c)
	r := Send[addCmd, int](context.Background(), m, addCmd{N: -1})
	if r.Code != apperrors.CodeValidation {
		t.Fatalf("Expected %s, got %+v", apperrors.CodeValidation, r)
	}
	if c.total != 0 {
		t.Errorf("Expected handler not to run, total is %d", c.total)
	}
}

func TestSendHandlerFault(t *testing.T) {
	m := newTestMediator(t, &counter{})
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		cmd  boomCmd
	}{
		{"error", boomCmd{}},
		{"panic", boomCmd{Panic: true}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r := Send[boomCmd, string](ctx, m, tt.cmd)
			if r.Success || r.Code != apperrors.CodeHandlerFault {
				t.Errorf("Expected %s, got %+v", apperrors.CodeHandlerFault, r)
			}
			if !apperrors.IsCode(r.Err(), apperrors.CodeHandlerFault) {
				t.Errorf("Expected Err() to carry %s", apperrors.CodeHandlerFault)
			}
		})
	}

	// The mediator stays usable after a panic released the lock.
	if r := Send[addCmd, int](ctx, m, addCmd{N: 1}); !r.Success {
		t.Errorf("Expected dispatch after fault to succeed, got %+v", r)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	b := NewBuilder()
	h := func(_ context.Context, _ addCmd) (Result[int], error) { return OK(0), nil }
	if err := Register(b, Command, h); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := Register(b, Command, h); !errors.Is(err, ErrDuplicateHandler) {
		t.Errorf("Expected ErrDuplicateHandler, got %v", err)
	}
}

func TestBuildFreezesTable(t *testing.T) {
	b := NewBuilder()
	m := b.Build()
	MustRegister(b, Query, func(_ context.Context, _ totalQuery) (Result[int], error) { return OK(1), nil })

	if r := Send[totalQuery, int](context.Background(), m, totalQuery{}); r.Success {
		t.Error("Expected registration after Build to be invisible")
	}
	if len(m.Requests()) != 0 {
		t.Errorf("Expected no requests, got %v", m.Requests())
	}
}

func TestCommandsAreSerialized(t *testing.T) {
	b := NewBuilder()
	var inFlight, maxInFlight int
	var probe sync.Mutex
	MustRegister(b, Command, func(_ context.Context, _ addCmd) (Result[int], error) {
		probe.Lock()
		inFlight++
		maxInFlight = max(maxInFlight, inFlight)
		probe.Unlock()

		time.Sleep(time.Millisecond)

		probe.Lock()
		inFlight--
		probe.Unlock()
		return OK(0), nil
	})
	m := b.Build()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Send[addCmd, int](context.Background(), m, addCmd{N: 1})
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("Expected at most 1 command in flight, got %d", maxInFlight)
	}
}

func TestRequestsSorted(t *testing.T) {
	m := newTestMediator(t, &counter{})
	reqs := m.Requests()
	if len(reqs) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(reqs))
	}
	for i := 1; i < len(reqs); i++ {
		if reqs[i-1].Name > reqs[i].Name {
			t.Errorf("Expected sorted names, got %v", reqs)
		}
	}
}
