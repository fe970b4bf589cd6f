// Package economy owns the match balance.
package economy

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// SpendResult reports the outcome of Spend.
type SpendResult struct {
	Success        bool           `json:"success"`
	RemainingMoney int            `json:"remaining_money"`
	Code           apperrors.Code `json:"code,omitempty"`
}

// Entry is one successful ledger movement.
type Entry struct {
	Delta   int
	Balance int
	Reason  string
}

// Ledger enforces the non-negative balance stored in GameState.Money.
// It relies on the mediator for serialization and takes no lock itself.
type Ledger struct {
	st      *state.GameState
	pub     event.Publisher
	logger  *log.Logger
	entries []Entry
}

// NewLedger creates a ledger over st. pub and logger may be nil.
func NewLedger(st *state.GameState, pub event.Publisher, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ledger{st: st, pub: pub, logger: logger}
}

// Balance returns the current money.
func (l *Ledger) Balance() int {
	return l.st.Money
}

// CanAfford reports whether amount could be spent now.
func (l *Ledger) CanAfford(amount int) bool {
	return amount >= 0 && amount <= l.st.Money
}

// Spend debits amount. It fails with INSUFFICIENT_FUNDS when amount is
// negative or exceeds the balance, leaving the balance untouched.
func (l *Ledger) Spend(amount int, reason string) SpendResult {
	if !l.CanAfford(amount) {
		l.logger.Debug("spend rejected", "amount", amount, "balance", l.st.Money, "reason", reason)
		return SpendResult{
			RemainingMoney: l.st.Money,
			Code:           apperrors.CodeInsufficientFunds,
		}
	}
	l.apply(-amount, reason)
	return SpendResult{Success: true, RemainingMoney: l.st.Money}
}

// Credit adds amount to the balance.
func (l *Ledger) Credit(amount int, reason string) error {
	if amount < 0 {
		return apperrors.Newf(apperrors.CodeInvalidAmount, "cannot credit %d", amount)
	}
	l.apply(amount, reason)
	return nil
}

// Entries returns the successful movements since the last reset.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset forgets the movement history. The balance itself is restored by
// GameState.Reset.
func (l *Ledger) Reset() {
	l.entries = nil
}

func (l *Ledger) apply(delta int, reason string) {
	l.st.Money += delta
	l.entries = append(l.entries, Entry{Delta: delta, Balance: l.st.Money, Reason: reason})
	if l.pub != nil && delta != 0 {
		l.pub.Publish(event.MoneyChanged{Delta: delta, Balance: l.st.Money, Reason: reason})
	}
}

// InsufficientFunds builds the error for a failed spend.
func InsufficientFunds(need, have int) error {
	return apperrors.New(apperrors.CodeInsufficientFunds, fmt.Sprintf("need %d, have %d", need, have))
}
