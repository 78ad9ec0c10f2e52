package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	TypeGeneric  AccountType = "Generic Account"
	TypeSavings  AccountType = "Savings Account"
	TypeChecking AccountType = "Checking Account"
)

var (
	DefaultInterestRate   = decimal.NewFromFloat(0.02)
	DefaultOverdraftLimit = decimal.NewFromInt(100)

	monthsPerYear = decimal.NewFromInt(12)
)

// Account is the contract shared by every account variant. The set of
// implementations is closed: only SavingsAccount and CheckingAccount satisfy it.
type Account interface {
	Number() string
	Holder() string
	Balance() decimal.Decimal
	Transactions() []Transaction
	Type() AccountType
	Deposit(amount decimal.Decimal) (Transaction, error)
	Withdraw(amount decimal.Decimal) (Transaction, error)
	// CalculateInterest returns the interest for the current period. Variants
	// that pay interest also credit it to the balance.
	CalculateInterest() decimal.Decimal

	base() *ledger
}

// Option adjusts the terms an account is opened with.
type Option func(*terms)

type terms struct {
	interestRate   decimal.Decimal
	overdraftLimit decimal.Decimal
	now            func() time.Time
}

// WithInterestRate sets the annual interest rate of a savings account.
func WithInterestRate(rate decimal.Decimal) Option {
	return func(t *terms) { t.interestRate = rate }
}

// WithOverdraftLimit sets how far below zero a checking account may go.
func WithOverdraftLimit(limit decimal.Decimal) Option {
	return func(t *terms) { t.overdraftLimit = limit }
}

// WithClock replaces the time source used to stamp transaction records.
func WithClock(now func() time.Time) Option {
	return func(t *terms) { t.now = now }
}

func buildTerms(opts []Option) (terms, error) {
	t := terms{
		interestRate:   DefaultInterestRate,
		overdraftLimit: DefaultOverdraftLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.interestRate.IsNegative() || t.overdraftLimit.IsNegative() {
		return terms{}, ErrInvalidTerms
	}
	return t, nil
}

// ledger holds the state shared by all variants. It is not an Account on its
// own since it has no interest policy.
type ledger struct {
	mu      sync.Mutex
	number  string
	holder  string
	balance decimal.Decimal
	txs     []Transaction
	now     func() time.Time
}

// newLedger opens a ledger whose initial balance is not below floor.
func newLedger(number, holder string, initial, floor decimal.Decimal, now func() time.Time) (*ledger, error) {
	if initial.LessThan(floor) {
		return nil, fmt.Errorf("%w: initial balance %s below %s", ErrInvalidAmount, initial, floor)
	}
	return &ledger{number: number, holder: holder, balance: initial, now: now}, nil
}

func (l *ledger) base() *ledger { return l }

func (l *ledger) Number() string { return l.number }

func (l *ledger) Holder() string { return l.holder }

func (l *ledger) Type() AccountType { return TypeGeneric }

func (l *ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Transactions returns a copy of the log in chronological order.
func (l *ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

func (l *ledger) Deposit(amount decimal.Decimal) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creditLocked(amount, KindDeposit)
}

// Withdraw applies the default policy: the balance may not drop below zero.
func (l *ledger) Withdraw(amount decimal.Decimal) (Transaction, error) {
	return l.debit(amount, decimal.Zero)
}

// debit is the only way a balance decreases. floor is the lowest balance the
// calling variant permits.
func (l *ledger) debit(amount, floor decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance.Sub(amount).LessThan(floor) {
		return Transaction{}, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, l.balance.StringFixed(2), amount.StringFixed(2))
	}
	l.balance = l.balance.Sub(amount)
	tx := newTransaction(KindWithdrawal, Debit, amount, l.balance, l.now())
	l.txs = append(l.txs, tx)
	return tx, nil
}

// accrue computes an amount from the current balance and credits it while
// holding the lock, so the amount returned is exactly the amount applied.
func (l *ledger) accrue(compute func(balance decimal.Decimal) decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	amount := compute(l.balance)
	// non-positive amounts are reported but not recorded
	_, _ = l.creditLocked(amount, KindInterest)
	return amount
}

func (l *ledger) creditLocked(amount decimal.Decimal, kind TransactionKind) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	l.balance = l.balance.Add(amount)
	tx := newTransaction(kind, Credit, amount, l.balance, l.now())
	l.txs = append(l.txs, tx)
	return tx, nil
}
