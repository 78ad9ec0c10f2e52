package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindInterest   TransactionKind = "interest"
)

const historyTimeLayout = "2006-01-02 15:04:05.000000"

// Transaction is one balance-changing event. Records are values and are never
// modified once appended to an account's log.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Kind         TransactionKind `json:"kind"`
	Direction    Direction       `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newTransaction(kind TransactionKind, dir Direction, amount, balanceAfter decimal.Decimal, at time.Time) Transaction {
	return Transaction{
		ID:           uuid.New(),
		Kind:         kind,
		Direction:    dir,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    at,
	}
}

// String renders the record as a history line, e.g.
// "Deposit: +$500.00 on 2026-10-16 09:30:00.000000".
func (t Transaction) String() string {
	sign := "+"
	if t.Direction == Debit {
		sign = "-"
	}
	return fmt.Sprintf("%s: %s%s on %s", t.Kind.label(), sign, FormatMoney(t.Amount), t.CreatedAt.Format(historyTimeLayout))
}

// label is the history-line word for a kind. Interest is paid in as a
// deposit and reads as one.
func (k TransactionKind) label() string {
	switch k {
	case KindDeposit, KindInterest:
		return "Deposit"
	case KindWithdrawal:
		return "Withdrawal"
	default:
		return string(k)
	}
}

// FormatMoney formats an amount with two decimals and a dollar sign.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
