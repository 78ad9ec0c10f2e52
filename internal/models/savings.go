package models

import "github.com/shopspring/decimal"

// SavingsAccount earns monthly interest at a fixed annual rate and cannot be
// overdrawn.
type SavingsAccount struct {
	*ledger
	interestRate decimal.Decimal
}

func NewSavingsAccount(number, holder string, initial decimal.Decimal, opts ...Option) (*SavingsAccount, error) {
	t, err := buildTerms(opts)
	if err != nil {
		return nil, err
	}
	l, err := newLedger(number, holder, initial, decimal.Zero, t.now)
	if err != nil {
		return nil, err
	}
	return &SavingsAccount{ledger: l, interestRate: t.interestRate}, nil
}

func (a *SavingsAccount) Type() AccountType { return TypeSavings }

func (a *SavingsAccount) InterestRate() decimal.Decimal { return a.interestRate }

// CalculateInterest credits balance*rate/12 and returns it. Every call accrues
// again on the already credited balance.
func (a *SavingsAccount) CalculateInterest() decimal.Decimal {
	return a.accrue(func(balance decimal.Decimal) decimal.Decimal {
		return balance.Mul(a.interestRate).Div(monthsPerYear)
	})
}

var _ Account = (*SavingsAccount)(nil)
