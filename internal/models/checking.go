package models

import "github.com/shopspring/decimal"

// CheckingAccount pays no interest and may be overdrawn down to its limit.
type CheckingAccount struct {
	*ledger
	overdraftLimit decimal.Decimal
}

func NewCheckingAccount(number, holder string, initial decimal.Decimal, opts ...Option) (*CheckingAccount, error) {
	t, err := buildTerms(opts)
	if err != nil {
		return nil, err
	}
	l, err := newLedger(number, holder, initial, t.overdraftLimit.Neg(), t.now)
	if err != nil {
		return nil, err
	}
	return &CheckingAccount{ledger: l, overdraftLimit: t.overdraftLimit}, nil
}

func (a *CheckingAccount) Type() AccountType { return TypeChecking }

func (a *CheckingAccount) OverdraftLimit() decimal.Decimal { return a.overdraftLimit }

// Withdraw succeeds while balance+limit covers the amount.
func (a *CheckingAccount) Withdraw(amount decimal.Decimal) (Transaction, error) {
	return a.debit(amount, a.overdraftLimit.Neg())
}

func (a *CheckingAccount) CalculateInterest() decimal.Decimal {
	return decimal.Zero
}

var _ Account = (*CheckingAccount)(nil)
