package models

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTerms      = errors.New("interest rate and overdraft limit must not be negative")
)
