package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
	"bank-ledger/internal/services"
	"bank-ledger/internal/utils"
)

// StatementHandler renders account information to a console-style writer.
type StatementHandler struct {
	accountService *services.AccountService
	out            io.Writer
}

func NewStatementHandler(accountService *services.AccountService, out io.Writer) *StatementHandler {
	return &StatementHandler{accountService: accountService, out: out}
}

// PrintOpening prints the holder and current balance of an account.
func (h *StatementHandler) PrintOpening(ctx context.Context, number string) error {
	account, err := h.accountService.GetAccount(ctx, number)
	if err != nil {
		return err
	}
	label := "Account"
	switch account.Type() {
	case models.TypeSavings:
		label = "Savings"
	case models.TypeChecking:
		label = "Checking"
	}
	_, err = fmt.Fprintf(h.out, "%s Account Holder: %s\nInitial %s Balance: %s\n",
		label, account.Holder(), label, models.FormatMoney(account.Balance()))
	return err
}

// PrintStatement applies one period of interest to the account and prints
// the resulting statement.
func (h *StatementHandler) PrintStatement(ctx context.Context, number string) error {
	interest, err := h.accountService.AccrueInterest(ctx, number)
	if err != nil {
		return err
	}
	return h.print(ctx, number, interest)
}

// PrintMonthEnd runs the month-end interest batch and prints a statement for
// every account in opening order.
func (h *StatementHandler) PrintMonthEnd(ctx context.Context) error {
	results, err := h.accountService.AccrueMonthEnd(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := h.print(ctx, r.AccountNumber, r.Interest); err != nil {
			return err
		}
	}
	return nil
}

func (h *StatementHandler) print(ctx context.Context, number string, interest decimal.Decimal) error {
	account, err := h.accountService.GetAccount(ctx, number)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(h.out, "\nAccount Type: %s\nInterest Earned: %s\nCurrent Balance: %s\nTransaction History:\n",
		account.Type(), models.FormatMoney(interest), models.FormatMoney(account.Balance())); err != nil {
		return err
	}
	for _, tx := range account.Transactions() {
		if _, err := fmt.Fprintf(h.out, "  - %s\n", tx); err != nil {
			return err
		}
	}

	utils.LogDebug("StatementHandler", "statement printed for %s", number)
	return nil
}
