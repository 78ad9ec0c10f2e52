package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/config"
	"bank-ledger/internal/handlers"
	"bank-ledger/internal/repository"
	"bank-ledger/internal/services"
	"bank-ledger/internal/utils"
	"bank-ledger/internal/worker"
)

func main() {
	if err := run(os.Stdout); err != nil {
		utils.LogError("Demo", "demo failed", err)
		utils.Sync()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run executes the demonstration and writes the statements to out.
func run(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := utils.InitLogger(cfg.Env, cfg.LogLevel); err != nil {
		return err
	}
	defer utils.Sync()

	ctx := context.Background()

	accountService := services.NewAccountService(repository.NewAccountRepository(), services.Terms{
		InterestRate:         cfg.InterestRate(),
		OverdraftLimit:       cfg.OverdraftLimit(),
		MaxAccountsPerHolder: cfg.MaxAccountsPerHolder,
	})

	pool := worker.NewWorkerPool(cfg.WorkerCount, cfg.WorkerQueueSize, cfg.WorkerMaxRetries)
	pool.Start()
	defer func() {
		if err := pool.Shutdown(5 * time.Second); err != nil {
			utils.LogError("Demo", "worker pool shutdown", err)
		}
	}()
	accountService.SetWorkerPool(pool)

	statements := handlers.NewStatementHandler(accountService, out)

	savings, err := accountService.OpenSavingsAccount(ctx, "SA001", "John Doe", decimal.NewFromInt(1000))
	if err != nil {
		return err
	}
	checking, err := accountService.OpenCheckingAccount(ctx, "CA001", "Jane Smith", decimal.NewFromInt(500))
	if err != nil {
		return err
	}

	if err := statements.PrintOpening(ctx, savings.Number()); err != nil {
		return err
	}

	// Rejected operations are logged by the service; the demo carries on.
	_, _ = accountService.Deposit(ctx, savings.Number(), decimal.NewFromInt(500))
	_, _ = accountService.Withdraw(ctx, savings.Number(), decimal.NewFromInt(200))
	_, _ = accountService.Deposit(ctx, checking.Number(), decimal.NewFromInt(300))
	_, _ = accountService.Withdraw(ctx, checking.Number(), decimal.NewFromInt(700))

	return statements.PrintMonthEnd(ctx)
}
