package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
	"bank-ledger/internal/utils"
	"bank-ledger/internal/worker"
)

type InterestResult struct {
	AccountNumber string
	AccountType   models.AccountType
	Interest      decimal.Decimal
	Balance       decimal.Decimal
}

// AccrueMonthEnd applies one period of interest to every account and returns
// the results in the order the accounts were opened. With a worker pool
// attached each account is a separate job.
func (s *AccountService) AccrueMonthEnd(ctx context.Context) ([]InterestResult, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]InterestResult, len(accounts))

	if s.workerPool == nil {
		for i, a := range accounts {
			results[i] = accrue(a)
		}
		utils.LogSuccess("AccountService", "month-end interest applied to %d accounts", len(accounts))
		return results, nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		errs      []error
		submitErr error
	)
	for i, a := range accounts {
		i, a := i, a
		wg.Add(1)
		job := worker.Job{
			ID: "interest-" + a.Number(),
			Task: func() error {
				results[i] = accrue(a)
				return nil
			},
			OnDone: func(err error) {
				if err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("account %s: %w", a.Number(), err))
					mu.Unlock()
				}
				wg.Done()
			},
		}
		if err := s.workerPool.SubmitBlocking(ctx, job); err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}

	if err := waitContext(ctx, &wg); err != nil {
		utils.LogError("AccountService", "month-end interest abandoned", err)
		return nil, err
	}
	if submitErr != nil {
		utils.LogError("AccountService", "month-end interest interrupted", submitErr)
		return nil, submitErr
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		utils.LogError("AccountService", fmt.Sprintf("month-end interest failed for %d accounts", len(errs)), err)
		return nil, err
	}

	utils.LogSuccess("AccountService", "month-end interest applied to %d accounts on the worker pool", len(accounts))
	return results, nil
}

// waitContext waits for wg or returns ctx's error, whichever comes first.
func waitContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func accrue(a models.Account) InterestResult {
	interest := a.CalculateInterest()
	return InterestResult{
		AccountNumber: a.Number(),
		AccountType:   a.Type(),
		Interest:      interest,
		Balance:       a.Balance(),
	}
}
