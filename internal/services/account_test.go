package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/models"
	"bank-ledger/internal/repository"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func newService(terms Terms) *AccountService {
	return NewAccountService(repository.NewAccountRepository(), terms)
}

func TestOpenAccountsWithTerms(t *testing.T) {
	ctx := context.Background()
	s := newService(Terms{InterestRate: dec(0.06), OverdraftLimit: dec(250), MaxAccountsPerHolder: 3})

	sa, err := s.OpenSavingsAccount(ctx, "SA001", "John Doe", dec(1000))
	require.NoError(t, err)
	assert.True(t, sa.InterestRate().Equal(dec(0.06)))

	ca, err := s.OpenCheckingAccount(ctx, "", "Jane Smith", dec(0))
	require.NoError(t, err)
	assert.True(t, ca.OverdraftLimit().Equal(dec(250)))
	assert.Regexp(t, `^CA\d{10}$`, ca.Number())

	got, err := s.GetAccount(ctx, "SA001")
	require.NoError(t, err)
	assert.Same(t, models.Account(sa), got)
}

func TestOpenAccountRejections(t *testing.T) {
	ctx := context.Background()
	s := newService(Terms{InterestRate: dec(0.02), OverdraftLimit: dec(100), MaxAccountsPerHolder: 2})

	_, err := s.OpenSavingsAccount(ctx, "SA1", "John Doe", dec(-5))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = s.OpenSavingsAccount(ctx, "SA1", "John Doe", dec(0))
	require.NoError(t, err)
	_, err = s.OpenCheckingAccount(ctx, "SA1", "Jane Smith", dec(0))
	assert.ErrorIs(t, err, repository.ErrDuplicateAccount)

	_, err = s.OpenCheckingAccount(ctx, "CA1", "John Doe", dec(0))
	require.NoError(t, err)
	_, err = s.OpenCheckingAccount(ctx, "CA2", "John Doe", dec(0))
	assert.ErrorIs(t, err, ErrAccountLimitReached)

	accounts, err := s.GetHolderAccounts(ctx, "John Doe")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestNewAccountServiceDefaultsLimit(t *testing.T) {
	s := newService(Terms{InterestRate: dec(0.02), OverdraftLimit: dec(100)})
	assert.Equal(t, DefaultMaxAccountsPerHolder, s.terms.MaxAccountsPerHolder)
}

func TestDepositWithdrawInterestByNumber(t *testing.T) {
	ctx := context.Background()
	s := newService(DefaultTerms())
	_, err := s.OpenSavingsAccount(ctx, "SA001", "John Doe", dec(1000))
	require.NoError(t, err)
	_, err = s.OpenCheckingAccount(ctx, "CA001", "Jane Smith", dec(500))
	require.NoError(t, err)

	tx, err := s.Deposit(ctx, "SA001", dec(500))
	require.NoError(t, err)
	assert.True(t, tx.BalanceAfter.Equal(dec(1500)))

	_, err = s.Withdraw(ctx, "SA001", dec(200))
	require.NoError(t, err)

	_, err = s.Deposit(ctx, "CA001", dec(300))
	require.NoError(t, err)
	tx, err = s.Withdraw(ctx, "CA001", dec(700))
	require.NoError(t, err)
	assert.True(t, tx.BalanceAfter.Equal(dec(100)))

	interest, err := s.AccrueInterest(ctx, "SA001")
	require.NoError(t, err)
	assert.Equal(t, "2.1667", interest.StringFixed(4))

	interest, err = s.AccrueInterest(ctx, "CA001")
	require.NoError(t, err)
	assert.True(t, interest.IsZero())

	history, err := s.GetTransactionHistory(ctx, "SA001")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.KindInterest, history[2].Kind)
}

func TestOperationFailuresAreReported(t *testing.T) {
	ctx := context.Background()
	s := newService(DefaultTerms())
	_, err := s.OpenCheckingAccount(ctx, "CA001", "Jane Smith", dec(0))
	require.NoError(t, err)

	_, err = s.Withdraw(ctx, "CA001", dec(150))
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = s.Deposit(ctx, "CA001", dec(0))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = s.Deposit(ctx, "nope", dec(10))
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	_, err = s.AccrueInterest(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	_, err = s.GetTransactionHistory(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	history, err := s.GetTransactionHistory(ctx, "CA001")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConcurrentOpensRespectHolderLimit(t *testing.T) {
	ctx := context.Background()
	s := newService(Terms{InterestRate: dec(0.02), OverdraftLimit: dec(100), MaxAccountsPerHolder: 3})

	var (
		wg      sync.WaitGroup
		opened  atomic.Int32
		limited atomic.Int32
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.OpenCheckingAccount(ctx, "", "John Doe", dec(0))
			switch {
			case err == nil:
				opened.Add(1)
			case errors.Is(err, ErrAccountLimitReached):
				limited.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, opened.Load())
	assert.EqualValues(t, 37, limited.Load())
	accounts, err := s.GetHolderAccounts(ctx, "John Doe")
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}
