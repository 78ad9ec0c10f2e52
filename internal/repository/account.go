package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"bank-ledger/internal/models"
	"bank-ledger/internal/utils"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account number already in use")
	ErrHolderLimit      = errors.New("holder has reached the account limit")
)

// AccountRepository keeps accounts in memory, keyed by account number, and
// remembers the order they were opened in.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	order    []string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]models.Account)}
}

// GenerateAccountNumber returns an unused number of the form <prefix><10 digits>.
func (r *AccountRepository) GenerateAccountNumber(ctx context.Context, prefix string) (string, error) {
	const maxAttempts = 10
	maxValue := big.NewInt(10_000_000_000)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := rand.Int(rand.Reader, maxValue)
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		number := fmt.Sprintf("%s%010d", prefix, n.Int64())

		r.mu.RLock()
		_, exists := r.accounts[number]
		r.mu.RUnlock()
		if !exists {
			return number, nil
		}
		utils.LogWarning("AccountRepo", "account number collision %s, attempt %d/%d", number, attempt+1, maxAttempts)
	}
	return "", errors.New("could not generate a unique account number")
}

func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(account)
}

// CreateIfBelow stores the account only while its holder has fewer than limit
// accounts. The count and the insert happen under one lock.
func (r *AccountRepository) CreateIfBelow(ctx context.Context, account models.Account, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countLocked(account.Holder()) >= limit {
		return fmt.Errorf("%w: %s (%d)", ErrHolderLimit, account.Holder(), limit)
	}
	return r.insertLocked(account)
}

func (r *AccountRepository) insertLocked(account models.Account) error {
	if _, exists := r.accounts[account.Number()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, account.Number())
	}
	r.accounts[account.Number()] = account
	r.order = append(r.order, account.Number())
	return nil
}

func (r *AccountRepository) countLocked(holder string) int {
	n := 0
	for _, a := range r.accounts {
		if a.Holder() == holder {
			n++
		}
	}
	return n
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[number]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetByHolder returns the holder's accounts in the order they were opened.
func (r *AccountRepository) GetByHolder(ctx context.Context, holder string) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var accounts []models.Account
	for _, number := range r.order {
		if a := r.accounts[number]; a.Holder() == holder {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (r *AccountRepository) CountByHolder(ctx context.Context, holder string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked(holder), nil
}

// List returns every account in the order they were opened.
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	accounts := make([]models.Account, 0, len(r.order))
	for _, number := range r.order {
		accounts = append(accounts, r.accounts[number])
	}
	return accounts, nil
}
