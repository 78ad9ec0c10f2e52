package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
	"bank-ledger/internal/repository"
	"bank-ledger/internal/utils"
	"bank-ledger/internal/worker"
)

var ErrAccountLimitReached = repository.ErrHolderLimit

const DefaultMaxAccountsPerHolder = 5

// Terms are the policy values new accounts are opened with.
type Terms struct {
	InterestRate         decimal.Decimal
	OverdraftLimit       decimal.Decimal
	MaxAccountsPerHolder int
}

func DefaultTerms() Terms {
	return Terms{
		InterestRate:         models.DefaultInterestRate,
		OverdraftLimit:       models.DefaultOverdraftLimit,
		MaxAccountsPerHolder: DefaultMaxAccountsPerHolder,
	}
}

type AccountService struct {
	accountRepo *repository.AccountRepository
	terms       Terms
	workerPool  *worker.WorkerPool
}

func NewAccountService(accountRepo *repository.AccountRepository, terms Terms) *AccountService {
	if terms.MaxAccountsPerHolder <= 0 {
		terms.MaxAccountsPerHolder = DefaultMaxAccountsPerHolder
	}
	return &AccountService{accountRepo: accountRepo, terms: terms}
}

// SetWorkerPool makes AccrueMonthEnd run on the pool instead of inline.
func (s *AccountService) SetWorkerPool(pool *worker.WorkerPool) {
	s.workerPool = pool
	utils.LogSuccess("AccountService", "worker pool attached")
}

// OpenSavingsAccount opens a savings account. An empty number is replaced by a
// generated SA number.
func (s *AccountService) OpenSavingsAccount(ctx context.Context, number, holder string, initial decimal.Decimal) (*models.SavingsAccount, error) {
	number, err := s.prepare(ctx, number, "SA", holder)
	if err != nil {
		return nil, err
	}
	account, err := models.NewSavingsAccount(number, holder, initial, models.WithInterestRate(s.terms.InterestRate))
	if err != nil {
		utils.LogError("AccountService", fmt.Sprintf("cannot open savings account for %s", holder), err)
		return nil, err
	}
	if err := s.register(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// OpenCheckingAccount opens a checking account. An empty number is replaced by
// a generated CA number.
func (s *AccountService) OpenCheckingAccount(ctx context.Context, number, holder string, initial decimal.Decimal) (*models.CheckingAccount, error) {
	number, err := s.prepare(ctx, number, "CA", holder)
	if err != nil {
		return nil, err
	}
	account, err := models.NewCheckingAccount(number, holder, initial, models.WithOverdraftLimit(s.terms.OverdraftLimit))
	if err != nil {
		utils.LogError("AccountService", fmt.Sprintf("cannot open checking account for %s", holder), err)
		return nil, err
	}
	if err := s.register(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) prepare(ctx context.Context, number, prefix, holder string) (string, error) {
	count, err := s.accountRepo.CountByHolder(ctx, holder)
	if err != nil {
		return "", err
	}
	if count >= s.terms.MaxAccountsPerHolder {
		utils.LogWarning("AccountService", "%s has reached the account limit (%d/%d)", holder, count, s.terms.MaxAccountsPerHolder)
		return "", ErrAccountLimitReached
	}
	if number != "" {
		return number, nil
	}
	return s.accountRepo.GenerateAccountNumber(ctx, prefix)
}

func (s *AccountService) register(ctx context.Context, account models.Account) error {
	if err := s.accountRepo.CreateIfBelow(ctx, account, s.terms.MaxAccountsPerHolder); err != nil {
		utils.LogError("AccountService", fmt.Sprintf("cannot register account %s", account.Number()), err)
		return err
	}
	utils.LogSuccess("AccountService", "%s %s opened for %s (balance: %s)",
		account.Type(), account.Number(), account.Holder(), models.FormatMoney(account.Balance()))
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, number string) (models.Account, error) {
	account, err := s.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		utils.LogWarning("AccountService", "account %s not found", number)
		return nil, err
	}
	return account, nil
}

func (s *AccountService) GetHolderAccounts(ctx context.Context, holder string) ([]models.Account, error) {
	return s.accountRepo.GetByHolder(ctx, holder)
}

func (s *AccountService) Deposit(ctx context.Context, number string, amount decimal.Decimal) (models.Transaction, error) {
	account, err := s.GetAccount(ctx, number)
	if err != nil {
		return models.Transaction{}, err
	}
	tx, err := account.Deposit(amount)
	if err != nil {
		utils.LogError("AccountService", fmt.Sprintf("deposit of %s to %s rejected", amount, number), err)
		return models.Transaction{}, err
	}
	utils.LogInfo("AccountService", "deposit %s to %s, balance %s", models.FormatMoney(amount), number, models.FormatMoney(tx.BalanceAfter))
	return tx, nil
}

func (s *AccountService) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (models.Transaction, error) {
	account, err := s.GetAccount(ctx, number)
	if err != nil {
		return models.Transaction{}, err
	}
	tx, err := account.Withdraw(amount)
	if err != nil {
		utils.LogError("AccountService", fmt.Sprintf("withdrawal of %s from %s rejected", amount, number), err)
		return models.Transaction{}, err
	}
	utils.LogInfo("AccountService", "withdrawal %s from %s, balance %s", models.FormatMoney(amount), number, models.FormatMoney(tx.BalanceAfter))
	return tx, nil
}

// AccrueInterest runs the account's interest policy once and returns the
// interest earned.
func (s *AccountService) AccrueInterest(ctx context.Context, number string) (decimal.Decimal, error) {
	account, err := s.GetAccount(ctx, number)
	if err != nil {
		return decimal.Zero, err
	}
	interest := account.CalculateInterest()
	utils.LogInfo("AccountService", "interest %s on %s", models.FormatMoney(interest), number)
	return interest, nil
}

func (s *AccountService) GetTransactionHistory(ctx context.Context, number string) ([]models.Transaction, error) {
	account, err := s.GetAccount(ctx, number)
	if err != nil {
		return nil, err
	}
	return account.Transactions(), nil
}
