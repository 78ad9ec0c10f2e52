package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const envPrefix = "ledger"

// Config holds the settings of the demo and its services. Every field is read
// from LEDGER_<TAG>.
type Config struct {
	Env                    string  `mapstructure:"ENV" validate:"oneof=development production test"`
	LogLevel               string  `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	SavingsInterestRate    float64 `mapstructure:"SAVINGS_INTEREST_RATE" validate:"gte=0,lt=1"`
	CheckingOverdraftLimit float64 `mapstructure:"CHECKING_OVERDRAFT_LIMIT" validate:"gte=0"`
	MaxAccountsPerHolder   int     `mapstructure:"MAX_ACCOUNTS_PER_HOLDER" validate:"min=1"`
	WorkerCount            int     `mapstructure:"WORKER_COUNT" validate:"min=1"`
	WorkerQueueSize        int     `mapstructure:"WORKER_QUEUE_SIZE" validate:"min=1"`
	WorkerMaxRetries       int     `mapstructure:"WORKER_MAX_RETRIES" validate:"min=0,max=5"`
}

// Load reads an optional .env file, then the environment. The .env file never
// overrides variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the environment only.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SAVINGS_INTEREST_RATE", 0.02)
	v.SetDefault("CHECKING_OVERDRAFT_LIMIT", 100.0)
	v.SetDefault("MAX_ACCOUNTS_PER_HOLDER", 5)
	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("WORKER_QUEUE_SIZE", 64)
	v.SetDefault("WORKER_MAX_RETRIES", 2)

	var cfg Config
	if err := bindStructEnv(v, &cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, formatErrors(err)
	}
	return &cfg, nil
}

// bindStructEnv binds every mapstructure tag of cfg to its env var and
// unmarshals the result into cfg.
func bindStructEnv(v *viper.Viper, cfg interface{}) error {
	t := reflect.TypeOf(cfg).Elem()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if err := v.BindEnv(tag); err != nil {
			return err
		}
	}
	return v.Unmarshal(cfg)
}

func formatErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c *Config) InterestRate() decimal.Decimal {
	return decimal.NewFromFloat(c.SavingsInterestRate)
}

func (c *Config) OverdraftLimit() decimal.Decimal {
	return decimal.NewFromFloat(c.CheckingOverdraftLimit)
}
