// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Ledger store kinds.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver              string        `mapstructure:"DB_DRIVER"`
	DBSource              string        `mapstructure:"DB_SOURCE"`
	MigrationsPath        string        `mapstructure:"MIGRATIONS_PATH"`
	ServerAddress         string        `mapstructure:"SERVER_ADDRESS"`
	TokenSymmetricKey     string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration   time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	Environment           string        `mapstructure:"GO_ENV"`
	LedgerStore           string        `mapstructure:"LEDGER_STORE"`
	VaultCapacity         string        `mapstructure:"VAULT_CAPACITY"`
	VaultWithdrawalLimit  string        `mapstructure:"VAULT_WITHDRAWAL_LIMIT"`
	PayoutURL             string        `mapstructure:"PAYOUT_URL"`
	PayoutTimeout         time.Duration `mapstructure:"PAYOUT_TIMEOUT"`
	PayoutBreakerFailures uint32        `mapstructure:"PAYOUT_BREAKER_FAILURES"`
	PayoutBreakerTimeout  time.Duration `mapstructure:"PAYOUT_BREAKER_TIMEOUT"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}

// VaultLimits parses the vault capacity and the per-withdrawal limit.
//
// Range checks are left to the ledger constructor.
func (c Config) VaultLimits() (capacity, withdrawalLimit decimal.Decimal, err error) {
	capacity, err = decimal.NewFromString(c.VaultCapacity)
	if err != nil {
		return capacity, withdrawalLimit, err
	}

	withdrawalLimit, err = decimal.NewFromString(c.VaultWithdrawalLimit)
	if err != nil {
		return capacity, withdrawalLimit, err
	}

	return capacity, withdrawalLimit, nil
}
