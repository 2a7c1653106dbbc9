package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	content := []byte("SERVER_ADDRESS=localhost:9090\n" +
		"ACCESS_TOKEN_DURATION=5m\n" +
		"LEDGER_STORE=memory\n" +
		"VAULT_CAPACITY=10\n" +
		"VAULT_WITHDRAWAL_LIMIT=1\n" +
		"PAYOUT_BREAKER_FAILURES=3\n")

	err := os.WriteFile(filepath.Join(dir, "app.env"), content, 0o600)
	require.NoError(t, err)

	c, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "localhost:9090", c.ServerAddress)
	require.Equal(t, 5*time.Minute, c.AccessTokenDuration)
	require.Equal(t, StoreMemory, c.LedgerStore)
	require.Equal(t, uint32(3), c.PayoutBreakerFailures)

	capacity, limit, err := c.VaultLimits()
	require.NoError(t, err)
	require.True(t, capacity.Equal(decimal.NewFromInt(10)))
	require.True(t, limit.Equal(decimal.NewFromInt(1)))
}

func TestVaultLimitsInvalid(t *testing.T) {
	c := Config{VaultCapacity: "ten", VaultWithdrawalLimit: "1"}

	_, _, err := c.VaultLimits()
	require.Error(t, err)

	c = Config{VaultCapacity: "10", VaultWithdrawalLimit: ""}

	_, _, err = c.VaultLimits()
	require.Error(t, err)
}
