// Package domain provides definitions of all entities.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountState holds the vault bookkeeping of a single account.
//
// Accounts are created implicitly on first deposit and never deleted,
// an unknown account reads as the zero AccountState.
type AccountState struct {
	Account         string          `json:"account"`
	Balance         decimal.Decimal `json:"balance"`
	DepositCount    int64           `json:"deposit_count"`
	WithdrawalCount int64           `json:"withdrawal_count"`
}

// VaultState holds the aggregate bookkeeping across all accounts.
type VaultState struct {
	Total           decimal.Decimal `json:"total"`
	DepositCount    int64           `json:"deposit_count"`
	WithdrawalCount int64           `json:"withdrawal_count"`
}

// VaultStatistics is VaultState together with the vault's fixed limits.
type VaultStatistics struct {
	Total           decimal.Decimal `json:"total"`
	DepositCount    int64           `json:"deposit_count"`
	WithdrawalCount int64           `json:"withdrawal_count"`
	Capacity        decimal.Decimal `json:"capacity"`
	WithdrawalLimit decimal.Decimal `json:"withdrawal_limit"`
}

// EventKind names a ledger event.
type EventKind string

// Ledger event kinds.
const (
	EventDeposited EventKind = "deposited"
	EventWithdrawn EventKind = "withdrawn"
)

// Event records a committed balance change.
//
// Balance is the account balance after the change: the new balance for
// deposits and the remaining balance for withdrawals.
type Event struct {
	ID        int64           `json:"id"`
	Kind      EventKind       `json:"kind"`
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListEventsParams is the input data to page through an account's events.
type ListEventsParams struct {
	Account string `json:"account"`
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
}

// Payout is value leaving the vault for a withdrawal.
//
// EventID is the id of the staged withdrawn event; every delivery attempt of
// the same withdrawal carries the same EventID.
type Payout struct {
	EventID     int64           `json:"event_id"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}
