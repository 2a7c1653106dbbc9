package ledger

import (
	"context"

	"github.com/go-petr/pet-vault/internal/domain"
)

// Store opens units of work over the vault state.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx stages reads and writes of the vault state until Commit.
//
// Account never reports a missing account: an account without history reads
// as the zero domain.AccountState with its Account field set.
// Writes are visible to later reads through the same Tx only.
// Vault and Account may lock what they read; operations read Vault first.
type Tx interface {
	Vault(ctx context.Context) (domain.VaultState, error)
	Account(ctx context.Context, account string) (domain.AccountState, error)
	SaveVault(ctx context.Context, v domain.VaultState) error
	SaveAccount(ctx context.Context, a domain.AccountState) error
	AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error)
	ListEvents(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error)
	Commit() error
	Rollback() error
}

// Sender moves value out of the vault to p.Destination.
//
// A nil error means the value was delivered. Send may call back into the
// ledger that invoked it.
type Sender interface {
	Send(ctx context.Context, p domain.Payout) error
}

// SenderFunc adapts an ordinary function to the Sender interface.
type SenderFunc func(ctx context.Context, p domain.Payout) error

// Send calls f(ctx, p).
func (f SenderFunc) Send(ctx context.Context, p domain.Payout) error {
	return f(ctx, p)
}
