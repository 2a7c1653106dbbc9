// Package vaultservice runs vault operations one at a time on behalf of concurrent callers.
package vaultservice

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-vault/internal/domain"
)

// Ledger provides the vault operations needed by the service layer.
type Ledger interface {
	Deposit(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error)
	Receive(ctx context.Context, from string, amount decimal.Decimal) (domain.Event, error)
	Withdraw(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error)
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
	UserStatistics(ctx context.Context, account string) (domain.AccountState, error)
	VaultStatistics(ctx context.Context) (domain.VaultStatistics, error)
	IsDepositAllowed(ctx context.Context, amount decimal.Decimal) (bool, error)
	Events(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error)
}

type inFlightKey struct{}

// Service serialises every operation on the ledger.
//
// A call whose context was derived from a running operation skips the queue
// and reaches the ledger directly, so a payout that calls back into the vault
// is rejected by the ledger instead of deadlocking here.
type Service struct {
	mu      sync.Mutex
	ledger  Ledger
	metrics *Metrics
}

// New returns vault service over ledger. metrics may be nil.
func New(ledger Ledger, metrics *Metrics) *Service {
	return &Service{
		ledger:  ledger,
		metrics: metrics,
	}
}

// acquire waits for the ledger unless ctx belongs to the operation holding it.
func (s *Service) acquire(ctx context.Context) (context.Context, func()) {
	if owner, ok := ctx.Value(inFlightKey{}).(*Service); ok && owner == s {
		return ctx, func() {}
	}

	s.mu.Lock()

	return context.WithValue(ctx, inFlightKey{}, s), s.mu.Unlock
}

func (s *Service) mutate(ctx context.Context, op string, caller string, amount decimal.Decimal,
	fn func(ctx context.Context) (domain.Event, error)) (domain.Event, error) {
	l := zerolog.Ctx(ctx)

	ctx, release := s.acquire(ctx)
	defer release()

	event, err := fn(ctx)
	s.metrics.observe(op, err)

	if err != nil {
		l.Warn().Err(err).
			Str("operation", op).
			Str("account", caller).
			Str("amount", amount.String()).
			Msg("vault operation failed")

		return domain.Event{}, err
	}

	l.Info().
		Str("operation", op).
		Str("account", caller).
		Str("amount", amount.String()).
		Str("balance", event.Balance.String()).
		Int64("event_id", event.ID).
		Msg("vault operation")

	if stats, err := s.ledger.VaultStatistics(ctx); err == nil {
		s.metrics.setTotal(stats.Total)
	}

	return event, nil
}

// Deposit credits amount to the caller.
func (s *Service) Deposit(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error) {
	return s.mutate(ctx, opDeposit, caller, amount, func(ctx context.Context) (domain.Event, error) {
		return s.ledger.Deposit(ctx, caller, amount)
	})
}

// Receive books value sent without an explicit deposit.
func (s *Service) Receive(ctx context.Context, from string, amount decimal.Decimal) (domain.Event, error) {
	return s.mutate(ctx, opReceive, from, amount, func(ctx context.Context) (domain.Event, error) {
		return s.ledger.Receive(ctx, from, amount)
	})
}

// Withdraw debits amount from the caller and pays it out.
func (s *Service) Withdraw(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error) {
	return s.mutate(ctx, opWithdraw, caller, amount, func(ctx context.Context) (domain.Event, error) {
		return s.ledger.Withdraw(ctx, caller, amount)
	})
}

// Balance returns the account balance.
func (s *Service) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	ctx, release := s.acquire(ctx)
	defer release()

	return s.ledger.Balance(ctx, account)
}

// UserStatistics returns the account balance and counters.
func (s *Service) UserStatistics(ctx context.Context, account string) (domain.AccountState, error) {
	ctx, release := s.acquire(ctx)
	defer release()

	return s.ledger.UserStatistics(ctx, account)
}

// VaultStatistics returns the aggregate state and limits.
func (s *Service) VaultStatistics(ctx context.Context) (domain.VaultStatistics, error) {
	ctx, release := s.acquire(ctx)
	defer release()

	return s.ledger.VaultStatistics(ctx)
}

// IsDepositAllowed reports whether a deposit of amount would fit.
func (s *Service) IsDepositAllowed(ctx context.Context, amount decimal.Decimal) (bool, error) {
	ctx, release := s.acquire(ctx)
	defer release()

	return s.ledger.IsDepositAllowed(ctx, amount)
}

// Events returns a page of the account's journal.
func (s *Service) Events(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error) {
	ctx, release := s.acquire(ctx)
	defer release()

	return s.ledger.Events(ctx, arg)
}

// result classifies err for metrics.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrReentrancyDetected):
		return "reentrancy"
	case errors.Is(err, domain.ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInsufficientBalance):
		return "rejected"
	default:
		return "error"
	}
}
