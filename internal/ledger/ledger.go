// Package ledger implements the vault's balance accounting and limit enforcement.
//
// Every state-changing operation runs inside the reentrancy guard and a single
// store transaction: checks first, then staged effects, then (for withdrawals)
// the payout, then commit. A failure at any step rolls the whole operation back.
package ledger

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/internal/guard"
	"github.com/go-petr/pet-vault/pkg/amountpkg"
)

var (
	errNilStore  = errors.New("ledger: nil store")
	errNilSender = errors.New("ledger: nil sender")
)

// Config holds the vault limits. Both are fixed for the lifetime of a Ledger.
type Config struct {
	Capacity        decimal.Decimal
	WithdrawalLimit decimal.Decimal
}

// Ledger owns the per-account balances, the aggregate balance and the operation counters.
//
// A Ledger is not safe for concurrent use. Concurrent callers must be serialised
// by the execution environment; the guard only rejects logical re-entry.
type Ledger struct {
	cfg    Config
	store  Store
	sender Sender
	guard  *guard.Guard

	// active is the transaction of the guarded call in flight, if any.
	active Tx
}

// New returns a Ledger over store that pays withdrawals out through sender.
func New(cfg Config, store Store, sender Sender) (*Ledger, error) {
	if !cfg.WithdrawalLimit.IsPositive() {
		return nil, &domain.InvalidConfigurationError{Field: "withdrawal limit", Value: cfg.WithdrawalLimit}
	}

	if !cfg.Capacity.IsPositive() {
		return nil, &domain.InvalidConfigurationError{Field: "capacity", Value: cfg.Capacity}
	}

	if store == nil {
		return nil, errNilStore
	}

	if sender == nil {
		return nil, errNilSender
	}

	l := &Ledger{
		cfg:    cfg,
		store:  store,
		sender: sender,
		guard:  guard.New(),
	}

	return l, nil
}

// Config returns the vault limits.
func (l *Ledger) Config() Config {
	return l.cfg
}

// Deposit credits amount to the caller's account.
func (l *Ledger) Deposit(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error) {
	release, err := l.guard.Enter()
	if err != nil {
		return domain.Event{}, err
	}
	defer release()

	if err := validRequest(caller, amount); err != nil {
		return domain.Event{}, err
	}

	return l.transact(ctx, func(tx Tx) (domain.Event, error) {
		vault, err := tx.Vault(ctx)
		if err != nil {
			return domain.Event{}, err
		}

		if err := l.checkCapacity(vault.Total, amount); err != nil {
			return domain.Event{}, err
		}

		acc, err := tx.Account(ctx, caller)
		if err != nil {
			return domain.Event{}, err
		}

		acc.Balance = acc.Balance.Add(amount)
		acc.DepositCount++

		vault.Total = vault.Total.Add(amount)
		vault.DepositCount++

		if err := save(ctx, tx, vault, acc); err != nil {
			return domain.Event{}, err
		}

		return tx.AppendEvent(ctx, domain.Event{
			Kind:    domain.EventDeposited,
			Account: caller,
			Amount:  amount,
			Balance: acc.Balance,
		})
	})
}

// Receive books value sent to the vault without an explicit deposit call.
// It is accepted exactly like a Deposit from the sender.
func (l *Ledger) Receive(ctx context.Context, from string, amount decimal.Decimal) (domain.Event, error) {
	return l.Deposit(ctx, from, amount)
}

// Withdraw debits amount from the caller's account and pays it out to the caller.
//
// The debit is staged before the payout, so anything the sender reads back
// from the ledger already reflects the withdrawal. If the payout fails the
// debit is discarded together with the counters and the journal entry.
func (l *Ledger) Withdraw(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error) {
	release, err := l.guard.Enter()
	if err != nil {
		return domain.Event{}, err
	}
	defer release()

	if err := validRequest(caller, amount); err != nil {
		return domain.Event{}, err
	}

	if amount.GreaterThan(l.cfg.WithdrawalLimit) {
		return domain.Event{}, &domain.LimitExceededError{Amount: amount, Limit: l.cfg.WithdrawalLimit}
	}

	return l.transact(ctx, func(tx Tx) (domain.Event, error) {
		vault, err := tx.Vault(ctx)
		if err != nil {
			return domain.Event{}, err
		}

		acc, err := tx.Account(ctx, caller)
		if err != nil {
			return domain.Event{}, err
		}

		if amount.GreaterThan(acc.Balance) {
			return domain.Event{}, &domain.InsufficientBalanceError{Amount: amount, Available: acc.Balance}
		}

		acc.Balance = acc.Balance.Sub(amount)
		acc.WithdrawalCount++

		vault.Total = vault.Total.Sub(amount)
		vault.WithdrawalCount++

		if err := save(ctx, tx, vault, acc); err != nil {
			return domain.Event{}, err
		}

		event, err := tx.AppendEvent(ctx, domain.Event{
			Kind:    domain.EventWithdrawn,
			Account: caller,
			Amount:  amount,
			Balance: acc.Balance,
		})
		if err != nil {
			return domain.Event{}, err
		}

		p := domain.Payout{EventID: event.ID, Destination: caller, Amount: amount}
		if err := l.sender.Send(ctx, p); err != nil {
			return domain.Event{}, &domain.TransferFailedError{Destination: caller, Amount: amount, Err: err}
		}

		return event, nil
	})
}

// Balance returns the account balance. Unknown accounts have a zero balance.
func (l *Ledger) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	acc, err := l.UserStatistics(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}

	return acc.Balance, nil
}

// UserStatistics returns the account balance and its operation counters.
func (l *Ledger) UserStatistics(ctx context.Context, account string) (domain.AccountState, error) {
	var acc domain.AccountState

	err := l.view(ctx, func(tx Tx) error {
		var err error
		acc, err = tx.Account(ctx, account)

		return err
	})

	return acc, err
}

// VaultStatistics returns the aggregate balance, the global counters and the vault limits.
func (l *Ledger) VaultStatistics(ctx context.Context) (domain.VaultStatistics, error) {
	var vault domain.VaultState

	err := l.view(ctx, func(tx Tx) error {
		var err error
		vault, err = tx.Vault(ctx)

		return err
	})
	if err != nil {
		return domain.VaultStatistics{}, err
	}

	stats := domain.VaultStatistics{
		Total:           vault.Total,
		DepositCount:    vault.DepositCount,
		WithdrawalCount: vault.WithdrawalCount,
		Capacity:        l.cfg.Capacity,
		WithdrawalLimit: l.cfg.WithdrawalLimit,
	}

	return stats, nil
}

// IsDepositAllowed reports whether a deposit of amount fits under the capacity.
// It applies the same check Deposit does.
func (l *Ledger) IsDepositAllowed(ctx context.Context, amount decimal.Decimal) (bool, error) {
	if !amountpkg.IsWhole(amount) {
		return false, domain.ErrInvalidAmount
	}

	var allowed bool

	err := l.view(ctx, func(tx Tx) error {
		vault, err := tx.Vault(ctx)
		if err != nil {
			return err
		}

		allowed = l.checkCapacity(vault.Total, amount) == nil

		return nil
	})

	return allowed, err
}

// Events returns a page of the account's journal, oldest first.
func (l *Ledger) Events(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error) {
	var events []domain.Event

	err := l.view(ctx, func(tx Tx) error {
		var err error
		events, err = tx.ListEvents(ctx, arg)

		return err
	})

	return events, err
}

func (l *Ledger) checkCapacity(total, amount decimal.Decimal) error {
	wouldBe := total.Add(amount)
	if wouldBe.GreaterThan(l.cfg.Capacity) {
		return &domain.CapacityExceededError{WouldBeTotal: wouldBe, Capacity: l.cfg.Capacity}
	}

	return nil
}

// transact runs fn in a new store transaction and commits only if fn succeeds.
func (l *Ledger) transact(ctx context.Context, fn func(tx Tx) (domain.Event, error)) (domain.Event, error) {
	log := zerolog.Ctx(ctx)

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	l.active = tx
	done := false

	defer func() {
		l.active = nil

		if done {
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error().Err(err).Msg("rollback vault transaction")
		}
	}()

	event, err := fn(tx)
	if err != nil {
		return domain.Event{}, err
	}

	err = tx.Commit()
	done = true

	if err != nil {
		log.Error().Err(err).Interface("event", event).Msg("commit vault transaction")
		return domain.Event{}, err
	}

	return event, nil
}

// view runs fn against the in-flight transaction, or a throwaway one when idle.
func (l *Ledger) view(ctx context.Context, fn func(tx Tx) error) error {
	if l.active != nil {
		return fn(l.active)
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("rollback vault read")
		}
	}()

	return fn(tx)
}

func save(ctx context.Context, tx Tx, vault domain.VaultState, acc domain.AccountState) error {
	if err := tx.SaveAccount(ctx, acc); err != nil {
		return err
	}

	return tx.SaveVault(ctx, vault)
}

func validRequest(caller string, amount decimal.Decimal) error {
	if err := domain.ValidAccount(caller); err != nil {
		return err
	}

	if amount.IsZero() {
		return domain.ErrZeroAmount
	}

	if !amountpkg.IsWhole(amount) {
		return domain.ErrInvalidAmount
	}

	return nil
}
