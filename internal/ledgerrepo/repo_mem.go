// Package ledgerrepo manages repository layer of the vault ledger.
package ledgerrepo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/internal/ledger"
)

// ErrTxDone is returned by any operation on a transaction that was already committed or rolled back.
var ErrTxDone = errors.New("transaction has already been committed or rolled back")

// RepoMem keeps the vault state in process memory.
type RepoMem struct {
	mu       sync.Mutex
	vault    domain.VaultState
	accounts map[string]domain.AccountState
	events   []domain.Event
	lastID   int64
}

// NewRepoMem returns an empty RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[string]domain.AccountState),
	}
}

// Begin starts a transaction. Its writes stay in an overlay until Commit.
func (r *RepoMem) Begin(ctx context.Context) (ledger.Tx, error) {
	t := &TxMem{
		repo:     r,
		accounts: make(map[string]domain.AccountState),
	}

	return t, nil
}

// TxMem is a RepoMem transaction.
type TxMem struct {
	repo     *RepoMem
	vault    *domain.VaultState
	accounts map[string]domain.AccountState
	events   []domain.Event
	done     bool
}

// Vault returns the aggregate state as seen by the transaction.
func (t *TxMem) Vault(ctx context.Context) (domain.VaultState, error) {
	if t.done {
		return domain.VaultState{}, ErrTxDone
	}

	if t.vault != nil {
		return *t.vault, nil
	}

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	return t.repo.vault, nil
}

// Account returns the account state as seen by the transaction.
func (t *TxMem) Account(ctx context.Context, account string) (domain.AccountState, error) {
	if t.done {
		return domain.AccountState{}, ErrTxDone
	}

	if a, ok := t.accounts[account]; ok {
		return a, nil
	}

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	if a, ok := t.repo.accounts[account]; ok {
		return a, nil
	}

	return domain.AccountState{Account: account}, nil
}

// SaveVault stages the aggregate state.
func (t *TxMem) SaveVault(ctx context.Context, v domain.VaultState) error {
	if t.done {
		return ErrTxDone
	}

	t.vault = &v

	return nil
}

// SaveAccount stages the account state.
func (t *TxMem) SaveAccount(ctx context.Context, a domain.AccountState) error {
	if t.done {
		return ErrTxDone
	}

	t.accounts[a.Account] = a

	return nil
}

// AppendEvent stages e and returns it with its id and creation time.
// Ids of rolled back events are not reused.
func (t *TxMem) AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	if t.done {
		return domain.Event{}, ErrTxDone
	}

	t.repo.mu.Lock()
	t.repo.lastID++
	e.ID = t.repo.lastID
	t.repo.mu.Unlock()

	e.CreatedAt = time.Now().UTC()
	t.events = append(t.events, e)

	return e, nil
}

// ListEvents returns a page of the account's committed and staged events ordered by id.
// A non-positive limit returns all events after offset.
func (t *TxMem) ListEvents(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error) {
	if t.done {
		return nil, ErrTxDone
	}

	items := []domain.Event{}

	t.repo.mu.Lock()
	for _, e := range t.repo.events {
		if e.Account == arg.Account {
			items = append(items, e)
		}
	}
	t.repo.mu.Unlock()

	for _, e := range t.events {
		if e.Account == arg.Account {
			items = append(items, e)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return page(items, arg.Limit, arg.Offset), nil
}

// Commit publishes the staged writes.
func (t *TxMem) Commit() error {
	if t.done {
		return ErrTxDone
	}

	t.done = true

	r := t.repo

	r.mu.Lock()
	defer r.mu.Unlock()

	if t.vault != nil {
		r.vault = *t.vault
	}

	for k, a := range t.accounts {
		r.accounts[k] = a
	}

	r.events = append(r.events, t.events...)

	return nil
}

// Rollback discards the staged writes.
func (t *TxMem) Rollback() error {
	if t.done {
		return ErrTxDone
	}

	t.done = true
	t.vault = nil
	t.accounts = nil
	t.events = nil

	return nil
}

func page(items []domain.Event, limit, offset int32) []domain.Event {
	if offset < 0 {
		offset = 0
	}

	if int(offset) >= len(items) {
		return []domain.Event{}
	}

	items = items[offset:]

	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}

	return items
}
