package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/pet-vault/internal/domain"
)

// RepoMem keeps users in process memory. Used together with the memory ledger store.
type RepoMem struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
}

// NewRepoMem returns an empty RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

// Create stores the user. Usernames and emails are unique.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[arg.Username]; ok {
		return domain.User{}, domain.ErrUsernameAlreadyExists
	}

	if _, ok := r.byEmail[arg.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists
	}

	now := time.Now().UTC()

	u := domain.User{
		Username:          arg.Username,
		HashedPassword:    arg.HashedPassword,
		FullName:          arg.FullName,
		Email:             arg.Email,
		PasswordChangedAt: now,
		CreatedAt:         now,
	}

	r.users[u.Username] = u
	r.byEmail[u.Email] = u.Username

	return u, nil
}

// Get returns the user with the given username.
func (r *RepoMem) Get(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return u, nil
}
