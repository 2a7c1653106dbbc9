// Package userservice manages business logic layer of vault account holders.
package userservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/pkg/errorspkg"
	"github.com/go-petr/pet-vault/pkg/passpkg"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, username string) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New returns user service struct to manage vault account holders.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Create registers username as a vault account holder.
//
// The username must be a valid account identity since the ledger books every
// deposit and withdrawal of the user under it. Emails are stored lowercased.
func (s *Service) Create(ctx context.Context, username, password, fullname, email string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	if err := domain.ValidAccount(username); err != nil {
		l.Info().Str("username", username).Msg("username is not a valid account")
		return result, err
	}

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Username:       username,
		HashedPassword: hashedPassword,
		FullName:       strings.TrimSpace(fullname),
		Email:          strings.ToLower(strings.TrimSpace(email)),
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	result = NewUserWithoutPassword(gotUser)

	return result, nil
}

// CheckPassword checks if the password is valid for the given username.
// Names that cannot hold an account are never looked up.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	if domain.ValidAccount(username) != nil {
		return response, domain.ErrUserNotFound
	}

	gotUser, err := s.repo.Get(ctx, username)
	if err != nil {
		return response, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	response = NewUserWithoutPassword(gotUser)

	return response, nil
}
