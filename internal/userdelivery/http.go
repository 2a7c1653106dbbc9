// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/pkg/errorspkg"
	"github.com/go-petr/pet-vault/pkg/tokenpkg"
	"github.com/go-petr/pet-vault/pkg/web"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, username, password, fullname, email string) (domain.UserWithoutPassword, error)
	CheckPassword(ctx context.Context, username, password string) (domain.UserWithoutPassword, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service        Service
	tokenMaker     tokenpkg.Maker
	accessDuration time.Duration
}

// NewHandler returns user handler issuing access tokens valid for accessDuration.
func NewHandler(us Service, maker tokenpkg.Maker, accessDuration time.Duration) *Handler {
	return &Handler{
		service:        us,
		tokenMaker:     maker,
		accessDuration: accessDuration,
	}
}

type userData struct {
	User domain.UserWithoutPassword `json:"user"`
}

type createRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// Create handles http request to register a user and returns an access token.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	createdUser, err := h.service.Create(ctx, req.Username, req.Password, req.FullName, req.Email)
	if err != nil {
		switch err {
		case domain.ErrInvalidAccount:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrUsernameAlreadyExists, domain.ErrEmailAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	h.respondWithToken(gctx, createdUser)
}

type loginRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login handles http login request and returns user data with an access token.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	user, err := h.service.CheckPassword(ctx, req.Username, req.Password)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrWrongPassword:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	h.respondWithToken(gctx, user)
}

func (h *Handler) respondWithToken(gctx *gin.Context, user domain.UserWithoutPassword) {
	l := zerolog.Ctx(gctx.Request.Context())

	accessToken, payload, err := h.tokenMaker.CreateToken(user.Username, h.accessDuration)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: payload.ExpiredAt.Format(time.RFC3339),
		Data:                 userData{User: user},
	}

	gctx.JSON(http.StatusOK, res)
}

func badRequest(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}
