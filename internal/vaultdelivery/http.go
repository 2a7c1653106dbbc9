// Package vaultdelivery manages delivery layer of the vault.
package vaultdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/internal/middleware"
	"github.com/go-petr/pet-vault/pkg/amountpkg"
	"github.com/go-petr/pet-vault/pkg/errorspkg"
	"github.com/go-petr/pet-vault/pkg/tokenpkg"
	"github.com/go-petr/pet-vault/pkg/web"
)

// Service provides service layer interface needed by vault delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package vaultdelivery
type Service interface {
	Deposit(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error)
	Receive(ctx context.Context, from string, amount decimal.Decimal) (domain.Event, error)
	Withdraw(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error)
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
	UserStatistics(ctx context.Context, account string) (domain.AccountState, error)
	VaultStatistics(ctx context.Context) (domain.VaultStatistics, error)
	IsDepositAllowed(ctx context.Context, amount decimal.Decimal) (bool, error)
	Events(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error)
}

// Handler facilitates vault delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns vault handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
}

type eventData struct {
	Event domain.Event `json:"event"`
}

// Deposit handles http request to deposit into the caller's account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.mutate(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw from the caller's account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.mutate(gctx, h.service.Withdraw)
}

// Receive handles value sent to the vault without naming an operation.
// It is booked as a deposit by the sender.
func (h *Handler) Receive(gctx *gin.Context) {
	h.mutate(gctx, h.service.Receive)
}

func (h *Handler) mutate(gctx *gin.Context, op func(ctx context.Context, caller string, amount decimal.Decimal) (domain.Event, error)) {
	ctx := gctx.Request.Context()

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	amount, err := amountpkg.Parse(req.Amount)
	if err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	event, err := op(ctx, authPayload.Username, amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: eventData{event}})
}

type accountRequest struct {
	Account string `uri:"account" binding:"required"`
}

type balanceData struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// Balance handles http request to get an account balance.
func (h *Handler) Balance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req accountRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	balance, err := h.service.Balance(ctx, req.Account)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{Account: req.Account, Balance: balance}})
}

type userStatsData struct {
	Stats domain.AccountState `json:"stats"`
}

// UserStats handles http request to get an account's balance and counters.
func (h *Handler) UserStats(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req accountRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	stats, err := h.service.UserStatistics(ctx, req.Account)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: userStatsData{stats}})
}

type vaultStatsData struct {
	Stats domain.VaultStatistics `json:"stats"`
}

// VaultStats handles http request to get the aggregate vault state.
func (h *Handler) VaultStats(gctx *gin.Context) {
	stats, err := h.service.VaultStatistics(gctx.Request.Context())
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: vaultStatsData{stats}})
}

type depositAllowedRequest struct {
	Amount string `form:"amount" binding:"required,amount"`
}

type depositAllowedData struct {
	Allowed bool `json:"allowed"`
}

// DepositAllowed handles http request to check whether a deposit would fit under the capacity.
func (h *Handler) DepositAllowed(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req depositAllowedRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	amount, err := amountpkg.Parse(req.Amount)
	if err != nil {
		badRequest(gctx, err)
		return
	}

	allowed, err := h.service.IsDepositAllowed(ctx, amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: depositAllowedData{allowed}})
}

type listEventsRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type eventsData struct {
	Events []domain.Event `json:"events"`
}

// Events handles http request to list the caller's journal.
func (h *Handler) Events(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listEventsRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.ListEventsParams{
		Account: authPayload.Username,
		Limit:   req.PageSize,
		Offset:  (req.PageID - 1) * req.PageSize,
	}

	events, err := h.service.Events(ctx, arg)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: eventsData{events}})
}

// UnknownOperation answers requests for routes the vault does not provide.
func UnknownOperation(gctx *gin.Context) {
	gctx.JSON(http.StatusNotFound, web.Error(errorspkg.ErrUnknownOperation))
}

// MethodNotAllowed answers known routes requested with an unsupported method.
func MethodNotAllowed(gctx *gin.Context) {
	gctx.JSON(http.StatusMethodNotAllowed, web.Error(errorspkg.ErrMethodNotAllowed))
}

func badRequest(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	errMsg := err.Error()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		errMsg = web.GetErrorMsg(ve)
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})
}

// fail renders a service error with the status matching its kind.
func fail(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	switch {
	case errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInsufficientBalance):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrReentrancyDetected):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrTransferFailed):
		gctx.JSON(http.StatusBadGateway, web.Error(domain.ErrTransferFailed))
	default:
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}
