package vaultdelivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/internal/middleware"
	"github.com/go-petr/pet-vault/pkg/amountpkg"
	"github.com/go-petr/pet-vault/pkg/errorspkg"
	"github.com/go-petr/pet-vault/pkg/randompkg"
	"github.com/go-petr/pet-vault/pkg/tokenpkg"
	"github.com/go-petr/pet-vault/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", amountpkg.ValidAmount); err != nil {
			fmt.Fprintln(os.Stderr, "cannot register amount validator:", err)
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

// decimalEq matches decimals by value rather than representation.
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string {
	return "is equal to " + m.want.String()
}

func newServer(t *testing.T, service Service, maker tokenpkg.Maker) *gin.Engine {
	t.Helper()

	handler := NewHandler(service)

	server := gin.New()
	server.HandleMethodNotAllowed = true
	server.NoRoute(UnknownOperation)
	server.NoMethod(MethodNotAllowed)

	authRoutes := server.Group("/vault").Use(middleware.AuthMiddleware(maker))

	authRoutes.POST("", handler.Receive)
	authRoutes.POST("/deposits", handler.Deposit)
	authRoutes.POST("/withdrawals", handler.Withdraw)
	authRoutes.GET("/balances/:account", handler.Balance)
	authRoutes.GET("/stats", handler.VaultStats)
	authRoutes.GET("/users/:account/stats", handler.UserStats)
	authRoutes.GET("/deposit-allowed", handler.DepositAllowed)
	authRoutes.GET("/events", handler.Events)

	return server
}

func newMaker(t *testing.T) tokenpkg.Maker {
	t.Helper()

	tokenSymmetricKey := randompkg.String(32)

	maker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	return maker
}

func TestMutations(t *testing.T) {
	username := randompkg.Owner()
	maker := newMaker(t)

	event := domain.Event{
		ID:        7,
		Kind:      domain.EventDeposited,
		Account:   username,
		Amount:    decimal.NewFromInt(5),
		Balance:   decimal.NewFromInt(15),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	type requestBody struct {
		Amount string `json:"amount"`
	}

	withAuth := func(t *testing.T, r *http.Request) error {
		return middleware.AddAuthorization(r, maker, middleware.AuthTypeBearer, username, time.Minute)
	}

	testCases := []struct {
		name           string
		path           string
		requestBody    requestBody
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "DepositOK",
			path:        "/vault/deposits",
			requestBody: requestBody{Amount: "5"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), decimalEq{decimal.NewFromInt(5)}).
					Times(1).
					Return(event, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "ReceiveOK",
			path:        "/vault",
			requestBody: requestBody{Amount: "5"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Receive(gomock.Any(), gomock.Eq(username), decimalEq{decimal.NewFromInt(5)}).
					Times(1).
					Return(event, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "WithdrawOK",
			path:        "/vault/withdrawals",
			requestBody: requestBody{Amount: "5"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(username), decimalEq{decimal.NewFromInt(5)}).
					Times(1).
					Return(event, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "NoAuthorization",
			path:        "/vault/deposits",
			requestBody: requestBody{Amount: "5"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:        "MissingAmount",
			path:        "/vault/deposits",
			requestBody: requestBody{},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name:        "FractionalAmount",
			path:        "/vault/withdrawals",
			requestBody: requestBody{Amount: "1.5"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a non-negative whole number",
		},
		{
			name:        "NegativeAmount",
			path:        "/vault/deposits",
			requestBody: requestBody{Amount: "-3"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a non-negative whole number",
		},
		{
			name:        "ZeroAmount",
			path:        "/vault/deposits",
			requestBody: requestBody{Amount: "0"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), decimalEq{decimal.Zero}).
					Times(1).
					Return(domain.Event{}, domain.ErrZeroAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrZeroAmount.Error(),
		},
		{
			name:        "CapacityExceeded",
			path:        "/vault/deposits",
			requestBody: requestBody{Amount: "11"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Any()).
					Times(1).
					Return(domain.Event{}, &domain.CapacityExceededError{
						WouldBeTotal: decimal.NewFromInt(11),
						Capacity:     decimal.NewFromInt(10),
					})
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "capacity exceeded: total 11 exceeds capacity 10",
		},
		{
			name:        "Reentrancy",
			path:        "/vault/withdrawals",
			requestBody: requestBody{Amount: "1"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Event{}, domain.ErrReentrancyDetected)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrReentrancyDetected.Error(),
		},
		{
			name:        "TransferFailed",
			path:        "/vault/withdrawals",
			requestBody: requestBody{Amount: "1"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Event{}, &domain.TransferFailedError{
						Destination: username,
						Amount:      decimal.NewFromInt(1),
						Err:         errors.New("connection refused"),
					})
			},
			wantStatusCode: http.StatusBadGateway,
			wantError:      domain.ErrTransferFailed.Error(),
		},
		{
			name:        "InternalServerError",
			path:        "/vault/deposits",
			requestBody: requestBody{Amount: "1"},
			setupAuth:   withAuth,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Event{}, errors.New("db is down"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newServer(t, service, maker)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, tc.path, bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Event domain.Event `json:"event"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got := res.Data.(*struct {
				Event domain.Event `json:"event"`
			})

			if diff := cmp.Diff(event, got.Event); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReads(t *testing.T) {
	username := randompkg.Owner()
	other := randompkg.Owner()
	maker := newMaker(t)

	stats := domain.VaultStatistics{
		Total:           decimal.NewFromInt(30),
		DepositCount:    4,
		WithdrawalCount: 1,
		Capacity:        decimal.NewFromInt(100),
		WithdrawalLimit: decimal.NewFromInt(10),
	}

	userStats := domain.AccountState{
		Account:         other,
		Balance:         decimal.NewFromInt(12),
		DepositCount:    2,
		WithdrawalCount: 1,
	}

	events := []domain.Event{
		{ID: 3, Kind: domain.EventDeposited, Account: username, Amount: decimal.NewFromInt(1), Balance: decimal.NewFromInt(1)},
		{ID: 4, Kind: domain.EventWithdrawn, Account: username, Amount: decimal.NewFromInt(1), Balance: decimal.Zero},
	}

	testCases := []struct {
		name           string
		method         string
		url            string
		noAuth         bool
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantBody       string
	}{
		{
			name:   "Balance",
			method: http.MethodGet,
			url:    "/vault/balances/" + other,
			buildStubs: func(service *MockService) {
				service.EXPECT().Balance(gomock.Any(), gomock.Eq(other)).Times(1).Return(decimal.NewFromInt(12), nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody:       fmt.Sprintf(`{"data":{"account":%q,"balance":"12"}}`, other),
		},
		{
			name:   "BalanceInternalError",
			method: http.MethodGet,
			url:    "/vault/balances/" + other,
			buildStubs: func(service *MockService) {
				service.EXPECT().Balance(gomock.Any(), gomock.Eq(other)).Times(1).Return(decimal.Zero, errors.New("boom"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"error":"internal"}`,
		},
		{
			name:   "VaultStats",
			method: http.MethodGet,
			url:    "/vault/stats",
			buildStubs: func(service *MockService) {
				service.EXPECT().VaultStatistics(gomock.Any()).Times(1).Return(stats, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody: `{"data":{"stats":{"total":"30","deposit_count":4,"withdrawal_count":1,` +
				`"capacity":"100","withdrawal_limit":"10"}}}`,
		},
		{
			name:   "UserStats",
			method: http.MethodGet,
			url:    "/vault/users/" + other + "/stats",
			buildStubs: func(service *MockService) {
				service.EXPECT().UserStatistics(gomock.Any(), gomock.Eq(other)).Times(1).Return(userStats, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody: fmt.Sprintf(`{"data":{"stats":{"account":%q,"balance":"12","deposit_count":2,"withdrawal_count":1}}}`,
				other),
		},
		{
			name:   "DepositAllowed",
			method: http.MethodGet,
			url:    "/vault/deposit-allowed?amount=70",
			buildStubs: func(service *MockService) {
				service.EXPECT().IsDepositAllowed(gomock.Any(), decimalEq{decimal.NewFromInt(70)}).Times(1).Return(true, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"data":{"allowed":true}}`,
		},
		{
			name:   "DepositNotAllowed",
			method: http.MethodGet,
			url:    "/vault/deposit-allowed?amount=71",
			buildStubs: func(service *MockService) {
				service.EXPECT().IsDepositAllowed(gomock.Any(), decimalEq{decimal.NewFromInt(71)}).Times(1).Return(false, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"data":{"allowed":false}}`,
		},
		{
			name:   "DepositAllowedBadAmount",
			method: http.MethodGet,
			url:    "/vault/deposit-allowed?amount=abc",
			buildStubs: func(service *MockService) {
				service.EXPECT().IsDepositAllowed(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"Amount must be a non-negative whole number"}`,
		},
		{
			name:   "Events",
			method: http.MethodGet,
			url:    "/vault/events?page_id=2&page_size=5",
			buildStubs: func(service *MockService) {
				arg := domain.ListEventsParams{Account: username, Limit: 5, Offset: 5}
				service.EXPECT().Events(gomock.Any(), gomock.Eq(arg)).Times(1).Return(events, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody: fmt.Sprintf(`{"data":{"events":[`+
				`{"id":3,"kind":"deposited","account":%[1]q,"amount":"1","balance":"1","created_at":"0001-01-01T00:00:00Z"},`+
				`{"id":4,"kind":"withdrawn","account":%[1]q,"amount":"1","balance":"0","created_at":"0001-01-01T00:00:00Z"}]}}`,
				username),
		},
		{
			name:   "EventsPageTooLarge",
			method: http.MethodGet,
			url:    "/vault/events?page_id=1&page_size=101",
			buildStubs: func(service *MockService) {
				service.EXPECT().Events(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"PageSize must be less than 100"}`,
		},
		{
			name:   "ReadsRequireAuth",
			method: http.MethodGet,
			url:    "/vault/stats",
			noAuth: true,
			buildStubs: func(service *MockService) {
				service.EXPECT().VaultStatistics(gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       fmt.Sprintf(`{"error":%q}`, middleware.ErrAuthHeaderNotFound.Error()),
		},
		{
			name:           "UnknownOperation",
			method:         http.MethodPost,
			url:            "/vault/flashloan",
			buildStubs:     func(service *MockService) {},
			wantStatusCode: http.StatusNotFound,
			wantBody:       `{"error":"unknown operation"}`,
		},
		{
			name:           "MethodNotAllowed",
			method:         http.MethodDelete,
			url:            "/vault/stats",
			buildStubs:     func(service *MockService) {},
			wantStatusCode: http.StatusMethodNotAllowed,
			wantBody:       `{"error":"method not allowed"}`,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newServer(t, service, maker)

			req, err := http.NewRequest(tc.method, tc.url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if !tc.noAuth {
				if err := middleware.AddAuthorization(req, maker, middleware.AuthTypeBearer, username, time.Minute); err != nil {
					t.Fatalf("middleware.AddAuthorization returned error: %v", err)
				}
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if diff := cmp.Diff(tc.wantBody, recorder.Body.String()); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
