// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-vault/internal/ledger"
	"github.com/go-petr/pet-vault/internal/ledgerrepo"
	"github.com/go-petr/pet-vault/internal/middleware"
	"github.com/go-petr/pet-vault/internal/payout"
	"github.com/go-petr/pet-vault/internal/userdelivery"
	"github.com/go-petr/pet-vault/internal/userrepo"
	"github.com/go-petr/pet-vault/internal/userservice"
	"github.com/go-petr/pet-vault/internal/vaultdelivery"
	"github.com/go-petr/pet-vault/internal/vaultservice"
	"github.com/go-petr/pet-vault/pkg/amountpkg"
	"github.com/go-petr/pet-vault/pkg/configpkg"
	"github.com/go-petr/pet-vault/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
//
// conn may be nil when config selects the memory store.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	capacity, withdrawalLimit, err := config.VaultLimits()
	if err != nil {
		return nil, errors.Wrap(err, "parse vault limits")
	}

	var (
		store ledger.Store
		users userservice.Repo
	)

	switch config.LedgerStore {
	case configpkg.StoreMemory:
		store = ledgerrepo.NewRepoMem()
		users = userrepo.NewRepoMem()
	case configpkg.StorePostgres, "":
		if conn == nil {
			return nil, errors.New("postgres store needs a database connection")
		}

		store = ledgerrepo.NewRepoPGS(conn)
		users = userrepo.NewRepoPGS(conn)
	default:
		return nil, errors.Errorf("unknown ledger store %q", config.LedgerStore)
	}

	vault, err := ledger.New(ledger.Config{Capacity: capacity, WithdrawalLimit: withdrawalLimit}, store, newSender(logger, config))
	if err != nil {
		return nil, errors.Wrap(err, "create ledger")
	}

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create token maker")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	vaultService := vaultservice.New(vault, vaultservice.NewMetrics(registry))
	userService := userservice.New(users)

	vaultHandler := vaultdelivery.NewHandler(vaultService)
	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", amountpkg.ValidAmount); err != nil {
			return nil, errors.Wrap(err, "cannot register amount validator")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.NoRoute(vaultdelivery.UnknownOperation)
	engine.NoMethod(vaultdelivery.MethodNotAllowed)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/vault").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("", vaultHandler.Receive)
	authRoutes.POST("/deposits", vaultHandler.Deposit)
	authRoutes.POST("/withdrawals", vaultHandler.Withdraw)
	authRoutes.GET("/balances/:account", vaultHandler.Balance)
	authRoutes.GET("/stats", vaultHandler.VaultStats)
	authRoutes.GET("/users/:account/stats", vaultHandler.UserStats)
	authRoutes.GET("/deposit-allowed", vaultHandler.DepositAllowed)
	authRoutes.GET("/events", vaultHandler.Events)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}

// newSender returns the payout boundary. Without an endpoint payouts are settled off-band.
func newSender(logger zerolog.Logger, config configpkg.Config) ledger.Sender {
	if config.PayoutURL == "" {
		logger.Warn().Msg("PAYOUT_URL is empty, withdrawals are booked without payout")
		return payout.NopSender{}
	}

	return payout.NewBreakerSender(
		payout.NewHTTPSender(config.PayoutURL, config.PayoutTimeout),
		payout.BreakerSettings{
			Name:                "payout",
			ConsecutiveFailures: config.PayoutBreakerFailures,
			Timeout:             config.PayoutBreakerTimeout,
			Logger:              logger,
		},
	)
}
