// Package main runs the vault API: deposits, withdrawals with payout and vault statistics.
package main

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-vault/cmd/httpserver"
	"github.com/go-petr/pet-vault/internal/middleware"
	"github.com/go-petr/pet-vault/pkg/configpkg"
	"github.com/go-petr/pet-vault/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	var db *sql.DB

	if config.LedgerStore != configpkg.StoreMemory {
		db, err = dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}

		if err := dbpkg.Migrate(db, config.MigrationsPath, logger); err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate database")
		}
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().
		Str("address", config.ServerAddress).
		Str("store", config.LedgerStore).
		Msg("VAULT API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
