package main

import (
	"context"
	"database/sql"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/pollprogram/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollprogram/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollprogram/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
	"github.com/vncsmyrnk/pollprogram/internal/core/services"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found")
	}

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.logLevel); err == nil {
		logger = logger.Level(level)
	}

	var ledger ports.Ledger
	switch cfg.ledger {
	case "memory":
		logger.Warn().Msg("using in-memory ledger; state is lost on shutdown")
		ledger = memory.NewLedger()
	default:
		db, err := sql.Open("postgres", cfg.db.ConnString())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatal().Err(err).Msg("failed to reach database")
		}
		ledger = postgres.NewLedgerRepository(db)
	}

	programSvc := services.NewProgramService(cfg.programID, ledger, services.WithLogger(logger))
	accountSvc := services.NewAccountService(cfg.programID, ledger)

	handler := http.NewHandler(http.NewTransactionHandler(programSvc), http.NewAccountHandler(accountSvc))
	server := &stdhttp.Server{Addr: cfg.addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.addr).Str("program_id", cfg.programID.String()).Str("ledger", cfg.ledger).Msg("serving")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("shutdown failed")
	}
}
