package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vncsmyrnk/pollprogram/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

// defaultProgramID is the id the program was first deployed under.
const defaultProgramID = "Ak88q7XogJ5Hq2uUG4oPvA95JzcE3t35BMDujfC4Rd5c"

type config struct {
	addr      string
	ledger    string
	programID domain.Address
	logLevel  string
	db        postgres.Config
}

func loadConfig(args []string) (*config, error) {
	var (
		cfg       config
		programID string
	)

	env := postgres.ConfigFromEnv()
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.addr, "addr", envOr("HTTP_ADDR", "0.0.0.0:8080"), "HTTP listen address")
	fs.StringVar(&cfg.ledger, "ledger", envOr("LEDGER", "postgres"), "Ledger backend: postgres or memory")
	fs.StringVar(&programID, "program-id", envOr("PROGRAM_ID", defaultProgramID), "Base58 program id")
	fs.StringVar(&cfg.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level")
	fs.StringVar(&cfg.db.Host, "db-host", env.Host, "Database host")
	fs.StringVar(&cfg.db.Port, "db-port", env.Port, "Database port")
	fs.StringVar(&cfg.db.User, "db-user", env.User, "Database user")
	fs.StringVar(&cfg.db.Password, "db-pass", env.Password, "Database password")
	fs.StringVar(&cfg.db.Name, "db-name", env.Name, "Database name")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	id, err := domain.ParseAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	cfg.programID = id

	switch cfg.ledger {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("unknown ledger %q", cfg.ledger)
	}
	return &cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
