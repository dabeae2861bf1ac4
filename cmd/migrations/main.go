package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/pollprogram/internal/adapters/repository/postgres"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	down := flag.Bool("down", false, "Apply the down migration instead of the up one")
	all := flag.Bool("all", false, "Apply every up migration in order")
	flag.Parse()

	if !*all && flag.NArg() < 1 {
		logger.Fatal().Msg("a migration name is required.")
	}

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found")
	}

	db, err := sql.Open("postgres", postgres.ConfigFromEnv().ConnString())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if *all {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate")
		}
		logger.Info().Msg("All migrations applied.")
		return
	}

	direction := "up"
	if *down {
		direction = "down"
	}
	migrationName := flag.Arg(0)
	fileName, fileContent, err := postgres.MigrationFile(migrationName, direction)
	if err != nil {
		logger.Fatal().Err(err).Str("migration", migrationName).Msg("failed to load migration")
	}

	if _, err := db.Exec(string(fileContent)); err != nil {
		logger.Fatal().Err(err).Str("file", fileName).Msg("failed to execute SQL file")
	}

	logger.Info().Str("file", fileName).Msg("Migration file executed successfully.")
}
