package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// Config locates the ledger database. Empty fields are passed through as-is.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func ConfigFromEnv() Config {
	return Config{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
	}
}

func (c Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
}

// MigrationFile returns the file name and SQL of the migration named name,
// in the given direction ("up" or "down").
func MigrationFile(name, direction string) (string, []byte, error) {
	if direction != "up" && direction != "down" {
		return "", nil, fmt.Errorf("invalid migration direction %q", direction)
	}
	pattern, err := regexp.Compile(fmt.Sprintf(`^.*%s\.%s\.sql$`, regexp.QuoteMeta(name), direction))
	if err != nil {
		return "", nil, fmt.Errorf("invalid pattern: %w", err)
	}

	names, err := migrationNames()
	if err != nil {
		return "", nil, err
	}
	for _, fileName := range names {
		if pattern.MatchString(fileName) {
			content, err := migrationFiles.ReadFile(migrationsDir + "/" + fileName)
			if err != nil {
				return "", nil, err
			}
			return fileName, content, nil
		}
	}
	return "", nil, fmt.Errorf("migration %q (%s) not found", name, direction)
}

// Migrate applies every up migration in file name order.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, fileName := range names {
		if !strings.HasSuffix(fileName, ".up.sql") {
			continue
		}
		content, err := migrationFiles.ReadFile(migrationsDir + "/" + fileName)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", fileName, err)
		}
	}
	return nil
}

func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
