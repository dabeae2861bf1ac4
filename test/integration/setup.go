package integration

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/pollprogram/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollprogram/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

// startLedgerDatabase runs a throwaway Postgres with the ledger schema applied.
func startLedgerDatabase(ctx context.Context) (testcontainers.Container, *sql.DB, error) {
	cfg := postgres.Config{Name: "ledger", User: "program", Password: "program"}

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase(cfg.Name),
		tcpostgres.WithUsername(cfg.User),
		tcpostgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container, nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container, nil, err
	}
	cfg.Host, cfg.Port = host, port.Port()

	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return container, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return container, nil, err
	}
	return container, db, nil
}

type wallet struct {
	key     ed25519.PrivateKey
	address domain.Address
}

func newWallet(t *testing.T) wallet {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	addr, err := domain.AddressFromBytes(pub)
	require.NoError(t, err)
	return wallet{key: priv, address: addr}
}

// signTransaction issues the bearer token that binds this wallet to body.
func (w wallet) signTransaction(t *testing.T, body []byte) string {
	t.Helper()

	sum := sha256.Sum256(body)
	claims := handler.SignerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   w.address.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
		TxHash: hex.EncodeToString(sum[:]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signedToken, err := token.SignedString(w.key)
	require.NoError(t, err)
	return signedToken
}
