package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
)

const (
	uniqueViolation      = pq.ErrorCode("23505")
	checkViolation       = pq.ErrorCode("23514")
	serializationFailure = pq.ErrorCode("40001")
	deadlockDetected     = pq.ErrorCode("40P01")
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) ports.Ledger {
	return &ledgerRepository{
		db: db,
	}
}

func (r *ledgerRepository) Atomically(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

func (r *ledgerRepository) Account(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	query := `
		SELECT address, owner, lamports, data
		FROM accounts
		WHERE address = $1
	`
	return scanAccount(r.db.QueryRowContext(ctx, query, addr.Bytes()))
}

func (r *ledgerRepository) Airdrop(ctx context.Context, addr domain.Address, lamports uint64) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (address, owner, lamports)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE
		SET lamports = accounts.lamports + EXCLUDED.lamports,
		    updated_at = NOW()
		WHERE accounts.owner = EXCLUDED.owner
		RETURNING address, owner, lamports, data
	`
	acct, err := scanAccount(r.db.QueryRowContext(ctx, query,
		addr.Bytes(), domain.SystemProgramID.Bytes(), strconv.FormatUint(lamports, 10),
	))
	if err != nil {
		return nil, mapError(err)
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: cannot airdrop to program-owned account %s", domain.ErrValidation, addr)
	}
	return acct, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) Load(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	query := `
		SELECT address, owner, lamports, data
		FROM accounts
		WHERE address = $1
		FOR UPDATE
	`
	return scanAccount(t.tx.QueryRowContext(ctx, query, addr.Bytes()))
}

func (t *ledgerTx) Create(ctx context.Context, acct *domain.Account) error {
	query := `
		INSERT INTO accounts (address, owner, lamports, data)
		VALUES ($1, $2, $3, $4)
	`
	_, err := t.tx.ExecContext(ctx, query,
		acct.Address.Bytes(), acct.Owner.Bytes(), strconv.FormatUint(acct.Lamports, 10), nonNilData(acct.Data),
	)
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", acct.Address, mapError(err))
	}
	return nil
}

func (t *ledgerTx) Update(ctx context.Context, acct *domain.Account) error {
	query := `
		UPDATE accounts
		SET owner = $2, lamports = $3, data = $4, updated_at = NOW()
		WHERE address = $1
	`
	res, err := t.tx.ExecContext(ctx, query,
		acct.Address.Bytes(), acct.Owner.Bytes(), strconv.FormatUint(acct.Lamports, 10), nonNilData(acct.Data),
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", acct.Address, mapError(err))
	}
	return expectOneRow(res, acct.Address)
}

func (t *ledgerTx) Close(ctx context.Context, addr domain.Address) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM accounts WHERE address = $1`, addr.Bytes())
	if err != nil {
		return fmt.Errorf("failed to close account %s: %w", addr, mapError(err))
	}
	return expectOneRow(res, addr)
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var (
		address, owner, data []byte
		lamports             string
	)
	if err := row.Scan(&address, &owner, &lamports, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan account: %w", mapError(err))
	}

	acct := &domain.Account{Data: data}
	var err error
	if acct.Address, err = domain.AddressFromBytes(address); err != nil {
		return nil, err
	}
	if acct.Owner, err = domain.AddressFromBytes(owner); err != nil {
		return nil, err
	}
	if acct.Lamports, err = strconv.ParseUint(lamports, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse lamports %q: %w", lamports, err)
	}
	return acct, nil
}

func expectOneRow(res sql.Result, addr domain.Address) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, addr)
	}
	return nil
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrAddressCollision, pqErr.Message)
		case checkViolation:
			return fmt.Errorf("%w: %s", domain.ErrArithmeticOverflow, pqErr.Message)
		case serializationFailure, deadlockDetected:
			return fmt.Errorf("%w: %s", domain.ErrLedgerConflict, pqErr.Message)
		}
	}
	return err
}

func nonNilData(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
