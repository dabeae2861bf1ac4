package ports

import (
	"context"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

// LedgerTx is the view of the ledger one instruction works against. Every
// write made through it commits together or not at all.
type LedgerTx interface {
	// Load returns the account at addr, or nil when none exists. The
	// address stays locked against other writers until the tx ends.
	Load(ctx context.Context, addr domain.Address) (*domain.Account, error)
	// Create stores a new account. It fails with domain.ErrAddressCollision
	// when the address is already in use.
	Create(ctx context.Context, acct *domain.Account) error
	Update(ctx context.Context, acct *domain.Account) error
	Close(ctx context.Context, addr domain.Address) error
}

type Ledger interface {
	Atomically(ctx context.Context, fn func(tx LedgerTx) error) error
	Account(ctx context.Context, addr domain.Address) (*domain.Account, error)
	Airdrop(ctx context.Context, addr domain.Address, lamports uint64) (*domain.Account, error)
}
