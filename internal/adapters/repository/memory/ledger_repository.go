package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
)

// Ledger keeps accounts in process memory. One instruction runs at a time;
// its writes are staged and applied only when it returns without error.
type Ledger struct {
	mu       sync.Mutex
	accounts map[domain.Address]*domain.Account
}

func NewLedger(seed ...*domain.Account) *Ledger {
	accounts := make(map[domain.Address]*domain.Account, len(seed))
	for _, acct := range seed {
		accounts[acct.Address] = acct.Clone()
	}
	return &Ledger{accounts: accounts}
}

// Put overwrites an account outside of any instruction.
func (l *Ledger) Put(acct *domain.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[acct.Address] = acct.Clone()
}

func (l *Ledger) Atomically(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &ledgerTx{ledger: l, staged: make(map[domain.Address]stagedWrite)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for addr, w := range tx.staged {
		if w.closed {
			delete(l.accounts, addr)
			continue
		}
		l.accounts[addr] = w.acct
	}
	return nil
}

func (l *Ledger) Account(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[addr].Clone(), nil
}

func (l *Ledger) Airdrop(ctx context.Context, addr domain.Address, lamports uint64) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[addr]
	if !ok {
		acct = domain.NewSystemAccount(addr, 0)
	}
	if acct.Owner != domain.SystemProgramID {
		return nil, fmt.Errorf("%w: cannot airdrop to %s owned by %s", domain.ErrValidation, addr, acct.Owner)
	}
	if err := acct.Credit(lamports); err != nil {
		return nil, err
	}
	l.accounts[addr] = acct
	return acct.Clone(), nil
}

type stagedWrite struct {
	acct   *domain.Account
	closed bool
}

type ledgerTx struct {
	ledger *Ledger
	staged map[domain.Address]stagedWrite
}

func (tx *ledgerTx) Load(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	if w, ok := tx.staged[addr]; ok {
		if w.closed {
			return nil, nil
		}
		return w.acct.Clone(), nil
	}
	return tx.ledger.accounts[addr].Clone(), nil
}

func (tx *ledgerTx) Create(ctx context.Context, acct *domain.Account) error {
	existing, _ := tx.Load(ctx, acct.Address)
	if existing != nil {
		return fmt.Errorf("%w: %s", domain.ErrAddressCollision, acct.Address)
	}
	tx.staged[acct.Address] = stagedWrite{acct: acct.Clone()}
	return nil
}

func (tx *ledgerTx) Update(ctx context.Context, acct *domain.Account) error {
	existing, _ := tx.Load(ctx, acct.Address)
	if existing == nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, acct.Address)
	}
	tx.staged[acct.Address] = stagedWrite{acct: acct.Clone()}
	return nil
}

func (tx *ledgerTx) Close(ctx context.Context, addr domain.Address) error {
	existing, _ := tx.Load(ctx, addr)
	if existing == nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, addr)
	}
	tx.staged[addr] = stagedWrite{closed: true}
	return nil
}
