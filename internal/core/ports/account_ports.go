package ports

import (
	"context"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

// AccountView is a raw account plus its decoded record, when it holds one
// of this program's records.
type AccountView struct {
	*domain.Account
	Poll      *domain.Poll      `json:"poll,omitempty"`
	Candidate *domain.Candidate `json:"candidate,omitempty"`
}

type AccountService interface {
	ProgramID() domain.Address
	GetAccount(ctx context.Context, addr domain.Address) (*AccountView, error)
	DerivePollAddress(pollID uint64) (domain.DerivedAddress, error)
	DeriveCandidateAddress(candidateName string, pollID uint64) (domain.DerivedAddress, error)
	Airdrop(ctx context.Context, addr domain.Address, lamports uint64) (*domain.Account, error)
}
