package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

type InitializePollInput struct {
	PollID      uint64
	Description string
	PollStart   uint64
	PollEnd     uint64
	Accounts    domain.AccountMetas
}

type CandidateInput struct {
	CandidateName string
	PollID        uint64
	Accounts      domain.AccountMetas
}

type DeletePollInput struct {
	PollID            uint64
	Accounts          domain.AccountMetas
	RemainingAccounts []domain.Address
}

// Receipt describes one committed instruction.
type Receipt struct {
	ID          uuid.UUID              `json:"id"`
	Instruction domain.InstructionName `json:"instruction"`
	Signer      domain.Address         `json:"signer"`
	Logs        []string               `json:"logs"`
}

type ProgramService interface {
	InitializePoll(ctx context.Context, signer domain.Address, input InitializePollInput) (*Receipt, error)
	InitializeCandidate(ctx context.Context, signer domain.Address, input CandidateInput) (*Receipt, error)
	Vote(ctx context.Context, signer domain.Address, input CandidateInput) (*Receipt, error)
	DeletePoll(ctx context.Context, signer domain.Address, input DeletePollInput) (*Receipt, error)
	Execute(ctx context.Context, signer domain.Address, ix domain.Instruction) (*Receipt, error)
}
