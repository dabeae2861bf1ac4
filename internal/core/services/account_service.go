package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
)

type accountService struct {
	programID domain.Address
	ledger    ports.Ledger
}

func NewAccountService(programID domain.Address, ledger ports.Ledger) ports.AccountService {
	return &accountService{
		programID: programID,
		ledger:    ledger,
	}
}

func (s *accountService) ProgramID() domain.Address {
	return s.programID
}

func (s *accountService) GetAccount(ctx context.Context, addr domain.Address) (*ports.AccountView, error) {
	acct, err := s.ledger.Account(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, addr)
	}

	view := &ports.AccountView{Account: acct}
	switch {
	case acct.OwnedBy(s.programID) && acct.HasDiscriminator(domain.PollDiscriminator):
		if poll, err := domain.DecodePoll(acct, s.programID); err == nil {
			view.Poll = poll
		}
	case acct.OwnedBy(s.programID) && acct.HasDiscriminator(domain.CandidateDiscriminator):
		if candidate, err := domain.DecodeCandidate(acct, s.programID); err == nil {
			view.Candidate = candidate
		}
	}
	return view, nil
}

func (s *accountService) DerivePollAddress(pollID uint64) (domain.DerivedAddress, error) {
	return domain.PollAddress(s.programID, pollID)
}

func (s *accountService) DeriveCandidateAddress(candidateName string, pollID uint64) (domain.DerivedAddress, error) {
	return domain.CandidateAddress(s.programID, candidateName, pollID)
}

func (s *accountService) Airdrop(ctx context.Context, addr domain.Address, lamports uint64) (*domain.Account, error) {
	if lamports == 0 {
		return nil, fmt.Errorf("%w: airdrop amount must be positive", domain.ErrValidation)
	}
	return s.ledger.Airdrop(ctx, addr, lamports)
}
