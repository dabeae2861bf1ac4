package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
)

type programService struct {
	programID domain.Address
	ledger    ports.Ledger
	logger    zerolog.Logger
}

func NewProgramService(programID domain.Address, ledger ports.Ledger, opts ...Option) ports.ProgramService {
	s := &programService{
		programID: programID,
		ledger:    ledger,
		logger:    zerolog.New(os.Stdout),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *programService) Execute(ctx context.Context, signer domain.Address, ix domain.Instruction) (*ports.Receipt, error) {
	switch ix.Name {
	case domain.InstructionInitializePoll:
		return s.InitializePoll(ctx, signer, ports.InitializePollInput{
			PollID:      ix.PollID,
			Description: ix.Description,
			PollStart:   ix.PollStart,
			PollEnd:     ix.PollEnd,
			Accounts:    ix.Accounts,
		})
	case domain.InstructionInitializeCandidate:
		return s.InitializeCandidate(ctx, signer, ports.CandidateInput{
			CandidateName: ix.CandidateName,
			PollID:        ix.PollID,
			Accounts:      ix.Accounts,
		})
	case domain.InstructionVote:
		return s.Vote(ctx, signer, ports.CandidateInput{
			CandidateName: ix.CandidateName,
			PollID:        ix.PollID,
			Accounts:      ix.Accounts,
		})
	case domain.InstructionDeletePoll:
		return s.DeletePoll(ctx, signer, ports.DeletePollInput{
			PollID:            ix.PollID,
			Accounts:          ix.Accounts,
			RemainingAccounts: ix.RemainingAccounts,
		})
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownInstruction, ix.Name)
	}
}

func (s *programService) InitializePoll(ctx context.Context, signer domain.Address, input ports.InitializePollInput) (*ports.Receipt, error) {
	poll := &domain.Poll{
		PollID:      input.PollID,
		Description: input.Description,
		PollStart:   input.PollStart,
		PollEnd:     input.PollEnd,
	}
	data, err := poll.MarshalAccountData()
	if err != nil {
		return nil, err
	}
	pollAddr, err := s.pollAddress(input.PollID, input.Accounts.Poll)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, domain.InstructionInitializePoll, signer, func(tx ports.LedgerTx, logs *programLogs) error {
		if _, err := lockAccounts(ctx, tx, pollAddr, signer); err != nil {
			return err
		}
		return s.allocate(ctx, tx, signer, pollAddr, data)
	})
}

func (s *programService) InitializeCandidate(ctx context.Context, signer domain.Address, input ports.CandidateInput) (*ports.Receipt, error) {
	candidate := &domain.Candidate{
		PollID:        input.PollID,
		CandidateName: input.CandidateName,
	}
	data, err := candidate.MarshalAccountData()
	if err != nil {
		return nil, err
	}
	pollAddr, err := s.pollAddress(input.PollID, input.Accounts.Poll)
	if err != nil {
		return nil, err
	}
	candidateAddr, err := s.candidateAddress(input.CandidateName, input.PollID, input.Accounts.Candidate)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, domain.InstructionInitializeCandidate, signer, func(tx ports.LedgerTx, logs *programLogs) error {
		locked, err := lockAccounts(ctx, tx, pollAddr, candidateAddr, signer)
		if err != nil {
			return err
		}
		pollAcct, poll, err := s.decodePoll(locked[pollAddr], pollAddr)
		if err != nil {
			return err
		}
		// The increment commits only if the candidate write below succeeds.
		poll.CandidateAmount, err = domain.CheckedAdd(poll.CandidateAmount, 1)
		if err != nil {
			return err
		}
		if pollAcct.Data, err = poll.MarshalAccountData(); err != nil {
			return err
		}
		if err := tx.Update(ctx, pollAcct); err != nil {
			return err
		}

		if err := s.allocate(ctx, tx, signer, candidateAddr, data); err != nil {
			return err
		}
		logs.msg("Candidate %s initialized", candidate.CandidateName)
		return nil
	})
}

func (s *programService) Vote(ctx context.Context, signer domain.Address, input ports.CandidateInput) (*ports.Receipt, error) {
	pollAddr, err := s.pollAddress(input.PollID, input.Accounts.Poll)
	if err != nil {
		return nil, err
	}
	candidateAddr, err := s.candidateAddress(input.CandidateName, input.PollID, input.Accounts.Candidate)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, domain.InstructionVote, signer, func(tx ports.LedgerTx, logs *programLogs) error {
		locked, err := lockAccounts(ctx, tx, pollAddr, candidateAddr)
		if err != nil {
			return err
		}
		if _, _, err := s.decodePoll(locked[pollAddr], pollAddr); err != nil {
			return err
		}

		acct := locked[candidateAddr]
		candidate, err := domain.DecodeCandidate(acct, s.programID)
		if err != nil {
			return fmt.Errorf("candidate %s: %w", candidateAddr, err)
		}
		candidate.CandidateVotes, err = domain.CheckedAdd(candidate.CandidateVotes, 1)
		if err != nil {
			return err
		}
		if acct.Data, err = candidate.MarshalAccountData(); err != nil {
			return err
		}
		if err := tx.Update(ctx, acct); err != nil {
			return err
		}

		logs.msg("Voted for candidate: %s, which has %d", candidate.CandidateName, candidate.CandidateVotes)
		return nil
	})
}

func (s *programService) DeletePoll(ctx context.Context, signer domain.Address, input ports.DeletePollInput) (*ports.Receipt, error) {
	pollAddr, err := s.pollAddress(input.PollID, input.Accounts.Poll)
	if err != nil {
		return nil, err
	}

	remaining := slices.Clone(input.RemainingAccounts)
	slices.SortFunc(remaining, compareAddresses)
	remaining = slices.Compact(remaining)

	var reset int
	receipt, err := s.run(ctx, domain.InstructionDeletePoll, signer, func(tx ports.LedgerTx, logs *programLogs) error {
		locked, err := lockAccounts(ctx, tx, append([]domain.Address{pollAddr, signer}, remaining...)...)
		if err != nil {
			return err
		}
		pollAcct, poll, err := s.decodePoll(locked[pollAddr], pollAddr)
		if err != nil {
			return err
		}
		if poll.PollID != input.PollID {
			return fmt.Errorf("%w: stored %d, requested %d", domain.ErrPollIDMismatch, poll.PollID, input.PollID)
		}

		reset = 0
		for _, addr := range remaining {
			if addr == pollAddr {
				continue
			}
			acct := locked[addr]
			if !domain.ResetCandidateVotes(acct, s.programID) {
				s.logger.Debug().Str("account", addr.String()).Msg("skipping account not holding a candidate of this program")
				continue
			}
			if err := tx.Update(ctx, acct); err != nil {
				return err
			}
			reset++
		}

		if err := s.refund(ctx, tx, signer, pollAcct.Lamports); err != nil {
			return err
		}
		return tx.Close(ctx, pollAddr)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint64("poll_id", input.PollID).Int("candidates_reset", reset).Msg("poll closed")
	return receipt, nil
}

// run executes fn as one atomic instruction and builds its receipt.
func (s *programService) run(ctx context.Context, name domain.InstructionName, signer domain.Address, fn func(tx ports.LedgerTx, logs *programLogs) error) (*ports.Receipt, error) {
	if signer.IsZero() {
		return nil, domain.ErrMissingSigner
	}

	id := uuid.New()
	logger := s.logger.With().
		Str("tx_id", id.String()).
		Str("instruction", string(name)).
		Str("signer", signer.String()).
		Logger()

	var logs *programLogs
	err := s.ledger.Atomically(ctx, func(tx ports.LedgerTx) error {
		logs = newProgramLogs(s.programID, name)
		return fn(tx, logs)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("instruction rejected")
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logs.success()

	logger.Info().Strs("logs", logs.lines).Msg("instruction committed")
	return &ports.Receipt{
		ID:          id,
		Instruction: name,
		Signer:      signer,
		Logs:        logs.lines,
	}, nil
}

func (s *programService) decodePoll(acct *domain.Account, addr domain.Address) (*domain.Account, *domain.Poll, error) {
	poll, err := domain.DecodePoll(acct, s.programID)
	if err != nil {
		return nil, nil, fmt.Errorf("poll %s: %w", addr, err)
	}
	return acct, poll, nil
}

// lockAccounts loads each address once, in ascending byte order, so that
// instructions touching overlapping accounts take their locks in one order.
// Absent accounts map to nil.
func lockAccounts(ctx context.Context, tx ports.LedgerTx, addrs ...domain.Address) (map[domain.Address]*domain.Account, error) {
	sorted := slices.Clone(addrs)
	slices.SortFunc(sorted, compareAddresses)
	sorted = slices.Compact(sorted)

	locked := make(map[domain.Address]*domain.Account, len(sorted))
	for _, addr := range sorted {
		acct, err := tx.Load(ctx, addr)
		if err != nil {
			return nil, err
		}
		locked[addr] = acct
	}
	return locked, nil
}

func compareAddresses(a, b domain.Address) int {
	return bytes.Compare(a[:], b[:])
}

// allocate creates a program-owned account at addr, funded by the signer
// with the rent-exempt minimum for data.
func (s *programService) allocate(ctx context.Context, tx ports.LedgerTx, payer, addr domain.Address, data []byte) error {
	existing, err := tx.Load(ctx, addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", domain.ErrAddressCollision, addr)
	}

	rent := domain.RentExemptMinimum(len(data))
	payerAcct, err := tx.Load(ctx, payer)
	if err != nil {
		return err
	}
	if payerAcct == nil {
		return fmt.Errorf("%w: payer %s has no account", domain.ErrInsufficientFunds, payer)
	}
	if err := payerAcct.Debit(rent); err != nil {
		return fmt.Errorf("payer %s: %w", payer, err)
	}
	if err := tx.Update(ctx, payerAcct); err != nil {
		return err
	}

	return tx.Create(ctx, &domain.Account{
		Address:  addr,
		Owner:    s.programID,
		Lamports: rent,
		Data:     data,
	})
}

func (s *programService) refund(ctx context.Context, tx ports.LedgerTx, to domain.Address, lamports uint64) error {
	acct, err := tx.Load(ctx, to)
	if err != nil {
		return err
	}
	if acct == nil {
		return tx.Create(ctx, domain.NewSystemAccount(to, lamports))
	}
	if err := acct.Credit(lamports); err != nil {
		return err
	}
	return tx.Update(ctx, acct)
}

func (s *programService) pollAddress(pollID uint64, pinned *domain.Address) (domain.Address, error) {
	derived, err := domain.PollAddress(s.programID, pollID)
	if err != nil {
		return domain.Address{}, err
	}
	return checkPinned("poll", derived, pinned)
}

func (s *programService) candidateAddress(name string, pollID uint64, pinned *domain.Address) (domain.Address, error) {
	derived, err := domain.CandidateAddress(s.programID, name, pollID)
	if err != nil {
		return domain.Address{}, err
	}
	return checkPinned("candidate", derived, pinned)
}

func checkPinned(role string, derived domain.DerivedAddress, pinned *domain.Address) (domain.Address, error) {
	if pinned != nil && *pinned != derived.Address {
		return domain.Address{}, fmt.Errorf("%w: %s account %s, expected %s", domain.ErrAddressMismatch, role, *pinned, derived.Address)
	}
	return derived.Address, nil
}
