package domain

import "fmt"

const (
	MaxCandidateNameLength = 32

	// candidate_votes sits at [16,24)
	candidateVotesOffset = 16
	candidateNameOffset  = candidateVotesOffset + 8
)

// CandidateSpace is the allocated size of a candidate account, type tag included.
const CandidateSpace = candidateNameOffset + 4 + MaxCandidateNameLength

var CandidateDiscriminator = accountDiscriminator("Candidate")

// Candidate is keyed by (CandidateName, PollID). PollID is a plain copy of
// the owning poll's id, not a reference.
type Candidate struct {
	PollID         uint64 `json:"poll_id"`
	CandidateVotes uint64 `json:"candidate_votes"`
	CandidateName  string `json:"candidate_name"`
}

func ValidateCandidateName(name string) error {
	if len(name) > MaxCandidateNameLength {
		return fmt.Errorf("%w: candidate name exceeds %d bytes", ErrValidation, MaxCandidateNameLength)
	}
	return nil
}

func (c *Candidate) MarshalAccountData() ([]byte, error) {
	if err := ValidateCandidateName(c.CandidateName); err != nil {
		return nil, err
	}
	w := newRecordWriter(CandidateDiscriminator)
	w.u64(c.PollID)
	w.u64(c.CandidateVotes)
	w.str(c.CandidateName)
	return w.padded(CandidateSpace)
}

func DecodeCandidate(acct *Account, program Address) (*Candidate, error) {
	if err := checkRecordAccount(acct, program, CandidateDiscriminator, candidateNameOffset+4); err != nil {
		return nil, err
	}
	r := newArgReader(acct.Data[DiscriminatorLength:])
	candidate := &Candidate{
		PollID:         r.u64(),
		CandidateVotes: r.u64(),
		CandidateName:  r.str(MaxCandidateNameLength),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: candidate %s: %v", ErrAccountDidNotDeserialize, acct.Address, r.err)
	}
	return candidate, nil
}

// ResetCandidateVotes zeroes the vote counter of a candidate account in
// place. Only bytes [16,24) change. It reports false, leaving the account
// untouched, when the account is not a candidate owned by program.
func ResetCandidateVotes(acct *Account, program Address) bool {
	if !acct.OwnedBy(program) || !acct.HasDiscriminator(CandidateDiscriminator) {
		return false
	}
	if len(acct.Data) < candidateVotesOffset+8 {
		return false
	}
	clear(acct.Data[candidateVotesOffset : candidateVotesOffset+8])
	return true
}
