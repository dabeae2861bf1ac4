package domain

import "fmt"

const (
	MaxDescriptionLength = 200

	// tag, then poll_id, poll_start, poll_end and candidate_amount as u64
	descriptionOffset = DiscriminatorLength + 4*8
)

// PollSpace is the allocated size of a poll account, type tag included.
const PollSpace = descriptionOffset + 4 + MaxDescriptionLength

var PollDiscriminator = accountDiscriminator("Poll")

// Poll is one voting contest. PollStart and PollEnd are recorded but never enforced.
type Poll struct {
	PollID          uint64 `json:"poll_id"`
	PollStart       uint64 `json:"poll_start"`
	PollEnd         uint64 `json:"poll_end"`
	CandidateAmount uint64 `json:"candidate_amount"`
	Description     string `json:"description"`
}

func (p *Poll) Validate() error {
	if len(p.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d bytes", ErrValidation, MaxDescriptionLength)
	}
	return nil
}

// MarshalAccountData lays the poll out in a zero-padded buffer of PollSpace bytes.
func (p *Poll) MarshalAccountData() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := newRecordWriter(PollDiscriminator)
	w.u64(p.PollID)
	w.u64(p.PollStart)
	w.u64(p.PollEnd)
	w.u64(p.CandidateAmount)
	w.str(p.Description)
	return w.padded(PollSpace)
}

// DecodePoll reads a poll out of an account after checking its owner and type tag.
func DecodePoll(acct *Account, program Address) (*Poll, error) {
	if err := checkRecordAccount(acct, program, PollDiscriminator, descriptionOffset+4); err != nil {
		return nil, err
	}
	r := newArgReader(acct.Data[DiscriminatorLength:])
	poll := &Poll{
		PollID:          r.u64(),
		PollStart:       r.u64(),
		PollEnd:         r.u64(),
		CandidateAmount: r.u64(),
		Description:     r.str(MaxDescriptionLength),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: poll %s: %v", ErrAccountDidNotDeserialize, acct.Address, r.err)
	}
	return poll, nil
}
