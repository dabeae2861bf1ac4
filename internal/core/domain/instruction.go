package domain

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

type InstructionName string

const (
	InstructionInitializePoll      InstructionName = "initialize_poll"
	InstructionInitializeCandidate InstructionName = "initialize_candidate"
	InstructionVote                InstructionName = "vote"
	InstructionDeletePoll          InstructionName = "delete_poll"
)

var instructionNames = []InstructionName{
	InstructionInitializePoll,
	InstructionInitializeCandidate,
	InstructionVote,
	InstructionDeletePoll,
}

// Discriminator is the 8-byte selector that prefixes the instruction data.
func (n InstructionName) Discriminator() [DiscriminatorLength]byte {
	return hashPrefix("global:" + string(n))
}

// AccountMetas holds the record addresses a caller may pin explicitly. A
// nil entry means "use the derived address".
type AccountMetas struct {
	Poll      *Address `json:"poll,omitempty"`
	Candidate *Address `json:"candidate,omitempty"`
}

// Instruction is a decoded call to one entry point. Only the fields of the
// named instruction are meaningful.
type Instruction struct {
	Name          InstructionName
	PollID        uint64
	Description   string
	PollStart     uint64
	PollEnd       uint64
	CandidateName string

	Accounts          AccountMetas
	RemainingAccounts []Address
}

// EncodeData borsh-serialises the instruction arguments in positional
// order behind the instruction discriminator.
func (ix Instruction) EncodeData() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	tag := ix.Name.Discriminator()

	var err error
	switch ix.Name {
	case InstructionInitializePoll:
		err = errors.Join(
			enc.WriteBytes(tag[:], false),
			enc.WriteUint64(ix.PollID, bin.LE),
			enc.WriteString(ix.Description),
			enc.WriteUint64(ix.PollStart, bin.LE),
			enc.WriteUint64(ix.PollEnd, bin.LE),
		)
	case InstructionInitializeCandidate, InstructionVote:
		err = errors.Join(
			enc.WriteBytes(tag[:], false),
			enc.WriteString(ix.CandidateName),
			enc.WriteUint64(ix.PollID, bin.LE),
		)
	case InstructionDeletePoll:
		err = errors.Join(
			enc.WriteBytes(tag[:], false),
			enc.WriteUint64(ix.PollID, bin.LE),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, ix.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ix.Name, err)
	}
	return buf.Bytes(), nil
}

// DecodeInstruction parses instruction data produced by EncodeData.
// Trailing bytes are rejected.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) < DiscriminatorLength {
		return Instruction{}, fmt.Errorf("%w: instruction data shorter than discriminator", ErrValidation)
	}
	var name InstructionName
	for _, n := range instructionNames {
		tag := n.Discriminator()
		if bytes.Equal(data[:DiscriminatorLength], tag[:]) {
			name = n
			break
		}
	}
	if name == "" {
		return Instruction{}, fmt.Errorf("%w: discriminator %x", ErrUnknownInstruction, data[:DiscriminatorLength])
	}

	r := newArgReader(data[DiscriminatorLength:])
	ix := Instruction{Name: name}
	switch name {
	case InstructionInitializePoll:
		ix.PollID = r.u64()
		ix.Description = r.str(-1)
		ix.PollStart = r.u64()
		ix.PollEnd = r.u64()
	case InstructionInitializeCandidate, InstructionVote:
		ix.CandidateName = r.str(-1)
		ix.PollID = r.u64()
	case InstructionDeletePoll:
		ix.PollID = r.u64()
	}
	if r.err != nil {
		return Instruction{}, fmt.Errorf("%w: %s arguments: %v", ErrValidation, name, r.err)
	}
	if n := r.remaining(); n != 0 {
		return Instruction{}, fmt.Errorf("%w: %s has %d trailing bytes", ErrValidation, name, n)
	}
	return ix, nil
}
