package domain_test

import (
	"encoding/binary"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

var programID = domain.MustParseAddress("Ak88q7XogJ5Hq2uUG4oPvA95JzcE3t35BMDujfC4Rd5c")

func TestAddressBase58(t *testing.T) {
	addr, err := domain.ParseAddress(programID.String())
	require.NoError(t, err)
	assert.Equal(t, programID, addr)

	assert.Equal(t, "11111111111111111111111111111111", domain.SystemProgramID.String())

	_, err = domain.ParseAddress("not-base58-0OIl")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.ParseAddress("2g")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPollAddressIsDeterministic(t *testing.T) {
	first, err := domain.PollAddress(programID, 1)
	require.NoError(t, err)
	again, err := domain.PollAddress(programID, 1)
	require.NoError(t, err)
	other, err := domain.PollAddress(programID, 2)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first.Address, other.Address)
	assert.False(t, domain.IsOnCurve(first.Address.Bytes()), "derived addresses must not have a private key")

	// the bump reproduces the address directly
	seeds := append(domain.PollSeeds(1), []byte{first.Bump})
	direct, err := domain.CreateProgramAddress(seeds, programID)
	require.NoError(t, err)
	assert.Equal(t, first.Address, direct)
}

func TestPollAddressDependsOnProgram(t *testing.T) {
	a, err := domain.PollAddress(programID, 1)
	require.NoError(t, err)
	b, err := domain.PollAddress(domain.Address{7}, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.Address, b.Address)
}

func TestCandidateAddressDependsOnNameAndPoll(t *testing.T) {
	red1, err := domain.CandidateAddress(programID, "Red", 1)
	require.NoError(t, err)
	blue1, err := domain.CandidateAddress(programID, "Blue", 1)
	require.NoError(t, err)
	red2, err := domain.CandidateAddress(programID, "Red", 2)
	require.NoError(t, err)
	poll1, err := domain.PollAddress(programID, 1)
	require.NoError(t, err)

	assert.NotEqual(t, red1.Address, blue1.Address)
	assert.NotEqual(t, red1.Address, red2.Address)
	assert.NotEqual(t, red1.Address, poll1.Address)
}

func TestCandidateAddressRejectsLongName(t *testing.T) {
	_, err := domain.CandidateAddress(programID, strings.Repeat("x", 32), 1)
	require.NoError(t, err)

	_, err = domain.CandidateAddress(programID, strings.Repeat("x", 33), 1)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateProgramAddressLimits(t *testing.T) {
	_, err := domain.CreateProgramAddress([][]byte{make([]byte, 33)}, programID)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = domain.FindProgramAddress(make([][]byte, domain.MaxSeeds), programID)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestRentExemptMinimum(t *testing.T) {
	assert.Equal(t, uint64(890_880), domain.RentExemptMinimum(0))
	assert.Equal(t, uint64((128+244)*3480*2), domain.RentExemptMinimum(domain.PollSpace))
}

func TestPollLayout(t *testing.T) {
	poll := domain.Poll{PollID: 1, Description: "Favorite color", PollStart: 0, PollEnd: 100, CandidateAmount: 2}
	data, err := poll.MarshalAccountData()
	require.NoError(t, err)

	require.Len(t, data, 244)
	assert.Equal(t, domain.PollDiscriminator[:], data[:8])
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[24:32]))
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(data[32:40]))
	assert.Equal(t, uint32(len("Favorite color")), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, "Favorite color", string(data[44:44+len("Favorite color")]))

	decoded, err := domain.DecodePoll(&domain.Account{Owner: programID, Data: data}, programID)
	require.NoError(t, err)
	assert.Equal(t, poll, *decoded)
}

func TestPollRejectsLongDescription(t *testing.T) {
	poll := domain.Poll{Description: strings.Repeat("d", 201)}
	_, err := poll.MarshalAccountData()
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCandidateLayout(t *testing.T) {
	candidate := domain.Candidate{PollID: 1, CandidateVotes: 5, CandidateName: "Red"}
	data, err := candidate.MarshalAccountData()
	require.NoError(t, err)

	require.Len(t, data, 60)
	assert.Equal(t, domain.CandidateDiscriminator[:], data[:8])
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, "Red", string(data[28:31]))
}

func TestDecodeChecksOwnerAndType(t *testing.T) {
	pollData, err := (&domain.Poll{PollID: 1}).MarshalAccountData()
	require.NoError(t, err)

	_, err = domain.DecodePoll(nil, programID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = domain.DecodePoll(&domain.Account{Owner: domain.Address{9}, Data: pollData}, programID)
	require.ErrorIs(t, err, domain.ErrAccountOwnedByWrongProgram)

	_, err = domain.DecodeCandidate(&domain.Account{Owner: programID, Data: pollData}, programID)
	require.ErrorIs(t, err, domain.ErrAccountDiscriminatorMismatch)

	corrupt := append([]byte(nil), pollData...)
	binary.LittleEndian.PutUint32(corrupt[40:44], 500)
	_, err = domain.DecodePoll(&domain.Account{Owner: programID, Data: corrupt}, programID)
	require.ErrorIs(t, err, domain.ErrAccountDidNotDeserialize)
}

func TestResetCandidateVotesTouchesOnlyCounter(t *testing.T) {
	data, err := (&domain.Candidate{PollID: 3, CandidateVotes: 42, CandidateName: "Blue"}).MarshalAccountData()
	require.NoError(t, err)
	acct := &domain.Account{Owner: programID, Data: data}
	before := append([]byte(nil), data...)

	require.True(t, domain.ResetCandidateVotes(acct, programID))

	assert.Equal(t, before[:16], acct.Data[:16])
	assert.Equal(t, make([]byte, 8), acct.Data[16:24])
	assert.Equal(t, before[24:], acct.Data[24:])

	decoded, err := domain.DecodeCandidate(acct, programID)
	require.NoError(t, err)
	assert.Equal(t, domain.Candidate{PollID: 3, CandidateName: "Blue"}, *decoded)
}

func TestResetCandidateVotesSkipsOtherAccounts(t *testing.T) {
	candidateData, err := (&domain.Candidate{PollID: 1, CandidateVotes: 9, CandidateName: "Red"}).MarshalAccountData()
	require.NoError(t, err)
	pollData, err := (&domain.Poll{PollID: 1, PollStart: 77}).MarshalAccountData()
	require.NoError(t, err)

	foreign := &domain.Account{Owner: domain.Address{5}, Data: append([]byte(nil), candidateData...)}
	assert.False(t, domain.ResetCandidateVotes(foreign, programID))
	assert.Equal(t, candidateData, foreign.Data)

	poll := &domain.Account{Owner: programID, Data: append([]byte(nil), pollData...)}
	assert.False(t, domain.ResetCandidateVotes(poll, programID))
	assert.Equal(t, pollData, poll.Data)

	assert.False(t, domain.ResetCandidateVotes(nil, programID))
}

func TestInstructionData(t *testing.T) {
	ix := domain.Instruction{
		Name:        domain.InstructionInitializePoll,
		PollID:      1,
		Description: "Favorite color",
		PollStart:   0,
		PollEnd:     100,
	}
	data, err := ix.EncodeData()
	require.NoError(t, err)

	tag := domain.InstructionInitializePoll.Discriminator()
	assert.Equal(t, tag[:], data[:8])
	assert.Len(t, data, 8+8+4+len("Favorite color")+8+8)

	decoded, err := domain.DecodeInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, ix, decoded)

	vote, err := domain.DecodeInstruction(mustEncode(t, domain.Instruction{Name: domain.InstructionVote, CandidateName: "Red", PollID: 1}))
	require.NoError(t, err)
	assert.Equal(t, "Red", vote.CandidateName)
	assert.Equal(t, uint64(1), vote.PollID)
}

func TestDecodeInstructionRejectsMalformedData(t *testing.T) {
	_, err := domain.DecodeInstruction([]byte{1, 2, 3})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.DecodeInstruction(make([]byte, 16))
	require.ErrorIs(t, err, domain.ErrUnknownInstruction)

	data := mustEncode(t, domain.Instruction{Name: domain.InstructionDeletePoll, PollID: 1})
	_, err = domain.DecodeInstruction(data[:12])
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.DecodeInstruction(append(data, 0))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.Instruction{Name: "close_everything"}.EncodeData()
	require.ErrorIs(t, err, domain.ErrUnknownInstruction)
}

func TestInstructionArgumentsAreBorsh(t *testing.T) {
	data := mustEncode(t, domain.Instruction{
		Name:        domain.InstructionInitializePoll,
		PollID:      9,
		Description: "Best pet",
		PollStart:   10,
		PollEnd:     20,
	})
	args, err := bin.MarshalBorsh(&struct {
		PollID      uint64
		Description string
		PollStart   uint64
		PollEnd     uint64
	}{9, "Best pet", 10, 20})
	require.NoError(t, err)
	assert.Equal(t, args, data[8:])

	data = mustEncode(t, domain.Instruction{Name: domain.InstructionVote, CandidateName: "Red", PollID: 3})
	args, err = bin.MarshalBorsh(&struct {
		CandidateName string
		PollID        uint64
	}{"Red", 3})
	require.NoError(t, err)
	assert.Equal(t, args, data[8:])
}

func TestRecordBodiesAreBorsh(t *testing.T) {
	data, err := (&domain.Candidate{PollID: 4, CandidateVotes: 12, CandidateName: "Blue"}).MarshalAccountData()
	require.NoError(t, err)
	body, err := bin.MarshalBorsh(&struct {
		PollID         uint64
		CandidateVotes uint64
		CandidateName  string
	}{4, 12, "Blue"})
	require.NoError(t, err)
	assert.Equal(t, body, data[8:8+len(body)])
	assert.Equal(t, make([]byte, domain.CandidateSpace-8-len(body)), data[8+len(body):])

	var decoded struct {
		PollID         uint64
		CandidateVotes uint64
		CandidateName  string
	}
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&decoded))
	assert.Equal(t, "Blue", decoded.CandidateName)
	assert.Equal(t, uint64(12), decoded.CandidateVotes)
}

func TestInstructionDiscriminatorsAreDistinct(t *testing.T) {
	seen := map[[8]byte]domain.InstructionName{}
	for _, name := range []domain.InstructionName{
		domain.InstructionInitializePoll,
		domain.InstructionInitializeCandidate,
		domain.InstructionVote,
		domain.InstructionDeletePoll,
	} {
		tag := name.Discriminator()
		_, dup := seen[tag]
		require.False(t, dup, "duplicate discriminator for %s", name)
		seen[tag] = name
	}
	assert.NotEqual(t, domain.PollDiscriminator, domain.CandidateDiscriminator)
}

func mustEncode(t *testing.T, ix domain.Instruction) []byte {
	t.Helper()
	data, err := ix.EncodeData()
	require.NoError(t, err)
	return data
}
