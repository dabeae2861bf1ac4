package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	AddressLength = 32
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
	maxBump   = 255
	minBump   = 1
)

// Address is a 32-byte account key, shown in base58.
type Address [AddressLength]byte

// SystemProgramID owns wallet accounts. It is the zero address.
var SystemProgramID = Address{}

func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: invalid base58 address %q", ErrValidation, s)
	}
	return AddressFromBytes(raw)
}

func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func AddressFromBytes(raw []byte) (Address, error) {
	var addr Address
	if len(raw) != AddressLength {
		return addr, fmt.Errorf("%w: address must be %d bytes, got %d", ErrValidation, AddressLength, len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsOnCurve reports whether the address is a valid ed25519 public key.
// Derived addresses are never on the curve, so no private key exists for them.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress hashes the seeds together with the program id. It
// fails when the result lands on the ed25519 curve.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, fmt.Errorf("%w: at most %d seeds allowed", ErrValidation, MaxSeeds)
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Address{}, fmt.Errorf("%w: seed exceeds %d bytes", ErrValidation, MaxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var addr Address
	copy(addr[:], h.Sum(nil))
	if IsOnCurve(addr[:]) {
		return Address{}, errOnCurve
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 down to 1 and returns the
// first off-curve address together with the bump seed that produced it.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, fmt.Errorf("%w: at most %d seeds allowed with a bump", ErrValidation, MaxSeeds-1)
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	return searchBump(func(bump uint8) (Address, error) {
		withBump[len(seeds)] = []byte{bump}
		return CreateProgramAddress(withBump, programID)
	})
}

func searchBump(create func(bump uint8) (Address, error)) (Address, uint8, error) {
	for bump := maxBump; bump >= minBump; bump-- {
		addr, err := create(uint8(bump))
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, errOnCurve) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, fmt.Errorf("unable to find a viable program address bump seed")
}

// DerivedAddress is a program address plus the bump used to reach it.
type DerivedAddress struct {
	Address Address `json:"address"`
	Bump    uint8   `json:"bump"`
}

func PollSeeds(pollID uint64) [][]byte {
	return [][]byte{u64Seed(pollID)}
}

func CandidateSeeds(candidateName string, pollID uint64) [][]byte {
	return [][]byte{[]byte(candidateName), u64Seed(pollID)}
}

func PollAddress(programID Address, pollID uint64) (DerivedAddress, error) {
	addr, bump, err := FindProgramAddress(PollSeeds(pollID), programID)
	if err != nil {
		return DerivedAddress{}, err
	}
	return DerivedAddress{Address: addr, Bump: bump}, nil
}

func CandidateAddress(programID Address, candidateName string, pollID uint64) (DerivedAddress, error) {
	if len(candidateName) > MaxCandidateNameLength {
		return DerivedAddress{}, fmt.Errorf("%w: candidate name exceeds %d bytes", ErrValidation, MaxCandidateNameLength)
	}
	addr, bump, err := FindProgramAddress(CandidateSeeds(candidateName, pollID), programID)
	if err != nil {
		return DerivedAddress{}, err
	}
	return DerivedAddress{Address: addr, Bump: bump}, nil
}

func u64Seed(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
