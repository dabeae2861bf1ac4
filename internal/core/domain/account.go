package domain

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

const (
	DiscriminatorLength = 8

	// Rent parameters of the default cluster configuration.
	accountStorageOverhead  = 128
	lamportsPerByteYear     = 3480
	exemptionThresholdYears = 2
)

// Account is one addressable unit of ledger state.
type Account struct {
	Address  Address `json:"address"`
	Owner    Address `json:"owner"`
	Lamports uint64  `json:"lamports"`
	Data     []byte  `json:"data"`
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

func (a *Account) OwnedBy(program Address) bool {
	return a != nil && a.Owner == program
}

// HasDiscriminator reports whether the account data starts with the given type tag.
func (a *Account) HasDiscriminator(tag [DiscriminatorLength]byte) bool {
	return a != nil && len(a.Data) >= DiscriminatorLength && bytes.Equal(a.Data[:DiscriminatorLength], tag[:])
}

// Credit adds lamports with an overflow check.
func (a *Account) Credit(lamports uint64) error {
	sum, err := CheckedAdd(a.Lamports, lamports)
	if err != nil {
		return err
	}
	a.Lamports = sum
	return nil
}

// Debit removes lamports, failing when the balance cannot cover them.
func (a *Account) Debit(lamports uint64) error {
	if a.Lamports < lamports {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, lamports, a.Lamports)
	}
	a.Lamports -= lamports
	return nil
}

// NewSystemAccount returns a wallet account owned by the system program.
func NewSystemAccount(addr Address, lamports uint64) *Account {
	return &Account{Address: addr, Owner: SystemProgramID, Lamports: lamports}
}

// RentExemptMinimum is the balance an account of the given data size must
// hold to be exempt from rent.
func RentExemptMinimum(space int) uint64 {
	return uint64(accountStorageOverhead+space) * lamportsPerByteYear * exemptionThresholdYears
}

func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func accountDiscriminator(name string) [DiscriminatorLength]byte {
	return hashPrefix("account:" + name)
}

func hashPrefix(preimage string) [DiscriminatorLength]byte {
	var tag [DiscriminatorLength]byte
	sum := sha256.Sum256([]byte(preimage))
	copy(tag[:], sum[:DiscriminatorLength])
	return tag
}

// checkRecordAccount verifies owner and type tag before a record is decoded.
func checkRecordAccount(acct *Account, program Address, tag [DiscriminatorLength]byte, minLen int) error {
	if acct == nil {
		return ErrNotFound
	}
	if !acct.OwnedBy(program) {
		return fmt.Errorf("%w: %s is owned by %s", ErrAccountOwnedByWrongProgram, acct.Address, acct.Owner)
	}
	if !acct.HasDiscriminator(tag) {
		return fmt.Errorf("%w: %s", ErrAccountDiscriminatorMismatch, acct.Address)
	}
	if len(acct.Data) < minLen {
		return fmt.Errorf("%w: %s holds %d bytes", ErrAccountDidNotDeserialize, acct.Address, len(acct.Data))
	}
	return nil
}
