package domain

import "errors"

var (
	ErrAddressCollision             = errors.New("account already in use")
	ErrNotFound                     = errors.New("account not found")
	ErrValidation                   = errors.New("validation failed")
	ErrPollIDMismatch               = errors.New("poll id mismatch")
	ErrMissingSigner                = errors.New("missing required signature")
	ErrAddressMismatch              = errors.New("account address does not match derived address")
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator did not match")
	ErrAccountOwnedByWrongProgram   = errors.New("account owned by a different program")
	ErrAccountDidNotDeserialize     = errors.New("failed to deserialize the account")
	ErrInsufficientFunds            = errors.New("insufficient lamports")
	ErrArithmeticOverflow           = errors.New("arithmetic overflow")
	ErrUnknownInstruction           = errors.New("unknown instruction")
	ErrLedgerConflict               = errors.New("ledger transaction aborted by a concurrent writer")

	errOnCurve = errors.New("address lies on the ed25519 curve")
)
