package ledger

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/go-statekeeper/accounttree"
)

var (
	// ErrInternal is wrapped by failures that leave the ledger unable to apply
	// the block. Such a block is not assigned a number.
	ErrInternal = errors.New("internal")
	// ErrKindMismatch is returned when a block is passed to the applier of another kind.
	ErrKindMismatch = errors.New("block kind mismatch")
	// ErrBlocksExhausted is returned once a block numbered LastBlock was applied.
	ErrBlocksExhausted = fmt.Errorf("%w: block counter exhausted", ErrInternal)

	// ErrTxRejected is wrapped by every transaction-level rejection.
	ErrTxRejected = errors.New("tx rejected")
	// ErrUnknownAccount is returned when a transaction refers to a missing account.
	ErrUnknownAccount = fmt.Errorf("%w: unknown account", ErrTxRejected)
	// ErrInvalidAmount is returned for missing or negative amounts.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrTxRejected)
	// ErrInsufficientBalance is returned when the sender can't cover the amount.
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", ErrTxRejected)
	// ErrNonceMismatch is returned when the nonce differs from the sender nonce.
	ErrNonceMismatch = fmt.Errorf("%w: nonce mismatch", ErrTxRejected)
	// ErrNonceExhausted is returned when the sender nonce can't be incremented.
	ErrNonceExhausted = fmt.Errorf("%w: nonce exhausted", ErrTxRejected)
	// ErrExpired is returned when the block number is past the validity bound.
	ErrExpired = fmt.Errorf("%w: validity bound expired", ErrTxRejected)
	// ErrBadSignature is returned when the signature doesn't match the sender key.
	ErrBadSignature = fmt.Errorf("%w: bad signature", ErrTxRejected)
)

// IsRejection returns true if err drops a single transaction rather than failing the block.
func IsRejection(err error) bool {
	return errors.Is(err, ErrTxRejected) || errors.Is(err, accounttree.ErrRejected)
}
