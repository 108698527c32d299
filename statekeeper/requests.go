package statekeeper

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/go-statekeeper/common/types"
)

// ErrInvalidRequest is returned by Submit for requests the loop can't serve.
var ErrInvalidRequest = errors.New("invalid request")

// Request is a message for the control loop. It is one of ApplyBlock,
// GetPubKey, GetAccount or GetRoot.
type Request interface {
	kind() string
	validate() error
}

// BlockSource identifies the producer of a block. It is one of MemPool,
// EthWatch or Storage.
type BlockSource interface {
	String() string
	outcome() chan<- Outcome
}

// MemPool is the source of transfer blocks.
type MemPool struct {
	// Reply receives the outcome of a transfer block. Blocks of other kinds
	// are not answered. The loop never waits for the receiver, so Reply must be
	// buffered unless the caller is already receiving.
	Reply chan<- Outcome
}

func (MemPool) String() string { return "mempool" }

func (m MemPool) outcome() chan<- Outcome { return m.Reply }

// EthWatch is the source of deposit and exit blocks observed on chain.
type EthWatch struct{}

func (EthWatch) String() string { return "ethwatch" }

func (EthWatch) outcome() chan<- Outcome { return nil }

// Storage is the source of blocks replayed from the block store.
type Storage struct{}

func (Storage) String() string { return "storage" }

func (Storage) outcome() chan<- Outcome { return nil }

// Outcome reports to the mempool what happened to a submitted block.
type Outcome struct {
	Number types.BlockNumber
	Root   types.Hash32
	// Committed is true if every transaction of the block was honored.
	Committed bool
	// Accepted holds the committed transactions.
	Accepted []types.TransferTx
	// Reverted holds valid transactions that were undone together with the
	// rejected ones. They may be submitted again.
	Reverted []types.TransferTx
	Rejected []types.Rejection
	// Err is set if the block could not be applied at all.
	Err error
}

// ApplyBlock applies the block and publishes it downstream.
type ApplyBlock struct {
	Block  *types.Block
	Source BlockSource
}

func (ApplyBlock) kind() string { return "apply" }

// outcome is the reply channel of the request, nil for deposit and exit blocks.
func (r ApplyBlock) outcome() chan<- Outcome {
	if r.Block.Kind != types.TransferBlock {
		return nil
	}
	return r.Source.outcome()
}

func (r ApplyBlock) validate() error {
	if r.Block == nil {
		return fmt.Errorf("%w: missing block", ErrInvalidRequest)
	}
	if r.Source == nil {
		return fmt.Errorf("%w: missing source", ErrInvalidRequest)
	}
	switch r.Block.Kind {
	case types.DepositBlock, types.TransferBlock, types.ExitBlock:
	default:
		return fmt.Errorf("%w: block kind %s", ErrInvalidRequest, r.Block.Kind)
	}
	return nil
}

// PubKeyResult is the reply to GetPubKey.
type PubKeyResult struct {
	PublicKey types.PublicKey
	Found     bool
}

// GetPubKey looks up the public key of an account.
type GetPubKey struct {
	Index types.AccountIndex
	// Reply must be buffered, a reply that can't be delivered immediately is dropped.
	Reply chan<- PubKeyResult
}

func (GetPubKey) kind() string { return "pubkey" }

func (r GetPubKey) validate() error {
	if r.Reply == nil {
		return fmt.Errorf("%w: missing reply channel", ErrInvalidRequest)
	}
	return nil
}

// AccountResult is the reply to GetAccount.
type AccountResult struct {
	Account *types.Account
	Found   bool
	// Next is the number of the next block, i.e. the state was read after
	// every block below it was applied.
	Next types.BlockNumber
}

// GetAccount looks up a copy of an account.
type GetAccount struct {
	Index types.AccountIndex
	// Reply must be buffered, as for GetPubKey.
	Reply chan<- AccountResult
}

func (GetAccount) kind() string { return "account" }

func (r GetAccount) validate() error {
	if r.Reply == nil {
		return fmt.Errorf("%w: missing reply channel", ErrInvalidRequest)
	}
	return nil
}

// RootResult is the reply to GetRoot.
type RootResult struct {
	Root types.Hash32
	Next types.BlockNumber
	Err  error
}

// GetRoot reads the current root hash.
type GetRoot struct {
	// Reply must be buffered, as for GetPubKey.
	Reply chan<- RootResult
}

func (GetRoot) kind() string { return "root" }

func (r GetRoot) validate() error {
	if r.Reply == nil {
		return fmt.Errorf("%w: missing reply channel", ErrInvalidRequest)
	}
	return nil
}
