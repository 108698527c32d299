// Package ledger holds the authoritative account state of the chain and applies
// deposit, transfer and exit blocks to it.
//
// A block is applied atomically: if any of its transactions is rejected every
// account touched by the block is restored to its pre-block value. The block is
// still assigned the next block number and a root hash, which in that case is
// the root before the block.
package ledger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-statekeeper/accounttree"
	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/signing"
)

// Tree is the Merkle account store. Insert must wrap accounttree.ErrRejected for
// updates it refuses for ledger-level reasons; any other error is treated as a
// structural failure.
type Tree interface {
	Get(types.AccountIndex) (*types.Account, bool)
	Insert(types.AccountIndex, *types.Account) error
	Remove(types.AccountIndex)
	RootHash() (types.Hash32, error)
	Iterate(func(types.AccountIndex, *types.Account) bool)
}

// Verifier authenticates transfers against the sender public key.
type Verifier interface {
	VerifyTransfer(types.PublicKey, *types.TransferTx) bool
}

// Opt for configuring State.
type Opt func(*State)

// WithLogger defines logger for State.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *State) {
		s.logger = logger
	}
}

// WithTree replaces the default in-memory account tree.
func WithTree(tree Tree) Opt {
	return func(s *State) {
		s.tree = tree
	}
}

// WithVerifier defines how transfer signatures are checked.
func WithVerifier(verifier Verifier) Opt {
	return func(s *State) {
		s.verifier = verifier
	}
}

// WithNextBlock sets the number assigned to the next applied block.
func WithNextBlock(number types.BlockNumber) Opt {
	return func(s *State) {
		s.next = number
	}
}

// State is the account tree together with the block counter.
// It is not safe for concurrent use: it is owned by a single control loop.
type State struct {
	logger   *zap.Logger
	tree     Tree
	verifier Verifier
	next     types.BlockNumber
}

// New creates a ledger with an empty account tree.
func New(opts ...Opt) *State {
	s := &State{
		logger:   zap.NewNop(),
		next:     types.FirstBlock,
		verifier: signing.NewEdVerifier(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tree == nil {
		s.tree = accounttree.New()
	}
	blockNumber.Set(float64(s.next))
	return s
}

// ApplyGenesis seeds the tree with the given accounts.
func (s *State) ApplyGenesis(accounts []types.GenesisAccount) error {
	for i := range accounts {
		ga := &accounts[i]
		if _, exists := s.tree.Get(ga.Index); exists {
			return fmt.Errorf("genesis account %d is defined twice", ga.Index)
		}
		acc := types.NewAccount(ga.PublicKey)
		if ga.Balance != nil {
			acc.Balance.Set(ga.Balance)
		}
		if err := s.tree.Insert(ga.Index, acc); err != nil {
			return fmt.Errorf("insert genesis account %d: %w", ga.Index, err)
		}
		s.logger.Debug("genesis account", zap.Uint32("index", ga.Index.Uint32()), zap.Object("account", acc))
	}
	root, err := s.tree.RootHash()
	if err != nil {
		return fmt.Errorf("%w: genesis root: %w", ErrInternal, err)
	}
	s.logger.Info("applied genesis",
		zap.Int("accounts", len(accounts)),
		zap.Stringer("root", root),
	)
	return nil
}

// BlockNumber returns the number that will be assigned to the next block.
func (s *State) BlockNumber() types.BlockNumber {
	return s.next
}

// RootHash returns the current root of the account tree.
func (s *State) RootHash() (types.Hash32, error) {
	root, err := s.tree.RootHash()
	if err != nil {
		return types.Hash32{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return root, nil
}

// Account returns a copy of the account at index.
func (s *State) Account(index types.AccountIndex) (*types.Account, bool) {
	return s.tree.Get(index)
}

// PubKey returns the public key of the account at index.
func (s *State) PubKey(index types.AccountIndex) (types.PublicKey, bool) {
	acc, ok := s.tree.Get(index)
	if !ok {
		return types.PublicKey{}, false
	}
	return acc.PublicKey, true
}

// Iterate calls fn for every account in index order until fn returns false.
func (s *State) Iterate(fn func(types.AccountIndex, *types.Account) bool) {
	s.tree.Iterate(fn)
}

// Apply dispatches the block to the applier of its kind.
func (s *State) Apply(block *types.Block) error {
	switch block.Kind {
	case types.DepositBlock:
		return s.ApplyDepositBlock(block)
	case types.TransferBlock:
		return s.ApplyTransferBlock(block)
	case types.ExitBlock:
		return s.ApplyExitBlock(block)
	}
	return fmt.Errorf("%w: %s", ErrKindMismatch, block.Kind)
}

func checkKind(block *types.Block, kind types.BlockKind) error {
	if block.Kind != kind {
		return fmt.Errorf("%w: expected %s, got %s", ErrKindMismatch, kind, block.Kind)
	}
	return nil
}
