// Package accounttree implements the Merkle-committed account store used by the ledger.
//
// Leaves are addressed by a dense account index. The root commits to every
// position from zero up to the highest occupied index; vacant positions hash as
// zero. Leaf hashes are the blake3 digest of the scale encoded account and are
// folded into the root with github.com/spacemeshos/merkle-tree.
package accounttree

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/spacemeshos/merkle-tree"

	"github.com/spacemeshos/go-statekeeper/codec"
	"github.com/spacemeshos/go-statekeeper/common/types"
)

var (
	// ErrRejected is wrapped by every error that refuses a leaf update for
	// ledger-level reasons. Other errors are structural failures of the tree.
	ErrRejected = errors.New("leaf rejected")
	// ErrBalanceOverflow is returned when a balance doesn't fit the configured width.
	ErrBalanceOverflow = fmt.Errorf("%w: balance exceeds tree width", ErrRejected)
	// ErrNegativeBalance is returned when a balance is below zero.
	ErrNegativeBalance = fmt.Errorf("%w: negative balance", ErrRejected)
	// ErrIndexOutOfRange is returned when the index doesn't fit the tree depth.
	ErrIndexOutOfRange = fmt.Errorf("%w: index beyond tree capacity", ErrRejected)
)

const maxWireBalanceBits = 512

// Config for the account tree.
type Config struct {
	// Depth bounds the number of addressable leaves to 2^Depth.
	Depth uint8 `mapstructure:"depth"`
	// MaxBalanceBits is the bit width of a leaf balance.
	MaxBalanceBits uint `mapstructure:"max-balance-bits"`
}

// DefaultConfig returns the default tree configuration.
func DefaultConfig() Config {
	return Config{
		Depth:          24,
		MaxBalanceBits: 128,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Depth == 0 || c.Depth > 32 {
		return fmt.Errorf("tree depth must be in [1, 32], got %d", c.Depth)
	}
	if c.MaxBalanceBits == 0 || c.MaxBalanceBits > maxWireBalanceBits {
		return fmt.Errorf("balance width must be in [1, %d], got %d", maxWireBalanceBits, c.MaxBalanceBits)
	}
	return nil
}

// Opt for configuring Tree.
type Opt func(*Tree)

// WithConfig defines cfg for Tree.
func WithConfig(cfg Config) Opt {
	return func(t *Tree) {
		t.cfg = cfg
	}
}

// Tree is an in-memory account tree. It is not safe for concurrent use.
type Tree struct {
	cfg    Config
	leaves map[types.AccountIndex]*types.Account
	hashes map[types.AccountIndex]types.Hash32
	// maxIndex is meaningful only when leaves is not empty.
	maxIndex types.AccountIndex
	root     *types.Hash32
}

// New creates an empty tree.
func New(opts ...Opt) *Tree {
	t := &Tree{
		cfg:    DefaultConfig(),
		leaves: map[types.AccountIndex]*types.Account{},
		hashes: map[types.AccountIndex]types.Hash32{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of occupied leaves.
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Get returns a copy of the account at index.
func (t *Tree) Get(index types.AccountIndex) (*types.Account, bool) {
	acc, ok := t.leaves[index]
	if !ok {
		return nil, false
	}
	return acc.Copy(), true
}

// Insert stores a copy of the account at index, replacing the previous leaf.
func (t *Tree) Insert(index types.AccountIndex, acc *types.Account) error {
	if t.cfg.Depth < 32 && uint64(index) >= uint64(1)<<t.cfg.Depth {
		return fmt.Errorf("%w: index %d depth %d", ErrIndexOutOfRange, index, t.cfg.Depth)
	}
	leaf := acc.Copy()
	if leaf.Balance.Sign() < 0 {
		return fmt.Errorf("%w: account %d", ErrNegativeBalance, index)
	}
	if uint(leaf.Balance.BitLen()) > t.cfg.MaxBalanceBits {
		return fmt.Errorf("%w: account %d needs %d bits, limit %d",
			ErrBalanceOverflow, index, leaf.Balance.BitLen(), t.cfg.MaxBalanceBits)
	}
	encoded, err := codec.Encode(leaf)
	if err != nil {
		return fmt.Errorf("encode leaf %d: %w", index, err)
	}
	if len(t.leaves) == 0 || index > t.maxIndex {
		t.maxIndex = index
	}
	t.leaves[index] = leaf
	t.hashes[index] = types.CalcHash32(encoded)
	t.root = nil
	return nil
}

// Remove deletes the leaf at index. It is used only to undo the creation of an
// account within a reverted block.
func (t *Tree) Remove(index types.AccountIndex) {
	if _, ok := t.leaves[index]; !ok {
		return
	}
	delete(t.leaves, index)
	delete(t.hashes, index)
	t.root = nil
	if index == t.maxIndex {
		t.maxIndex = 0
		for i := range t.leaves {
			t.maxIndex = max(t.maxIndex, i)
		}
	}
}

// RootHash returns the commitment to all leaves.
func (t *Tree) RootHash() (types.Hash32, error) {
	if t.root != nil {
		return *t.root, nil
	}
	if len(t.leaves) == 0 {
		return types.EmptyRoot, nil
	}
	tree, err := merkle.NewTree()
	if err != nil {
		return types.Hash32{}, fmt.Errorf("create merkle tree: %w", err)
	}
	var vacant types.Hash32
	for i := uint64(0); i <= uint64(t.maxIndex); i++ {
		leaf, ok := t.hashes[types.AccountIndex(i)]
		if !ok {
			leaf = vacant
		}
		if err := tree.AddLeaf(leaf[:]); err != nil {
			return types.Hash32{}, fmt.Errorf("add leaf %d: %w", i, err)
		}
	}
	root := types.BytesToHash(tree.Root())
	t.root = &root
	return root, nil
}

// Iterate calls fn for every leaf in index order until fn returns false.
func (t *Tree) Iterate(fn func(types.AccountIndex, *types.Account) bool) {
	indices := make([]types.AccountIndex, 0, len(t.leaves))
	for i := range t.leaves {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	for _, i := range indices {
		if !fn(i, t.leaves[i].Copy()) {
			return
		}
	}
}

// MaxBalance returns the largest balance a leaf can hold.
func (t *Tree) MaxBalance() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), t.cfg.MaxBalanceBits)
	return limit.Sub(limit, big.NewInt(1))
}
