package accounttree

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-statekeeper/common/types"
)

func account(balance int64, nonce uint32) *types.Account {
	return &types.Account{Balance: big.NewInt(balance), Nonce: nonce, PublicKey: types.PublicKey{byte(balance)}}
}

func rootOf(t *testing.T, tree *Tree) types.Hash32 {
	t.Helper()
	root, err := tree.RootHash()
	require.NoError(t, err)
	return root
}

func TestEmptyTree(t *testing.T) {
	tree := New()
	require.Equal(t, types.EmptyRoot, rootOf(t, tree))
	_, ok := tree.Get(0)
	require.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Insert(1, account(100, 0)))

	acc, ok := tree.Get(1)
	require.True(t, ok)
	acc.Balance.SetInt64(5)
	acc.Nonce = 7

	stored, ok := tree.Get(1)
	require.True(t, ok)
	require.Equal(t, "100", stored.Balance.String())
	require.Zero(t, stored.Nonce)
}

func TestRootDependsOnContentOnly(t *testing.T) {
	first := New()
	require.NoError(t, first.Insert(1, account(100, 0)))
	require.NoError(t, first.Insert(4, account(7, 3)))

	second := New()
	require.NoError(t, second.Insert(4, account(7, 3)))
	require.NoError(t, second.Insert(1, account(1, 0)))
	require.NotEqual(t, rootOf(t, first), rootOf(t, second))
	require.NoError(t, second.Insert(1, account(100, 0)))

	require.Equal(t, rootOf(t, first), rootOf(t, second))
}

func TestRootChangesWithLeaf(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Insert(1, account(100, 0)))
	before := rootOf(t, tree)

	require.NoError(t, tree.Insert(1, account(100, 1)))
	require.NotEqual(t, before, rootOf(t, tree))

	require.NoError(t, tree.Insert(1, account(100, 0)))
	require.Equal(t, before, rootOf(t, tree))
}

func TestRemoveRestoresRoot(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Insert(0, account(10, 0)))
	require.NoError(t, tree.Insert(2, account(20, 0)))
	before := rootOf(t, tree)

	require.NoError(t, tree.Insert(9, account(1, 0)))
	require.NotEqual(t, before, rootOf(t, tree))
	tree.Remove(9)
	require.Equal(t, before, rootOf(t, tree))
	require.Equal(t, 2, tree.Len())

	tree.Remove(0)
	tree.Remove(2)
	require.Equal(t, types.EmptyRoot, rootOf(t, tree))
}

func TestInsertRejections(t *testing.T) {
	tree := New(WithConfig(Config{Depth: 4, MaxBalanceBits: 8}))

	err := tree.Insert(16, account(1, 0))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.ErrorIs(t, err, ErrRejected)

	err = tree.Insert(1, account(256, 0))
	require.ErrorIs(t, err, ErrBalanceOverflow)
	require.ErrorIs(t, err, ErrRejected)

	err = tree.Insert(1, account(-1, 0))
	require.ErrorIs(t, err, ErrNegativeBalance)

	require.NoError(t, tree.Insert(15, account(255, 0)))
	require.Equal(t, "255", tree.MaxBalance().String())
	require.Equal(t, 1, tree.Len())
}

func TestIterateInIndexOrder(t *testing.T) {
	tree := New()
	for _, i := range []types.AccountIndex{5, 1, 3} {
		require.NoError(t, tree.Insert(i, account(int64(i), 0)))
	}
	var seen []types.AccountIndex
	tree.Iterate(func(i types.AccountIndex, acc *types.Account) bool {
		require.Equal(t, int64(i), acc.Balance.Int64())
		seen = append(seen, i)
		return len(seen) < 2
	})
	require.Equal(t, []types.AccountIndex{1, 3}, seen)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.Error(t, Config{Depth: 0, MaxBalanceBits: 128}.Validate())
	require.Error(t, Config{Depth: 33, MaxBalanceBits: 128}.Validate())
	require.Error(t, Config{Depth: 24, MaxBalanceBits: 513}.Validate())
}
