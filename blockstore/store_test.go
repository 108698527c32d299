package blockstore

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/database"
)

func newStore(tb testing.TB) *Store {
	tb.Helper()
	store, err := New(database.NewMemDatabase(), WithLogger(zaptest.NewLogger(tb)))
	require.NoError(tb, err)
	return store
}

func depositBlock(number types.BlockNumber, amount int64) *types.Block {
	block := types.NewDepositBlock(types.DepositTx{Account: 1, Amount: big.NewInt(amount)})
	block.Number = number
	block.NewRoot = types.CalcHash32(big.NewInt(amount).Bytes())
	return block
}

func TestAddGet(t *testing.T) {
	store := newStore(t)
	_, err := store.Last()
	require.ErrorIs(t, err, ErrNotFound)

	for i := types.BlockNumber(1); i <= 3; i++ {
		require.NoError(t, store.Add(depositBlock(i, int64(i))))
	}
	last, err := store.Last()
	require.NoError(t, err)
	require.Equal(t, types.BlockNumber(3), last)

	got, err := store.Get(2)
	require.NoError(t, err)
	require.Equal(t, types.DepositBlock, got.Kind)
	require.Equal(t, types.BlockNumber(2), got.Number)
	require.Equal(t, "2", got.Deposits[0].Amount.String())

	_, err = store.Get(4)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddOrdering(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add(depositBlock(5, 5)))
	require.ErrorIs(t, store.Add(depositBlock(7, 7)), ErrOutOfOrder)

	require.NoError(t, store.Add(depositBlock(5, 5)), "same block is accepted again")
	require.ErrorIs(t, store.Add(depositBlock(5, 6)), ErrConflict)
	require.NoError(t, store.Add(depositBlock(6, 6)))
}

func TestReopenKeepsLast(t *testing.T) {
	db := database.NewMemDatabase()
	store, err := New(db)
	require.NoError(t, err)
	require.NoError(t, store.Add(depositBlock(1, 1)))
	require.NoError(t, store.Add(depositBlock(2, 2)))

	store, err = New(db)
	require.NoError(t, err)
	last, err := store.Last()
	require.NoError(t, err)
	require.Equal(t, types.BlockNumber(2), last)
	require.ErrorIs(t, store.Add(depositBlock(4, 4)), ErrOutOfOrder)
}

func TestIterate(t *testing.T) {
	store := newStore(t)
	for i := types.BlockNumber(1); i <= 5; i++ {
		require.NoError(t, store.Add(depositBlock(i, int64(i))))
	}
	var seen []types.BlockNumber
	require.NoError(t, store.Iterate(2, func(block *types.Block) bool {
		seen = append(seen, block.Number)
		return block.Number < 4
	}))
	require.Equal(t, []types.BlockNumber{2, 3, 4}, seen)
}
