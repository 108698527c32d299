package blockstore

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/ledger"
	"github.com/spacemeshos/go-statekeeper/signing"
	"github.com/spacemeshos/go-statekeeper/statekeeper"
)

type node struct {
	keeper *statekeeper.Keeper
	eg     errgroup.Group
}

// startNode runs a keeper whose commitments are recorded into store.
func startNode(tb testing.TB, store *Store, genesis []types.GenesisAccount) *node {
	tb.Helper()
	logger := zaptest.NewLogger(tb)
	state := ledger.New(ledger.WithLogger(logger))
	require.NoError(tb, state.ApplyGenesis(genesis))
	n := &node{keeper: statekeeper.New(state, statekeeper.WithLogger(logger))}

	ctx, cancel := context.WithCancel(context.Background())
	n.keeper.Start(ctx)
	recorder := NewRecorder(store, logger)
	n.eg.Go(func() error {
		return recorder.Run(ctx, n.keeper.Commitments())
	})
	n.eg.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-n.keeper.ProofRequests():
			}
		}
	})
	tb.Cleanup(func() {
		cancel()
		n.keeper.Stop()
	})
	return n
}

func (n *node) root(tb testing.TB) statekeeper.RootResult {
	tb.Helper()
	reply := make(chan statekeeper.RootResult, 1)
	require.NoError(tb, n.keeper.Submit(context.Background(), statekeeper.GetRoot{Reply: reply}))
	return <-reply
}

func TestRecordAndReplay(t *testing.T) {
	signer, err := signing.NewEdSigner()
	require.NoError(t, err)
	genesis := []types.GenesisAccount{
		{Index: 1, Balance: big.NewInt(100), PublicKey: signer.PublicKey()},
	}
	transfer := func(amount int64, nonce uint32) types.TransferTx {
		tx := types.TransferTx{From: 1, To: 2, Amount: big.NewInt(amount), Nonce: nonce, ValidUntil: 100}
		signer.SignTransfer(&tx)
		return tx
	}
	other, err := signing.NewEdSigner()
	require.NoError(t, err)

	store := newStore(t)
	first := startNode(t, store, genesis)
	blocks := []*types.Block{
		types.NewDepositBlock(types.DepositTx{Account: 2, Amount: big.NewInt(1), PublicKey: other.PublicKey()}),
		types.NewTransferBlock(transfer(10, 0)),
		types.NewTransferBlock(transfer(10, 1), transfer(1000, 2)),
		types.NewExitBlock(types.ExitTx{Account: 2}),
	}
	for _, block := range blocks {
		require.NoError(t, first.keeper.Submit(context.Background(), statekeeper.ApplyBlock{
			Block:  block,
			Source: statekeeper.EthWatch{},
		}))
	}
	expected := first.root(t)
	require.Equal(t, types.BlockNumber(len(blocks)+1), expected.Next)
	require.Eventually(t, func() bool {
		last, err := store.Last()
		return err == nil && last == types.BlockNumber(len(blocks))
	}, timeout, tick)

	second := startNode(t, store, genesis)
	count, err := Replay(context.Background(), zaptest.NewLogger(t), store, types.FirstBlock, second.keeper.Submit)
	require.NoError(t, err)
	require.Equal(t, len(blocks), count)

	replayed := second.root(t)
	require.Equal(t, expected.Root, replayed.Root)
	require.Equal(t, expected.Next, replayed.Next)

	reply := make(chan statekeeper.AccountResult, 1)
	require.NoError(t, second.keeper.Submit(context.Background(), statekeeper.GetAccount{Index: 1, Reply: reply}))
	acc := <-reply
	require.True(t, acc.Found)
	require.Equal(t, "90", acc.Account.Balance.String())
	last, err := store.Last()
	require.NoError(t, err)
	require.Equal(t, types.BlockNumber(len(blocks)), last)
}

const (
	timeout = 5 * time.Second
	tick    = 10 * time.Millisecond
)
