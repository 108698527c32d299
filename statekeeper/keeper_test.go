package statekeeper

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/ledger"
	"github.com/spacemeshos/go-statekeeper/log/logtest"
	"github.com/spacemeshos/go-statekeeper/signing"
)

const timeout = 5 * time.Second

func receive[T any](tb testing.TB, ch <-chan T) T {
	tb.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		require.FailNow(tb, "timed out waiting on channel")
	}
	var zero T
	return zero
}

type testKeeper struct {
	*Keeper
	tb      testing.TB
	state   *ledger.State
	signers map[types.AccountIndex]*signing.EdSigner
}

func newTestKeeper(tb testing.TB, balances map[types.AccountIndex]int64, opts ...Opt) *testKeeper {
	tb.Helper()
	state := ledger.New(ledger.WithLogger(logtest.New(tb)))
	tk := &testKeeper{
		tb:      tb,
		state:   state,
		signers: map[types.AccountIndex]*signing.EdSigner{},
	}
	var genesis []types.GenesisAccount
	for index, balance := range balances {
		signer, err := signing.NewEdSigner()
		require.NoError(tb, err)
		tk.signers[index] = signer
		genesis = append(genesis, types.GenesisAccount{
			Index:     index,
			Balance:   big.NewInt(balance),
			PublicKey: signer.PublicKey(),
		})
	}
	require.NoError(tb, state.ApplyGenesis(genesis))

	opts = append([]Opt{WithLogger(logtest.New(tb))}, opts...)
	tk.Keeper = New(state, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	tk.Start(ctx)
	tb.Cleanup(func() {
		cancel()
		tk.Stop()
	})
	return tk
}

func (tk *testKeeper) transfer(from, to types.AccountIndex, amount int64, nonce uint32) types.TransferTx {
	tx := types.TransferTx{
		From:       from,
		To:         to,
		Amount:     big.NewInt(amount),
		Nonce:      nonce,
		ValidUntil: 1 << 20,
	}
	tk.signers[from].SignTransfer(&tx)
	return tx
}

// published returns the next block from both downstream channels.
func (tk *testKeeper) published() *types.Block {
	tk.tb.Helper()
	commitment := receive(tk.tb, tk.Commitments())
	proof := receive(tk.tb, tk.ProofRequests())
	require.Same(tk.tb, commitment, proof)
	return commitment
}

func TestTransferCommitted(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100, 2: 0})
	replies := make(chan Outcome, 1)
	tx := tk.transfer(1, 2, 40, 0)

	require.NoError(t, tk.Submit(context.Background(), ApplyBlock{
		Block:  types.NewTransferBlock(tx),
		Source: MemPool{Reply: replies},
	}))
	block := tk.published()
	out := receive(t, replies)

	require.NoError(t, out.Err)
	require.True(t, out.Committed)
	require.Equal(t, types.FirstBlock, out.Number)
	require.Equal(t, block.NewRoot, out.Root)
	require.Equal(t, []types.TransferTx{tx}, out.Accepted)
	require.Empty(t, out.Reverted)

	accounts := make(chan AccountResult, 1)
	require.NoError(t, tk.Submit(context.Background(), GetAccount{Index: 1, Reply: accounts}))
	acc := receive(t, accounts)
	require.True(t, acc.Found)
	require.Equal(t, "60", acc.Account.Balance.String())
	require.EqualValues(t, 1, acc.Account.Nonce)
	require.Equal(t, types.FirstBlock+1, acc.Next)
}

func TestTransferReverted(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100, 2: 0})
	roots := make(chan RootResult, 1)
	require.NoError(t, tk.Submit(context.Background(), GetRoot{Reply: roots}))
	before := receive(t, roots)
	require.NoError(t, before.Err)

	replies := make(chan Outcome, 1)
	good := tk.transfer(1, 2, 40, 0)
	stale := tk.transfer(1, 2, 10, 0)
	require.NoError(t, tk.Submit(context.Background(), ApplyBlock{
		Block:  types.NewTransferBlock(good, stale),
		Source: MemPool{Reply: replies},
	}))
	block := tk.published()
	out := receive(t, replies)

	require.NoError(t, out.Err)
	require.False(t, out.Committed)
	require.Empty(t, out.Accepted)
	require.Equal(t, []types.TransferTx{good}, out.Reverted)
	require.Len(t, out.Rejected, 1)
	require.EqualValues(t, 1, out.Rejected[0].Position)
	require.Equal(t, before.Root, block.NewRoot)
	require.Empty(t, block.Transfers)
}

func TestPublishedInArrivalOrder(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100, 2: 0})
	key := tk.signers[1].PublicKey()
	blocks := []ApplyBlock{
		{Block: types.NewDepositBlock(types.DepositTx{Account: 3, Amount: big.NewInt(5), PublicKey: key}), Source: EthWatch{}},
		{Block: types.NewTransferBlock(tk.transfer(1, 2, 1, 0)), Source: MemPool{}},
		{Block: types.NewTransferBlock(tk.transfer(1, 2, 1, 5)), Source: Storage{}},
		{Block: types.NewExitBlock(types.ExitTx{Account: 3}), Source: EthWatch{}},
		{Block: types.NewExitBlock(types.ExitTx{Account: 9}), Source: EthWatch{}},
	}
	for _, req := range blocks {
		require.NoError(t, tk.Submit(context.Background(), req))
	}
	for i, req := range blocks {
		block := tk.published()
		require.Same(t, req.Block, block)
		require.Equal(t, types.FirstBlock.Add(uint32(i)), block.Number)
	}
	require.Equal(t, "5", blocks[3].Block.Exits[0].Amount.String())
}

func TestGetPubKey(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100})
	replies := make(chan PubKeyResult, 2)
	require.NoError(t, tk.Submit(context.Background(), GetPubKey{Index: 1, Reply: replies}))
	require.NoError(t, tk.Submit(context.Background(), GetPubKey{Index: 2, Reply: replies}))

	found := receive(t, replies)
	require.True(t, found.Found)
	require.Equal(t, tk.signers[1].PublicKey(), found.PublicKey)
	missing := receive(t, replies)
	require.False(t, missing.Found)
	require.True(t, missing.PublicKey.Empty())
}

func TestQueriesObservePrefix(t *testing.T) {
	const (
		blocks  = 50
		readers = 4
		initial = 1000
	)
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: initial, 2: 0}, WithConfig(Config{InboxSize: 8, OutboxSize: 1}))
	roots := make(chan RootResult, 1)
	require.NoError(t, tk.Submit(context.Background(), GetRoot{Reply: roots}))
	genesis := receive(t, roots)

	published := map[types.BlockNumber]types.Hash32{}
	var consumers errgroup.Group
	consumers.Go(func() error {
		for n := 0; n < blocks; n++ {
			block := <-tk.Commitments()
			published[block.Number] = block.NewRoot
		}
		return nil
	})
	consumers.Go(func() error {
		for n := 0; n < blocks; n++ {
			<-tk.ProofRequests()
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var eg errgroup.Group
	accounts := make([][]AccountResult, readers)
	rootReads := make([][]RootResult, readers)
	for i := 0; i < readers; i++ {
		i := i
		eg.Go(func() error {
			accReply := make(chan AccountResult, 1)
			rootReply := make(chan RootResult, 1)
			for ctx.Err() == nil {
				if err := tk.Submit(ctx, GetAccount{Index: 1, Reply: accReply}); err != nil {
					return nil
				}
				accounts[i] = append(accounts[i], <-accReply)
				if err := tk.Submit(ctx, GetRoot{Reply: rootReply}); err != nil {
					return nil
				}
				rootReads[i] = append(rootReads[i], <-rootReply)
			}
			return nil
		})
	}
	for nonce := uint32(0); nonce < uint32(blocks); nonce++ {
		require.NoError(t, tk.Submit(context.Background(), ApplyBlock{
			Block:  types.NewTransferBlock(tk.transfer(1, 2, 1, nonce)),
			Source: MemPool{},
		}))
	}
	require.NoError(t, consumers.Wait())
	cancel()
	require.NoError(t, eg.Wait())

	require.Len(t, published, blocks)
	for i := 0; i < readers; i++ {
		for _, res := range accounts[i] {
			applied := int64(res.Next - types.FirstBlock)
			require.True(t, res.Found)
			require.Equal(t, big.NewInt(initial-applied).String(), res.Account.Balance.String())
			require.EqualValues(t, applied, res.Account.Nonce)
		}
		for _, res := range rootReads[i] {
			require.NoError(t, res.Err)
			if res.Next == types.FirstBlock {
				require.Equal(t, genesis.Root, res.Root)
			} else {
				require.Equal(t, published[res.Next-1], res.Root)
			}
		}
	}
}

func TestReplyDropped(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100, 2: 0})
	abandoned := make(chan Outcome)
	require.NoError(t, tk.Submit(context.Background(), ApplyBlock{
		Block:  types.NewTransferBlock(tk.transfer(1, 2, 1, 0)),
		Source: MemPool{Reply: abandoned},
	}))
	block := tk.published()
	require.False(t, block.Reverted())

	roots := make(chan RootResult, 1)
	require.NoError(t, tk.Submit(context.Background(), GetRoot{Reply: roots}))
	require.Equal(t, block.NewRoot, receive(t, roots).Root)
}

func TestOnlyTransfersAnswered(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100})
	replies := make(chan Outcome, 2)
	for _, block := range []*types.Block{
		types.NewDepositBlock(types.DepositTx{Account: 1, Amount: big.NewInt(5)}),
		types.NewExitBlock(types.ExitTx{Account: 1}),
	} {
		require.NoError(t, tk.Submit(context.Background(), ApplyBlock{
			Block:  block,
			Source: MemPool{Reply: replies},
		}))
		// replies are sent before the block is published
		require.Same(t, block, tk.published())
		require.Zero(t, len(replies), "%s block was answered", block.Kind)
	}
}

func TestSubmitRacingStop(t *testing.T) {
	tk := newTestKeeper(t, map[types.AccountIndex]int64{1: 100, 2: 0})
	const n = 64
	replies := make(chan Outcome, n)
	var (
		eg       errgroup.Group
		accepted atomic.Int32
	)
	for i := 0; i < n; i++ {
		tx := tk.transfer(1, 2, 1, uint32(i))
		eg.Go(func() error {
			err := tk.Submit(context.Background(), ApplyBlock{
				Block:  types.NewTransferBlock(tx),
				Source: MemPool{Reply: replies},
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case !errors.Is(err, ErrStopped):
				return err
			}
			return nil
		})
	}
	tk.Stop()
	require.NoError(t, eg.Wait())
	// every accepted block is either applied or answered with ErrStopped
	for i := int32(0); i < accepted.Load(); i++ {
		out := receive(t, replies)
		if out.Err != nil {
			require.ErrorIs(t, out.Err, ErrStopped)
		}
	}
}

func TestSubmitInvalid(t *testing.T) {
	tk := newTestKeeper(t, nil)
	for _, req := range []Request{
		nil,
		ApplyBlock{Source: EthWatch{}},
		ApplyBlock{Block: types.NewExitBlock()},
		ApplyBlock{Block: &types.Block{Kind: 7}, Source: Storage{}},
		GetPubKey{Index: 1},
		GetAccount{Index: 1},
		GetRoot{},
	} {
		require.ErrorIs(t, tk.Submit(context.Background(), req), ErrInvalidRequest, "%#v", req)
	}
}

func TestSubmitCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := New(NewMockledgerState(ctrl), WithConfig(Config{InboxSize: 0}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := k.Submit(ctx, GetRoot{Reply: make(chan RootResult, 1)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestInternalFailureStopsLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockledgerState(ctrl)
	state.EXPECT().BlockNumber().Return(types.FirstBlock).AnyTimes()
	failure := fmt.Errorf("%w: tree is gone", ledger.ErrInternal)
	state.EXPECT().Apply(gomock.Any()).Return(failure)

	k := New(state, WithLogger(logtest.New(t)))
	k.Start(context.Background())
	t.Cleanup(k.Stop)

	replies := make(chan Outcome, 1)
	require.NoError(t, k.Submit(context.Background(), ApplyBlock{
		Block:  types.NewTransferBlock(),
		Source: MemPool{Reply: replies},
	}))
	out := receive(t, replies)
	require.ErrorIs(t, out.Err, ledger.ErrInternal)

	receive(t, k.Done())
	require.ErrorIs(t, k.Wait(), ledger.ErrInternal)
	err := k.Submit(context.Background(), GetRoot{Reply: make(chan RootResult, 1)})
	require.ErrorIs(t, err, ErrStopped)
	select {
	case <-k.Commitments():
		require.Fail(t, "failed block must not be published")
	default:
	}
}

func TestKindMismatchKeepsRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockledgerState(ctrl)
	state.EXPECT().BlockNumber().Return(types.BlockNumber(7)).AnyTimes()
	state.EXPECT().Apply(gomock.Any()).Return(ledger.ErrKindMismatch)
	root := types.CalcHash32([]byte("root"))
	state.EXPECT().RootHash().Return(root, nil)

	k := New(state, WithLogger(logtest.New(t)))
	k.Start(context.Background())
	t.Cleanup(k.Stop)

	replies := make(chan Outcome, 1)
	require.NoError(t, k.Submit(context.Background(), ApplyBlock{
		Block:  types.NewTransferBlock(),
		Source: MemPool{Reply: replies},
	}))
	require.ErrorIs(t, receive(t, replies).Err, ledger.ErrKindMismatch)

	roots := make(chan RootResult, 1)
	require.NoError(t, k.Submit(context.Background(), GetRoot{Reply: roots}))
	res := receive(t, roots)
	require.Equal(t, root, res.Root)
	require.Equal(t, types.BlockNumber(7), res.Next)
}

func TestStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockledgerState(ctrl)
	state.EXPECT().BlockNumber().Return(types.FirstBlock).AnyTimes()

	k := New(state)
	k.Stop()
	k.Start(context.Background())
	k.Stop()
	require.ErrorIs(t, k.Wait(), context.Canceled)
	require.ErrorIs(t, k.Submit(context.Background(), GetRoot{Reply: make(chan RootResult, 1)}), ErrStopped)
	require.True(t, errors.Is(k.Submit(context.Background(), GetRoot{}), ErrInvalidRequest))
}
