package blockstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/log"
	"github.com/spacemeshos/go-statekeeper/statekeeper"
)

// Recorder persists blocks published by the state keeper.
type Recorder struct {
	logger *zap.Logger
	store  *Store
}

// NewRecorder creates a recorder writing into store.
func NewRecorder(store *Store, logger *zap.Logger) *Recorder {
	return &Recorder{logger: logger, store: store}
}

// Run stores blocks in the order they are received until blocks is closed or
// ctx is cancelled.
func (r *Recorder) Run(ctx context.Context, blocks <-chan *types.Block) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context done: %w", ctx.Err())
		case block, open := <-blocks:
			if !open {
				return nil
			}
			if err := r.store.Add(block); err != nil {
				return fmt.Errorf("record block: %w", err)
			}
			r.logger.Debug("recorded block", zap.Object("block", block))
		}
	}
}

// Replay submits every stored block starting at from to the state keeper, in
// order. It returns the number of submitted blocks.
func Replay(
	ctx context.Context,
	logger *zap.Logger,
	store *Store,
	from types.BlockNumber,
	submit func(context.Context, statekeeper.Request) error,
) (int, error) {
	var (
		count int
		err   error
	)
	iterErr := store.Iterate(from, func(block *types.Block) bool {
		rctx := log.WithNewRequestID(ctx, zap.Uint32("replay", block.Number.Uint32()))
		err = submit(rctx, statekeeper.ApplyBlock{Block: block, Source: statekeeper.Storage{}})
		if err != nil {
			err = fmt.Errorf("submit block %d: %w", block.Number, err)
			return false
		}
		count++
		return true
	})
	if iterErr != nil {
		return count, iterErr
	}
	if err != nil {
		return count, err
	}
	logger.Info("replayed blocks", zap.Int("count", count), zap.Uint32("from", from.Uint32()))
	return count, nil
}
