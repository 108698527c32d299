// Package statekeeper serializes every request against the ledger through a
// single control loop and fans applied blocks out to the commitment and proof
// pipelines.
package statekeeper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/ledger"
	"github.com/spacemeshos/go-statekeeper/log"
)

// ErrStopped is returned by Submit once the control loop has exited.
var ErrStopped = errors.New("state keeper stopped")

// Config is the config for Keeper.
type Config struct {
	// InboxSize is the number of requests that can wait for the loop.
	InboxSize int `mapstructure:"inbox-size"`
	// OutboxSize is the buffer of each downstream channel.
	OutboxSize int `mapstructure:"outbox-size"`
}

// DefaultConfig returns the default keeper configuration.
func DefaultConfig() Config {
	return Config{
		InboxSize:  256,
		OutboxSize: 16,
	}
}

// Opt for configuring Keeper.
type Opt func(*Keeper)

// WithConfig defines cfg for Keeper.
func WithConfig(cfg Config) Opt {
	return func(k *Keeper) {
		k.cfg = cfg
	}
}

// WithLogger defines logger for Keeper.
func WithLogger(logger *zap.Logger) Opt {
	return func(k *Keeper) {
		k.logger = logger
	}
}

type envelope struct {
	ctx context.Context
	req Request
}

// Keeper owns the ledger. Every request is handled by one goroutine, in
// arrival order, one at a time.
type Keeper struct {
	logger *zap.Logger
	cfg    Config
	state  ledgerState

	once sync.Once
	eg   errgroup.Group
	stop func()
	done chan struct{}

	// mu is held for reading while enqueuing and for writing while draining,
	// so nothing is enqueued after the final drain.
	mu      sync.RWMutex
	stopped bool

	inbox       chan envelope
	commitments chan *types.Block
	proofs      chan *types.Block
}

// New creates a keeper for the given ledger. The keeper must be the only user
// of the ledger once started.
func New(state ledgerState, opts ...Opt) *Keeper {
	k := &Keeper{
		logger: zap.NewNop(),
		cfg:    DefaultConfig(),
		state:  state,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.inbox = make(chan envelope, k.cfg.InboxSize)
	k.commitments = make(chan *types.Block, k.cfg.OutboxSize)
	k.proofs = make(chan *types.Block, k.cfg.OutboxSize)
	return k
}

// Commitments returns applied blocks in order, for the commitment pipeline.
// Blocks are shared with ProofRequests and must not be modified.
func (k *Keeper) Commitments() <-chan *types.Block {
	return k.commitments
}

// ProofRequests returns applied blocks in order, for the proof pipeline.
func (k *Keeper) ProofRequests() <-chan *types.Block {
	return k.proofs
}

// Start starts the control loop.
func (k *Keeper) Start(ctx context.Context) {
	k.once.Do(func() {
		ctx, k.stop = context.WithCancel(ctx)
		k.eg.Go(func() error {
			return k.run(ctx)
		})
	})
}

// Stop stops the control loop and waits for it to exit.
func (k *Keeper) Stop() {
	if k.stop == nil {
		return
	}
	k.stop()
	err := k.eg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		k.logger.Error("state keeper failure", zap.Error(err))
	}
}

// Done is closed when the control loop exits.
func (k *Keeper) Done() <-chan struct{} {
	return k.done
}

// Wait blocks until the control loop exits and returns its error.
func (k *Keeper) Wait() error {
	return k.eg.Wait()
}

// Submit enqueues a request. It blocks while the inbox is full.
// The request id in ctx, or a new one, is attached to every log of the request.
func (k *Keeper) Submit(ctx context.Context, req Request) error {
	if req == nil {
		return fmt.Errorf("%w: nil", ErrInvalidRequest)
	}
	if err := req.validate(); err != nil {
		return err
	}
	if _, ok := log.ExtractRequestID(ctx); !ok {
		ctx = log.WithNewRequestID(ctx)
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.stopped {
		return ErrStopped
	}
	select {
	case k.inbox <- envelope{ctx: ctx, req: req}:
		inboxLen.Set(float64(len(k.inbox)))
		return nil
	case <-k.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *Keeper) run(ctx context.Context) error {
	defer k.drain()
	defer close(k.done)
	k.logger.Info("state keeper started", zap.Uint32("next_block", k.state.BlockNumber().Uint32()))
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context done: %w", ctx.Err())
		case env := <-k.inbox:
			inboxLen.Set(float64(len(k.inbox)))
			if err := k.handle(ctx, env); err != nil {
				return err
			}
		}
	}
}

// drain answers the mempool requests that will never be applied.
func (k *Keeper) drain() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopped = true
	for {
		select {
		case env := <-k.inbox:
			if req, ok := env.req.(ApplyBlock); ok {
				reply(k, env.ctx, "apply", req.outcome(), Outcome{Err: ErrStopped})
			}
		default:
			inboxLen.Set(0)
			return
		}
	}
}

func (k *Keeper) handle(ctx context.Context, env envelope) error {
	kind := env.req.kind()
	switch req := env.req.(type) {
	case ApplyBlock:
		return k.applyBlock(ctx, env.ctx, req)
	case GetPubKey:
		pub, found := k.state.PubKey(req.Index)
		requests.WithLabelValues(kind, "ok").Inc()
		reply(k, env.ctx, kind, req.Reply, PubKeyResult{PublicKey: pub, Found: found})
	case GetAccount:
		acc, found := k.state.Account(req.Index)
		requests.WithLabelValues(kind, "ok").Inc()
		reply(k, env.ctx, kind, req.Reply, AccountResult{Account: acc, Found: found, Next: k.state.BlockNumber()})
	case GetRoot:
		root, err := k.state.RootHash()
		reply(k, env.ctx, kind, req.Reply, RootResult{Root: root, Next: k.state.BlockNumber(), Err: err})
		if err != nil {
			requests.WithLabelValues(kind, "failed").Inc()
			return fmt.Errorf("read root: %w", err)
		}
		requests.WithLabelValues(kind, "ok").Inc()
	default:
		k.logger.Warn("unexpected request", log.ZContext(env.ctx), zap.String("type", fmt.Sprintf("%T", req)))
	}
	return nil
}

func (k *Keeper) applyBlock(ctx, reqCtx context.Context, req ApplyBlock) error {
	block := req.Block
	submitted := slices.Clone(block.Transfers)
	if err := k.state.Apply(block); err != nil {
		reply(k, reqCtx, "apply", req.outcome(), Outcome{Err: err})
		if errors.Is(err, ledger.ErrInternal) {
			requests.WithLabelValues("apply", "failed").Inc()
			k.logger.Error("failed to apply block",
				log.ZContext(reqCtx),
				zap.Stringer("source", req.Source),
				zap.String("kind", block.Kind.String()),
				zap.Error(err),
			)
			return fmt.Errorf("apply %s block from %s: %w", block.Kind, req.Source, err)
		}
		requests.WithLabelValues("apply", "invalid").Inc()
		k.logger.Warn("block not applied",
			log.ZContext(reqCtx),
			zap.Stringer("source", req.Source),
			zap.Error(err),
		)
		return nil
	}
	outcome := "committed"
	if block.Reverted() {
		outcome = "reverted"
	}
	requests.WithLabelValues("apply", outcome).Inc()
	k.logger.Debug("block applied",
		log.ZContext(reqCtx),
		zap.Stringer("source", req.Source),
		zap.Object("block", block),
	)

	reply(k, reqCtx, "apply", req.outcome(), newOutcome(block, submitted))
	if err := publish(ctx, k.commitments, block); err != nil {
		return fmt.Errorf("publish commitment %d: %w", block.Number, err)
	}
	if err := publish(ctx, k.proofs, block); err != nil {
		return fmt.Errorf("publish proof request %d: %w", block.Number, err)
	}
	return nil
}

func newOutcome(block *types.Block, submitted []types.TransferTx) Outcome {
	out := Outcome{
		Number:    block.Number,
		Root:      block.NewRoot,
		Committed: !block.Reverted(),
		Rejected:  block.Rejected,
	}
	if out.Committed {
		out.Accepted = block.Transfers
		return out
	}
	rejected := make(map[uint32]struct{}, len(block.Rejected))
	for _, r := range block.Rejected {
		rejected[r.Position] = struct{}{}
	}
	for i, tx := range submitted {
		if _, ok := rejected[uint32(i)]; !ok {
			out.Reverted = append(out.Reverted, tx)
		}
	}
	return out
}

// publish blocks until the block is delivered. Downstream channels carry the
// total order of blocks, so nothing is dropped.
func publish(ctx context.Context, ch chan<- *types.Block, block *types.Block) error {
	select {
	case ch <- block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reply never blocks the loop. A requester that isn't receiving loses the reply.
func reply[T any](k *Keeper, ctx context.Context, kind string, ch chan<- T, msg T) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
		droppedReplies.WithLabelValues(kind).Inc()
		k.logger.Warn("dropped reply", log.ZContext(ctx), zap.String("kind", kind))
	}
}
