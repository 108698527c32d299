package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-statekeeper/accounttree"
	"github.com/spacemeshos/go-statekeeper/blockstore"
	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/config"
	"github.com/spacemeshos/go-statekeeper/database"
	"github.com/spacemeshos/go-statekeeper/ledger"
	"github.com/spacemeshos/go-statekeeper/log"
	"github.com/spacemeshos/go-statekeeper/metrics"
	"github.com/spacemeshos/go-statekeeper/signing"
	"github.com/spacemeshos/go-statekeeper/statekeeper"
)

// Logger names.
const (
	LedgerLogger   = "ledger"
	KeeperLogger   = "keeper"
	StoreLogger    = "blockstore"
	ProofLogger    = "proofs"
	MetricsLogger  = "metrics"
	DatabaseLogger = "database"
)

// Option to modify an App instance.
type Option func(*App)

// WithOutput sets where the replay-only root is printed.
func WithOutput(w io.Writer) Option {
	return func(app *App) {
		app.out = w
	}
}

// App wires the ledger, the keeper and the block store together.
type App struct {
	conf   *config.Config
	logger *zap.Logger
	out    io.Writer
}

// New creates an app for the configuration.
func New(conf *config.Config, logger *zap.Logger, opts ...Option) *App {
	app := &App{conf: conf, logger: logger, out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

func (app *App) named(name string) *zap.Logger {
	logger, err := log.Named(app.logger, app.conf.Logging, name)
	if err != nil {
		app.logger.Warn("ignoring log level override", zap.String("logger", name), zap.Error(err))
		return app.logger.Named(name)
	}
	return logger
}

func (app *App) newLedger() (*ledger.State, error) {
	tree := accounttree.New(accounttree.WithConfig(app.conf.Tree))
	verifier := signing.NewEdVerifier(signing.WithVerifierPrefix([]byte(app.conf.ChainID)))
	state := ledger.New(
		ledger.WithLogger(app.named(LedgerLogger)),
		ledger.WithTree(tree),
		ledger.WithVerifier(verifier),
	)
	if err := state.ApplyGenesis(app.conf.Genesis.Accounts); err != nil {
		return nil, err
	}
	return state, nil
}

// Run starts the state keeper and blocks until ctx is cancelled, the keeper
// fails or, in replay-only mode, the stored blocks are replayed.
func (app *App) Run(ctx context.Context) error {
	if err := os.MkdirAll(app.conf.DataDir, 0o700); err != nil {
		return log.ErrEnsureDataDir(err)
	}
	db, err := database.Open(app.conf.BlockStorePath(), app.conf.Database, app.named(DatabaseLogger))
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := blockstore.New(db, blockstore.WithLogger(app.named(StoreLogger)))
	if err != nil {
		return err
	}
	state, err := app.newLedger()
	if err != nil {
		return log.ErrGenesis(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// a failed pipeline cancels the keeper and serve through ctx
	eg, ctx := errgroup.WithContext(ctx)
	keeper := statekeeper.New(state,
		statekeeper.WithConfig(app.conf.Keeper),
		statekeeper.WithLogger(app.named(KeeperLogger)),
	)
	keeper.Start(ctx)

	recorder := blockstore.NewRecorder(store, app.named(StoreLogger))
	eg.Go(func() error {
		return recorder.Run(ctx, keeper.Commitments())
	})
	eg.Go(func() error {
		return logProofRequests(ctx, app.named(ProofLogger), keeper.ProofRequests())
	})
	if app.conf.CollectMetrics {
		eg.Go(func() error {
			return metrics.StartMetricsServer(ctx, app.named(MetricsLogger), app.conf.MetricsPort)
		})
	}
	if app.conf.MetricsPush != "" {
		metrics.StartPushingMetrics(ctx, app.named(MetricsLogger), app.conf.MetricsPush,
			app.conf.MetricsPushPeriod, app.conf.ChainID)
	}

	err = app.serve(ctx, store, keeper)
	cancel()
	keeper.Stop()
	if werr := eg.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		return werr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (app *App) serve(ctx context.Context, store *blockstore.Store, keeper *statekeeper.Keeper) error {
	replayed, err := blockstore.Replay(ctx, app.logger, store, types.FirstBlock, keeper.Submit)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if app.conf.ReplayOnly {
		root, err := queryRoot(ctx, keeper)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "replayed %d blocks, next block %d, root %s\n", replayed, root.Next, root.Root.Hex())
		return nil
	}
	app.logger.Info("state keeper is running", zap.Int("replayed", replayed))
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down")
		return nil
	case <-keeper.Done():
		return keeper.Wait()
	}
}

func queryRoot(ctx context.Context, keeper *statekeeper.Keeper) (statekeeper.RootResult, error) {
	reply := make(chan statekeeper.RootResult, 1)
	if err := keeper.Submit(ctx, statekeeper.GetRoot{Reply: reply}); err != nil {
		return statekeeper.RootResult{}, err
	}
	select {
	case res := <-reply:
		return res, res.Err
	case <-keeper.Done():
		return statekeeper.RootResult{}, keeper.Wait()
	case <-ctx.Done():
		return statekeeper.RootResult{}, ctx.Err()
	}
}

// logProofRequests stands in for the proof pipeline, which lives outside of this process.
func logProofRequests(ctx context.Context, logger *zap.Logger, blocks <-chan *types.Block) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case block := <-blocks:
			logger.Info("proof requested", zap.Object("block", block), zap.Stringer("root", block.NewRoot))
		}
	}
}
