package ledger

import (
	"github.com/spacemeshos/go-statekeeper/metrics"
)

const namespace = "ledger"

var (
	rejectedTxs = metrics.NewCounter(
		"rejected_txs",
		namespace,
		"number of transactions rejected while applying blocks",
		[]string{"kind"},
	)
	revertedBlocks = metrics.NewCounter(
		"reverted_blocks",
		namespace,
		"number of blocks reverted because of rejected transactions",
		[]string{"kind"},
	)
	applyDuration = metrics.NewHistogramWithBuckets(
		"apply_duration_seconds",
		namespace,
		"duration of block application",
		[]string{"kind"},
		[]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	)
	blockNumber = metrics.NewGauge(
		"block_number",
		namespace,
		"number that will be assigned to the next block",
		[]string{},
	).WithLabelValues()
)
