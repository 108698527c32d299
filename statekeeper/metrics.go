package statekeeper

import (
	"github.com/spacemeshos/go-statekeeper/metrics"
)

const namespace = "keeper"

var (
	requests = metrics.NewCounter(
		"requests",
		namespace,
		"number of requests handled by the control loop",
		[]string{"kind", "outcome"},
	)
	droppedReplies = metrics.NewCounter(
		"dropped_replies",
		namespace,
		"number of replies dropped because the requester wasn't receiving",
		[]string{"kind"},
	)
	inboxLen = metrics.NewGauge(
		"inbox",
		namespace,
		"number of requests waiting for the control loop",
		[]string{},
	).WithLabelValues()
)
