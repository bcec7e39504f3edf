package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters exposed on the metrics server.
var (
	ClicksRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kursline_attribution_clicks_recorded_total",
		Help: "Referred landing visits registered after dedupe.",
	})

	ClicksDeduped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kursline_attribution_clicks_deduped_total",
		Help: "Landing visits skipped because the dedupe key was already recorded.",
	})

	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kursline_settlements_total",
		Help: "Transactions settled, by terminal status.",
	}, []string{"status"})
)
