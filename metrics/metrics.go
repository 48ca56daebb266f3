package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbgo_signals_generated_total",
			Help: "Breakout signals emitted, by direction.",
		},
		[]string{"direction"},
	)

	RangesInvalid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lbgo_ranges_invalid_total",
			Help: "Reference ranges rejected for falling outside the pip bounds.",
		},
	)

	TradesOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lbgo_trades_opened_total",
			Help: "Trades opened by the risk manager.",
		},
	)

	TradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbgo_trades_closed_total",
			Help: "Trades closed, by exit reason.",
		},
		[]string{"reason"},
	)

	TradesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbgo_trades_rejected_total",
			Help: "Trade attempts rejected, by reason.",
		},
		[]string{"reason"},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lbgo_equity",
			Help: "Current equity of the active run.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SignalsGenerated, RangesInvalid,
		TradesOpened, TradesClosed, TradesRejected,
		EquityGauge,
	)
}
