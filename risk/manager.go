// Package risk owns position sizing, risk limits and the trade
// lifecycle. A Manager is single-run, single-goroutine state; the
// backtest engine drives it bar by bar.
package risk

import (
	"errors"
	"time"

	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/logger"
	"github.com/fxsim/lbgo/metrics"
	"github.com/fxsim/lbgo/types"
)

// Non-fatal rejection reasons. The run continues; the attempt is only
// reflected in logs and counters.
var (
	ErrSizeRejected  = errors.New("position size below minimum tradable unit")
	ErrMaxOpenTrades = errors.New("maximum concurrent open trades reached")
	ErrDailyLossCap  = errors.New("daily loss limit reached")
)

// Manager tracks equity, the daily loss accumulator and every open and
// closed trade of one run.
type Manager struct {
	cfg config.Config
	log logger.Logger

	equity         float64
	dayStartEquity float64
	dayLoss        float64 // today's realized losses, accumulated positive
	open           []*types.Trade
	closed         []types.Trade
}

// NewManager validates the config and starts with its initial capital.
func NewManager(cfg config.Config, log logger.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		cfg:            cfg,
		log:            log,
		equity:         cfg.InitialCapital,
		dayStartEquity: cfg.InitialCapital,
	}, nil
}

func (m *Manager) Equity() float64 { return m.equity }

func (m *Manager) OpenCount() int { return len(m.open) }

// OpenTrades returns the live trades; the engine iterates a copy so
// closures during the loop cannot skip entries.
func (m *Manager) OpenTrades() []*types.Trade {
	out := make([]*types.Trade, len(m.open))
	copy(out, m.open)
	return out
}

// Closed returns the closed-trade history in closing order.
func (m *Manager) Closed() []types.Trade { return m.closed }

// StartDay resets the daily loss accumulator and snapshots the equity
// the day's loss cap is measured against.
func (m *Manager) StartDay() {
	m.dayLoss = 0
	m.dayStartEquity = m.equity
}

// SizeFor sizes a position for the signal from current equity.
func (m *Manager) SizeFor(sig types.Signal) float64 {
	stopPips := (sig.Entry - sig.StopLoss) * sig.Direction.Sign() / m.cfg.PipSize
	return PositionSize(
		m.equity, stopPips, m.cfg.RiskPerTradePct, m.cfg.PipValuePerLot,
		m.cfg.LotStep, m.cfg.MinLot, m.cfg.MaxPositionLots,
	)
}

// OpenTrade opens a trade from the signal, or reports why it cannot.
func (m *Manager) OpenTrade(sig types.Signal, lots float64) (*types.Trade, error) {
	if lots <= 0 {
		metrics.TradesRejected.WithLabelValues("size").Inc()
		m.log.Info("trade_rejected",
			logger.String("reason", "size"),
			logger.Time("ts", sig.Time),
		)
		return nil, ErrSizeRejected
	}
	if len(m.open) >= m.cfg.MaxOpenTrades {
		metrics.TradesRejected.WithLabelValues("max_open").Inc()
		m.log.Info("trade_rejected",
			logger.String("reason", "max_open"),
			logger.Time("ts", sig.Time),
		)
		return nil, ErrMaxOpenTrades
	}
	if m.dayLoss >= m.dayStartEquity*m.cfg.MaxDailyLossPct/100 {
		metrics.TradesRejected.WithLabelValues("daily_loss").Inc()
		m.log.Info("trade_rejected",
			logger.String("reason", "daily_loss"),
			logger.Time("ts", sig.Time),
			logger.Float64("day_loss", m.dayLoss),
		)
		return nil, ErrDailyLossCap
	}

	t := &types.Trade{
		Direction:  sig.Direction,
		SizeLots:   lots,
		EntryTime:  sig.Time,
		EntryPrice: sig.Entry,
		Stop:       sig.StopLoss,
		Target:     sig.TakeProfit,
		Status:     types.Open,
		Signal:     sig,
	}
	m.open = append(m.open, t)
	metrics.TradesOpened.Inc()
	m.log.Info("trade_opened",
		logger.Time("ts", sig.Time),
		logger.String("direction", sig.Direction.String()),
		logger.Float64("entry", sig.Entry),
		logger.Float64("stop", sig.StopLoss),
		logger.Float64("target", sig.TakeProfit),
		logger.Float64("lots", lots),
	)
	return t, nil
}

// UpdateTrade checks the bar against the trade's stop and target and
// applies trailing. When both levels fall inside the bar's range the
// stop wins; that conservative ordering is a design choice, not a
// market guarantee. Returns true when the trade closed on this bar.
func (m *Manager) UpdateTrade(t *types.Trade, bar types.Bar) bool {
	if t.Status.Closed() {
		return false
	}

	if t.Direction == types.Long {
		if bar.Low <= t.Stop {
			m.CloseTrade(t, t.Stop, bar.Time, types.ClosedByStop)
			return true
		}
		if bar.High >= t.Target {
			m.CloseTrade(t, t.Target, bar.Time, types.ClosedByTarget)
			return true
		}
	} else {
		if bar.High >= t.Stop {
			m.CloseTrade(t, t.Stop, bar.Time, types.ClosedByStop)
			return true
		}
		if bar.Low <= t.Target {
			m.CloseTrade(t, t.Target, bar.Time, types.ClosedByTarget)
			return true
		}
	}

	if m.cfg.UseTrailingStop {
		m.trail(t, bar.Close)
	}
	return false
}

// trail moves the stop in the trade's favor once the open profit
// reaches the activation threshold. The stop never loosens.
func (m *Manager) trail(t *types.Trade, price float64) {
	profitPips := (price - t.EntryPrice) * t.Direction.Sign() / m.cfg.PipSize
	if profitPips < t.RiskPips(m.cfg.PipSize)*m.cfg.TrailActivationRR {
		return
	}
	dist := m.cfg.TrailDistancePips * m.cfg.PipSize
	if t.Direction == types.Long {
		if next := price - dist; next > t.Stop {
			t.Stop = next
		}
	} else {
		if next := price + dist; next < t.Stop {
			t.Stop = next
		}
	}
}

// CloseTrade realizes the trade at price: computes net PnL after
// commission and slippage, mutates equity exactly once, feeds the daily
// loss accumulator on losses, and moves the trade into history.
func (m *Manager) CloseTrade(t *types.Trade, price float64, at time.Time, status types.TradeStatus) float64 {
	if t.Status.Closed() {
		return t.PnL
	}
	pnlPips := (price - t.EntryPrice) * t.Direction.Sign() / m.cfg.PipSize
	gross := pnlPips * m.cfg.PipValuePerLot * t.SizeLots
	costs := m.cfg.CommissionPerLot*t.SizeLots +
		m.cfg.SlippagePips*m.cfg.PipValuePerLot*t.SizeLots
	net := gross - costs

	t.Status = status
	t.ExitTime = at
	t.ExitPrice = price
	t.PnL = net

	m.equity += net
	if net < 0 {
		m.dayLoss += -net
	}
	for i, o := range m.open {
		if o == t {
			m.open = append(m.open[:i], m.open[i+1:]...)
			break
		}
	}
	m.closed = append(m.closed, *t)

	metrics.TradesClosed.WithLabelValues(status.String()).Inc()
	metrics.EquityGauge.Set(m.equity)
	m.log.Info("trade_closed",
		logger.Time("ts", at),
		logger.String("reason", status.String()),
		logger.Float64("exit", price),
		logger.Float64("pnl", net),
		logger.Float64("equity", m.equity),
	)
	return net
}
