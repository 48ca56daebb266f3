package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds every tunable parameter for one backtest run. It is built
// once, validated, and passed by value; nothing reads configuration from
// ambient scope.
type Config struct {
	Symbol string `mapstructure:"symbol"`

	// PipSize is the price increment of one pip (0.0001 for 4-digit
	// quotes, 0.01 for JPY pairs).
	PipSize float64 `mapstructure:"pip_size"`
	// PipValuePerLot is the account-currency value of one pip for one lot.
	PipValuePerLot float64 `mapstructure:"pip_value_per_lot"`

	// Range-building window (the reference/Asian session), HH:MM, UTC.
	RangeStart string `mapstructure:"range_start"`
	RangeEnd   string `mapstructure:"range_end"`

	// Breakout session timing, HH:MM, UTC.
	SessionOpen  string `mapstructure:"session_open"`
	SessionClose string `mapstructure:"session_close"`
	// TradingWindowHours limits breakout entries to the first N hours
	// after the session open.
	TradingWindowHours int `mapstructure:"trading_window_hours"`

	// UseTimeExit closes open trades ExitBeforeCloseMin minutes before
	// the session close.
	UseTimeExit        bool `mapstructure:"use_time_exit"`
	ExitBeforeCloseMin int  `mapstructure:"exit_before_close_min"`

	// Breakout detection.
	BreakoutBufferPips float64 `mapstructure:"breakout_buffer_pips"`
	MinRangePips       float64 `mapstructure:"min_range_pips"`
	MaxRangePips       float64 `mapstructure:"max_range_pips"`

	// Position sizing and risk limits.
	RiskPerTradePct float64 `mapstructure:"risk_per_trade_pct"`
	RiskReward      float64 `mapstructure:"risk_reward"`
	MinRiskReward   float64 `mapstructure:"min_risk_reward"`
	MaxDailyLossPct float64 `mapstructure:"max_daily_loss_pct"`
	MaxOpenTrades   int     `mapstructure:"max_open_trades"`
	MaxPositionLots float64 `mapstructure:"max_position_lots"`
	LotStep         float64 `mapstructure:"lot_step"`
	MinLot          float64 `mapstructure:"min_lot"`

	// Execution costs, charged on close.
	CommissionPerLot float64 `mapstructure:"commission_per_lot"`
	SlippagePips     float64 `mapstructure:"slippage_pips"`

	// Trailing stop: activates once the open profit reaches
	// TrailActivationRR times the initial risk, then trails the price by
	// TrailDistancePips. The stop only ever moves in the trade's favor.
	UseTrailingStop   bool    `mapstructure:"use_trailing_stop"`
	TrailActivationRR float64 `mapstructure:"trail_activation_rr"`
	TrailDistancePips float64 `mapstructure:"trail_distance_pips"`

	// Trend filter: breakout direction must agree with the filter.
	UseTrendFilter bool `mapstructure:"use_trend_filter"`
	// TrendMinBars is the warm-up before the filter reports a direction.
	TrendMinBars int `mapstructure:"trend_min_bars"`

	// Backtest accounting.
	InitialCapital float64 `mapstructure:"initial_capital"`
	// PeriodsPerYear annualizes Sharpe/Sortino (252 for daily bars,
	// 252*24 for hourly, and so on).
	PeriodsPerYear float64 `mapstructure:"periods_per_year"`
}

// Default mirrors the reference parameter set for a 4-digit major pair.
func Default() Config {
	return Config{
		Symbol:             "EURUSD",
		PipSize:            0.0001,
		PipValuePerLot:     10.0,
		RangeStart:         "00:00",
		RangeEnd:           "07:00",
		SessionOpen:        "08:00",
		SessionClose:       "16:00",
		TradingWindowHours: 2,
		UseTimeExit:        true,
		ExitBeforeCloseMin: 30,
		BreakoutBufferPips: 2,
		MinRangePips:       15,
		MaxRangePips:       100,
		RiskPerTradePct:    1.0,
		RiskReward:         2.0,
		MinRiskReward:      1.5,
		MaxDailyLossPct:    3.0,
		MaxOpenTrades:      3,
		MaxPositionLots:    1.0,
		LotStep:            0.01,
		MinLot:             0.01,
		CommissionPerLot:   7.0,
		SlippagePips:       0,
		UseTrailingStop:    true,
		TrailActivationRR:  1.0,
		TrailDistancePips:  10,
		UseTrendFilter:     false,
		TrendMinBars:       15,
		InitialCapital:     10_000,
		PeriodsPerYear:     252,
	}
}

// Validate checks that the parameters are internally consistent. It
// returns the first encountered error so the caller can surface a clear
// configuration problem before any bar is processed.
func (c Config) Validate() error {
	if c.PipSize <= 0 {
		return errors.New("PipSize must be positive")
	}
	if c.PipValuePerLot <= 0 {
		return errors.New("PipValuePerLot must be positive")
	}
	if _, err := c.Sessions(); err != nil {
		return err
	}
	if c.TradingWindowHours <= 0 {
		return errors.New("TradingWindowHours must be positive")
	}
	if c.ExitBeforeCloseMin < 0 {
		return errors.New("ExitBeforeCloseMin cannot be negative")
	}
	if c.BreakoutBufferPips < 0 {
		return errors.New("BreakoutBufferPips cannot be negative")
	}
	if c.MinRangePips <= 0 || c.MaxRangePips <= 0 {
		return errors.New("range bounds must be positive")
	}
	if c.MinRangePips > c.MaxRangePips {
		return fmt.Errorf("MinRangePips (%g) exceeds MaxRangePips (%g)", c.MinRangePips, c.MaxRangePips)
	}
	if c.RiskPerTradePct <= 0 || c.RiskPerTradePct > 50 {
		return fmt.Errorf("RiskPerTradePct (%g) must be >0 and <=50", c.RiskPerTradePct)
	}
	if c.RiskReward <= 0 {
		return fmt.Errorf("RiskReward (%g) must be positive", c.RiskReward)
	}
	if c.MinRiskReward < 0 {
		return errors.New("MinRiskReward cannot be negative")
	}
	if c.MaxDailyLossPct <= 0 || c.MaxDailyLossPct > 100 {
		return fmt.Errorf("MaxDailyLossPct (%g) must be in (0,100]", c.MaxDailyLossPct)
	}
	if c.MaxOpenTrades <= 0 {
		return errors.New("MaxOpenTrades must be positive")
	}
	if c.LotStep <= 0 {
		return errors.New("LotStep must be positive")
	}
	if c.MinLot <= 0 {
		return errors.New("MinLot must be positive")
	}
	if c.MaxPositionLots < c.MinLot {
		return fmt.Errorf("MaxPositionLots (%g) below MinLot (%g)", c.MaxPositionLots, c.MinLot)
	}
	if c.CommissionPerLot < 0 || c.SlippagePips < 0 {
		return errors.New("execution costs cannot be negative")
	}
	if c.UseTrailingStop {
		if c.TrailActivationRR < 0 {
			return errors.New("TrailActivationRR cannot be negative")
		}
		if c.TrailDistancePips <= 0 {
			return errors.New("TrailDistancePips must be positive when trailing is enabled")
		}
	}
	if c.UseTrendFilter && c.TrendMinBars <= 0 {
		return errors.New("TrendMinBars must be positive when the trend filter is enabled")
	}
	if c.InitialCapital <= 0 {
		return errors.New("InitialCapital must be positive")
	}
	if c.PeriodsPerYear <= 0 {
		return errors.New("PeriodsPerYear must be positive")
	}
	return nil
}

// Sessions parses the HH:MM window fields into minute-of-day form.
func (c Config) Sessions() (Sessions, error) {
	var s Sessions
	var err error
	if s.RangeStart, err = parseMinutes(c.RangeStart); err != nil {
		return s, fmt.Errorf("RangeStart: %w", err)
	}
	if s.RangeEnd, err = parseMinutes(c.RangeEnd); err != nil {
		return s, fmt.Errorf("RangeEnd: %w", err)
	}
	if s.SessionOpen, err = parseMinutes(c.SessionOpen); err != nil {
		return s, fmt.Errorf("SessionOpen: %w", err)
	}
	if s.SessionClose, err = parseMinutes(c.SessionClose); err != nil {
		return s, fmt.Errorf("SessionClose: %w", err)
	}
	if s.RangeStart >= s.RangeEnd {
		return s, errors.New("range window start must precede its end")
	}
	if s.RangeEnd > s.SessionOpen {
		return s, errors.New("range window must close before the session opens")
	}
	if s.SessionOpen >= s.SessionClose {
		return s, errors.New("session open must precede session close")
	}
	s.WindowEnd = s.SessionOpen + c.TradingWindowHours*60
	if s.WindowEnd > s.SessionClose {
		s.WindowEnd = s.SessionClose
	}
	return s, nil
}

// Sessions is the parsed form of the config's time-of-day windows, in
// minutes since midnight UTC.
type Sessions struct {
	RangeStart   int
	RangeEnd     int
	SessionOpen  int
	SessionClose int
	// WindowEnd is the last minute a breakout entry is allowed.
	WindowEnd int
}

// MinuteOf returns t's minute-of-day in UTC.
func MinuteOf(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

func parseMinutes(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}
