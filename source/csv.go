package source

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/fxsim/lbgo/types"
)

// csvTimestamp accepts the timestamp layouts seen in broker and MT
// exports.
type csvTimestamp struct {
	time.Time
}

var csvLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04",
	"2006-01-02",
}

func (t *csvTimestamp) UnmarshalCSV(v string) error {
	for _, layout := range csvLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", v)
}

func (t csvTimestamp) MarshalCSV() (string, error) {
	return t.UTC().Format("2006-01-02 15:04:05"), nil
}

type csvBar struct {
	Timestamp csvTimestamp `csv:"timestamp"`
	Open      float64      `csv:"open"`
	High      float64      `csv:"high"`
	Low       float64      `csv:"low"`
	Close     float64      `csv:"close"`
	Volume    float64      `csv:"volume"`
}

// CSVSource loads bars from a CSV file with columns
// timestamp,open,high,low,close[,volume].
type CSVSource struct {
	Path string
	// CleanInput applies Clean before returning.
	CleanInput bool
}

func (s *CSVSource) Bars(ctx context.Context) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}

	bars := make([]types.Bar, len(rows))
	for i, r := range rows {
		bars[i] = types.Bar{
			Time:   r.Timestamp.Time,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if s.CleanInput {
		bars = Clean(bars)
	}
	return bars, nil
}
