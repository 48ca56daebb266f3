package trend

import (
	"testing"
	"time"

	"github.com/fxsim/lbgo/types"
)

func TestWindowCapsLength(t *testing.T) {
	w := newWindow(4)
	for i := 0; i < 10; i++ {
		w.Add(float64(i))
	}
	if w.Len() != 4 {
		t.Fatalf("window length %d, want 4", w.Len())
	}
}

func TestWindowBias(t *testing.T) {
	up := newWindow(16)
	for i := 0; i < 10; i++ {
		up.Add(1.1000 + float64(i)*0.0005)
	}
	if got := up.Bias(); got != 1 {
		t.Fatalf("steady climb bias %d, want 1", got)
	}

	down := newWindow(16)
	for i := 0; i < 10; i++ {
		down.Add(1.1000 - float64(i)*0.0005)
	}
	if got := down.Bias(); got != -1 {
		t.Fatalf("steady drop bias %d, want -1", got)
	}

	chop := newWindow(16)
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			chop.Add(1.1000)
		} else {
			chop.Add(1.1005)
		}
	}
	if got := chop.Bias(); got != 0 {
		t.Fatalf("choppy bias %d, want 0", got)
	}
}

func TestWindowSlope(t *testing.T) {
	w := newWindow(16)
	for i := 0; i < 10; i++ {
		w.Add(1.1000 + float64(i)*0.0005)
	}
	if got := w.Slope(); got <= 0 {
		t.Fatalf("rising slope %v, want > 0", got)
	}

	flat := newWindow(16)
	for i := 0; i < 10; i++ {
		flat.Add(1.1000)
	}
	if got := flat.Slope(); got != 0 {
		t.Fatalf("flat slope %v, want 0", got)
	}
}

func TestAllows(t *testing.T) {
	if !Allows(nil, types.Long) {
		t.Fatal("nil filter must allow everything")
	}
	f := &pinned{dir: types.None}
	if !Allows(f, types.Short) {
		t.Fatal("undecided filter must allow everything")
	}
	f.dir = types.Long
	if !Allows(f, types.Long) {
		t.Fatal("aligned direction must be allowed")
	}
	if Allows(f, types.Short) {
		t.Fatal("opposed direction must be blocked")
	}
}

type pinned struct{ dir types.Direction }

func (p *pinned) Observe(types.Bar)          {}
func (p *pinned) Direction() types.Direction { return p.dir }

func TestHMAFilterWarmUpAndRamp(t *testing.T) {
	f, err := NewHMAFilter(15, nil)
	if err != nil {
		t.Fatalf("NewHMAFilter: %v", err)
	}
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	feed := func(i int, price float64) {
		f.Observe(types.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price + 0.0002,
			Low:    price - 0.0002,
			Close:  price,
			Volume: 1000,
		})
	}

	// Warm-up: no direction before minBars closes, however clear the move.
	for i := 0; i < 10; i++ {
		feed(i, 1.1000+float64(i)*0.0010)
	}
	if got := f.Direction(); got != types.None {
		t.Fatalf("expected None during warm-up, got %v", got)
	}

	// A sustained climb past the warm-up reads as Long.
	for i := 10; i < 60; i++ {
		feed(i, 1.1000+float64(i)*0.0010)
	}
	if got := f.Direction(); got != types.Long {
		t.Fatalf("expected Long after a sustained climb, got %v", got)
	}

	// A sustained slide flips it to Short.
	for i := 60; i < 120; i++ {
		feed(i, 1.1600-float64(i-60)*0.0010)
	}
	if got := f.Direction(); got != types.Short {
		t.Fatalf("expected Short after a sustained slide, got %v", got)
	}
}
