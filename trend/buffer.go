package trend

// window keeps a rolling slice of recent closes and exposes the light
// statistics the filter needs without any indicator state.
type window struct {
	max int
	buf []float64
}

func newWindow(max int) *window {
	if max <= 0 {
		max = 64
	}
	return &window{max: max}
}

func (w *window) Add(v float64) {
	w.buf = append(w.buf, v)
	if len(w.buf) > w.max {
		w.buf = w.buf[len(w.buf)-w.max:]
	}
}

func (w *window) Len() int { return len(w.buf) }

// Bias counts up-moves against down-moves over the recent bars and
// returns +1/-1 once a clear majority forms, 0 otherwise.
func (w *window) Bias() int {
	if len(w.buf) < 2 {
		return 0
	}
	lookback := 6
	if lookback >= len(w.buf) {
		lookback = len(w.buf) - 1
	}
	score := 0
	for i := len(w.buf) - lookback; i < len(w.buf); i++ {
		switch {
		case w.buf[i] > w.buf[i-1]:
			score++
		case w.buf[i] < w.buf[i-1]:
			score--
		}
	}
	threshold := lookback / 3
	if threshold < 2 {
		threshold = 2
	}
	switch {
	case score >= threshold:
		return 1
	case score <= -threshold:
		return -1
	}
	return 0
}

// Slope is the least-squares slope of the recent closes.
func (w *window) Slope() float64 {
	n := len(w.buf)
	if n < 2 {
		return 0
	}
	lookback := 8
	if lookback >= n {
		lookback = n - 1
	}
	start := n - lookback - 1
	sumX, sumY, sumXY, sumXX := 0.0, 0.0, 0.0, 0.0
	idx := 0
	for i := start; i < n; i++ {
		x := float64(idx)
		y := w.buf[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		idx++
	}
	count := float64(idx)
	den := count*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (count*sumXY - sumX*sumY) / den
}
