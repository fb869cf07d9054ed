package orchestrator

import "time"

// latencyWindow is a bounded ring of the most recent request latencies.
// The running average covers at most the last `size` completed requests.
type latencyWindow struct {
	samples []time.Duration
	next    int
	count   int
}

func newLatencyWindow(size int) *latencyWindow {
	if size <= 0 {
		size = 100
	}
	return &latencyWindow{
		samples: make([]time.Duration, size),
	}
}

func (w *latencyWindow) Add(d time.Duration) {
	w.samples[w.next] = d
	w.next = (w.next + 1) % len(w.samples)
	if w.count < len(w.samples) {
		w.count++
	}
}

func (w *latencyWindow) Average() time.Duration {
	if w.count == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range w.samples[:w.count] {
		sum += d
	}
	return sum / time.Duration(w.count)
}

func (w *latencyWindow) Reset() {
	w.next = 0
	w.count = 0
}
