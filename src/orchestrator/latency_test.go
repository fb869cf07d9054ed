package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyWindow_Empty(t *testing.T) {
	w := newLatencyWindow(100)
	assert.Equal(t, time.Duration(0), w.Average())
}

func TestLatencyWindow_PartialFill(t *testing.T) {
	w := newLatencyWindow(100)
	w.Add(10 * time.Millisecond)
	w.Add(30 * time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, w.Average())
}

func TestLatencyWindow_BoundedToLastN(t *testing.T) {
	w := newLatencyWindow(100)

	// 150 samples; only 51ms..150ms must remain in the window
	for i := 1; i <= 150; i++ {
		w.Add(time.Duration(i) * time.Millisecond)
	}

	// mean of 51..150 is 100.5ms
	assert.Equal(t, 100500*time.Microsecond, w.Average())
}

func TestLatencyWindow_DefaultSize(t *testing.T) {
	w := newLatencyWindow(0)
	assert.Len(t, w.samples, 100)
}

func TestLatencyWindow_Reset(t *testing.T) {
	w := newLatencyWindow(10)
	w.Add(5 * time.Millisecond)
	w.Reset()

	assert.Equal(t, time.Duration(0), w.Average())
}
