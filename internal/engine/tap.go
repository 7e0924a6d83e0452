package engine

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// tap is a streamer wrapper sitting after volume/speed in the sink's
// pipeline and before the final Ctrl. Besides feeding the spectrum
// visualizer's ring buffer, it watches for full-scale samples: since the
// equalizer's master gain and band boosts are user-adjustable and can
// easily drive a track past 0dBFS, the engine needs a way to tell the UI
// "the current EQ settings are clipping" without the UI polling raw
// samples itself.
type tap struct {
	s    beep.Streamer
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int

	clipped atomic.Bool
}

func newTap(s beep.Streamer, bufSize int) *tap {
	return &tap{s: s, buf: make([]float64, bufSize), size: bufSize}
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := 0; i < n; i++ {
		mono := (samples[i][0] + samples[i][1]) / 2
		if mono > 1 || mono < -1 {
			t.clipped.Store(true)
		}
		t.buf[t.pos] = mono
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
	return n, ok
}

func (t *tap) Err() error { return t.s.Err() }

// Samples returns the last n samples from the ring buffer in chronological order.
func (t *tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	out := make([]float64, n)
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
	return out
}

// Clipped reports whether any sample since the last ResetClipped exceeded
// full scale.
func (t *tap) Clipped() bool { return t.clipped.Load() }

// ResetClipped clears the clip flag, normally called once per UI render so
// the indicator reflects only the most recent audio.
func (t *tap) ResetClipped() { t.clipped.Store(false) }
