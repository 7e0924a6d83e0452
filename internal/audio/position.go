package audio

import (
	"math"
	"sync/atomic"
)

// PositionTracker stores the current interleaved-sample index in an atomic
// cell. It is a monotonic hint for reporting purposes, not a
// synchronization point: the audio iterator is the sole writer during
// normal playback (incrementing by one per emitted sample), while Seek and
// Reset may be called from the engine goroutine between sources.
type PositionTracker struct {
	index       atomic.Int64
	total       int64
	sampleRate  int
	numChannels int
}

// NewPositionTracker builds a tracker for a buffer of totalSamples
// interleaved samples (not frames) at the given sample rate/channel count.
func NewPositionTracker(totalSamples int64, sampleRate, numChannels int) *PositionTracker {
	return &PositionTracker{total: totalSamples, sampleRate: sampleRate, numChannels: numChannels}
}

// Index returns the current interleaved-sample index.
func (p *PositionTracker) Index() int64 { return p.index.Load() }

// Total returns the immutable total sample count.
func (p *PositionTracker) Total() int64 { return p.total }

// Advance moves the index forward by n interleaved samples, clamped to total.
func (p *PositionTracker) Advance(n int64) {
	next := p.index.Load() + n
	if next > p.total {
		next = p.total
	}
	p.index.Store(next)
}

// PositionSeconds converts the current index to seconds:
// (index / channels) / sampleRate.
func (p *PositionTracker) PositionSeconds() float64 {
	if p.sampleRate == 0 || p.numChannels == 0 {
		return 0
	}
	idx := p.index.Load()
	return (float64(idx) / float64(p.numChannels)) / float64(p.sampleRate)
}

// DurationSeconds converts the total sample count to seconds.
func (p *PositionTracker) DurationSeconds() float64 {
	if p.sampleRate == 0 || p.numChannels == 0 {
		return 0
	}
	return (float64(p.total) / float64(p.numChannels)) / float64(p.sampleRate)
}

// SeekSeconds computes index = clamp(round(t*Fs)*channels, 0, total) and
// stores it.
func (p *PositionTracker) SeekSeconds(t float64) {
	if t < 0 {
		t = 0
	}
	frame := math.Round(t * float64(p.sampleRate))
	idx := int64(frame) * int64(p.numChannels)
	if idx < 0 {
		idx = 0
	}
	if idx > p.total {
		idx = p.total
	}
	p.index.Store(idx)
}

// Reset sets the index back to 0.
func (p *PositionTracker) Reset() {
	p.index.Store(0)
}
