package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamer emits a fixed sequence of stereo frames then reports EOF.
type fakeStreamer struct {
	frames [][2]float64
	pos    int
}

func (f *fakeStreamer) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) && f.pos < len(f.frames) {
		samples[n] = f.frames[f.pos]
		f.pos++
		n++
	}
	return n, n > 0
}

func (f *fakeStreamer) Err() error { return nil }

func TestVolumeStreamerAppliesGain(t *testing.T) {
	src := &fakeStreamer{frames: [][2]float64{{1, 1}, {0.5, -0.5}}}
	v := newVolumeStreamer(src, 0.5)

	out := make([][2]float64, 2)
	n, ok := v.Stream(out)
	require.True(t, ok)
	require.Equal(t, 2, n)
	assert.InDelta(t, 0.5, out[0][0], 1e-9)
	assert.InDelta(t, 0.25, out[1][0], 1e-9)
	assert.InDelta(t, -0.25, out[1][1], 1e-9)
}

func TestVolumeStreamerGainTakesEffectNextCall(t *testing.T) {
	src := &fakeStreamer{frames: [][2]float64{{1, 1}, {1, 1}, {1, 1}}}
	v := newVolumeStreamer(src, 1.0)

	out := make([][2]float64, 1)
	v.Stream(out)
	assert.InDelta(t, 1.0, out[0][0], 1e-9)

	v.SetGain(0.0)
	v.Stream(out)
	assert.InDelta(t, 0.0, out[0][0], 1e-9)
}

func TestSpeedStreamerUnitySpeedIsIdentity(t *testing.T) {
	frames := [][2]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	src := &fakeStreamer{frames: frames}
	sp := newSpeedStreamer(src, 1.0)

	out := make([][2]float64, len(frames))
	n, ok := sp.Stream(out)
	require.True(t, ok)
	require.Equal(t, len(frames), n)
	for i := range frames {
		assert.Equal(t, frames[i], out[i])
	}
}

func TestSpeedStreamerDoubleSpeedSkipsFrames(t *testing.T) {
	frames := [][2]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}}
	src := &fakeStreamer{frames: frames}
	sp := newSpeedStreamer(src, 2.0)

	out := make([][2]float64, 3)
	n, ok := sp.Stream(out)
	require.True(t, ok)
	require.Equal(t, 3, n)
	// At 2x speed the streamer advances two source frames per output
	// frame, so indices 0, 2, 4 are the emitted samples.
	assert.Equal(t, frames[0], out[0])
	assert.Equal(t, frames[2], out[1])
	assert.Equal(t, frames[4], out[2])
}

func TestSpeedStreamerReportsShortReadAtEOF(t *testing.T) {
	frames := [][2]float64{{1, 1}, {2, 2}}
	src := &fakeStreamer{frames: frames}
	sp := newSpeedStreamer(src, 1.0)

	out := make([][2]float64, 5)
	n, ok := sp.Stream(out)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = sp.Stream(out)
	assert.False(t, ok)
	assert.Equal(t, 0, n)
}
