package audio

import (
	"math"
	"math/rand"
	"testing"

	"audido/internal/dsp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainAll(s *BufferedSource) []float64 {
	var out []float64
	for {
		v, ok := s.nextSample()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func monoTonePayload(n int, sampleRate int) (*Payload, []float32) {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / float64(sampleRate)))
	}
	meta := Metadata{SampleRate: sampleRate, NumChannels: 1, ChannelLayout: Mono}
	return NewPayload(meta, samples), samples
}

// Scenario A — pass-through sanity.
func TestScenarioA_PassThrough(t *testing.T) {
	const sr = 44100
	payload, original := monoTonePayload(sr, sr)

	eq := dsp.NewEqualizer(sr, 1, nil)
	rt := make(chan RealtimeCommand, 8)
	src := payload.NewSource(eq, true, rt)

	out := drainAll(src)
	require.Len(t, out, sr)
	for i, v := range out {
		assert.InDelta(t, float64(original[i]), v, 1e-9)
	}
}

// Scenario B — master gain.
func TestScenarioB_MasterGain(t *testing.T) {
	const sr = 44100
	payload, original := monoTonePayload(sr, sr)

	eq := dsp.NewEqualizer(sr, 1, nil)
	gainDB := 6.0
	linearGain := math.Pow(10, gainDB/20)
	eq.SetMasterGain(linearGain)
	assert.InDelta(t, 1.9953, linearGain, 1e-3)

	rt := make(chan RealtimeCommand, 8)
	src := payload.NewSource(eq, true, rt)

	out := drainAll(src)
	require.Len(t, out, sr)
	for i, v := range out {
		assert.InDelta(t, float64(original[i])*linearGain, v, 1e-6)
	}
}

// Scenario C — peaking band, coefficient smoothness under a live update.
func TestScenarioC_NoClickOnLiveUpdate(t *testing.T) {
	const sr = 44100
	rng := rand.New(rand.NewSource(1))
	samples := make([]float32, sr)
	for i := range samples {
		samples[i] = float32(rng.Float64()*2 - 1)
	}
	meta := Metadata{SampleRate: sr, NumChannels: 1, ChannelLayout: Mono}
	payload := NewPayload(meta, samples)

	band := dsp.FilterNode{Type: dsp.Peaking, Freq: 1000, Gain: 6, Q: 1, Order: 2}
	eq := dsp.NewEqualizer(sr, 1, []dsp.FilterNode{band})

	rt := make(chan RealtimeCommand, 8)
	src := payload.NewSource(eq, true, rt)

	var out []float64
	half := sr / 2
	for i := 0; i < half; i++ {
		v, ok := src.nextSample()
		require.True(t, ok)
		out = append(out, v)
	}

	updated := dsp.FilterNode{Type: dsp.Peaking, Freq: 1000, Gain: 9, Q: 1, Order: 2}
	rt <- RealtimeCommand{Kind: RTUpdateEqFilter, FilterIndex: 0, Filter: updated}

	for i := half; i < sr; i++ {
		v, ok := src.nextSample()
		require.True(t, ok)
		out = append(out, v)
	}

	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, math.Abs(out[i]-out[i-1]), 0.5, "click at sample %d", i)
	}
}

// Remaining/TotalDuration reporting for the output device.
func TestRemainingAndDuration(t *testing.T) {
	const sr = 1000
	payload, _ := monoTonePayload(sr, sr)
	eq := dsp.NewEqualizer(sr, 1, nil)
	rt := make(chan RealtimeCommand, 1)
	src := payload.NewSource(eq, false, rt)

	assert.Equal(t, int64(sr), src.Remaining())
	assert.InDelta(t, 1.0, src.TotalDuration(), 1e-9)

	for i := 0; i < sr/2; i++ {
		src.nextSample()
	}
	assert.Equal(t, int64(sr/2), src.Remaining())
}

// Boundary: zero samples available signals end of stream immediately.
func TestEmptyBufferIsImmediateEOF(t *testing.T) {
	meta := Metadata{SampleRate: 44100, NumChannels: 1, ChannelLayout: Mono}
	payload := NewPayload(meta, nil)
	eq := dsp.NewEqualizer(44100, 1, nil)
	src := payload.NewSource(eq, false, make(chan RealtimeCommand))

	_, ok := src.nextSample()
	assert.False(t, ok)
}
