package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// Invariant 3 (biquad stability): for any filter node within parameter
// bounds, the computed |a1| < 2 and |a2| < 1.
func TestBiquadStability(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := FilterNode{
			Type:  FilterType(rapid.IntRange(0, 6).Draw(t, "type")),
			Freq:  rapid.Float64Range(MinFreq, MaxFreq).Draw(t, "freq"),
			Gain:  rapid.Float64Range(MinGain, MaxGain).Draw(t, "gain"),
			Q:     rapid.Float64Range(MinQ, MaxQ).Draw(t, "q"),
			Order: 2,
		}
		sampleRate := rapid.SampledFrom([]float64{22050, 44100, 48000, 96000}).Draw(t, "sr")
		// Frequencies must stay below Nyquist for the cookbook formulas to be well defined.
		if n.Freq >= sampleRate/2 {
			n.Freq = sampleRate/2 - 1
		}

		var b biquad
		b.setCoefficients(n, sampleRate)
		assert.Less(t, math.Abs(b.a1), 2.0)
		assert.Less(t, math.Abs(b.a2), 1.0)
	})
}

func TestBiquadPassThroughAtUnityGainPeaking(t *testing.T) {
	n := FilterNode{Type: Peaking, Freq: 1000, Gain: 0, Q: 0.707, Order: 2}
	var b biquad
	b.setCoefficients(n, 44100)
	for i := 0; i < 100; i++ {
		x := math.Sin(float64(i) * 0.1)
		y := b.process(x)
		assert.InDelta(t, x, y, 1e-9)
	}
}

func TestBiquadCoefficientUpdatePreservesState(t *testing.T) {
	n1 := FilterNode{Type: Peaking, Freq: 1000, Gain: 6, Q: 1, Order: 2}
	n2 := FilterNode{Type: Peaking, Freq: 1000, Gain: 9, Q: 1, Order: 2}

	var b biquad
	b.setCoefficients(n1, 44100)
	for i := 0; i < 50; i++ {
		b.process(math.Sin(float64(i) * 0.2))
	}
	z1Before, z2Before := b.z1, b.z2

	b.setCoefficients(n2, 44100)
	assert.Equal(t, z1Before, b.z1)
	assert.Equal(t, z2Before, b.z2)
}
