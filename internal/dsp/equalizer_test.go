package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func countSections(eq *Equalizer) (channels, bandsOK, sectionsOK bool) {
	channels = len(eq.processors) == eq.numChannels
	bandsOK = true
	sectionsOK = true
	for ch := range eq.processors {
		if len(eq.processors[ch]) != len(eq.filters) {
			bandsOK = false
		}
		for band := range eq.processors[ch] {
			want := eq.filters[band].SectionCount()
			if len(eq.processors[ch][band]) != want {
				sectionsOK = false
			}
		}
	}
	return
}

// Invariant 2 (structural): after any sequence of parameter-change
// operations, the processor tensor shape matches numChannels/filters/order.
func TestEqualizerStructuralInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChannels := rapid.IntRange(0, 4).Draw(t, "channels")
		eq := NewEqualizer(44100, numChannels, nil)

		ops := rapid.IntRange(0, 30).Draw(t, "numOps")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				n := rapid.IntRange(1, MaxEQFilters).Draw(t, "bandCount")
				filters := make([]FilterNode, n)
				for j := range filters {
					filters[j] = NewFilterNode(float64(100 * (j + 1)))
					filters[j].Order = rapid.IntRange(MinOrder, MaxOrder).Draw(t, "order")
				}
				eq.SetAllFilters(filters)
			case 1:
				if len(eq.filters) > 0 {
					idx := rapid.IntRange(0, len(eq.filters)-1).Draw(t, "idx")
					n := eq.filters[idx]
					n.Order = rapid.IntRange(MinOrder, MaxOrder).Draw(t, "newOrder")
					eq.UpdateFilter(idx, n)
				}
			case 2:
				eq.SetNumChannels(rapid.IntRange(0, 4).Draw(t, "newChannels"))
			case 3:
				eq.SetPreset(Preset(rapid.IntRange(0, 5).Draw(t, "preset")))
			case 4:
				if len(eq.filters) > 0 {
					idx := rapid.IntRange(0, len(eq.filters)-1).Draw(t, "resetIdx")
					_ = eq.ResetFilterNode(idx)
				}
			}

			channels, bands, sections := countSections(eq)
			require.True(t, channels, "channel count mismatch")
			require.True(t, bands, "band count mismatch")
			require.True(t, sections, "section count mismatch")
		}
	})
}

// Invariant 4 (magnitude/response consistency).
func TestResponseConsistency(t *testing.T) {
	eq := NewEqualizer(44100, 2, []FilterNode{
		{Type: Peaking, Freq: 1000, Gain: 6, Q: 1, Order: 2},
		{Type: LowShelf, Freq: 100, Gain: 3, Q: 0.707, Order: 2},
	})
	eq.SetMasterGain(math.Pow(10, 3.0/20))

	freq := 1000.0
	sum := eq.BandMagnitudeDB(0, freq) + eq.BandMagnitudeDB(1, freq) + 20*math.Log10(eq.MasterGain())
	assert.InDelta(t, sum, eq.ResponseDB(freq), 1e-4)
}

// Boundary: zero-channel frames are a no-op.
func TestZeroChannelsIsNoOp(t *testing.T) {
	eq := NewEqualizer(44100, 0, []FilterNode{NewFilterNode(1000)})
	frame := []float64{0.5, -0.25, 0.1}
	want := append([]float64(nil), frame...)
	eq.ProcessFrame(frame)
	assert.Equal(t, want, frame)
}

// Boundary: an empty filter set with master gain 1 is a pass-through.
func TestEmptyFiltersPassThrough(t *testing.T) {
	eq := NewEqualizer(44100, 2, nil)
	frame := []float64{0.1, -0.2, 0.3, -0.4}
	want := append([]float64(nil), frame...)
	eq.ProcessFrame(frame)
	assert.Equal(t, want, frame)
}

// Out-of-range frequency returns 0 dB.
func TestResponseOutOfRangeIsZero(t *testing.T) {
	eq := NewEqualizer(44100, 2, []FilterNode{NewFilterNode(1000)})
	assert.Equal(t, 0.0, eq.ResponseDB(0))
	assert.Equal(t, 0.0, eq.ResponseDB(44100))
	assert.Equal(t, 0.0, eq.ResponseDB(-10))
}

// Scenario D (order change): chain length grows from 1 to 2; the first
// section's state is unchanged by the growth.
func TestOrderIncreasePreservesFirstSectionState(t *testing.T) {
	eq := NewEqualizer(44100, 1, []FilterNode{
		{Type: Peaking, Freq: 1000, Gain: 6, Q: 1, Order: 2},
	})
	for i := 0; i < 40; i++ {
		frame := []float64{math.Sin(float64(i) * 0.3)}
		eq.ProcessFrame(frame)
	}
	before := eq.processors[0][0][0]

	eq.UpdateFilter(0, FilterNode{Type: Peaking, Freq: 1000, Gain: 6, Q: 1, Order: 4})

	require.Len(t, eq.processors[0][0], 2)
	after := eq.processors[0][0][0]
	assert.Equal(t, before.z1, after.z1)
	assert.Equal(t, before.z2, after.z2)
}

func TestResetFilterNodeInvalidIndex(t *testing.T) {
	eq := NewEqualizer(44100, 1, []FilterNode{NewFilterNode(1000)})
	assert.Error(t, eq.ResetFilterNode(5))
}
