package engine

import (
	"math"
	"time"
)

// Cooperative volume fade parameters: 20 discrete steps over 100ms,
// sleeping between each and setting the sink's volume stage at each step,
// rather than a sample-accurate ramp inside a streamer.
const (
	fadeSteps       = 20
	fadeDuration    = 100 * time.Millisecond
	fadeStepDuration = fadeDuration / fadeSteps
	fadeEpsilon     = 0.001
)

// fadeVolume linearly ramps the sink's volume from its current value to
// target over fadeSteps steps, blocking the calling goroutine (the
// engine's command loop) for the duration of the ramp. Used for
// play/pause/stop transitions so the output never clicks on a hard gain
// jump.
func fadeVolume(sink *outputSink, target float64) {
	start := sink.Volume()
	if math.Abs(start-target) < fadeEpsilon {
		return
	}
	for step := 1; step <= fadeSteps; step++ {
		frac := float64(step) / float64(fadeSteps)
		sink.SetVolume(start + (target-start)*frac)
		if step < fadeSteps {
			time.Sleep(fadeStepDuration)
		}
	}
}
