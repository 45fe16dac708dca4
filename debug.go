package depthfx

import "time"

// debugStats holds per-tick timings. Only populated when the effect is in
// debug mode.
type debugStats struct {
	inputTime time.Duration
	frameTime time.Duration
	ran       bool
}

// debugLog reports tick timings and the loop state at debug level.
func (e *Effect) debugLog(stats debugStats) {
	if !e.debug {
		return
	}
	Logger().Debug("tick",
		"input", stats.inputTime,
		"frame", stats.frameTime,
		"total", stats.inputTime+stats.frameTime,
		"state", e.State().String(),
		"ran", stats.ran,
		"progress", e.driver.Uniforms().Progress)
}
