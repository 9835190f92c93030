package fancurve

import "sync"

// HysteresisCurve decorates an inner Curve with a deadband: the inner
// curve is only re-evaluated once the temperature has moved far enough
// from the last observation, in the direction-sensitive sense described
// in spec section 4.6.
type HysteresisCurve struct {
	inner Curve

	upperThreshold int
	lowerThreshold int

	mu        sync.Mutex
	hasLast   bool
	lastTemp  int
	lastSpeed int
}

// NewHysteresisCurve wraps inner with the given non-negative thresholds.
func NewHysteresisCurve(inner Curve, upperThreshold, lowerThreshold int) *HysteresisCurve {
	return &HysteresisCurve{
		inner:          inner,
		upperThreshold: nonNegative(upperThreshold),
		lowerThreshold: nonNegative(lowerThreshold),
	}
}

// GetSpeed implements Curve.
func (h *HysteresisCurve) GetSpeed(temp int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasLast {
		speed := h.inner.GetSpeed(temp)
		h.lastTemp, h.lastSpeed, h.hasLast = temp, speed, true

		return speed
	}

	delta := temp - h.lastTemp

	threshold := h.lowerThreshold
	if delta > 0 {
		threshold = h.upperThreshold
	}

	if abs(delta) >= threshold {
		speed := h.inner.GetSpeed(temp)
		h.lastTemp, h.lastSpeed = temp, speed

		return speed
	}

	return h.lastSpeed
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
