package fancurve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHysteresisCurveDeadband(t *testing.T) {
	inner := NewLinearCurve([]Point{{Temp: 0, Percent: 0}, {Temp: 100, Percent: 100}})
	curve := NewHysteresisCurve(inner, 3, 3)

	assert.Equal(t, 50, curve.GetSpeed(50), "first observation always evaluates the inner curve")
	assert.Equal(t, 50, curve.GetSpeed(52), "delta of 2 is within the deadband")
	assert.Equal(t, 53, curve.GetSpeed(53), "delta of 3 meets the threshold and resamples")
	assert.Equal(t, 53, curve.GetSpeed(51), "delta of -2 from the new baseline stays in the deadband")
}

func TestHysteresisCurveZeroThresholdTracksInput(t *testing.T) {
	inner := NewLinearCurve([]Point{{Temp: 0, Percent: 0}, {Temp: 100, Percent: 100}})
	curve := NewHysteresisCurve(inner, 0, 0)

	assert.Equal(t, 40, curve.GetSpeed(40))
	assert.Equal(t, 41, curve.GetSpeed(41))
	assert.Equal(t, 39, curve.GetSpeed(39))
}

func TestHysteresisCurveNegativeThresholdsClampToZero(t *testing.T) {
	inner := NewLinearCurve([]Point{{Temp: 0, Percent: 0}, {Temp: 100, Percent: 100}})
	curve := NewHysteresisCurve(inner, -5, -5)

	assert.Equal(t, 0, curve.upperThreshold)
	assert.Equal(t, 0, curve.lowerThreshold)
}

func TestHysteresisCurveStability(t *testing.T) {
	inner := NewLinearCurve([]Point{{Temp: 0, Percent: 0}, {Temp: 100, Percent: 100}})
	upper, lower := 5, 4
	curve := NewHysteresisCurve(inner, upper, lower)

	baseline := curve.GetSpeed(50)

	for temp := 50; temp < 50+upper; temp++ {
		assert.Equal(t, baseline, curve.GetSpeed(temp), "within upper deadband speed must not change")
	}
}
