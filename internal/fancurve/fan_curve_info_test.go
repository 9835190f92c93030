package fancurve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFanCurveInfoBuildCurveDefaultsThresholdsToZero(t *testing.T) {
	info := FanCurveInfo{
		Name:   "quiet",
		Points: []Point{{Temp: 40, Percent: 30}, {Temp: 60, Percent: 70}},
	}

	curve := info.BuildCurve()

	assert.Equal(t, 0, curve.upperThreshold)
	assert.Equal(t, 0, curve.lowerThreshold)
	assert.Equal(t, 50, curve.GetSpeed(50))
}

func TestFanCurveInfoBuildCurveHonorsThresholds(t *testing.T) {
	up, down := 5, 2
	info := FanCurveInfo{
		Points:         []Point{{Temp: 40, Percent: 30}, {Temp: 60, Percent: 70}},
		HysteresisUp:   &up,
		HysteresisDown: &down,
	}

	curve := info.BuildCurve()

	assert.Equal(t, 5, curve.upperThreshold)
	assert.Equal(t, 2, curve.lowerThreshold)
}
