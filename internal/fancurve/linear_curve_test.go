package fancurve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearCurveInterpolation(t *testing.T) {
	curve := NewLinearCurve([]Point{{Temp: 40, Percent: 30}, {Temp: 60, Percent: 70}})

	assert.Equal(t, 50, curve.GetSpeed(50), "midpoint should interpolate to 50")
	assert.Equal(t, 30, curve.GetSpeed(39), "below lowest point clamps to first percent")
	assert.Equal(t, 70, curve.GetSpeed(61), "above highest point clamps to last percent")
}

func TestLinearCurveExactMatch(t *testing.T) {
	curve := NewLinearCurve([]Point{{Temp: 40, Percent: 30}, {Temp: 60, Percent: 70}})

	assert.Equal(t, 30, curve.GetSpeed(40))
	assert.Equal(t, 70, curve.GetSpeed(60))
}

func TestLinearCurveEmptyIsSafeHot(t *testing.T) {
	curve := NewLinearCurve(nil)

	assert.Equal(t, 100, curve.GetSpeed(50), "empty curve must default to 100 percent")
}

func TestLinearCurveSinglePoint(t *testing.T) {
	curve := NewLinearCurve([]Point{{Temp: 50, Percent: 40}})

	assert.Equal(t, 40, curve.GetSpeed(10))
	assert.Equal(t, 40, curve.GetSpeed(50))
	assert.Equal(t, 40, curve.GetSpeed(90))
}

func TestLinearCurvePercentClampedOnInsert(t *testing.T) {
	curve := NewLinearCurve(nil)
	curve.AddPoint(10, 250)
	curve.AddPoint(20, -5)

	assert.Equal(t, 100, curve.GetSpeed(10))
	assert.Equal(t, 0, curve.GetSpeed(20))
}

func TestLinearCurveUpdateAndRemovePoint(t *testing.T) {
	curve := NewLinearCurve([]Point{{Temp: 40, Percent: 30}, {Temp: 60, Percent: 70}})

	curve.UpdatePoint(40, 50)
	assert.Equal(t, 50, curve.GetSpeed(40))

	curve.RemovePoint(40)
	assert.Equal(t, 1, curve.PointsNum())
	assert.Equal(t, 70, curve.GetSpeed(10), "only remaining point extrapolates constant")
}

func TestLinearCurveTotality(t *testing.T) {
	curve := NewLinearCurve([]Point{{Temp: 30, Percent: 20}, {Temp: 50, Percent: 60}, {Temp: 80, Percent: 100}})

	for temp := -50; temp <= 200; temp++ {
		speed := curve.GetSpeed(temp)
		assert.GreaterOrEqual(t, speed, 0)
		assert.LessOrEqual(t, speed, 100)
	}
}
