package fancurve

import (
	"math"
	"sort"
)

// LinearCurve is an ordered mapping temperature -> speed percent, with
// keys unique and iteration ordered by temperature. It is the default
// inner curve for HysteresisCurve.
type LinearCurve struct {
	points []Point
}

// NewLinearCurve builds a LinearCurve from an unordered set of points.
// Percent values are clamped on insertion; duplicate temperatures keep
// the last value supplied, matching AddPoint/UpdatePoint semantics.
func NewLinearCurve(points []Point) *LinearCurve {
	c := &LinearCurve{}
	for _, p := range points {
		c.AddPoint(p.Temp, p.Percent)
	}

	return c
}

// AddPoint inserts or replaces the point at temp, keeping points ordered.
func (c *LinearCurve) AddPoint(temp, percent int) {
	percent = clampPercent(percent)

	idx := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].Temp >= temp
	})

	if idx < len(c.points) && c.points[idx].Temp == temp {
		c.points[idx].Percent = percent
		return
	}

	c.points = append(c.points, Point{})
	copy(c.points[idx+1:], c.points[idx:])
	c.points[idx] = Point{Temp: temp, Percent: percent}
}

// UpdatePoint is an alias for AddPoint: both upsert by temperature.
func (c *LinearCurve) UpdatePoint(temp, percent int) {
	c.AddPoint(temp, percent)
}

// RemovePoint deletes the point at temp, if present.
func (c *LinearCurve) RemovePoint(temp int) {
	idx := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].Temp >= temp
	})

	if idx < len(c.points) && c.points[idx].Temp == temp {
		c.points = append(c.points[:idx], c.points[idx+1:]...)
	}
}

// PointsNum returns the number of points currently on the curve.
func (c *LinearCurve) PointsNum() int {
	return len(c.points)
}

// GetSpeed implements Curve. See spec section 4.6 for the exact
// interpolation formula.
func (c *LinearCurve) GetSpeed(temp int) int {
	if len(c.points) == 0 {
		return 100
	}

	idx := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].Temp >= temp
	})

	if idx < len(c.points) && c.points[idx].Temp == temp {
		return clampPercent(c.points[idx].Percent)
	}

	hasPred := idx > 0
	hasSucc := idx < len(c.points)

	switch {
	case hasPred && hasSucc:
		pred := c.points[idx-1]
		succ := c.points[idx]

		return clampPercent(linearInterpolate(temp, pred, succ))
	case hasPred:
		return clampPercent(c.points[idx-1].Percent)
	case hasSucc:
		return clampPercent(c.points[idx].Percent)
	default:
		return 100
	}
}

// linearInterpolate computes round(((y1-y2)*t + x1*y2 - x2*y1) / (x1-x2))
// for predecessor (x1,y1) and successor (x2,y2).
func linearInterpolate(t int, pred, succ Point) int {
	x1, y1 := float64(pred.Temp), float64(pred.Percent)
	x2, y2 := float64(succ.Temp), float64(succ.Percent)
	tf := float64(t)

	value := ((y1-y2)*tf + x1*y2 - x2*y1) / (x1 - x2)

	return int(math.Round(value))
}
