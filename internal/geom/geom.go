// Package geom holds the pure geometry used to move turtles around the surface.
//
// Angles are in degrees. Screen coordinates grow right and down, so 0° faces east,
// 90° south and 270° north.
package geom

import "math"

// NormalizeAngle maps any angle into [0, 360).
func NormalizeAngle(degrees float64) float64 {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0
	}
	a := math.Mod(degrees, 360)
	if a < 0 {
		a += 360
	}
	// a tiny negative remainder rounds up to exactly 360 when shifted
	if a >= 360 {
		a = 0
	}
	return a
}

func ToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Advance returns the point reached by moving distance units from (x, y) at angle.
func Advance(angle, distance, x, y float64) (float64, float64) {
	rad := ToRadians(angle)
	return x + distance*math.Cos(rad), y + distance*math.Sin(rad)
}

// Round rounds v to the given number of decimal places; negative places round to tens, hundreds...
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Distance between two points by the Pythagorean relation.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// Within reports whether (x, y) lies inside [0,width]x[0,height].
func Within(x, y, width, height float64) bool {
	return x >= 0 && y >= 0 && x <= width && y <= height
}
