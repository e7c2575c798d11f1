package geom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, expected float64
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{720.5, 0.5},
		{-90, 270},
		{-360, 0},
		{-1e-15, 0},
		{1e12 + 45, math.Mod(1e12+45, 360)},
	}
	for _, c := range cases {
		got := NormalizeAngle(c.in)
		if math.Abs(got-c.expected) > epsilon {
			t.Errorf("NormalizeAngle(%v) = %v, expected %v", c.in, got, c.expected)
		}
	}
}

func TestNormalizeAngleRange(t *testing.T) {
	for d := -1000.0; d <= 1000.0; d += 7.3 {
		got := NormalizeAngle(d)
		if got < 0 || got >= 360 {
			t.Fatalf("NormalizeAngle(%v) = %v out of [0,360)", d, got)
		}
		diff := math.Mod(got-d, 360)
		if math.Abs(diff) > epsilon && math.Abs(math.Abs(diff)-360) > epsilon {
			t.Fatalf("NormalizeAngle(%v) = %v not congruent mod 360", d, got)
		}
	}
}

func TestAdvance(t *testing.T) {
	cases := []struct {
		name         string
		angle, dist  float64
		x, y         float64
		wantX, wantY float64
	}{
		{"east", 0, 10, 0, 0, 10, 0},
		{"south", 90, 10, 0, 0, 0, 10},
		{"north", 270, 50, 100, 100, 100, 50},
		{"backwards", 0, -5, 10, 10, 5, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, y := Advance(c.angle, c.dist, c.x, c.y)
			if math.Abs(x-c.wantX) > epsilon || math.Abs(y-c.wantY) > epsilon {
				t.Errorf("got (%v,%v), expected (%v,%v)", x, y, c.wantX, c.wantY)
			}
		})
	}
}

func TestRoundAndDistance(t *testing.T) {
	if got := Round(3.14159, 2); got != 3.14 {
		t.Errorf("Round = %v", got)
	}
	if got := Round(1234, -2); got != 1200 {
		t.Errorf("Round = %v", got)
	}
	if got := Distance(0, 0, 3, 4); got != 5 {
		t.Errorf("Distance = %v", got)
	}
	if !Within(0, 200, 200, 200) || Within(-0.1, 5, 200, 200) {
		t.Errorf("Within bounds are inclusive of the edges only")
	}
}
