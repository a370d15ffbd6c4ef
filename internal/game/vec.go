package game

import (
	"image"
	"math"
)

// Vec2 is a playfield vector in pixels. Y grows downward.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{v.X * k, v.Y * k}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Rotate turns v clockwise on screen by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Cell returns the grid cell containing v (floor truncation).
func (v Vec2) Cell() image.Point {
	return image.Pt(int(math.Floor(v.X)), int(math.Floor(v.Y)))
}

// maxAbsComponent returns the largest absolute axis component among vs.
func maxAbsComponent(vs ...Vec2) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, math.Max(math.Abs(v.X), math.Abs(v.Y)))
	}
	return m
}
