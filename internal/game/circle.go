package game

import (
	"image"
	"math"
)

// circleOutline rasterizes a circle of radius r around (cx, cy) with the
// midpoint algorithm. Points come in groups of four, one per quadrant:
//
//	(cx+|x|, cy+y) (cx-y, cy+|x|) (cx-|x|, cy-y) (cx+y, cy-|x|)
//
// so the first and third point of each group are the ends of a horizontal
// chord mirrored through the center.
func circleOutline(cx, cy, r int) []image.Point {
	if r <= 0 {
		return nil
	}
	pts := make([]image.Point, 0, 8*r)
	x, y, e := -r, 0, 2-2*r
	for x < 0 {
		pts = append(pts,
			image.Pt(cx-x, cy+y),
			image.Pt(cx-y, cy-x),
			image.Pt(cx+x, cy-y),
			image.Pt(cx+y, cy+x),
		)
		radius := e
		if radius <= y {
			y++
			e += y*2 + 1
		}
		if radius > x || e > y {
			x++
			e += x*2 + 1
		}
	}
	return pts
}

// circleRectArea returns the exact area of the intersection of a circle of
// radius r centered at c and the axis-aligned rectangle [x0,x1]×[y0,y1].
func circleRectArea(c Vec2, r, x0, y0, x1, y1 float64) float64 {
	if r <= 0 {
		return 0
	}
	return boxArea(x0-c.X, x1-c.X, y0-c.Y, y1-c.Y, r)
}

// boxArea is the circle (origin, r) ∩ box area, splitting the box at y = 0 so
// every half lies above the center line.
func boxArea(x0, x1, y0, y1, r float64) float64 {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y0 < 0 {
		if y1 < 0 {
			return boxArea(x0, x1, -y1, -y0, r)
		}
		return boxArea(x0, x1, 0, -y0, r) + boxArea(x0, x1, 0, y1, r)
	}
	return stripArea(x0, x1, y0, r) - stripArea(x0, x1, y1, r)
}

// stripArea is the area of the circle above the line y = h (h >= 0) between
// x0 and x1.
func stripArea(x0, x1, h, r float64) float64 {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	s := 0.0
	if h < r {
		s = math.Sqrt(r*r - h*h)
	}
	clamp := func(x float64) float64 { return math.Max(-s, math.Min(s, x)) }
	return segmentIntegral(clamp(x1), h, r) - segmentIntegral(clamp(x0), h, r)
}

// segmentIntegral is the antiderivative of sqrt(r² - x²) - h.
func segmentIntegral(x, h, r float64) float64 {
	u := math.Max(-1, math.Min(1, x/r))
	return 0.5 * (math.Sqrt(1-u*u)*x*r + r*r*math.Asin(u) - 2*h*x)
}
