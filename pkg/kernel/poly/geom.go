package poly

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// newell returns the area-weighted normal of a closed loop. Its length is
// twice the loop's area; it points along the right-hand rule.
func newell(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

func centroid(pts []v3.Vec) v3.Vec {
	var c v3.Vec
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(pts)))
}

func near(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

func lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

func distToLine(p, a, u v3.Vec) float64 {
	d := p.Sub(a)
	return d.Sub(u.MulScalar(d.Dot(u))).Length()
}

// onSegment reports whether p lies strictly inside segment ab and returns
// its parameter along ab.
func onSegment(p, a, b v3.Vec, tol float64) (float64, bool) {
	ab := b.Sub(a)
	l := ab.Length()
	if l <= tol {
		return 0, false
	}
	u := ab.MulScalar(1 / l)
	s := p.Sub(a).Dot(u)
	if s <= tol || s >= l-tol {
		return 0, false
	}
	if distToLine(p, a, u) > tol {
		return 0, false
	}
	return s / l, true
}

// segmentsOverlap reports whether segments ab and cd are collinear and share
// a stretch longer than tol.
func segmentsOverlap(a, b, c, d v3.Vec, tol float64) bool {
	ab := b.Sub(a)
	l := ab.Length()
	if l <= tol {
		return false
	}
	u := ab.MulScalar(1 / l)
	if distToLine(c, a, u) > tol || distToLine(d, a, u) > tol {
		return false
	}
	tc := c.Sub(a).Dot(u)
	td := d.Sub(a).Dot(u)
	lo, hi := math.Min(tc, td), math.Max(tc, td)
	return math.Min(hi, l)-math.Max(lo, 0) > tol
}

// collinear reports whether b lies on the segment from a to c.
func collinear(a, b, c v3.Vec, tol float64) bool {
	ac := c.Sub(a)
	l := ac.Length()
	if l <= tol {
		return false
	}
	u := ac.MulScalar(1 / l)
	s := b.Sub(a).Dot(u)
	return s > 0 && s < l && distToLine(b, a, u) <= tol
}

// planeDeviation returns the largest distance of any point from the plane
// through origin with unit normal n.
func planeDeviation(pts []v3.Vec, origin, n v3.Vec) float64 {
	dev := 0.0
	for _, p := range pts {
		dev = math.Max(dev, math.Abs(p.Sub(origin).Dot(n)))
	}
	return dev
}

// signedVolume returns the volume enclosed by oriented polygon loops.
func signedVolume(loops [][]v3.Vec) float64 {
	vol := 0.0
	for _, loop := range loops {
		for i := 1; i+1 < len(loop); i++ {
			vol += loop[0].Dot(loop[i].Cross(loop[i+1]))
		}
	}
	return vol / 6
}

func reversePoints(pts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// ---------------------------------------------------------------------------
// Planar projection
// ---------------------------------------------------------------------------

type pt2 struct{ x, y float64 }

// projector returns a mapping onto the coordinate plane most orthogonal to
// n. Loops that wind counter-clockwise about n stay counter-clockwise.
func projector(n v3.Vec) func(v3.Vec) pt2 {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		if n.Z >= 0 {
			return func(p v3.Vec) pt2 { return pt2{p.X, p.Y} }
		}
		return func(p v3.Vec) pt2 { return pt2{p.Y, p.X} }
	case ax >= ay:
		if n.X >= 0 {
			return func(p v3.Vec) pt2 { return pt2{p.Y, p.Z} }
		}
		return func(p v3.Vec) pt2 { return pt2{p.Z, p.Y} }
	default:
		if n.Y >= 0 {
			return func(p v3.Vec) pt2 { return pt2{p.Z, p.X} }
		}
		return func(p v3.Vec) pt2 { return pt2{p.X, p.Z} }
	}
}

func area2(pts []pt2) float64 {
	a := 0.0
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func cross2(o, a, b pt2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

func pointInPolygon(p pt2, poly []pt2) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.y > p.y) != (b.y > p.y) {
			x := (b.x-a.x)*(p.y-a.y)/(b.y-a.y) + a.x
			if p.x < x {
				in = !in
			}
		}
	}
	return in
}

// segmentsCross reports whether open segments ab and cd properly intersect.
func segmentsCross(a, b, c, d pt2) bool {
	d1 := cross2(c, d, a)
	d2 := cross2(c, d, b)
	d3 := cross2(a, b, c)
	d4 := cross2(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// lineIntersect intersects the lines p+s*t1 and q+u*t2 lying in the plane
// with normal n. ok is false for parallel lines.
func lineIntersect(p, t1, q, t2, n v3.Vec) (v3.Vec, bool) {
	den := t1.Cross(t2).Dot(n)
	if math.Abs(den) < 1e-12 {
		return v3.Vec{}, false
	}
	s := q.Sub(p).Cross(t2).Dot(n) / den
	return p.Add(t1.MulScalar(s)), true
}
