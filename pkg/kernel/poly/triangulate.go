package poly

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// triangulate splits a planar polygon with holes into triangles wound
// counter-clockwise about n. Holes are bridged into the outer loop and the
// result is ear clipped.
func triangulate(outer []v3.Vec, holes [][]v3.Vec, n v3.Vec) [][3]v3.Vec {
	if len(outer) < 3 {
		return nil
	}
	proj := projector(n)

	var pts []v3.Vec
	var flat []pt2
	add := func(loop []v3.Vec, wantCCW bool) []int {
		p2 := make([]pt2, len(loop))
		for i, p := range loop {
			p2[i] = proj(p)
		}
		if (area2(p2) > 0) != wantCCW {
			loop = reversePoints(loop)
			for i, j := 0, len(p2)-1; i < j; i, j = i+1, j-1 {
				p2[i], p2[j] = p2[j], p2[i]
			}
		}
		idx := make([]int, len(loop))
		for i := range loop {
			idx[i] = len(pts)
			pts = append(pts, loop[i])
			flat = append(flat, p2[i])
		}
		return idx
	}

	ring := add(outer, true)
	var holeRings [][]int
	for _, h := range holes {
		if len(h) >= 3 {
			holeRings = append(holeRings, add(h, false))
		}
	}
	ring = bridgeHoles(ring, holeRings, flat)
	return earClip(ring, pts, flat)
}

// bridgeHoles splices each hole into ring through a bridge edge from the
// hole's right-most vertex to the nearest visible ring vertex.
func bridgeHoles(ring []int, holes [][]int, flat []pt2) []int {
	rightmost := func(h []int) int {
		best := 0
		for i, v := range h {
			if flat[v].x > flat[h[best]].x {
				best = i
			}
		}
		return best
	}
	sort.SliceStable(holes, func(i, j int) bool {
		return flat[holes[i][rightmost(holes[i])]].x > flat[holes[j][rightmost(holes[j])]].x
	})

	for hi, h := range holes {
		m := rightmost(h)
		mp := flat[h[m]]
		best, bestDist := -1, math.Inf(1)
		for i, v := range ring {
			d := math.Hypot(flat[v].x-mp.x, flat[v].y-mp.y)
			if d >= bestDist {
				continue
			}
			if !visible(mp, flat[v], ring, holes[hi:], flat) {
				continue
			}
			best, bestDist = i, d
		}
		if best < 0 {
			best = 0
		}
		spliced := make([]int, 0, len(ring)+len(h)+2)
		spliced = append(spliced, ring[:best+1]...)
		spliced = append(spliced, h[m:]...)
		spliced = append(spliced, h[:m+1]...)
		spliced = append(spliced, ring[best:]...)
		ring = spliced
	}
	return ring
}

func visible(a, b pt2, ring []int, holes [][]int, flat []pt2) bool {
	crosses := func(loop []int) bool {
		for i := range loop {
			c, d := flat[loop[i]], flat[loop[(i+1)%len(loop)]]
			if segmentsCross(a, b, c, d) {
				return true
			}
		}
		return false
	}
	if crosses(ring) {
		return false
	}
	for _, h := range holes {
		if crosses(h) {
			return false
		}
	}
	return true
}

func earClip(ring []int, pts []v3.Vec, flat []pt2) [][3]v3.Vec {
	idx := append([]int(nil), ring...)
	var out [][3]v3.Vec
	emit := func(a, b, c int) {
		out = append(out, [3]v3.Vec{pts[a], pts[b], pts[c]})
	}

	const eps = 1e-12
	for len(idx) > 3 {
		n := len(idx)
		clipped := false
		for i := 0; i < n; i++ {
			a, b, c := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			if cross2(flat[a], flat[b], flat[c]) <= eps {
				continue
			}
			if containsOther(idx, a, b, c, flat) {
				continue
			}
			emit(a, b, c)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// Degenerate input: drop a collinear vertex or force a clip so the
		// loop always terminates.
		dropped := false
		for i := 0; i < n; i++ {
			a, b, c := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			if math.Abs(cross2(flat[a], flat[b], flat[c])) <= eps {
				idx = append(idx[:i], idx[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			emit(idx[n-1], idx[0], idx[1])
			idx = idx[1:]
		}
	}
	if len(idx) == 3 && cross2(flat[idx[0]], flat[idx[1]], flat[idx[2]]) > eps {
		emit(idx[0], idx[1], idx[2])
	}
	return out
}

// containsOther reports whether any ring vertex other than the corners
// (or their bridge duplicates) lies inside or on triangle abc.
func containsOther(idx []int, a, b, c int, flat []pt2) bool {
	pa, pb, pc := flat[a], flat[b], flat[c]
	for _, v := range idx {
		p := flat[v]
		if v == a || v == b || v == c || p == pa || p == pb || p == pc {
			continue
		}
		if cross2(pa, pb, p) >= 0 && cross2(pb, pc, p) >= 0 && cross2(pc, pa, p) >= 0 {
			return true
		}
	}
	return false
}
