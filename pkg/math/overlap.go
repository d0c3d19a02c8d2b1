package math

import "math"

// orient returns the signed doubled area of triangle abc, snapped to zero
// when it is within Epsilon.
func orient(a, b, c Vec2) float64 {
	o := b.Sub(a).Cross(c.Sub(a))
	if math.Abs(o) <= Epsilon {
		return 0
	}
	return o
}

// PointInTriangle reports whether p lies inside or on the border of triangle abc.
// Both windings are accepted. Degenerate triangles contain no points.
func PointInTriangle(p, a, b, c Vec2) bool {
	if orient(a, b, c) == 0 {
		return false
	}
	d1 := orient(a, b, p)
	d2 := orient(b, c, p)
	d3 := orient(c, a, p)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// PointInConvexPolygon reports whether p lies inside or on the border of the
// convex polygon poly. Degenerate polygons contain no points.
func PointInConvexPolygon(p Vec2, poly []Vec2) bool {
	if len(poly) < 3 {
		return false
	}
	var hasNeg, hasPos, hasArea bool
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		if orient(poly[0], a, b) != 0 {
			hasArea = true
		}
		d := orient(a, b, p)
		if d < 0 {
			hasNeg = true
		} else if d > 0 {
			hasPos = true
		}
	}
	return hasArea && !(hasNeg && hasPos)
}

// SegmentDistance returns the distance from p to the segment ab.
func SegmentDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq <= Epsilon*Epsilon {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(ab.Scale(t)))
}

// SegmentIntersectsCircle reports whether any point of segment ab lies within
// radius r of center.
func SegmentIntersectsCircle(a, b, center Vec2, r float64) bool {
	return SegmentDistance(center, a, b) <= r
}

// onSegment reports whether p, known to be collinear with ab, lies on ab.
func onSegment(p, a, b Vec2) bool {
	return p.X <= math.Max(a.X, b.X)+Epsilon && p.X >= math.Min(a.X, b.X)-Epsilon &&
		p.Y <= math.Max(a.Y, b.Y)+Epsilon && p.Y >= math.Min(a.Y, b.Y)-Epsilon
}

// SegmentsIntersect reports whether segments ab and cd share at least one point.
func SegmentsIntersect(a, b, c, d Vec2) bool {
	o1 := orient(a, b, c)
	o2 := orient(a, b, d)
	o3 := orient(c, d, a)
	o4 := orient(c, d, b)

	if ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0)) {
		return true
	}

	// Collinear touching cases
	if o1 == 0 && onSegment(c, a, b) {
		return true
	}
	if o2 == 0 && onSegment(d, a, b) {
		return true
	}
	if o3 == 0 && onSegment(a, c, d) {
		return true
	}
	if o4 == 0 && onSegment(b, c, d) {
		return true
	}
	return false
}

// TriangleCircleOverlap reports whether triangle tri and the disc (center, r)
// share any point. A radius at or below Epsilon never overlaps.
func TriangleCircleOverlap(tri [3]Vec2, center Vec2, r float64) bool {
	if r <= Epsilon {
		return false
	}
	if PointInTriangle(center, tri[0], tri[1], tri[2]) {
		return true
	}
	for i := 0; i < 3; i++ {
		if SegmentIntersectsCircle(tri[i], tri[(i+1)%3], center, r) {
			return true
		}
	}
	return false
}

// TriangleQuadOverlap reports whether triangle tri and the convex quadrilateral
// quad share any point.
func TriangleQuadOverlap(tri [3]Vec2, quad [4]Vec2) bool {
	for _, p := range tri {
		if PointInConvexPolygon(p, quad[:]) {
			return true
		}
	}
	for _, q := range quad {
		if PointInTriangle(q, tri[0], tri[1], tri[2]) {
			return true
		}
	}
	for i := 0; i < 3; i++ {
		a, b := tri[i], tri[(i+1)%3]
		for j := 0; j < 4; j++ {
			if SegmentsIntersect(a, b, quad[j], quad[(j+1)%4]) {
				return true
			}
		}
	}
	return false
}

// CapsuleQuad returns the rectangle swept by a disc of radius r moving from a
// to b, offset perpendicular to the motion on both ends. ok is false when the
// centers coincide or the radius is degenerate.
func CapsuleQuad(a, b Vec2, r float64) (quad [4]Vec2, ok bool) {
	if r <= Epsilon {
		return quad, false
	}
	dir := b.Sub(a)
	if dir.Length() <= Epsilon {
		return quad, false
	}
	n := dir.Normalize().Perp().Scale(r)
	return [4]Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, true
}
