package parcel

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Point is a geographic point in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// coordDistance returns the straight coordinate-space (degree) distance from
// the point to the polygon: zero when the point lies inside the outer ring,
// otherwise the minimum distance to any outer-ring segment.
func coordDistance(pt Point, poly *geom.Polygon) (float64, error) {
	ring := ringCoords(poly)
	if len(ring) < 6 {
		return 0, eris.New("parcel: degenerate ring")
	}

	if pointInRing(pt.Lng, pt.Lat, ring) {
		return 0, nil
	}

	min := math.Inf(1)
	n := len(ring) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		d := pointSegmentDistance(pt.Lng, pt.Lat,
			ring[2*i], ring[2*i+1], ring[2*j], ring[2*j+1])
		if d < min {
			min = d
		}
	}
	return min, nil
}

// pointInRing reports containment via ray casting over flat XY pairs.
func pointInRing(x, y float64, ring []float64) bool {
	inside := false
	n := len(ring) / 2
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[2*i], ring[2*i+1]
		xj, yj := ring[2*j], ring[2*j+1]
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// pointSegmentDistance returns the distance from (px,py) to segment (ax,ay)-(bx,by).
func pointSegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// centroid returns the area-weighted centroid of the polygon's outer ring,
// falling back to the vertex average for degenerate rings.
func centroid(poly *geom.Polygon) (x, y float64, err error) {
	ring := ringCoords(poly)
	n := len(ring) / 2
	if n == 0 {
		return 0, 0, eris.New("parcel: empty ring")
	}

	var cx, cy, area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := ring[2*i]*ring[2*j+1] - ring[2*j]*ring[2*i+1]
		cx += (ring[2*i] + ring[2*j]) * cross
		cy += (ring[2*i+1] + ring[2*j+1]) * cross
		area += cross
	}
	area /= 2

	if math.Abs(area) < 1e-12 {
		var sx, sy float64
		for i := 0; i < n; i++ {
			sx += ring[2*i]
			sy += ring[2*i+1]
		}
		return sx / float64(n), sy / float64(n), nil
	}

	f := 1 / (6 * area)
	return cx * f, cy * f, nil
}
