// Package geo parses a working-area payload into a multi-polygon and tests
// point containment against it.
//
// Coordinates are carried in orb.Point/orb.Ring (github.com/paulmach/orb),
// the same geometry types slighter12's routing engine builds from GPS
// fixes, but containment is hand-rolled ray casting rather than
// orb/planar's polygon containment: the spec requires ignoring inner rings
// (holes) entirely, while orb's PolygonContains subtracts them.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
)

// MultiPolygon is an ordered sequence of polygons. Only a polygon's outer
// ring (index 0) participates in containment; inner rings are parsed but
// ignored, matching spec §3/§4.1.
type MultiPolygon []Polygon

// Polygon is an ordered sequence of rings, the first of which is the outer
// boundary.
type Polygon []orb.Ring

// OuterRing returns the polygon's containment boundary.
func (p Polygon) OuterRing() orb.Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// ParseWorkingArea decodes a working-area JSON string into a MultiPolygon.
//
// The wire shape may be either a single polygon ([ring, ring, ...]) or a
// list of polygons ([[ring, ...], [ring, ...], ...]); a bare polygon is
// auto-wrapped into a one-element multi-polygon. Any structural violation —
// non-array input, an empty polygon, a ring shorter than three points, a
// non-numeric coordinate, or a coordinate that isn't a [lng, lat] pair —
// is a parse failure.
func ParseWorkingArea(raw string) (MultiPolygon, error) {
	if raw == "" {
		return nil, fmt.Errorf("geo: empty working area")
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("geo: invalid JSON: %w", err)
	}

	outer, ok := generic.([]any)
	if !ok || len(outer) == 0 {
		return nil, fmt.Errorf("geo: working area is not a non-empty array")
	}

	if looksLikeSinglePolygon(outer) {
		polygon, err := parsePolygon(outer)
		if err != nil {
			return nil, err
		}
		return MultiPolygon{polygon}, nil
	}

	mp := make(MultiPolygon, 0, len(outer))
	for i, item := range outer {
		polygonRaw, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("geo: polygon %d is not an array", i)
		}
		polygon, err := parsePolygon(polygonRaw)
		if err != nil {
			return nil, fmt.Errorf("geo: polygon %d: %w", i, err)
		}
		mp = append(mp, polygon)
	}
	return mp, nil
}

// looksLikeSinglePolygon distinguishes a bare polygon ([ring, ...]) from a
// list of polygons ([polygon, ...]) by checking whether the outer array's
// first element is itself a ring (an array of [lng,lat] pairs) rather than
// an array of rings.
func looksLikeSinglePolygon(outer []any) bool {
	first, ok := outer[0].([]any)
	if !ok || len(first) == 0 {
		return false
	}
	firstPoint, ok := first[0].([]any)
	return ok && len(firstPoint) == 2
}

func parsePolygon(rings []any) (Polygon, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("geo: polygon has no rings")
	}
	polygon := make(Polygon, 0, len(rings))
	for i, ringRaw := range rings {
		ringItems, ok := ringRaw.([]any)
		if !ok {
			return nil, fmt.Errorf("geo: ring %d is not an array", i)
		}
		ring, err := parseRing(ringItems)
		if err != nil {
			return nil, fmt.Errorf("geo: ring %d: %w", i, err)
		}
		polygon = append(polygon, ring)
	}
	return polygon, nil
}

func parseRing(points []any) (orb.Ring, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("geo: ring has fewer than 3 points")
	}
	ring := make(orb.Ring, 0, len(points))
	for i, pointRaw := range points {
		pointItems, ok := pointRaw.([]any)
		if !ok || len(pointItems) != 2 {
			return nil, fmt.Errorf("geo: point %d is not a [lng, lat] pair", i)
		}
		lng, ok := pointItems[0].(float64)
		if !ok {
			return nil, fmt.Errorf("geo: point %d longitude is not numeric", i)
		}
		lat, ok := pointItems[1].(float64)
		if !ok {
			return nil, fmt.Errorf("geo: point %d latitude is not numeric", i)
		}
		ring = append(ring, orb.Point{lng, lat})
	}
	return ring, nil
}

// Contains reports whether pt lies inside the outer ring of any polygon in
// mp. It stops at the first match.
func Contains(mp MultiPolygon, pt orb.Point) bool {
	for _, polygon := range mp {
		if ringContains(polygon.OuterRing(), pt) {
			return true
		}
	}
	return false
}

// ringContains is the canonical ray-casting point-in-polygon test: for each
// edge (i-1, i) of the ring, toggle an "inside" flag when the edge straddles
// the point's latitude and the point lies to the left of the edge at that
// latitude. Edges are treated as half-open; on-edge behavior is undefined,
// matching spec §4.1.
func ringContains(ring orb.Ring, pt orb.Point) bool {
	if len(ring) < 3 {
		return false
	}

	x, y := pt[0], pt[1]
	inside := false

	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > y) != (yj > y) {
			xIntersect := (xj-xi)*(y-yi)/(yj-yi) + xi
			if x < xIntersect {
				inside = !inside
			}
		}
		j = i
	}

	return inside
}
