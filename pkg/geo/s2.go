package geo

import (
	"github.com/golang/geo/s2"
)

func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {

	pointAS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointA.Lat, pointA.Lon))
	pointBS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointB.Lat, pointB.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, pointAS2, pointBS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// return in meter
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate,
	snap Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, snap)

	return HaversineMeters(snap.GetLat(), snap.GetLon(), projectionPoint.GetLat(), projectionPoint.GetLon())
}

/*
RamerDouglasPeucker. simplify a polyline, dropping every point closer than epsilon (meter)
to the great-circle segment between the kept neighbours. first & last point are always kept.
*/
func RamerDouglasPeucker(points []Coordinate, epsilon float64) []Coordinate {
	if len(points) < 3 || epsilon <= 0 {
		return points
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true

	// iterative, road polylines can have thousands of points
	stack := [][2]int{{0, len(points) - 1}}
	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		first, last := seg[0], seg[1]
		if last-first < 2 {
			continue
		}

		maxDist := 0.0
		index := first
		for i := first + 1; i < last; i++ {
			d := PointLinePerpendicularDistance(points[first], points[last], points[i])
			if d > maxDist {
				maxDist = d
				index = i
			}
		}

		if maxDist > epsilon {
			keep[index] = true
			stack = append(stack, [2]int{first, index}, [2]int{index, last})
		}
	}

	simplified := make([]Coordinate, 0, len(points))
	for i, p := range points {
		if keep[i] {
			simplified = append(simplified, p)
		}
	}
	return simplified
}
