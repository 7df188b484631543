package datastructure

import "math"

// BoundingBox. lat/lon extent of every vertex of a graph, persisted as the last artifact line.
type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) *BoundingBox {
	return &BoundingBox{minLat: minLat, minLon: minLon, maxLat: maxLat, maxLon: maxLon}
}

// newEmptyBoundingBox. inverted extent, the first extend sets every side.
func newEmptyBoundingBox() *BoundingBox {
	return &BoundingBox{
		minLat: math.Inf(1), minLon: math.Inf(1),
		maxLat: math.Inf(-1), maxLon: math.Inf(-1),
	}
}

func (b *BoundingBox) extend(lat, lon float64) {
	b.minLat = math.Min(b.minLat, lat)
	b.minLon = math.Min(b.minLon, lon)
	b.maxLat = math.Max(b.maxLat, lat)
	b.maxLon = math.Max(b.maxLon, lon)
}

func (b *BoundingBox) isEmpty() bool {
	return b.minLat > b.maxLat
}

func (b *BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b *BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b *BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b *BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}
