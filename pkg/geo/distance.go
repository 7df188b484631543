package geo

import (
	"math"

	"github.com/lintang-b-s/osmrouter/pkg/util"
)

// mean earth radius (IUGG)
const earthRadiusMeters = 6371008.8

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

/*
HaversineMeters. great circle distance in meter.
https://www.movable-type.co.uk/scripts/latlong.html
*/
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := util.DegreeToRadians(lat1)
	phi2 := util.DegreeToRadians(lat2)
	sinDPhi := math.Sin((phi2 - phi1) / 2)
	sinDLambda := math.Sin(util.DegreeToRadians(lon2-lon1) / 2)

	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// CalculateHaversineDistance. km
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineMeters(lat1, lon1, lat2, lon2) / 1000
}

// DestinationPoint. point reached after travelling meters along the initial bearing (degree) from (lat, lon).
func DestinationPoint(lat, lon, bearing, meters float64) (float64, float64) {
	delta := meters / earthRadiusMeters
	theta := util.DegreeToRadians(bearing)
	phi1 := util.DegreeToRadians(lat)
	lambda1 := util.DegreeToRadians(lon)

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(sinPhi2)
	lambda2 := lambda1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(phi1), math.Cos(delta)-math.Sin(phi1)*sinPhi2)

	return util.RadiansToDegree(phi2), normalizeLongitude(util.RadiansToDegree(lambda2))
}

// normalizeLongitude. to [-180, 180)
func normalizeLongitude(lon float64) float64 {
	return math.Mod(lon+540, 360) - 180
}

// PolylineLength. meter, sum over consecutive points
func PolylineLength(coords []Coordinate) float64 {
	length := 0.0
	for i := 1; i < len(coords); i++ {
		length += HaversineMeters(coords[i-1].Lat, coords[i-1].Lon, coords[i].Lat, coords[i].Lon)
	}
	return length
}
