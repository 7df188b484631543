package geo

import (
	"math"

	"github.com/lintang-b-s/osmrouter/pkg/util"
)

// BearingTo. initial great circle bearing from p to q, degrees in [0,360).
func BearingTo(pLat, pLon, qLat, qLon float64) float64 {
	phiP, phiQ := util.DegreeToRadians(pLat), util.DegreeToRadians(qLat)
	dLambda := util.DegreeToRadians(qLon - pLon)

	east := math.Sin(dLambda) * math.Cos(phiQ)
	north := math.Cos(phiP)*math.Sin(phiQ) - math.Sin(phiP)*math.Cos(phiQ)*math.Cos(dLambda)

	deg := util.RadiansToDegree(math.Atan2(east, north))
	if deg < 0 {
		deg += 360
	}
	return deg
}

// BearingDelta. signed turn from heading `from` to heading `to` in (-180,180], negative is a left turn.
func BearingDelta(from, to float64) float64 {
	d := math.Mod(to-from+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}
