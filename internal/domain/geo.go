package domain

import "math"

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3959.0

// DistanceMiles returns the great-circle distance in miles between two
// lat/lon points using the haversine formula. Pure and total: NaN inputs
// propagate as NaN, callers validate coordinates before use.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// FilterByRadius computes the distance from (lat, lon) to each report and
// keeps those at or under radiusMiles. Reports with non-finite coordinates are
// excluded rather than defaulted. The kept reports carry their computed
// DistanceMiles.
func FilterByRadius(reports []StormReport, lat, lon, radiusMiles float64) []StormReport {
	out := make([]StormReport, 0, len(reports))
	for _, r := range reports {
		if !finite(r.Lat) || !finite(r.Lon) {
			continue
		}
		d := DistanceMiles(lat, lon, r.Lat, r.Lon)
		if d > radiusMiles {
			continue
		}
		r.DistanceMiles = &d
		out = append(out, r)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
