package domain

import "time"

// HurricanePosition is one row of the operational hurricane-position table,
// covering storms newer than the HURDAT2 release cutoff. Rows are refreshed
// from live NHC advisories while a storm is active.
type HurricanePosition struct {
	Name     string    `json:"name"`
	Time     time.Time `json:"time"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	WindKt   int       `json:"wind_kt"`
	Category int       `json:"category"`
}

// Report converts a stored position to the unified report shape.
func (p HurricanePosition) Report() StormReport {
	details := HurricaneDetails{Name: p.Name, MaxWindKt: p.WindKt, Category: p.Category}
	return StormReport{
		Type:        ReportHurricane,
		Time:        p.Time,
		Lat:         p.Lat,
		Lon:         p.Lon,
		Details:     Details{Hurricane: &details},
		Description: DescribeHurricane(details),
		FetchedAt:   Now(),
	}
}
