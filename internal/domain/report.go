package domain

import (
	"fmt"
	"time"
)

// ReportType discriminates the kind of severe-weather report.
type ReportType string

// Allowed ReportType values.
const (
	ReportTornado   ReportType = "TORNADO"
	ReportWind      ReportType = "WIND"
	ReportHail      ReportType = "HAIL"
	ReportHurricane ReportType = "HURRICANE"
)

// IsValid returns true if the ReportType is one of the known values.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTornado, ReportWind, ReportHail, ReportHurricane:
		return true
	}
	return false
}

func (t ReportType) String() string { return string(t) }

// StormReport is the unified output record of the aggregation pipeline.
// One value per observed event, regardless of source.
type StormReport struct {
	Type ReportType `json:"type"`
	Time time.Time  `json:"time"` // UTC observation time
	Lat  float64    `json:"lat"`
	Lon  float64    `json:"lon"`

	// DistanceMiles is the great-circle distance from the query point,
	// set by FilterByRadius. Nil before filtering.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`

	Details     Details `json:"details"`
	Description string  `json:"description,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Details carries the structured payload for the report's type. Exactly the
// fields matching Type are set; the rest stay nil.
type Details struct {
	FScale       *int              `json:"f_scale,omitempty"`        // tornado: EF rating 0-5
	WindSpeedMph *float64          `json:"wind_speed_mph,omitempty"` // wind: measured/estimated gust
	HailSizeIn   *float64          `json:"hail_size_in,omitempty"`   // hail: diameter in inches
	Hurricane    *HurricaneDetails `json:"hurricane,omitempty"`
}

// HurricaneDetails describes one hurricane position fix.
type HurricaneDetails struct {
	Name      string `json:"name"`
	MaxWindKt int    `json:"max_wind_kt"`
	Category  int    `json:"category"`
}

// SaffirSimpson maps sustained wind in knots to a Saffir-Simpson category.
// Winds below hurricane strength (64 kt) return 0.
func SaffirSimpson(windKt int) int {
	switch {
	case windKt >= 137:
		return 5
	case windKt >= 113:
		return 4
	case windKt >= 96:
		return 3
	case windKt >= 83:
		return 2
	case windKt >= 64:
		return 1
	default:
		return 0
	}
}

// DescribeHurricane composes the free-text description for a hurricane fix,
// e.g. "Hurricane KATRINA, 150 kt sustained, category 5".
func DescribeHurricane(d HurricaneDetails) string {
	return fmt.Sprintf("Hurricane %s, %d kt sustained, category %d", d.Name, d.MaxWindKt, d.Category)
}
