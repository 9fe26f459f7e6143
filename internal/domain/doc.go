// Package domain models severe-weather report data aggregated for storm-damage
// lead qualification.
//
// # Data Sources
//
// Tornado, wind, and hail reports come from the NOAA Storm Prediction Center
// (SPC) daily CSV bulletins at https://www.spc.noaa.gov/climo/reports/. One file
// per day, named YYMMDD_rpts.csv, holding three concatenated sub-tables. Each
// sub-table opens with its own header line and the header's magnitude column
// identifies the report kind:
//
//	Time,F_Scale,...  → tornado reports (Enhanced Fujita scale)
//	Time,Speed,...    → wind reports (mph)
//	Time,Size,...     → hail reports (hundredths of inches)
//
// Historical hurricane tracks come from the National Hurricane Center HURDAT2
// best-track file: one storm header line (basin-coded id AL/EP, storm name,
// record count) followed by comma-separated position lines carrying date, time,
// status code, hemisphere-suffixed coordinates, and max sustained wind in
// knots. Only positions at hurricane strength (status "HU") enter this
// pipeline's results.
//
// Live positions for active storms are scraped from NHC public advisory
// bulletins, anchored on the "LOCATION..." and "MAXIMUM SUSTAINED WINDS..."
// lines.
//
// # Conventions
//
// Times are UTC. SPC row times are HHMM in 24-hour notation ("1510" = 15:10);
// three-digit values are zero-padded. The date portion of an SPC report comes
// from the bulletin filename, not the row.
//
// Coordinates are signed decimal degrees, west and south negative. HURDAT2
// hemisphere letters (N/S/E/W) are folded into the sign during parsing.
//
// Hurricane category is the Saffir-Simpson scale derived from sustained wind
// in knots: ≥137 Cat 5, ≥113 Cat 4, ≥96 Cat 3, ≥83 Cat 2, ≥64 Cat 1. Below 64
// knots is not hurricane strength and maps to category 0. See [SaffirSimpson].
//
// # Distance
//
// Report-to-property distance uses the haversine great-circle formula with an
// Earth radius of 3959 miles. Distance is computed at filter time; a report's
// DistanceMiles is nil until it has passed through [FilterByRadius].
package domain
