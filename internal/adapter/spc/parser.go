// Package spc fetches and parses NOAA Storm Prediction Center daily report
// bulletins (tornado, wind, and hail).
package spc

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stormsignal/storm-report-service/internal/domain"
)

// A daily bulletin concatenates three CSV sub-tables. Each opens with a header
// line whose magnitude column names the report kind.
const (
	headerTornado = "Time,F_Scale,"
	headerWind    = "Time,Speed,"
	headerHail    = "Time,Size,"
)

// section tracks the sub-table currently being scanned: its report kind and
// the column layout captured from the header line.
type section struct {
	kind    domain.ReportType
	columns map[string]int
	nfields int
}

// BulletinFilename returns the SPC bulletin name for a day, e.g. "240615_rpts.csv".
func BulletinFilename(day time.Time) string {
	return day.UTC().Format("060102") + "_rpts.csv"
}

// ParseBulletinDate recovers the bulletin day from its filename. Two-digit
// years are interpreted in the 2000s per Go's reference-layout rules.
func ParseBulletinDate(filename string) (time.Time, error) {
	base, ok := strings.CutSuffix(filename, "_rpts.csv")
	if !ok {
		return time.Time{}, fmt.Errorf("parse bulletin date: unexpected filename %q", filename)
	}
	day, err := time.Parse("060102", base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse bulletin date: %w", err)
	}
	return day, nil
}

// ParseDailyBulletin parses one day's bulletin into storm reports. The date
// portion of each report comes from day (the bulletin filename date); the row
// contributes only the HHMM time of day.
//
// Malformed rows never fail the parse: rows whose field count disagrees with
// the active header are dropped silently, rows with non-numeric coordinates
// are dropped with a logged warning. An empty file yields zero reports.
func ParseDailyBulletin(day time.Time, data []byte, logger *slog.Logger) []domain.StormReport {
	var (
		reports []domain.StormReport
		current *section
	)

	fetchedAt := domain.Now()

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if sec := parseHeader(line); sec != nil {
			current = sec
			continue
		}
		if current == nil {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != current.nfields {
			// Truncated row, or a comment containing commas. Either way the
			// column positions are unknowable.
			continue
		}

		report, ok := parseRow(day, current, fields, logger)
		if !ok {
			continue
		}
		report.FetchedAt = fetchedAt
		reports = append(reports, report)
	}

	return reports
}

// parseHeader returns a section for a recognized header line, or nil.
func parseHeader(line string) *section {
	var kind domain.ReportType
	switch {
	case strings.HasPrefix(line, headerTornado):
		kind = domain.ReportTornado
	case strings.HasPrefix(line, headerWind):
		kind = domain.ReportWind
	case strings.HasPrefix(line, headerHail):
		kind = domain.ReportHail
	default:
		return nil
	}

	names := strings.Split(line, ",")
	columns := make(map[string]int, len(names))
	for i, name := range names {
		columns[strings.TrimSpace(name)] = i
	}
	return &section{kind: kind, columns: columns, nfields: len(names)}
}

func parseRow(day time.Time, sec *section, fields []string, logger *slog.Logger) (domain.StormReport, bool) {
	field := func(name string) string {
		i, ok := sec.columns[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	latStr, lonStr := field("Lat"), field("Lon")
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		logger.Warn("spc row has non-numeric coordinates, dropping",
			"lat", latStr, "lon", lonStr, "type", sec.kind)
		return domain.StormReport{}, false
	}

	report := domain.StormReport{
		Type: sec.kind,
		Time: combineHHMM(day, field("Time")),
		Lat:  lat,
		Lon:  lon,
	}

	var magnitude string
	switch sec.kind {
	case domain.ReportTornado:
		report.Details.FScale = parseFScale(field("F_Scale"))
		magnitude = describeFScale(report.Details.FScale)
	case domain.ReportWind:
		report.Details.WindSpeedMph = parseMagnitude(field("Speed"))
		magnitude = describeWind(report.Details.WindSpeedMph)
	case domain.ReportHail:
		report.Details.HailSizeIn = parseHailSize(field("Size"))
		magnitude = describeHail(report.Details.HailSizeIn)
	}

	report.Description = buildDescription(magnitude, field("Location"), field("County"), field("State"), field("Comments"))
	return report, true
}

// combineHHMM merges the bulletin day with a row's HHMM time-of-day (UTC).
// Three-digit values are zero-padded ("930" → "0930"). Unparseable times fall
// back to the bare bulletin date.
func combineHHMM(day time.Time, hhmm string) time.Time {
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}
	if len(hhmm) != 4 {
		return day
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return day
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, mins, 0, 0, time.UTC)
}

// parseFScale parses a tornado rating, stripping any "EF" or "F" prefix.
// "UNK" and empty values yield nil.
func parseFScale(raw string) *int {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "EF"), "F")
	if raw == "" || strings.EqualFold(raw, "UNK") {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// parseMagnitude parses a numeric magnitude, treating "UNK" and empty as unmeasured.
func parseMagnitude(raw string) *float64 {
	if raw == "" || strings.EqualFold(raw, "UNK") {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseHailSize parses hail diameter. Legacy rows encode hundredths of inches
// (175 = 1.75in); values >= 10 are assumed to use that encoding because the
// largest hail ever recorded in the US was roughly 8 inches.
func parseHailSize(raw string) *float64 {
	v := parseMagnitude(raw)
	if v != nil && *v >= 10 {
		scaled := *v / 100.0
		return &scaled
	}
	return v
}

func describeFScale(f *int) string {
	if f == nil {
		return "Tornado (unrated)"
	}
	return fmt.Sprintf("EF%d tornado", *f)
}

func describeWind(mph *float64) string {
	if mph == nil {
		return "Wind (speed unknown)"
	}
	return fmt.Sprintf("%g mph wind", *mph)
}

func describeHail(in *float64) string {
	if in == nil {
		return "Hail (size unknown)"
	}
	return fmt.Sprintf("%.2f in hail", *in)
}

// buildDescription composes the free-text description from the magnitude
// label, the NWS relative location, and the report comments.
func buildDescription(magnitude, location, county, state, comments string) string {
	place := location
	if county != "" {
		place += ", " + county + " County"
	}
	if state != "" {
		place += ", " + state
	}

	desc := magnitude
	if strings.TrimSpace(place) != "" {
		desc += " near " + strings.TrimSpace(place)
	}
	if comments != "" {
		desc += ". " + comments
	}
	return desc
}
