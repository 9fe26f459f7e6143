// Package nhc fetches and parses National Hurricane Center data: the HURDAT2
// historical best-track file and live public advisories for active storms.
package nhc

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/stormsignal/storm-report-service/internal/domain"
)

// TrackPoint is one best-track position fix at hurricane strength.
type TrackPoint struct {
	StormID string // basin-coded id, e.g. "AL122005"
	Name    string
	Time    time.Time // UTC
	Lat     float64
	Lon     float64
	WindKt  int
}

// Report converts a track point to the unified report shape.
func (p TrackPoint) Report() domain.StormReport {
	details := domain.HurricaneDetails{
		Name:      p.Name,
		MaxWindKt: p.WindKt,
		Category:  domain.SaffirSimpson(p.WindKt),
	}
	return domain.StormReport{
		Type:        domain.ReportHurricane,
		Time:        p.Time,
		Lat:         p.Lat,
		Lon:         p.Lon,
		Details:     domain.Details{Hurricane: &details},
		Description: domain.DescribeHurricane(details),
		FetchedAt:   domain.Now(),
	}
}

// ParseHURDAT2 parses the best-track file. Storm header lines (basin prefix
// AL or EP) set the name context for the position lines that follow. Only
// positions with status "HU" (hurricane strength) are emitted; tropical storm,
// depression, and extratropical stages are excluded. Malformed lines are
// skipped, never fatal.
func ParseHURDAT2(r io.Reader) ([]TrackPoint, error) {
	var (
		points    []TrackPoint
		stormID   string
		stormName string
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "AL") || strings.HasPrefix(line, "EP") {
			fields := strings.Split(line, ",")
			if len(fields) < 2 {
				continue
			}
			stormID = strings.TrimSpace(fields[0])
			stormName = strings.TrimSpace(fields[1])
			continue
		}

		point, ok := parsePositionLine(line)
		if !ok {
			continue
		}
		point.StormID = stormID
		point.Name = stormName
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// HURDAT2 position lines are fixed-width; fields are cut by offset, not by
// delimiter. Reference line:
//
//	20050829, 1110, L, HU, 29.5N,  89.6W, 110,  920, ...
func parsePositionLine(line string) (TrackPoint, bool) {
	if len(line) < 41 {
		return TrackPoint{}, false
	}

	status := strings.TrimSpace(line[19:21])
	if status != "HU" {
		return TrackPoint{}, false
	}

	t, err := time.Parse("20060102 1504", line[0:8]+" "+line[10:14])
	if err != nil {
		return TrackPoint{}, false
	}

	lat, okLat := parseCoordinate(line[23:28])
	lon, okLon := parseCoordinate(line[30:36])
	if !okLat || !okLon {
		return TrackPoint{}, false
	}

	wind, err := strconv.Atoi(strings.TrimSpace(line[38:41]))
	if err != nil {
		return TrackPoint{}, false
	}

	return TrackPoint{Time: t.UTC(), Lat: lat, Lon: lon, WindKt: wind}, true
}

// parseCoordinate parses a hemisphere-suffixed value like "29.5N" or " 89.6W".
// South and west flip the sign.
func parseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	hemisphere := raw[len(raw)-1]
	v, err := strconv.ParseFloat(raw[:len(raw)-1], 64)
	if err != nil {
		return 0, false
	}

	switch hemisphere {
	case 'N', 'E':
		return v, true
	case 'S', 'W':
		return -v, true
	default:
		return 0, false
	}
}
