package nhc

import (
	"errors"
	"regexp"
	"strconv"
)

var (
	// advisoryLocationRe matches the position line of an NHC public advisory,
	// e.g. "LOCATION...25.9N 80.1W".
	advisoryLocationRe = regexp.MustCompile(`LOCATION\.\.\.(\d+(?:\.\d+)?)([NS])\s+(\d+(?:\.\d+)?)([EW])`)

	// advisoryWindRe matches the sustained-wind line,
	// e.g. "MAXIMUM SUSTAINED WINDS...150 MPH".
	advisoryWindRe = regexp.MustCompile(`MAXIMUM SUSTAINED WINDS\.\.\.(\d+) MPH`)
)

// Advisory is the position and intensity extracted from one live advisory
// bulletin.
type Advisory struct {
	Lat     float64
	Lon     float64
	WindMph int
}

// ErrAdvisoryAnchors is returned when an advisory bulletin is missing the
// LOCATION or MAXIMUM SUSTAINED WINDS anchor. Unlike the CSV parsers, a
// missing anchor is a hard skip: the caller logs it and moves to the next
// storm rather than emitting a partial record.
var ErrAdvisoryAnchors = errors.New("advisory text missing LOCATION or MAXIMUM SUSTAINED WINDS anchor")

// WindKt converts the advisory's sustained wind from mph to knots.
func (a Advisory) WindKt() int {
	return int(float64(a.WindMph)/1.15078 + 0.5)
}

// ParseAdvisory extracts the storm position and sustained wind from an NHC
// public advisory bulletin.
func ParseAdvisory(text string) (Advisory, error) {
	loc := advisoryLocationRe.FindStringSubmatch(text)
	wind := advisoryWindRe.FindStringSubmatch(text)
	if loc == nil || wind == nil {
		return Advisory{}, ErrAdvisoryAnchors
	}

	lat, _ := strconv.ParseFloat(loc[1], 64)
	if loc[2] == "S" {
		lat = -lat
	}
	lon, _ := strconv.ParseFloat(loc[3], 64)
	if loc[4] == "W" {
		lon = -lon
	}
	mph, _ := strconv.Atoi(wind[1])

	return Advisory{Lat: lat, Lon: lon, WindMph: mph}, nil
}
