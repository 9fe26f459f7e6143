package spc

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const threeSectionBulletin = `Time,F_Scale,Location,County,State,Lat,Lon,Comments
1530,EF2,5 N Ada,Pontotoc,OK,42.1,-71.0,Tornado on the ground. (OUN)
Time,Speed,Location,County,State,Lat,Lon,Comments
1610,65,2 SSW Norman,Cleveland,OK,35.19,-97.46,Power lines down. (OUN)
1644,UNK,Moore,Cleveland,OK,35.34,-97.49,Tree limbs down. (OUN)
Time,Size,Location,County,State,Lat,Lon,Comments
1702,175,8 ESE Chappel,San Saba,TX,31.05,-98.37,Quarter to golf ball hail. (FWD)
`

func TestParseDailyBulletin_ThreeSections(t *testing.T) {
	day, err := ParseBulletinDate("240615_rpts.csv")
	require.NoError(t, err)

	reports := ParseDailyBulletin(day, []byte(threeSectionBulletin), testLogger())
	require.Len(t, reports, 4)

	tornado := reports[0]
	assert.Equal(t, domain.ReportTornado, tornado.Type)
	assert.Equal(t, time.Date(2024, 6, 15, 15, 30, 0, 0, time.UTC), tornado.Time)
	assert.Equal(t, "2024-06-15T15:30:00Z", tornado.Time.Format(time.RFC3339))
	assert.Equal(t, 42.1, tornado.Lat)
	assert.Equal(t, -71.0, tornado.Lon)
	require.NotNil(t, tornado.Details.FScale)
	assert.Equal(t, 2, *tornado.Details.FScale)
	assert.Nil(t, tornado.DistanceMiles, "distance is set at filter time, not parse time")
	assert.Contains(t, tornado.Description, "EF2 tornado")
	assert.Contains(t, tornado.Description, "Pontotoc County, OK")

	wind := reports[1]
	assert.Equal(t, domain.ReportWind, wind.Type)
	require.NotNil(t, wind.Details.WindSpeedMph)
	assert.Equal(t, 65.0, *wind.Details.WindSpeedMph)

	unknownWind := reports[2]
	assert.Equal(t, domain.ReportWind, unknownWind.Type)
	assert.Nil(t, unknownWind.Details.WindSpeedMph)

	hail := reports[3]
	assert.Equal(t, domain.ReportHail, hail.Type)
	require.NotNil(t, hail.Details.HailSizeIn)
	assert.Equal(t, 1.75, *hail.Details.HailSizeIn, "legacy hundredths encoding is scaled")
}

func TestParseDailyBulletin_DropsNonNumericCoordinates(t *testing.T) {
	bulletin := "Time,F_Scale,Location,County,State,Lat,Lon,Comments\n" +
		"1530,EF1,Ada,Pontotoc,OK,LAT,-96.7,Bad row\n" +
		"1545,EF0,Ravenna,Fannin,TX,33.67,-96.24,Good row\n"

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	reports := ParseDailyBulletin(day, []byte(bulletin), testLogger())
	require.Len(t, reports, 1)
	assert.Equal(t, 33.67, reports[0].Lat)
}

func TestParseDailyBulletin_DropsFieldCountMismatch(t *testing.T) {
	bulletin := "Time,Size,Location,County,State,Lat,Lon,Comments\n" +
		"1702,100,Chappel,San Saba,TX,31.05,-98.37,Hail, with a comma in comments\n" +
		"1702,100,Chappel,San Saba,TX\n" +
		"1710,125,Lometa,Lampasas,TX,31.21,-98.39,Clean row\n"

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	reports := ParseDailyBulletin(day, []byte(bulletin), testLogger())
	require.Len(t, reports, 1)
	assert.Equal(t, 31.21, reports[0].Lat)
}

func TestParseDailyBulletin_EmptyFile(t *testing.T) {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, ParseDailyBulletin(day, nil, testLogger()))
	assert.Empty(t, ParseDailyBulletin(day, []byte("\n\n"), testLogger()))
}

func TestParseDailyBulletin_RowsBeforeFirstHeaderIgnored(t *testing.T) {
	bulletin := "1530,EF1,Ada,Pontotoc,OK,34.77,-96.67,Orphan row\n" +
		"Time,F_Scale,Location,County,State,Lat,Lon,Comments\n" +
		"1545,EF0,Ravenna,Fannin,TX,33.67,-96.24,Counted row\n"

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	reports := ParseDailyBulletin(day, []byte(bulletin), testLogger())
	require.Len(t, reports, 1)
}

func TestCombineHHMM(t *testing.T) {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		hhmm string
		want time.Time
	}{
		{"1530", time.Date(2024, 6, 15, 15, 30, 0, 0, time.UTC)},
		{"930", time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)}, // three digits zero-padded
		{"0000", day},
		{"2399", day}, // invalid minutes falls back to the bare date
		{"", day},
		{"abcd", day},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, combineHHMM(day, tt.hhmm), "hhmm=%q", tt.hhmm)
	}
}

func TestBulletinFilename_RoundTrip(t *testing.T) {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	name := BulletinFilename(day)
	assert.Equal(t, "240615_rpts.csv", name)

	parsed, err := ParseBulletinDate(name)
	require.NoError(t, err)
	assert.Equal(t, day, parsed)
}

func TestParseBulletinDate_Invalid(t *testing.T) {
	_, err := ParseBulletinDate("notadate_rpts.csv")
	assert.Error(t, err)
	_, err = ParseBulletinDate("240615.csv")
	assert.Error(t, err)
}
