package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quarrydb/quarry/pkg/dict"
	"github.com/quarrydb/quarry/pkg/metrics"
	"github.com/quarrydb/quarry/pkg/sniff"
	"github.com/quarrydb/quarry/pkg/store"
)

// sentinelMissing marks absent numeric readings in sensor exports.
const sentinelMissing = -999

// Sensor observation field positions.
const (
	fieldLatitude = iota
	fieldLongitude
	fieldTimestamp
	fieldParameter
	fieldValue
	fieldUnit
	fieldRawValue
	fieldAQI
	fieldCategory
	fieldSite
	fieldAgency
	fieldAqsID

	sensorFieldCount
)

// loadSensor streams headerless sensor observations into the builder.
// Malformed rows are skipped, never fatal.
func loadSensor(src RowSource, b *store.Builder) {
	d := b.Dicts()
	for {
		row, ok := src.Next()
		if !ok {
			return
		}
		if len(row) < sensorFieldCount {
			metrics.RowsSkipped.WithLabelValues(sniff.KindSensor.String()).Inc()
			continue
		}

		lat, err := strconv.ParseFloat(row[fieldLatitude], 32)
		if err != nil {
			metrics.RowsSkipped.WithLabelValues(sniff.KindSensor.String()).Inc()
			continue
		}
		lon, err := strconv.ParseFloat(row[fieldLongitude], 32)
		if err != nil {
			metrics.RowsSkipped.WithLabelValues(sniff.KindSensor.String()).Inc()
			continue
		}

		ts := row[fieldTimestamp]
		rec := store.SensorRecord{
			Latitude:    float32(lat),
			Longitude:   float32(lon),
			UTCMinutes:  timestampMinutes(ts),
			ParameterID: uint16(d.Intern(dict.Parameter, row[fieldParameter])),
			UnitID:      uint16(d.Intern(dict.Unit, row[fieldUnit])),
			Value:       sensorValue(row[fieldValue]),
			RawValue:    sensorValue(row[fieldRawValue]),
			AQI:         sentinelMissing,
			SiteID:      d.Intern(dict.Site, row[fieldSite]),
			AgencyID:    d.Intern(dict.Agency, row[fieldAgency]),
			AqsID:       d.Intern(dict.AQS, row[fieldAqsID]),
			Year:        timestampYear(ts),
		}
		if v, err := strconv.ParseInt(row[fieldAQI], 10, 16); err == nil {
			rec.AQI = int16(v)
		}
		if v, err := strconv.ParseInt(row[fieldCategory], 10, 8); err == nil {
			rec.Category = uint8(v)
		}

		b.AppendSensor(rec)
		metrics.RowsIngested.WithLabelValues(sniff.KindSensor.String()).Inc()
	}
}

// sensorValue parses a reading, mapping empty text, parse failures, and the
// -999 missing sentinel to NaN. The NaN must survive into storage so range
// scans can exclude the row; it is never zeroed here.
func sensorValue(s string) float32 {
	if s == "" {
		return float32(math.NaN())
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil || v == sentinelMissing {
		return float32(math.NaN())
	}
	return float32(v)
}

// timestampMinutes converts a YYYY-MM-DD[T ]HH:MM... local string to whole
// minutes since the Unix epoch. Offsets past the minute field are ignored,
// matching the source exports. Returns 0 for malformed text.
func timestampMinutes(ts string) int32 {
	if !sniff.IsTimestamp(ts) {
		return 0
	}
	year := atoi(ts[0:4])
	month := atoi(ts[5:7])
	day := atoi(ts[8:10])
	hour := atoi(ts[11:13])
	minute := atoi(ts[14:16])
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	return int32(t.Unix() / 60)
}

// timestampYear derives the row's year from the first four characters.
func timestampYear(ts string) int16 {
	if len(ts) < 4 {
		return 0
	}
	return int16(atoi(ts[0:4]))
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// Indicator-series fixed leading fields; the remaining columns are one per
// year, named by the header.
const (
	fieldCountryName = iota
	fieldCountryCode
	fieldIndicatorName
	fieldIndicatorCode

	firstYearField
)

// loadIndicator streams a wide indicator export into the builder. The first
// row is the header; each year-named column of each row fans out to its own
// record. Cells that are empty or non-numeric are skipped silently.
func loadIndicator(src RowSource, b *store.Builder) {
	header, ok := src.Next()
	if !ok {
		return
	}

	d := b.Dicts()
	for {
		row, ok := src.Next()
		if !ok {
			return
		}
		if len(row) < firstYearField+1 {
			metrics.RowsSkipped.WithLabelValues(sniff.KindIndicator.String()).Inc()
			continue
		}

		countryNameID := d.Intern(dict.CountryName, row[fieldCountryName])
		countryCodeID := d.Intern(dict.CountryCode, row[fieldCountryCode])
		// Indicator name and code dedupe to a single composite key.
		indicatorID := d.Intern(dict.Indicator,
			row[fieldIndicatorName]+"|"+row[fieldIndicatorCode])

		for c := firstYearField; c < len(row) && c < len(header); c++ {
			if !isYearColumn(header[c]) {
				continue
			}
			year, err := strconv.ParseInt(header[c], 10, 16)
			if err != nil {
				continue
			}
			cell := row[c]
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}

			b.AppendIndicator(store.IndicatorRecord{
				CountryNameID: countryNameID,
				CountryCodeID: countryCodeID,
				IndicatorID:   indicatorID,
				Year:          int16(year),
				Value:         value,
			})
			metrics.RowsIngested.WithLabelValues(sniff.KindIndicator.String()).Inc()
		}
	}
}

// isYearColumn matches four-character header names starting with a digit,
// e.g. "1960" but not "Indicator Code".
func isYearColumn(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) == 4 && name[0] >= '0' && name[0] <= '9'
}
