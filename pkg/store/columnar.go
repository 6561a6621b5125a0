package store

import (
	"math"

	"github.com/quarrydb/quarry/pkg/config"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// columnarLayout stores each field as its own densely packed slice and
// synthesizes logical rows on demand by reading the same position across
// the field slices. Only the slices of the active dataset kind are used.
type columnarLayout struct {
	kind  sniff.Kind
	count int

	// Indicator-series columns
	countryNameIDs []uint32
	countryCodeIDs []uint32
	indicatorIDs   []uint32
	indicatorYears []int16
	values         []float64

	// Sensor-observation columns
	latitudes    []float32
	longitudes   []float32
	utcMinutes   []int32
	parameterIDs []uint16
	unitIDs      []uint16
	sensorValues []float32
	rawValues    []float32
	aqis         []int16
	categories   []uint8
	siteIDs      []uint32
	agencyIDs    []uint32
	aqsIDs       []uint32
	sensorYears  []int16

	// Unified numeric metric, populated for both kinds
	metrics []float64
}

func (l *columnarLayout) name() string { return config.LayoutColumnar }

func (l *columnarLayout) appendIndicator(rec IndicatorRecord) {
	l.countryNameIDs = append(l.countryNameIDs, rec.CountryNameID)
	l.countryCodeIDs = append(l.countryCodeIDs, rec.CountryCodeID)
	l.indicatorIDs = append(l.indicatorIDs, rec.IndicatorID)
	l.indicatorYears = append(l.indicatorYears, rec.Year)
	l.values = append(l.values, rec.Value)
	l.metrics = append(l.metrics, rec.Metric)
	l.count++
}

func (l *columnarLayout) appendSensor(rec SensorRecord) {
	l.latitudes = append(l.latitudes, rec.Latitude)
	l.longitudes = append(l.longitudes, rec.Longitude)
	l.utcMinutes = append(l.utcMinutes, rec.UTCMinutes)
	l.parameterIDs = append(l.parameterIDs, rec.ParameterID)
	l.unitIDs = append(l.unitIDs, rec.UnitID)
	l.sensorValues = append(l.sensorValues, rec.Value)
	l.rawValues = append(l.rawValues, rec.RawValue)
	l.aqis = append(l.aqis, rec.AQI)
	l.categories = append(l.categories, rec.Category)
	l.siteIDs = append(l.siteIDs, rec.SiteID)
	l.agencyIDs = append(l.agencyIDs, rec.AgencyID)
	l.aqsIDs = append(l.aqsIDs, rec.AqsID)
	l.sensorYears = append(l.sensorYears, rec.Year)
	l.metrics = append(l.metrics, rec.Metric)
	l.count++
}

func (l *columnarLayout) freeze() {}

func (l *columnarLayout) len() int { return l.count }

func (l *columnarLayout) view(i int) RowView {
	if l.kind == sniff.KindSensor {
		return viewOfSensor(l.sensor(i))
	}
	return viewOfIndicator(l.indicator(i))
}

func (l *columnarLayout) metric(i int) float64 { return l.metrics[i] }

func (l *columnarLayout) year(i int) int {
	if l.kind == sniff.KindSensor {
		return int(l.sensorYears[i])
	}
	return int(l.indicatorYears[i])
}

// field reads a single column slice; no full row is synthesized.
func (l *columnarLayout) field(i int, col Column) (float64, bool) {
	switch col {
	case ColPopulation:
		return l.values[i], true
	case ColYear:
		return float64(l.year(i)), true
	case ColCountryNameID:
		return float64(l.countryNameIDs[i]), true
	case ColCountryCodeID:
		return float64(l.countryCodeIDs[i]), true
	case ColIndicatorID:
		return float64(l.indicatorIDs[i]), true
	case ColValue:
		v := float64(l.sensorValues[i])
		return v, !math.IsNaN(v)
	case ColRawValue:
		v := float64(l.rawValues[i])
		return v, !math.IsNaN(v)
	case ColAQI:
		return float64(l.aqis[i]), true
	case ColCategory:
		return float64(l.categories[i]), true
	case ColLatitude:
		return float64(l.latitudes[i]), true
	case ColLongitude:
		return float64(l.longitudes[i]), true
	case ColUTCMinutes:
		return float64(l.utcMinutes[i]), true
	case ColParameterID:
		return float64(l.parameterIDs[i]), true
	case ColUnitID:
		return float64(l.unitIDs[i]), true
	case ColSiteID:
		return float64(l.siteIDs[i]), true
	case ColAgencyID:
		return float64(l.agencyIDs[i]), true
	case ColAqsID:
		return float64(l.aqsIDs[i]), true
	default:
		return 0, false
	}
}

func (l *columnarLayout) indicator(i int) IndicatorRecord {
	return IndicatorRecord{
		CountryNameID: l.countryNameIDs[i],
		CountryCodeID: l.countryCodeIDs[i],
		IndicatorID:   l.indicatorIDs[i],
		Year:          l.indicatorYears[i],
		Value:         l.values[i],
		Metric:        l.metrics[i],
	}
}

func (l *columnarLayout) sensor(i int) SensorRecord {
	return SensorRecord{
		Latitude:    l.latitudes[i],
		Longitude:   l.longitudes[i],
		UTCMinutes:  l.utcMinutes[i],
		ParameterID: l.parameterIDs[i],
		UnitID:      l.unitIDs[i],
		Value:       l.sensorValues[i],
		RawValue:    l.rawValues[i],
		AQI:         l.aqis[i],
		Category:    l.categories[i],
		SiteID:      l.siteIDs[i],
		AgencyID:    l.agencyIDs[i],
		AqsID:       l.aqsIDs[i],
		Year:        l.sensorYears[i],
		Metric:      l.metrics[i],
	}
}
