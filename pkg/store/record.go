package store

import (
	"math"

	"github.com/quarrydb/quarry/pkg/dict"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// IndicatorRecord is one country/indicator/year observation. String columns
// are dictionary-encoded; Metric mirrors Value so the extremes and aggregate
// engines never special-case by kind.
type IndicatorRecord struct {
	CountryNameID uint32
	CountryCodeID uint32
	IndicatorID   uint32
	Year          int16
	Value         float64
	Metric        float64
}

// SensorRecord is one station reading. Value and RawValue carry NaN for the
// source's -999 missing sentinel; Metric maps NaN to 0 so aggregates stay
// finite, but range scans on Value/RawValue exclude NaN rows outright.
type SensorRecord struct {
	Latitude    float32
	Longitude   float32
	UTCMinutes  int32
	ParameterID uint16
	UnitID      uint16
	Value       float32
	RawValue    float32
	AQI         int16
	Category    uint8
	SiteID      uint32
	AgencyID    uint32
	AqsID       uint32
	Year        int16
	Metric      float64
}

// RowView is a read-only projection of a stored row, independent of the
// physical layout it came from. Only the fields of the active dataset kind
// are meaningful.
type RowView struct {
	Kind   sniff.Kind
	Year   int
	Metric float64

	// Sensor fields
	Latitude    float32
	Longitude   float32
	Value       float32
	AQI         int16
	ParameterID uint16
	UnitID      uint16
	SiteID      uint32
	AgencyID    uint32
	AqsID       uint32

	// Indicator fields
	Population    float64
	CountryNameID uint32
	CountryCodeID uint32
	IndicatorID   uint32
}

// CountryName resolves the view's country name through the store's merged
// dictionaries. Empty for sensor rows or out-of-range codes.
func (v RowView) CountryName(d *dict.Encoder) string {
	if v.Kind != sniff.KindIndicator {
		return ""
	}
	name, _ := d.Lookup(dict.CountryName, v.CountryNameID)
	return name
}

// CountryCode resolves the view's country code.
func (v RowView) CountryCode(d *dict.Encoder) string {
	if v.Kind != sniff.KindIndicator {
		return ""
	}
	code, _ := d.Lookup(dict.CountryCode, v.CountryCodeID)
	return code
}

// ParameterName resolves the view's measured parameter name.
func (v RowView) ParameterName(d *dict.Encoder) string {
	if v.Kind != sniff.KindSensor {
		return ""
	}
	name, _ := d.Lookup(dict.Parameter, uint32(v.ParameterID))
	return name
}

// UnitName resolves the view's measurement unit.
func (v RowView) UnitName(d *dict.Encoder) string {
	if v.Kind != sniff.KindSensor {
		return ""
	}
	name, _ := d.Lookup(dict.Unit, uint32(v.UnitID))
	return name
}

// SiteName resolves the view's site name.
func (v RowView) SiteName(d *dict.Encoder) string {
	if v.Kind != sniff.KindSensor {
		return ""
	}
	name, _ := d.Lookup(dict.Site, v.SiteID)
	return name
}

// AgencyName resolves the view's reporting agency.
func (v RowView) AgencyName(d *dict.Encoder) string {
	if v.Kind != sniff.KindSensor {
		return ""
	}
	name, _ := d.Lookup(dict.Agency, v.AgencyID)
	return name
}

// viewOfIndicator projects an indicator record into a RowView.
func viewOfIndicator(rec IndicatorRecord) RowView {
	return RowView{
		Kind:          sniff.KindIndicator,
		Year:          int(rec.Year),
		Metric:        rec.Metric,
		Population:    rec.Value,
		CountryNameID: rec.CountryNameID,
		CountryCodeID: rec.CountryCodeID,
		IndicatorID:   rec.IndicatorID,
	}
}

// viewOfSensor projects a sensor record into a RowView.
func viewOfSensor(rec SensorRecord) RowView {
	return RowView{
		Kind:        sniff.KindSensor,
		Year:        int(rec.Year),
		Metric:      rec.Metric,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		Value:       rec.Value,
		AQI:         rec.AQI,
		ParameterID: rec.ParameterID,
		UnitID:      rec.UnitID,
		SiteID:      rec.SiteID,
		AgencyID:    rec.AgencyID,
		AqsID:       rec.AqsID,
	}
}

// indicatorField projects a queryable column from an indicator record.
// The second return is false when the column holds no comparable value.
func indicatorField(rec IndicatorRecord, col Column) (float64, bool) {
	switch col {
	case ColPopulation:
		return rec.Value, true
	case ColYear:
		return float64(rec.Year), true
	case ColCountryNameID:
		return float64(rec.CountryNameID), true
	case ColCountryCodeID:
		return float64(rec.CountryCodeID), true
	case ColIndicatorID:
		return float64(rec.IndicatorID), true
	default:
		return 0, false
	}
}

// sensorField projects a queryable column from a sensor record. NaN values
// in Value/RawValue are reported as not comparable so range scans exclude
// missing readings instead of zeroing them.
func sensorField(rec SensorRecord, col Column) (float64, bool) {
	switch col {
	case ColValue:
		v := float64(rec.Value)
		return v, !math.IsNaN(v)
	case ColRawValue:
		v := float64(rec.RawValue)
		return v, !math.IsNaN(v)
	case ColYear:
		return float64(rec.Year), true
	case ColAQI:
		return float64(rec.AQI), true
	case ColCategory:
		return float64(rec.Category), true
	case ColLatitude:
		return float64(rec.Latitude), true
	case ColLongitude:
		return float64(rec.Longitude), true
	case ColUTCMinutes:
		return float64(rec.UTCMinutes), true
	case ColParameterID:
		return float64(rec.ParameterID), true
	case ColUnitID:
		return float64(rec.UnitID), true
	case ColSiteID:
		return float64(rec.SiteID), true
	case ColAgencyID:
		return float64(rec.AgencyID), true
	case ColAqsID:
		return float64(rec.AqsID), true
	default:
		return 0, false
	}
}
