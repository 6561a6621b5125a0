package store

import (
	qerrors "github.com/quarrydb/quarry/pkg/errors"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// Column is the closed enumeration of logical column names callers can
// query. It is the superset across both dataset kinds; querying a column
// outside the active kind returns ErrUnsupportedColumn.
type Column int

const (
	// Indicator-series columns
	ColPopulation Column = iota
	ColCountryNameID
	ColCountryCodeID
	ColIndicatorID

	// Shared
	ColYear

	// Sensor-observation columns
	ColValue
	ColRawValue
	ColAQI
	ColCategory
	ColLatitude
	ColLongitude
	ColUTCMinutes
	ColParameterID
	ColUnitID
	ColSiteID
	ColAgencyID
	ColAqsID
)

var columnNames = map[Column]string{
	ColPopulation:    "Population",
	ColCountryNameID: "CountryNameId",
	ColCountryCodeID: "CountryCodeId",
	ColIndicatorID:   "IndicatorId",
	ColYear:          "Year",
	ColValue:         "Value",
	ColRawValue:      "RawValue",
	ColAQI:           "AQI",
	ColCategory:      "Category",
	ColLatitude:      "Latitude",
	ColLongitude:     "Longitude",
	ColUTCMinutes:    "UTCMinutes",
	ColParameterID:   "ParameterId",
	ColUnitID:        "UnitId",
	ColSiteID:        "SiteId",
	ColAgencyID:      "AgencyId",
	ColAqsID:         "AqsId",
}

// String returns the column's canonical name.
func (c Column) String() string {
	if name, ok := columnNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseColumn resolves a canonical column name, as accepted by the CLI.
func ParseColumn(name string) (Column, error) {
	for col, n := range columnNames {
		if n == name {
			return col, nil
		}
	}
	return 0, qerrors.New(qerrors.ErrorTypeValidation, "unknown column").
		WithDetail("column", name)
}

// columnType decides how range bounds are parsed for a column.
type columnType int

const (
	typeInt columnType = iota
	typeFloat
)

func (c Column) valueType() columnType {
	switch c {
	case ColPopulation, ColValue, ColRawValue, ColLatitude, ColLongitude:
		return typeFloat
	default:
		return typeInt
	}
}

// SupportedBy reports whether the column is defined for the dataset kind.
// Year is the only column shared by both kinds.
func (c Column) SupportedBy(kind sniff.Kind) bool {
	switch c {
	case ColYear:
		return true
	case ColPopulation, ColCountryNameID, ColCountryCodeID, ColIndicatorID:
		return kind == sniff.KindIndicator
	default:
		return kind == sniff.KindSensor
	}
}
