// Package sniff classifies tabular input as one of the two supported
// dataset kinds before any row is durably stored.
package sniff

import "strconv"

// Kind is the detected dataset shape. It is fixed for the lifetime of a
// store once detected; mixed-kind directories are not supported.
type Kind int

const (
	// KindIndicator is a country/indicator/year series (wide year columns).
	KindIndicator Kind = iota
	// KindSensor is a station observation stream (one reading per row).
	KindSensor
)

// String returns the kind name for logging.
func (k Kind) String() string {
	if k == KindSensor {
		return "sensor"
	}
	return "indicator"
}

// headerSentinel is the fixed first header field of indicator exports.
const headerSentinel = "Country Name"

// minSensorFields is the lowest field count a sensor observation row can
// have and still carry all dictionary-encoded columns.
const minSensorFields = 12

// Classify decides the dataset kind from an optional header row and, failing
// that, the shape of the first data row. A header whose first field matches
// the indicator sentinel wins immediately; otherwise a first row that looks
// like a sensor observation selects KindSensor, and anything else defaults
// to KindIndicator.
func Classify(header, firstRow []string) Kind {
	if len(header) > 0 && header[0] == headerSentinel {
		return KindIndicator
	}
	if looksLikeSensorRow(firstRow) {
		return KindSensor
	}
	return KindIndicator
}

// looksLikeSensorRow tests the shape predicate: latitude and longitude parse
// as floats and the third field is a local timestamp shaped
// YYYY-MM-DD[T ]HH:MM.
func looksLikeSensorRow(row []string) bool {
	if len(row) < minSensorFields {
		return false
	}
	if !isFloat(row[0]) || !isFloat(row[1]) {
		return false
	}
	return IsTimestamp(row[2])
}

// IsTimestamp reports whether s starts with YYYY-MM-DD followed by 'T' or a
// space and HH:MM. Only the shape is checked, not calendar validity.
func IsTimestamp(s string) bool {
	if len(s) < 16 {
		return false
	}
	for _, i := range [4]int{0, 1, 2, 3} {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s[4] == '-' && s[7] == '-' && (s[10] == 'T' || s[10] == ' ') && s[13] == ':'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isFloat(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
