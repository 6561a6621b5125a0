// Package dict implements dictionary encoding for repeated string fields.
//
// An Encoder owns one table per category. Interning a key assigns the
// category's next dense code (0, 1, 2, ...) in first-seen order and appends
// the key to the category's reverse-lookup sequence; interning the same key
// again returns the existing code. Encoders are not safe for concurrent
// mutation; parallel ingestion gives each worker a private Encoder and folds
// them together afterward with Merge.
package dict

// Category identifies one dictionary table.
type Category int

const (
	// Sensor-observation categories
	Parameter Category = iota
	Unit
	Site
	Agency
	AQS

	// Indicator-series categories
	CountryName
	CountryCode
	Indicator

	numCategories
)

// String returns the category name for logging.
func (c Category) String() string {
	switch c {
	case Parameter:
		return "parameter"
	case Unit:
		return "unit"
	case Site:
		return "site"
	case Agency:
		return "agency"
	case AQS:
		return "aqs"
	case CountryName:
		return "country_name"
	case CountryCode:
		return "country_code"
	case Indicator:
		return "indicator"
	default:
		return "unknown"
	}
}

// table is one category's forward map plus its reverse-lookup sequence.
// keys[code] is always the key that was assigned code.
type table struct {
	codes map[string]uint32
	keys  []string
}

// Encoder maps string keys to dense integer codes per category.
type Encoder struct {
	tables [numCategories]table
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	for i := range e.tables {
		e.tables[i].codes = make(map[string]uint32)
	}
	return e
}

// Intern returns the code for key in cat, assigning the next dense code on
// first occurrence.
func (e *Encoder) Intern(cat Category, key string) uint32 {
	t := &e.tables[cat]
	if code, ok := t.codes[key]; ok {
		return code
	}
	code := uint32(len(t.keys))
	t.codes[key] = code
	t.keys = append(t.keys, key)
	return code
}

// Lookup returns the key assigned to code in cat.
func (e *Encoder) Lookup(cat Category, code uint32) (string, bool) {
	t := &e.tables[cat]
	if int(code) >= len(t.keys) {
		return "", false
	}
	return t.keys[code], true
}

// Len returns the number of distinct keys interned in cat.
func (e *Encoder) Len(cat Category) int {
	return len(e.tables[cat].keys)
}

// Remap translates one source encoder's codes to the merged target's codes.
// The slice for a category is indexed by the source code.
type Remap [numCategories][]uint32

// Apply translates a source code to the merged code. Codes outside the
// source's range pass through unchanged.
func (r *Remap) Apply(cat Category, code uint32) uint32 {
	m := r[cat]
	if int(code) >= len(m) {
		return code
	}
	return m[code]
}

// Merge folds each source encoder into dst and returns one Remap per source.
// Keys absent from dst are assigned dst's next code; iteration follows each
// source's dense key sequence, so merge order is deterministic for a fixed
// source order. Source codes captured before the merge are provisional; rows
// holding them must be rewritten through the returned remaps.
func Merge(dst *Encoder, srcs ...*Encoder) []Remap {
	remaps := make([]Remap, len(srcs))
	for si, src := range srcs {
		for cat := Category(0); cat < numCategories; cat++ {
			keys := src.tables[cat].keys
			if len(keys) == 0 {
				continue
			}
			m := make([]uint32, len(keys))
			for oldCode, key := range keys {
				m[oldCode] = dst.Intern(cat, key)
			}
			remaps[si][cat] = m
		}
	}
	return remaps
}
