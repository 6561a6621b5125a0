package store

import (
	"github.com/quarrydb/quarry/pkg/config"
	qerrors "github.com/quarrydb/quarry/pkg/errors"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// layout is the minimal row-accessor contract the query engines run against.
// The three implementations differ only in how records are stored and
// appended; field projections are addressed by row index so scans can be
// partitioned into contiguous blocks regardless of physical representation.
type layout interface {
	name() string

	appendIndicator(rec IndicatorRecord)
	appendSensor(rec SensorRecord)
	// freeze is called once, after the last append and before the first
	// query. Layouts use it to build whatever access structure positional
	// reads need.
	freeze()

	len() int
	view(i int) RowView
	metric(i int) float64
	year(i int) int
	// field projects the column value at row i; false means the row holds
	// no comparable value there (missing-sentinel NaN).
	field(i int, col Column) (float64, bool)

	indicator(i int) IndicatorRecord
	sensor(i int) SensorRecord
}

// newLayout builds an empty layout for the given config layout name.
func newLayout(layoutName string, kind sniff.Kind) (layout, error) {
	switch layoutName {
	case config.LayoutLinked:
		return &linkedLayout{kind: kind}, nil
	case config.LayoutColumnar:
		return &columnarLayout{kind: kind}, nil
	case config.LayoutCompact:
		return &compactLayout{kind: kind}, nil
	default:
		return nil, qerrors.New(qerrors.ErrorTypeConfig, "unknown layout").
			WithDetail("layout", layoutName)
	}
}
