package store

import (
	"github.com/quarrydb/quarry/pkg/config"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// compactLayout stores whole records contiguously in one slice. Only the
// slice matching the layout's dataset kind is used.
type compactLayout struct {
	kind       sniff.Kind
	indicators []IndicatorRecord
	sensors    []SensorRecord
}

func (l *compactLayout) name() string { return config.LayoutCompact }

func (l *compactLayout) appendIndicator(rec IndicatorRecord) {
	l.indicators = append(l.indicators, rec)
}

func (l *compactLayout) appendSensor(rec SensorRecord) {
	l.sensors = append(l.sensors, rec)
}

func (l *compactLayout) freeze() {}

func (l *compactLayout) len() int {
	if l.kind == sniff.KindSensor {
		return len(l.sensors)
	}
	return len(l.indicators)
}

func (l *compactLayout) view(i int) RowView {
	if l.kind == sniff.KindSensor {
		return viewOfSensor(l.sensors[i])
	}
	return viewOfIndicator(l.indicators[i])
}

func (l *compactLayout) metric(i int) float64 {
	if l.kind == sniff.KindSensor {
		return l.sensors[i].Metric
	}
	return l.indicators[i].Metric
}

func (l *compactLayout) year(i int) int {
	if l.kind == sniff.KindSensor {
		return int(l.sensors[i].Year)
	}
	return int(l.indicators[i].Year)
}

func (l *compactLayout) field(i int, col Column) (float64, bool) {
	if l.kind == sniff.KindSensor {
		return sensorField(l.sensors[i], col)
	}
	return indicatorField(l.indicators[i], col)
}

func (l *compactLayout) indicator(i int) IndicatorRecord { return l.indicators[i] }

func (l *compactLayout) sensor(i int) SensorRecord { return l.sensors[i] }
