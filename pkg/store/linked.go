package store

import (
	"github.com/quarrydb/quarry/pkg/config"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// linkedLayout chains one independently allocated node per row. Every
// positional read chases a pointer to a separate allocation; freeze builds a
// node index so the engines can address rows by position without walking
// from the head each time.
type linkedLayout struct {
	kind  sniff.Kind
	head  *rowNode
	tail  *rowNode
	count int
	index []*rowNode
}

// rowNode holds a single row. Only the record matching the layout's dataset
// kind is populated.
type rowNode struct {
	next      *rowNode
	indicator IndicatorRecord
	sensor    SensorRecord
}

func (l *linkedLayout) name() string { return config.LayoutLinked }

func (l *linkedLayout) append(n *rowNode) {
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.count++
	l.index = nil
}

func (l *linkedLayout) appendIndicator(rec IndicatorRecord) {
	l.append(&rowNode{indicator: rec})
}

func (l *linkedLayout) appendSensor(rec SensorRecord) {
	l.append(&rowNode{sensor: rec})
}

func (l *linkedLayout) freeze() {
	l.index = make([]*rowNode, 0, l.count)
	for n := l.head; n != nil; n = n.next {
		l.index = append(l.index, n)
	}
}

func (l *linkedLayout) len() int { return l.count }

// at returns the node at position i, walking the chain if freeze has not
// run yet.
func (l *linkedLayout) at(i int) *rowNode {
	if l.index != nil {
		return l.index[i]
	}
	n := l.head
	for ; i > 0; i-- {
		n = n.next
	}
	return n
}

func (l *linkedLayout) view(i int) RowView {
	n := l.at(i)
	if l.kind == sniff.KindSensor {
		return viewOfSensor(n.sensor)
	}
	return viewOfIndicator(n.indicator)
}

func (l *linkedLayout) metric(i int) float64 {
	n := l.at(i)
	if l.kind == sniff.KindSensor {
		return n.sensor.Metric
	}
	return n.indicator.Metric
}

func (l *linkedLayout) year(i int) int {
	n := l.at(i)
	if l.kind == sniff.KindSensor {
		return int(n.sensor.Year)
	}
	return int(n.indicator.Year)
}

func (l *linkedLayout) field(i int, col Column) (float64, bool) {
	n := l.at(i)
	if l.kind == sniff.KindSensor {
		return sensorField(n.sensor, col)
	}
	return indicatorField(n.indicator, col)
}

func (l *linkedLayout) indicator(i int) IndicatorRecord { return l.at(i).indicator }

func (l *linkedLayout) sensor(i int) SensorRecord { return l.at(i).sensor }
