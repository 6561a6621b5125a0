package store

import (
	"strconv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/quarrydb/quarry/pkg/metrics"
)

// rangeBounds is a parsed inclusive [lo, hi] interval. Bounds are parsed by
// the column's declared type but compared uniformly as float64; every column
// value is exactly representable there.
type rangeBounds struct {
	lo, hi float64
}

// parseBounds parses the textual bounds per the column type. ok is false on
// a parse failure or an inverted interval, in which case the scan fails
// closed with an empty result.
func parseBounds(col Column, loText, hiText string) (rangeBounds, bool) {
	switch col.valueType() {
	case typeInt:
		lo, err := strconv.ParseInt(loText, 10, 64)
		if err != nil {
			return rangeBounds{}, false
		}
		hi, err := strconv.ParseInt(hiText, 10, 64)
		if err != nil {
			return rangeBounds{}, false
		}
		if lo > hi {
			return rangeBounds{}, false
		}
		return rangeBounds{float64(lo), float64(hi)}, true
	default:
		lo, err := strconv.ParseFloat(loText, 64)
		if err != nil {
			return rangeBounds{}, false
		}
		hi, err := strconv.ParseFloat(hiText, 64)
		if err != nil {
			return rangeBounds{}, false
		}
		if lo > hi {
			return rangeBounds{}, false
		}
		return rangeBounds{lo, hi}, true
	}
}

// RangeScan returns every row whose value in col lies in [loText, hiText],
// parsed per the column's declared type. A column outside the store's
// dataset kind returns ErrUnsupportedColumn; unparseable or inverted bounds
// return an empty result with no error. Sequential execution preserves
// storage order; parallel execution marks matches in per-block bitmaps whose
// union is iterated in ascending position, so the output is in storage order
// either way.
func (s *Store) RangeScan(col Column, loText, hiText string) ([]RowView, error) {
	if !col.SupportedBy(s.kind) {
		return nil, ErrUnsupportedColumn
	}
	bounds, ok := parseBounds(col, loText, hiText)
	if !ok {
		return nil, nil
	}

	if s.metrics {
		metrics.QueriesTotal.WithLabelValues("range_scan", s.Layout()).Inc()
		defer metrics.NewTimer("range_scan", s.Layout()).Stop()
	}

	n := s.layout.len()
	if n == 0 {
		return nil, nil
	}
	if s.workers <= 1 || n < parallelThreshold {
		return s.scanSequential(col, bounds), nil
	}
	return s.scanParallel(col, bounds), nil
}

// parallelThreshold is the row count below which fan-out costs more than the
// scan itself. Overridden in tests to force the parallel paths.
var parallelThreshold = 4096

func (s *Store) scanSequential(col Column, b rangeBounds) []RowView {
	var out []RowView
	n := s.layout.len()
	for i := 0; i < n; i++ {
		if v, ok := s.layout.field(i, col); ok && v >= b.lo && v <= b.hi {
			out = append(out, s.layout.view(i))
		}
	}
	return out
}

func (s *Store) scanParallel(col Column, b rangeBounds) []RowView {
	spans := partition(s.layout.len(), s.workers)
	bitmaps := make([]*roaring.Bitmap, len(spans))

	var wg sync.WaitGroup
	for w, sp := range spans {
		wg.Add(1)
		go func(w int, sp span) {
			defer wg.Done()
			bm := roaring.New()
			for i := sp.lo; i < sp.hi; i++ {
				if v, ok := s.layout.field(i, col); ok && v >= b.lo && v <= b.hi {
					bm.Add(uint32(i))
				}
			}
			bitmaps[w] = bm
		}(w, sp)
	}
	wg.Wait()

	matched := roaring.ParOr(0, bitmaps...)
	if matched.IsEmpty() {
		return nil
	}

	out := make([]RowView, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		out = append(out, s.layout.view(int(it.Next())))
	}
	return out
}
