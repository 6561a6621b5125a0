package store

import (
	"sync"

	"github.com/quarrydb/quarry/pkg/metrics"
)

// FindMin returns the row with the minimum unified numeric metric, false on
// an empty store. Ties resolve to the lowest storage position.
func (s *Store) FindMin() (RowView, bool) {
	return s.extremum("find_min", func(candidate, best float64) bool {
		return candidate < best
	})
}

// FindMax returns the row with the maximum unified numeric metric, false on
// an empty store. Ties resolve to the lowest storage position.
func (s *Store) FindMax() (RowView, bool) {
	return s.extremum("find_max", func(candidate, best float64) bool {
		return candidate > best
	})
}

// extremum runs a linear comparison pass over the metric. Parallel execution
// reduces per-block local extrema; strict comparison plus ascending block
// order keeps the lowest-position tiebreak exact.
func (s *Store) extremum(op string, better func(candidate, best float64) bool) (RowView, bool) {
	n := s.layout.len()
	if n == 0 {
		return RowView{}, false
	}

	if s.metrics {
		metrics.QueriesTotal.WithLabelValues(op, s.Layout()).Inc()
		defer metrics.NewTimer(op, s.Layout()).Stop()
	}

	if s.workers <= 1 || n < parallelThreshold {
		best := s.blockExtremum(0, n, better)
		return s.layout.view(best), true
	}

	spans := partition(n, s.workers)
	locals := make([]int, len(spans))

	var wg sync.WaitGroup
	for w, sp := range spans {
		wg.Add(1)
		go func(w int, sp span) {
			defer wg.Done()
			locals[w] = s.blockExtremum(sp.lo, sp.hi, better)
		}(w, sp)
	}
	wg.Wait()

	best := locals[0]
	for _, idx := range locals[1:] {
		if better(s.layout.metric(idx), s.layout.metric(best)) {
			best = idx
		}
	}
	return s.layout.view(best), true
}

// blockExtremum returns the position of the best metric in [lo, hi).
func (s *Store) blockExtremum(lo, hi int, better func(candidate, best float64) bool) int {
	best := lo
	bestMetric := s.layout.metric(lo)
	for i := lo + 1; i < hi; i++ {
		if m := s.layout.metric(i); better(m, bestMetric) {
			best = i
			bestMetric = m
		}
	}
	return best
}

// SumByYear returns the sum of the unified numeric metric over rows whose
// year matches, 0 when nothing matches. Parallel execution adds per-block
// partial sums; the summation order across worker counts is unspecified, so
// results agree only within floating-point rounding.
func (s *Store) SumByYear(year int) float64 {
	if s.metrics {
		metrics.QueriesTotal.WithLabelValues("sum_by_year", s.Layout()).Inc()
		defer metrics.NewTimer("sum_by_year", s.Layout()).Stop()
	}

	n := s.layout.len()
	if n == 0 {
		return 0
	}
	if s.workers <= 1 || n < parallelThreshold {
		return s.blockSum(0, n, year)
	}

	spans := partition(n, s.workers)
	partials := make([]float64, len(spans))

	var wg sync.WaitGroup
	for w, sp := range spans {
		wg.Add(1)
		go func(w int, sp span) {
			defer wg.Done()
			partials[w] = s.blockSum(sp.lo, sp.hi, year)
		}(w, sp)
	}
	wg.Wait()

	sum := 0.0
	for _, p := range partials {
		sum += p
	}
	return sum
}

func (s *Store) blockSum(lo, hi, year int) float64 {
	sum := 0.0
	for i := lo; i < hi; i++ {
		if s.layout.year(i) == year {
			sum += s.layout.metric(i)
		}
	}
	return sum
}
