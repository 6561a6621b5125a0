// Package store implements the in-memory record store: three interchangeable
// physical layouts behind one query contract, a typed column range scan
// engine, and min/max/sum aggregation over the unified numeric metric.
//
// Construction is split into two types. A Builder is mutable, single-owner
// state used during ingestion; Freeze merges one or more builders (and their
// dictionary encoders) into an immutable Store, remapping every buffered
// row's dictionary codes to the merged tables. Only Freeze produces a Store,
// so a partially merged state is unrepresentable. A built Store is read-only
// and safe for concurrent queries.
package store

import (
	"math"

	"go.uber.org/zap"

	"github.com/quarrydb/quarry/pkg/dict"
	qerrors "github.com/quarrydb/quarry/pkg/errors"
	"github.com/quarrydb/quarry/pkg/logger"
	"github.com/quarrydb/quarry/pkg/sniff"
)

// ErrUnsupportedColumn reports a range scan against a column that is not
// defined for the store's dataset kind. It is distinct from an empty result:
// no rows matched and wrong column are different answers.
var ErrUnsupportedColumn = qerrors.New(qerrors.ErrorTypeQuery, "column not supported for dataset kind")

// Builder accumulates rows and dictionary codes for one ingestion worker.
// It is not safe for concurrent use; parallel ingestion runs one Builder per
// worker and merges them in Freeze.
type Builder struct {
	kind       sniff.Kind
	layoutName string
	layout     layout
	dicts      *dict.Encoder
}

// NewBuilder creates an empty builder for the given dataset kind and layout.
func NewBuilder(kind sniff.Kind, layoutName string) (*Builder, error) {
	l, err := newLayout(layoutName, kind)
	if err != nil {
		return nil, err
	}
	return &Builder{
		kind:       kind,
		layoutName: layoutName,
		layout:     l,
		dicts:      dict.NewEncoder(),
	}, nil
}

// Dicts exposes the builder's private dictionary encoder for interning
// during ingestion. Codes handed out before Freeze are provisional.
func (b *Builder) Dicts() *dict.Encoder { return b.dicts }

// Kind returns the dataset kind the builder accepts.
func (b *Builder) Kind() sniff.Kind { return b.kind }

// Len returns the number of rows buffered so far.
func (b *Builder) Len() int { return b.layout.len() }

// AppendIndicator buffers one indicator record. The unified metric is
// derived here so no later operation special-cases by kind.
func (b *Builder) AppendIndicator(rec IndicatorRecord) {
	rec.Metric = rec.Value
	b.layout.appendIndicator(rec)
}

// AppendSensor buffers one sensor record, deriving the unified metric with
// the missing-sentinel NaN mapped to 0.
func (b *Builder) AppendSensor(rec SensorRecord) {
	if math.IsNaN(float64(rec.Value)) {
		rec.Metric = 0
	} else {
		rec.Metric = float64(rec.Value)
	}
	b.layout.appendSensor(rec)
}

// Options configures the queryable store produced by Freeze.
type Options struct {
	// Workers is the fixed worker count for parallel scans and reductions.
	// Values below 2 select fully sequential execution.
	Workers int
	// Metrics toggles Prometheus instrumentation on query paths.
	Metrics bool
	// Logger defaults to the global logger when nil.
	Logger *zap.Logger
}

// Store answers range scans, extremes, and per-year sums over rows frozen
// from one or more builders. It is immutable after construction.
type Store struct {
	kind    sniff.Kind
	layout  layout
	dicts   *dict.Encoder
	workers int
	metrics bool
	logger  *zap.Logger
}

// Freeze merges the builders into one immutable queryable Store. Dictionary
// tables are merged first; every buffered row is then appended into the
// final layout with its dictionary codes rewritten through the merge remap,
// builder by builder, preserving per-builder row order. All builders must
// share one dataset kind and layout.
func Freeze(opts Options, builders ...*Builder) (*Store, error) {
	if len(builders) == 0 {
		return nil, qerrors.New(qerrors.ErrorTypeInternal, "freeze requires at least one builder")
	}
	kind := builders[0].kind
	layoutName := builders[0].layoutName
	for _, b := range builders[1:] {
		if b.kind != kind || b.layoutName != layoutName {
			return nil, qerrors.New(qerrors.ErrorTypeInternal, "builders disagree on kind or layout").
				WithDetail("want_kind", kind.String()).
				WithDetail("want_layout", layoutName)
		}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	// Fast path: a lone builder's codes are already authoritative.
	if len(builders) == 1 {
		b := builders[0]
		b.layout.freeze()
		return newStore(kind, b.layout, b.dicts, opts, log), nil
	}

	merged := dict.NewEncoder()
	encoders := make([]*dict.Encoder, len(builders))
	for i, b := range builders {
		encoders[i] = b.dicts
	}
	remaps := dict.Merge(merged, encoders...)

	final, err := newLayout(layoutName, kind)
	if err != nil {
		return nil, err
	}
	total := 0
	for bi, b := range builders {
		// Indexes positional reads; the linked layout walks the chain
		// per call otherwise.
		b.layout.freeze()
		n := b.layout.len()
		total += n
		remap := &remaps[bi]
		for i := 0; i < n; i++ {
			if kind == sniff.KindSensor {
				final.appendSensor(remapSensor(b.layout.sensor(i), remap))
			} else {
				final.appendIndicator(remapIndicator(b.layout.indicator(i), remap))
			}
		}
	}
	final.freeze()

	log.Debug("store frozen",
		zap.String("dataset", kind.String()),
		zap.String("layout", layoutName),
		zap.Int("rows", total),
		zap.Int("builders", len(builders)))

	return newStore(kind, final, merged, opts, log), nil
}

func newStore(kind sniff.Kind, l layout, d *dict.Encoder, opts Options, log *zap.Logger) *Store {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Store{
		kind:    kind,
		layout:  l,
		dicts:   d,
		workers: workers,
		metrics: opts.Metrics,
		logger:  log,
	}
}

// remapSensor rewrites a sensor record's dictionary codes to merged codes.
func remapSensor(rec SensorRecord, r *dict.Remap) SensorRecord {
	rec.ParameterID = uint16(r.Apply(dict.Parameter, uint32(rec.ParameterID)))
	rec.UnitID = uint16(r.Apply(dict.Unit, uint32(rec.UnitID)))
	rec.SiteID = r.Apply(dict.Site, rec.SiteID)
	rec.AgencyID = r.Apply(dict.Agency, rec.AgencyID)
	rec.AqsID = r.Apply(dict.AQS, rec.AqsID)
	return rec
}

// remapIndicator rewrites an indicator record's dictionary codes.
func remapIndicator(rec IndicatorRecord, r *dict.Remap) IndicatorRecord {
	rec.CountryNameID = r.Apply(dict.CountryName, rec.CountryNameID)
	rec.CountryCodeID = r.Apply(dict.CountryCode, rec.CountryCodeID)
	rec.IndicatorID = r.Apply(dict.Indicator, rec.IndicatorID)
	return rec
}

// Kind returns the store's dataset kind.
func (s *Store) Kind() sniff.Kind { return s.kind }

// Layout returns the physical layout name.
func (s *Store) Layout() string { return s.layout.name() }

// Len returns the number of stored rows.
func (s *Store) Len() int { return s.layout.len() }

// Dicts returns the merged, frozen dictionary encoder for reverse lookups.
func (s *Store) Dicts() *dict.Encoder { return s.dicts }

// View returns the row at storage position i.
func (s *Store) View(i int) RowView { return s.layout.view(i) }

// span is one contiguous block of row indices, [lo, hi).
type span struct {
	lo, hi int
}

// partition splits [0, n) into at most workers contiguous blocks.
func partition(n, workers int) []span {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return []span{{0, n}}
	}
	spans := make([]span, 0, workers)
	size := n / workers
	rem := n % workers
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + size
		if w < rem {
			hi++
		}
		spans = append(spans, span{lo, hi})
		lo = hi
	}
	return spans
}
