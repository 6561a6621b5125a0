// Package ingest routes tabular input into record-store builders. A single
// file streams into one builder; a directory fans file loads out across a
// fixed worker pool, each worker owning a private builder and dictionary
// encoder, with a single-threaded freeze step folding the workers' state
// into the final queryable store.
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/quarrydb/quarry/pkg/config"
	qerrors "github.com/quarrydb/quarry/pkg/errors"
	"github.com/quarrydb/quarry/pkg/logger"
	"github.com/quarrydb/quarry/pkg/metrics"
	"github.com/quarrydb/quarry/pkg/sniff"
	"github.com/quarrydb/quarry/pkg/store"
)

// Load constructs a queryable store from path, which may be a single
// delimited-text file or a directory walked recursively for .csv and
// .csv.gz files. The dataset kind is sniffed once, from the first
// qualifying file, and applied to the whole walk; mixed-kind directories
// are not supported.
func Load(ctx context.Context, path string, cfg *config.Config) (*store.Store, error) {
	log := logger.With(zap.String("path", path), zap.String("layout", cfg.Layout))

	info, err := os.Stat(path)
	if err != nil {
		return nil, qerrors.Wrap(err, qerrors.ErrorTypeFile, "cannot stat input path").
			WithDetail("path", path)
	}

	opts := store.Options{
		Workers: cfg.Workers,
		Metrics: cfg.MetricsEnabled,
		Logger:  log,
	}

	if !info.IsDir() {
		return loadSingle(ctx, path, cfg, opts, log)
	}
	return loadDirectory(ctx, path, cfg, opts, log)
}

func loadSingle(ctx context.Context, path string, cfg *config.Config, opts store.Options, log *zap.Logger) (*store.Store, error) {
	kind, err := classifyFile(path)
	if err != nil {
		return nil, err
	}
	b, err := store.NewBuilder(kind, cfg.Layout)
	if err != nil {
		return nil, err
	}
	if err := loadFile(ctx, path, kind, b); err != nil {
		return nil, err
	}
	log.Info("file ingested",
		zap.String("dataset", kind.String()),
		zap.Int("rows", b.Len()))
	return store.Freeze(opts, b)
}

func loadDirectory(ctx context.Context, path string, cfg *config.Config, opts store.Options, log *zap.Logger) (*store.Store, error) {
	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		// An empty walk still yields a valid, empty store.
		b, err := store.NewBuilder(sniff.KindIndicator, cfg.Layout)
		if err != nil {
			return nil, err
		}
		return store.Freeze(opts, b)
	}

	// One classification governs the whole walk.
	kind, err := classifyFile(files[0])
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	builders := make([]*store.Builder, workers)
	for w := range builders {
		b, err := store.NewBuilder(kind, cfg.Layout)
		if err != nil {
			return nil, err
		}
		builders[w] = b
	}

	fileCh := make(chan string)
	workerErrs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int, b *store.Builder) {
			defer wg.Done()
			for f := range fileCh {
				// A failed worker keeps draining so dispatch never blocks.
				if workerErrs[w] != nil {
					continue
				}
				workerErrs[w] = loadFile(ctx, f, kind, b)
			}
		}(w, builders[w])
	}

	dispatchErr := func() error {
		defer close(fileCh)
		for _, f := range files {
			select {
			case fileCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}()
	wg.Wait()

	if dispatchErr != nil {
		return nil, qerrors.Wrap(dispatchErr, qerrors.ErrorTypeFile, "ingestion canceled")
	}
	// Any file failure aborts the whole construction; no partial store.
	for _, err := range workerErrs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, b := range builders {
		total += b.Len()
	}
	log.Info("directory ingested",
		zap.String("dataset", kind.String()),
		zap.Int("files", len(files)),
		zap.Int("workers", workers),
		zap.Int("rows", total))

	return store.Freeze(opts, builders...)
}

// collectFiles walks root recursively and returns every recognized
// delimited-text file in walk order.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(p, ".csv") || strings.HasSuffix(p, ".csv.gz") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, qerrors.Wrap(err, qerrors.ErrorTypeFile, "directory walk failed").
			WithDetail("root", root)
	}
	return files, nil
}

// classifyFile sniffs the dataset kind from a file's first row. The row acts
// as header candidate and shape candidate at once.
func classifyFile(path string) (sniff.Kind, error) {
	src, err := OpenCSV(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	first, ok := src.Next()
	if !ok {
		return sniff.KindIndicator, nil
	}
	return sniff.Classify(first, first), nil
}

// loadFile streams one file into the builder using the routine for the
// already-detected kind.
func loadFile(ctx context.Context, path string, kind sniff.Kind, b *store.Builder) error {
	select {
	case <-ctx.Done():
		return qerrors.Wrap(ctx.Err(), qerrors.ErrorTypeFile, "ingestion canceled")
	default:
	}

	src, err := OpenCSV(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if kind == sniff.KindSensor {
		loadSensor(src, b)
	} else {
		loadIndicator(src, b)
	}
	metrics.FilesIngested.Inc()
	return nil
}
