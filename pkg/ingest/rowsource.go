package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	qerrors "github.com/quarrydb/quarry/pkg/errors"
)

// RowSource is the contract with the delimited-text collaborator: it yields
// ordered, already-unquoted string fields one row at a time. The store never
// sees bytes, only fields.
type RowSource interface {
	// Next returns the next row of fields, false at end of input.
	Next() ([]string, bool)
}

// CSVSource streams rows from a local .csv or .csv.gz file.
type CSVSource struct {
	file   *os.File
	gz     *gzip.Reader
	reader *csv.Reader
}

// OpenCSV opens path for streaming, transparently decompressing .gz files.
// An unreadable file is fatal to construction, never skipped.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, qerrors.Wrap(err, qerrors.ErrorTypeFile, "failed to open source file").
			WithDetail("path", path)
	}

	src := &CSVSource{file: f}
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, qerrors.Wrap(err, qerrors.ErrorTypeFile, "failed to open gzip stream").
				WithDetail("path", path)
		}
		src.gz = gz
		r = gz
	}

	src.reader = csv.NewReader(r)
	// Field counts vary per dataset kind and even per row in wide exports;
	// the ingestion routines validate counts themselves.
	src.reader.FieldsPerRecord = -1
	src.reader.LazyQuotes = true
	return src, nil
}

// Next returns the next row of fields, false at end of input. Rows the
// tokenizer cannot make sense of are skipped.
func (s *CSVSource) Next() ([]string, bool) {
	for {
		fields, err := s.reader.Read()
		if err == io.EOF {
			return nil, false
		}
		if err != nil {
			continue
		}
		return fields, true
	}
}

// Close releases the underlying file handles.
func (s *CSVSource) Close() error {
	if s.gz != nil {
		_ = s.gz.Close()
	}
	return s.file.Close()
}
