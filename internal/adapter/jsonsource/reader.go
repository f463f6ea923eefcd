// Package jsonsource reads the raw NDJSON dumps that feed the warehouse:
// glob-addressed catalog files under song_data/ and daily activity logs
// under log_data/.
package jsonsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
	"github.com/l11ary/Data-Lake-with-Spark/internal/observability"
)

// Glob patterns relative to the input root. Catalog files nest three levels
// deep by track-ID prefix; activity logs sit flat, one file per day.
const (
	CatalogGlob  = "song_data/*/*/*/*.json"
	ActivityGlob = "log_data/*.json"
)

// ErrNoInput marks a glob that matched no files. A missing input stream is
// fatal for the run; it must not silently produce an empty table.
var ErrNoInput = errors.New("no input files found")

// Reader loads raw records from an input root on the local filesystem.
// Malformed rows are skipped and counted, never fatal.
type Reader struct {
	root    string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Reader rooted at the given directory.
func New(root string, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{root: root, logger: logger, metrics: metrics}
}

// ReadCatalog loads every catalog record under the input root.
func (r *Reader) ReadCatalog(ctx context.Context) ([]domain.CatalogRecord, error) {
	var records []domain.CatalogRecord
	err := r.readStream(ctx, "catalog", CatalogGlob, func(line []byte) error {
		rec, err := domain.DecodeCatalogRecord(line)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReadActivity loads every activity record under the input root.
func (r *Reader) ReadActivity(ctx context.Context) ([]domain.ActivityRecord, error) {
	var records []domain.ActivityRecord
	err := r.readStream(ctx, "activity", ActivityGlob, func(line []byte) error {
		rec, err := domain.DecodeActivityRecord(line)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// readStream globs for files and feeds each non-blank line to decode.
// Decode failures skip the row; I/O failures and an empty glob are fatal.
func (r *Reader) readStream(ctx context.Context, stream, pattern string, decode func([]byte) error) error {
	paths, err := filepath.Glob(filepath.Join(r.root, pattern))
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%s stream: %s under %s: %w", stream, pattern, r.root, ErrNoInput)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.readFile(stream, path, decode); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readFile(stream, path string, decode func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s stream: %w", stream, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Activity log lines run long; the default 64KiB line cap is not enough
	// headroom for heavily quoted user agents.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := decode(line); err != nil {
			r.logger.Warn("skipping malformed record",
				"stream", stream, "file", path, "line", lineNo, "error", err)
			r.metrics.RecordsSkipped.WithLabelValues(stream).Inc()
			continue
		}
		r.metrics.RecordsRead.WithLabelValues(stream).Inc()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s stream: read %s: %w", stream, path, err)
	}
	return nil
}
