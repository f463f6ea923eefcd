// Package parquetstore persists the warehouse tables as parquet datasets
// under an output root, one directory per table, with hive-style
// year=/month= partitioning for the tables that carry those columns.
package parquetstore

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
)

// ManifestName is the run-manifest file written at the warehouse root.
const ManifestName = "_run_manifest.json"

// Store writes and reads parquet datasets rooted at a warehouse directory.
// Every write is a full-overwrite, atomic at table granularity: data goes to
// a staging directory first and is swapped in with a rename, so a failed
// write leaves the previous table intact.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a Store rooted at the given warehouse directory, creating it
// if needed.
func New(root string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create warehouse root: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Root returns the warehouse root directory.
func (s *Store) Root() string { return s.root }

// WriteSongs overwrites songs_table, unpartitioned.
func (s *Store) WriteSongs(ctx context.Context, rows []domain.SongRow) error {
	return writeUnpartitioned(ctx, s, domain.SongsTable, rows)
}

// WriteArtists overwrites artists_table, unpartitioned.
func (s *Store) WriteArtists(ctx context.Context, rows []domain.ArtistRow) error {
	return writeUnpartitioned(ctx, s, domain.ArtistsTable, rows)
}

// WriteUsers overwrites users_table, unpartitioned. The user schema carries
// no year/month columns, so there is nothing to partition by.
func (s *Store) WriteUsers(ctx context.Context, rows []domain.UserRow) error {
	return writeUnpartitioned(ctx, s, domain.UsersTable, rows)
}

// WriteTimes overwrites time_table, partitioned by year and month.
func (s *Store) WriteTimes(ctx context.Context, rows []domain.TimeRow) error {
	return writePartitioned(ctx, s, domain.TimeTable, rows, func(r domain.TimeRow) (int32, int32) {
		return r.Year, r.Month
	})
}

// WriteSongplays overwrites songplays_table, partitioned by year and month.
func (s *Store) WriteSongplays(ctx context.Context, rows []domain.SongplayRow) error {
	return writePartitioned(ctx, s, domain.SongplaysTable, rows, func(r domain.SongplayRow) (int32, int32) {
		return r.Year, r.Month
	})
}

// WriteManifest overwrites the run manifest at the warehouse root.
func (s *Store) WriteManifest(_ context.Context, data []byte) error {
	tmp := filepath.Join(s.root, ManifestName+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.root, ManifestName)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadTable loads every parquet file of a table dataset, walking partition
// subdirectories in lexical order.
func ReadTable[T any](s *Store, table string) ([]T, error) {
	dir := filepath.Join(s.root, table)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("read table %s: %w", table, err)
	}

	var rows []T
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".parquet" {
			return nil
		}
		part, err := parquet.ReadFile[T](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, part...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", table, err)
	}
	return rows, nil
}

func writeUnpartitioned[T any](ctx context.Context, s *Store, table string, rows []T) error {
	return stageAndSwap(ctx, s, table, len(rows), func(stage string) error {
		return parquet.WriteFile(filepath.Join(stage, "part-00000.parquet"), rows)
	})
}

// writePartitioned groups rows by (year, month) and writes one file per
// partition under year=<y>/month=<m> subdirectories. Partition columns are
// retained inside the files as well, so each row stays self-describing.
func writePartitioned[T any](ctx context.Context, s *Store, table string, rows []T, part func(T) (int32, int32)) error {
	type key struct{ year, month int32 }
	groups := make(map[key][]T)
	var order []key
	for _, row := range rows {
		y, m := part(row)
		k := key{year: y, month: m}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], row)
	}

	return stageAndSwap(ctx, s, table, len(rows), func(stage string) error {
		for _, k := range order {
			dir := filepath.Join(stage, fmt.Sprintf("year=%d", k.year), fmt.Sprintf("month=%d", k.month))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if err := parquet.WriteFile(filepath.Join(dir, "part-00000.parquet"), groups[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

// stageAndSwap writes a table into a staging directory, then swaps it in
// place of any previous dataset. On failure the staging directory is removed
// and the previous table is left untouched.
func stageAndSwap(ctx context.Context, s *Store, table string, rowCount int, write func(stage string) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write table %s: %w", table, err)
	}

	stage := filepath.Join(s.root, ".tmp-"+table+"-"+uuid.NewString())
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return fmt.Errorf("write table %s: %w", table, err)
	}

	if err := write(stage); err != nil {
		os.RemoveAll(stage)
		return fmt.Errorf("write table %s: %w", table, err)
	}

	final := filepath.Join(s.root, table)
	if err := os.RemoveAll(final); err != nil {
		os.RemoveAll(stage)
		return fmt.Errorf("write table %s: %w", table, err)
	}
	if err := os.Rename(stage, final); err != nil {
		os.RemoveAll(stage)
		return fmt.Errorf("write table %s: %w", table, err)
	}

	s.logger.Info("table written", "table", table, "rows", rowCount)
	return nil
}
