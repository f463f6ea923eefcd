// Package validate runs post-load smoke checks against a written warehouse:
// row counts, key uniqueness, referential integrity between the fact table
// and its dimensions, and one bounded sample query. The checks are purely
// observational; nothing is modified.
package validate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/l11ary/Data-Lake-with-Spark/internal/adapter/parquetstore"
	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
)

// Report is the outcome of validating a warehouse. Problems are findings,
// not fatal errors: a report with problems still describes a committed
// warehouse.
type Report struct {
	Counts   map[string]int64
	Sample   []domain.SongplayRow
	Problems []string
}

// OK reports whether every check passed.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) problemf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Warehouse reads every table back and checks it. A table that cannot be
// read at all is an error; everything found inside a readable warehouse is
// reported through Report.Problems.
func Warehouse(store *parquetstore.Store, sampleLocation string, sampleLimit int, logger *slog.Logger) (*Report, error) {
	songs, err := parquetstore.ReadTable[domain.SongRow](store, domain.SongsTable)
	if err != nil {
		return nil, err
	}
	artists, err := parquetstore.ReadTable[domain.ArtistRow](store, domain.ArtistsTable)
	if err != nil {
		return nil, err
	}
	users, err := parquetstore.ReadTable[domain.UserRow](store, domain.UsersTable)
	if err != nil {
		return nil, err
	}
	times, err := parquetstore.ReadTable[domain.TimeRow](store, domain.TimeTable)
	if err != nil {
		return nil, err
	}
	facts, err := parquetstore.ReadTable[domain.SongplayRow](store, domain.SongplaysTable)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Counts: map[string]int64{
			domain.SongsTable:     int64(len(songs)),
			domain.ArtistsTable:   int64(len(artists)),
			domain.UsersTable:     int64(len(users)),
			domain.TimeTable:      int64(len(times)),
			domain.SongplaysTable: int64(len(facts)),
		},
	}

	checkUnique(report, domain.SongsTable, songs, func(r domain.SongRow) string { return r.SongID })
	checkUnique(report, domain.ArtistsTable, artists, func(r domain.ArtistRow) string { return r.ArtistID })
	checkUnique(report, domain.UsersTable, users, func(r domain.UserRow) string { return r.UserID })
	checkUnique(report, domain.TimeTable, times, func(r domain.TimeRow) string {
		return fmt.Sprintf("%d", r.StartTime.UnixMilli())
	})

	checkFacts(report, facts, songs, artists)
	report.Sample = sampleByLocation(facts, sampleLocation, sampleLimit)

	for table, n := range report.Counts {
		logger.Info("table validated", "table", table, "rows", n)
	}
	logger.Info("sample query",
		"location_contains", sampleLocation,
		"matches_shown", len(report.Sample),
	)
	return report, nil
}

func checkUnique[T any](report *Report, table string, rows []T, key func(T) string) {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, ok := seen[k]; ok {
			report.problemf("%s: duplicate key %q", table, k)
			continue
		}
		seen[k] = struct{}{}
	}
}

// checkFacts verifies that every fact row references dimension keys that
// exist and that song/artist references point at the same catalog entry.
func checkFacts(report *Report, facts []domain.SongplayRow, songs []domain.SongRow, artists []domain.ArtistRow) {
	songArtist := make(map[string]string, len(songs))
	for _, s := range songs {
		songArtist[s.SongID] = s.ArtistID
	}
	artistIDs := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		artistIDs[a.ArtistID] = struct{}{}
	}

	ids := make(map[int64]struct{}, len(facts))
	for _, f := range facts {
		if _, ok := ids[f.SongplayID]; ok {
			report.problemf("%s: duplicate songplay_id %d", domain.SongplaysTable, f.SongplayID)
		}
		ids[f.SongplayID] = struct{}{}

		if f.SongID == nil || f.ArtistID == nil {
			// Null references only appear under left-join semantics; the
			// inner-join warehouse should never produce them.
			report.problemf("%s: songplay_id %d has null song/artist reference", domain.SongplaysTable, f.SongplayID)
			continue
		}
		wantArtist, ok := songArtist[*f.SongID]
		if !ok {
			report.problemf("%s: songplay_id %d references unknown song %q", domain.SongplaysTable, f.SongplayID, *f.SongID)
			continue
		}
		if wantArtist != *f.ArtistID {
			report.problemf("%s: songplay_id %d pairs song %q with artist %q, catalog says %q",
				domain.SongplaysTable, f.SongplayID, *f.SongID, *f.ArtistID, wantArtist)
		}
		if _, ok := artistIDs[*f.ArtistID]; !ok {
			report.problemf("%s: songplay_id %d references unknown artist %q", domain.SongplaysTable, f.SongplayID, *f.ArtistID)
		}
	}
}

func sampleByLocation(facts []domain.SongplayRow, substr string, limit int) []domain.SongplayRow {
	var sample []domain.SongplayRow
	for _, f := range facts {
		if len(sample) >= limit {
			break
		}
		if strings.Contains(f.Location, substr) {
			sample = append(sample, f)
		}
	}
	return sample
}
