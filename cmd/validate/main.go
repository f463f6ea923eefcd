// Command validate performs integrity checks against a written warehouse:
// row counts, key uniqueness per dimension, fact-to-dimension referential
// integrity, re-derivation of the time table's calendar fields, and a
// bounded sample query.
//
// Usage:
//
//	go run ./cmd/validate -warehouse ./warehouse -location Washington -limit 5
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/l11ary/Data-Lake-with-Spark/internal/adapter/parquetstore"
	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
	"github.com/l11ary/Data-Lake-with-Spark/internal/validate"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	warehouse := flag.String("warehouse", "", "warehouse root holding the parquet tables")
	location := flag.String("location", "Washington", "substring for the sample fact query")
	limit := flag.Int("limit", 5, "maximum sample rows to display")
	flag.Parse()

	if *warehouse == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*warehouse, *location, *limit); code != 0 {
		os.Exit(code)
	}
}

func run(warehouseDir, location string, limit int) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := parquetstore.New(warehouseDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open warehouse: %v\n", err)
		return 1
	}

	fmt.Println("=== Warehouse Integrity Validation ===")
	fmt.Println()

	report, err := validate.Warehouse(store, location, limit, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read warehouse: %v\n", err)
		return 1
	}

	phases := []*phase{
		countsPhase(report),
		integrityPhase(report),
		timePurityPhase(store),
	}

	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	fmt.Println()
	fmt.Printf("sample: %d fact rows with location containing %q\n", len(report.Sample), location)
	for _, f := range report.Sample {
		fmt.Printf("  songplay_id=%d user_id=%s song_id=%s location=%q start_time=%s\n",
			f.SongplayID, f.UserID, derefOr(f.SongID, "<null>"), f.Location, f.StartTime.Format("2006-01-02 15:04:05"))
	}

	for _, p := range phases {
		if !p.passed() {
			return 1
		}
	}
	return 0
}

func countsPhase(report *validate.Report) *phase {
	p := &phase{name: "row counts"}
	for _, table := range []string{
		domain.SongsTable, domain.ArtistsTable, domain.UsersTable,
		domain.TimeTable, domain.SongplaysTable,
	} {
		n, ok := report.Counts[table]
		if !ok {
			p.errorf("%s: missing from report", table)
			continue
		}
		fmt.Printf("%-16s %d rows\n", table, n)
	}
	fmt.Println()
	return p
}

func integrityPhase(report *validate.Report) *phase {
	p := &phase{name: "key uniqueness and referential integrity"}
	p.errors = append(p.errors, report.Problems...)
	return p
}

// timePurityPhase re-derives the calendar fields from each start_time and
// compares them with the stored row: the decomposition must be a pure
// function of the timestamp. Assumes the validator runs in the same working
// time zone the warehouse was built in.
func timePurityPhase(store *parquetstore.Store) *phase {
	p := &phase{name: "time decomposition purity"}

	times, err := parquetstore.ReadTable[domain.TimeRow](store, domain.TimeTable)
	if err != nil {
		p.errorf("read %s: %v", domain.TimeTable, err)
		return p
	}

	for _, row := range times {
		rederived := domain.DeriveTimes([]domain.ActivityRecord{{
			Page: domain.PageNextSong,
			TS:   row.StartTime.UnixMilli(),
		}})
		if len(rederived) != 1 {
			p.errorf("start_time %s: re-derivation yielded %d rows", row.StartTime, len(rederived))
			continue
		}
		got := rederived[0]
		if got.Hour != row.Hour || got.Day != row.Day || got.Week != row.Week ||
			got.Month != row.Month || got.Year != row.Year || got.Weekday != row.Weekday {
			p.errorf("start_time %s: stored (%d,%d,%d,%d,%d,%d) != derived (%d,%d,%d,%d,%d,%d)",
				row.StartTime,
				row.Hour, row.Day, row.Week, row.Month, row.Year, row.Weekday,
				got.Hour, got.Day, got.Week, got.Month, got.Year, got.Weekday)
		}
	}
	return p
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
