// Package pipeline orchestrates one warehouse run: read both raw streams,
// derive the dimension and fact tables, and persist each dataset.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
	"github.com/l11ary/Data-Lake-with-Spark/internal/observability"
)

// Source reads the two raw record streams from the content root.
type Source interface {
	ReadCatalog(ctx context.Context) ([]domain.CatalogRecord, error)
	ReadActivity(ctx context.Context) ([]domain.ActivityRecord, error)
}

// Warehouse persists the five tables plus the run manifest. Each write is a
// full overwrite, atomic at table granularity.
type Warehouse interface {
	WriteSongs(ctx context.Context, rows []domain.SongRow) error
	WriteArtists(ctx context.Context, rows []domain.ArtistRow) error
	WriteUsers(ctx context.Context, rows []domain.UserRow) error
	WriteTimes(ctx context.Context, rows []domain.TimeRow) error
	WriteSongplays(ctx context.Context, rows []domain.SongplayRow) error
	WriteManifest(ctx context.Context, data []byte) error
}

// RunSummary describes one completed run. It is also serialized as the
// warehouse's _run_manifest.json.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	RowCounts  map[string]int `json:"row_counts"`
	Unmatched  int            `json:"unmatched_plays"`
}

// Pipeline wires a Source to a Warehouse through the domain transforms.
type Pipeline struct {
	source  Source
	store   Warehouse
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	policy  domain.DedupPolicy
	ready   atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(source Source, store Warehouse, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, policy domain.DedupPolicy) *Pipeline {
	return &Pipeline{
		source:  source,
		store:   store,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
		policy:  policy,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no warehouse run has completed yet")
	}
	return nil
}

// Run executes one full warehouse build. Every run reprocesses all available
// input and overwrites every table; there is no incremental mode.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	started := p.clock.Now()
	runID := uuid.NewString()
	p.logger.Info("warehouse run started", "run_id", runID)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	catalog, activity, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	// The catalog path and the activity path are independent until the fact
	// build, which needs the full catalog record set.
	songs := timeStage(p.metrics, "extract_songs", func() []domain.SongRow { return domain.ExtractSongs(catalog) })
	artists := timeStage(p.metrics, "extract_artists", func() []domain.ArtistRow { return domain.ExtractArtists(catalog) })
	plays := timeStage(p.metrics, "filter_plays", func() []domain.ActivityRecord { return domain.FilterPlays(activity) })
	users := timeStage(p.metrics, "extract_users", func() []domain.UserRow { return domain.ExtractUsers(plays, p.policy) })
	times := timeStage(p.metrics, "derive_times", func() []domain.TimeRow { return domain.DeriveTimes(plays) })

	factStart := time.Now()
	facts, unmatched := domain.BuildSongplays(plays, catalog)
	p.metrics.StageDuration.WithLabelValues("build_songplays").Observe(time.Since(factStart).Seconds())
	p.metrics.PlaysUnmatched.Add(float64(unmatched))
	if unmatched > 0 {
		p.logger.Info("plays without a catalog match dropped", "count", unmatched)
	}

	if err := p.load(ctx, songs, artists, users, times, facts); err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: p.clock.Now(),
		RowCounts: map[string]int{
			domain.SongsTable:     len(songs),
			domain.ArtistsTable:   len(artists),
			domain.UsersTable:     len(users),
			domain.TimeTable:      len(times),
			domain.SongplaysTable: len(facts),
		},
		Unmatched: unmatched,
	}

	// The manifest is run metadata, not table data; failing to write it does
	// not invalidate the already-committed tables.
	if data, err := json.MarshalIndent(summary, "", "  "); err == nil {
		if err := p.store.WriteManifest(ctx, data); err != nil {
			p.logger.Warn("manifest write failed", "error", err)
		}
	}

	p.ready.Store(true)
	p.logger.Info("warehouse run finished",
		"run_id", runID,
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
		"songs", len(songs),
		"artists", len(artists),
		"users", len(users),
		"times", len(times),
		"songplays", len(facts),
	)
	return summary, nil
}

// extract reads both raw streams concurrently. A missing stream aborts the
// whole run.
func (p *Pipeline) extract(ctx context.Context) ([]domain.CatalogRecord, []domain.ActivityRecord, error) {
	var (
		catalog  []domain.CatalogRecord
		activity []domain.ActivityRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		catalog, err = p.source.ReadCatalog(gctx)
		p.metrics.StageDuration.WithLabelValues("read_catalog").Observe(time.Since(start).Seconds())
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		activity, err = p.source.ReadActivity(gctx)
		p.metrics.StageDuration.WithLabelValues("read_activity").Observe(time.Since(start).Seconds())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("extract: %w", err)
	}

	p.logger.Info("raw streams loaded", "catalog_records", len(catalog), "activity_records", len(activity))
	return catalog, activity, nil
}

// load persists every table. The first failure aborts; the store guarantees
// the failed table's previous contents survive.
func (p *Pipeline) load(
	ctx context.Context,
	songs []domain.SongRow,
	artists []domain.ArtistRow,
	users []domain.UserRow,
	times []domain.TimeRow,
	facts []domain.SongplayRow,
) error {
	writes := []struct {
		table string
		rows  int
		fn    func(context.Context) error
	}{
		{domain.SongsTable, len(songs), func(ctx context.Context) error { return p.store.WriteSongs(ctx, songs) }},
		{domain.ArtistsTable, len(artists), func(ctx context.Context) error { return p.store.WriteArtists(ctx, artists) }},
		{domain.UsersTable, len(users), func(ctx context.Context) error { return p.store.WriteUsers(ctx, users) }},
		{domain.TimeTable, len(times), func(ctx context.Context) error { return p.store.WriteTimes(ctx, times) }},
		{domain.SongplaysTable, len(facts), func(ctx context.Context) error { return p.store.WriteSongplays(ctx, facts) }},
	}

	for _, w := range writes {
		start := time.Now()
		if err := w.fn(ctx); err != nil {
			return fmt.Errorf("load %s: %w", w.table, err)
		}
		p.metrics.StageDuration.WithLabelValues("write_" + w.table).Observe(time.Since(start).Seconds())
		p.metrics.RowsWritten.WithLabelValues(w.table).Add(float64(w.rows))
	}
	return nil
}

// timeStage runs a pure transform stage and records its duration.
func timeStage[T any](metrics *observability.Metrics, stage string, fn func() []T) []T {
	start := time.Now()
	out := fn()
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return out
}
