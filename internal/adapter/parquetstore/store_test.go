package parquetstore_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l11ary/Data-Lake-with-Spark/internal/adapter/parquetstore"
	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
)

func newStore(t *testing.T) *parquetstore.Store {
	t.Helper()
	store, err := parquetstore.New(filepath.Join(t.TempDir(), "warehouse"), slog.Default())
	require.NoError(t, err)
	return store
}

func TestWriteSongs_Roundtrip(t *testing.T) {
	store := newStore(t)
	rows := []domain.SongRow{
		{SongID: "S1", Title: "Song A", ArtistID: "AR1", Year: 2005, Duration: 210.5},
		{SongID: "S2", Title: "Song B", ArtistID: "AR2", Year: 0, Duration: 186.17424},
	}

	require.NoError(t, store.WriteSongs(context.Background(), rows))

	got, err := parquetstore.ReadTable[domain.SongRow](store, domain.SongsTable)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(rows, got))
}

func TestWriteArtists_NullableColumns(t *testing.T) {
	store := newStore(t)
	lat, lon := 40.678, -73.944
	loc := "Brooklyn, NY"
	rows := []domain.ArtistRow{
		{ArtistID: "AR1", Name: "Artist X", Location: &loc, Latitude: &lat, Longitude: &lon},
		{ArtistID: "AR2", Name: "Artist Y"},
	}

	require.NoError(t, store.WriteArtists(context.Background(), rows))

	got, err := parquetstore.ReadTable[domain.ArtistRow](store, domain.ArtistsTable)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Latitude)
	assert.Equal(t, 40.678, *got[0].Latitude)
	assert.Nil(t, got[1].Latitude)
	assert.Nil(t, got[1].Location)
}

func TestWriteTimes_PartitionLayout(t *testing.T) {
	store := newStore(t)
	rows := []domain.TimeRow{
		{StartTime: time.UnixMilli(1541990258796).UTC(), Hour: 2, Day: 12, Week: 46, Month: 11, Year: 2018, Weekday: 2},
		{StartTime: time.UnixMilli(1544000000000).UTC(), Hour: 9, Day: 5, Week: 49, Month: 12, Year: 2018, Weekday: 4},
	}

	require.NoError(t, store.WriteTimes(context.Background(), rows))

	for _, dir := range []string{
		filepath.Join(domain.TimeTable, "year=2018", "month=11"),
		filepath.Join(domain.TimeTable, "year=2018", "month=12"),
	} {
		info, err := os.Stat(filepath.Join(store.Root(), dir))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	got, err := parquetstore.ReadTable[domain.TimeRow](store, domain.TimeTable)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWriteSongplays_Partitioned(t *testing.T) {
	store := newStore(t)
	songID, artistID := "S1", "AR1"
	rows := []domain.SongplayRow{{
		SongplayID: 0,
		StartTime:  time.UnixMilli(1541990258796).UTC(),
		UserID:     "10",
		Level:      "free",
		SongID:     &songID,
		ArtistID:   &artistID,
		SessionID:  500,
		Location:   "Washington, DC",
		UserAgent:  "UA1",
		Year:       2018,
		Month:      11,
	}}

	require.NoError(t, store.WriteSongplays(context.Background(), rows))

	got, err := parquetstore.ReadTable[domain.SongplayRow](store, domain.SongplaysTable)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].SongID)
	assert.Equal(t, "S1", *got[0].SongID)

	_, err = os.Stat(filepath.Join(store.Root(), domain.SongplaysTable, "year=2018", "month=11"))
	require.NoError(t, err)
}

func TestOverwriteReplacesTable(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := []domain.SongRow{
		{SongID: "S1", Title: "Song A", ArtistID: "AR1"},
		{SongID: "S2", Title: "Song B", ArtistID: "AR2"},
	}
	require.NoError(t, store.WriteSongs(ctx, first))

	second := []domain.SongRow{{SongID: "S3", Title: "Song C", ArtistID: "AR3"}}
	require.NoError(t, store.WriteSongs(ctx, second))

	got, err := parquetstore.ReadTable[domain.SongRow](store, domain.SongsTable)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(second, got))

	// No staging directories linger after the swap.
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestReadTable_Missing(t *testing.T) {
	store := newStore(t)
	_, err := parquetstore.ReadTable[domain.SongRow](store, domain.SongsTable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.SongsTable)
}

func TestCancelledContextAbortsWrite(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WriteSongs(ctx, []domain.SongRow{{SongID: "S1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.SongsTable)
}

func TestWriteManifest(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.WriteManifest(context.Background(), []byte(`{"run_id":"abc"}`)))

	data, err := os.ReadFile(filepath.Join(store.Root(), parquetstore.ManifestName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc")
}
