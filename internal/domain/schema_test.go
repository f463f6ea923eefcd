package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSchema(t *testing.T) {
	s := CatalogSchema()
	assert.Equal(t, "catalog", s.Name)
	assert.Len(t, s.Fields, 10)

	nullable := map[string]bool{}
	for _, f := range s.Fields {
		nullable[f.Name] = f.Nullable
	}
	assert.False(t, nullable["song_id"])
	assert.False(t, nullable["artist_id"])
	assert.True(t, nullable["artist_latitude"])
	assert.True(t, nullable["artist_location"])
}

func TestActivitySchema(t *testing.T) {
	s := ActivitySchema()
	assert.Equal(t, "activity", s.Name)
	assert.Len(t, s.Fields, 18)
}

func TestDecodeCatalogRecord(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		line := []byte(`{"artist_id":"AR1","artist_latitude":40.678,"artist_longitude":-73.944,"artist_location":"Brooklyn, NY","artist_name":"Artist X","duration":210.5,"num_songs":1,"song_id":"S1","title":"Song A","year":2005}`)

		rec, err := DecodeCatalogRecord(line)

		require.NoError(t, err)
		assert.Equal(t, "S1", rec.SongID)
		assert.Equal(t, "AR1", rec.ArtistID)
		assert.Equal(t, "Song A", rec.Title)
		assert.Equal(t, 210.5, rec.Duration)
		assert.Equal(t, int32(2005), rec.Year)
		require.NotNil(t, rec.ArtistLatitude)
		assert.Equal(t, 40.678, *rec.ArtistLatitude)
		require.NotNil(t, rec.ArtistLocation)
		assert.Equal(t, "Brooklyn, NY", *rec.ArtistLocation)
	})

	t.Run("null optionals coerce to absent", func(t *testing.T) {
		line := []byte(`{"artist_id":"AR1","artist_latitude":null,"artist_longitude":null,"artist_location":null,"artist_name":"Artist X","duration":186.2,"num_songs":1,"song_id":"S2","title":"Song B","year":0}`)

		rec, err := DecodeCatalogRecord(line)

		require.NoError(t, err)
		assert.Nil(t, rec.ArtistLatitude)
		assert.Nil(t, rec.ArtistLongitude)
		assert.Nil(t, rec.ArtistLocation)
	})

	t.Run("quoted numbers coerce", func(t *testing.T) {
		line := []byte(`{"artist_id":"AR1","artist_name":"Artist X","duration":"210.5","num_songs":"1","song_id":"S1","title":"Song A","year":"2005"}`)

		rec, err := DecodeCatalogRecord(line)

		require.NoError(t, err)
		assert.Equal(t, 210.5, rec.Duration)
		assert.Equal(t, int32(1), rec.NumSongs)
		assert.Equal(t, int32(2005), rec.Year)
	})

	t.Run("unparseable optional coerces to absent", func(t *testing.T) {
		line := []byte(`{"artist_id":"AR1","artist_latitude":"not-a-number","artist_name":"Artist X","duration":1,"num_songs":1,"song_id":"S1","title":"Song A","year":2005}`)

		rec, err := DecodeCatalogRecord(line)

		require.NoError(t, err)
		assert.Nil(t, rec.ArtistLatitude)
	})

	t.Run("missing song_id rejects the row", func(t *testing.T) {
		line := []byte(`{"artist_id":"AR1","artist_name":"Artist X","duration":1,"title":"Song A","year":2005}`)

		_, err := DecodeCatalogRecord(line)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingKey))
	})

	t.Run("missing artist_id rejects the row", func(t *testing.T) {
		line := []byte(`{"song_id":"S1","artist_name":"Artist X","duration":1,"title":"Song A"}`)

		_, err := DecodeCatalogRecord(line)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingKey))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := DecodeCatalogRecord([]byte("{invalid"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrMissingKey))
	})
}

func TestDecodeActivityRecord(t *testing.T) {
	t.Run("play event", func(t *testing.T) {
		line := []byte(`{"artist":"Artist X","auth":"Logged In","firstName":"Sylvie","gender":"F","itemInSession":0,"lastName":"Cruz","length":210.5,"level":"free","location":"Washington, DC","method":"PUT","page":"NextSong","registration":1.540266e+12,"sessionId":500,"song":"Song A","status":200,"ts":1541990258796,"userAgent":"UA1","userId":"10"}`)

		rec, err := DecodeActivityRecord(line)

		require.NoError(t, err)
		assert.True(t, rec.IsPlay())
		assert.Equal(t, "10", rec.UserID)
		assert.Equal(t, int64(1541990258796), rec.TS)
		assert.Equal(t, int64(500), rec.SessionID)
		require.NotNil(t, rec.Length)
		assert.Equal(t, 210.5, *rec.Length)
		require.NotNil(t, rec.Registration)
	})

	t.Run("unquoted userId coerces to string", func(t *testing.T) {
		line := []byte(`{"page":"NextSong","ts":1541990258796,"userId":26,"level":"paid","sessionId":583}`)

		rec, err := DecodeActivityRecord(line)

		require.NoError(t, err)
		assert.Equal(t, "26", rec.UserID)
	})

	t.Run("non-play page decodes fine", func(t *testing.T) {
		line := []byte(`{"page":"Login","ts":1541990258796,"userId":""}`)

		rec, err := DecodeActivityRecord(line)

		require.NoError(t, err)
		assert.False(t, rec.IsPlay())
		assert.Empty(t, rec.UserID)
	})

	t.Run("null optionals coerce to absent", func(t *testing.T) {
		line := []byte(`{"artist":null,"song":null,"length":null,"page":"Home","ts":1541990258796,"userId":"10"}`)

		rec, err := DecodeActivityRecord(line)

		require.NoError(t, err)
		assert.Nil(t, rec.Artist)
		assert.Nil(t, rec.Song)
		assert.Nil(t, rec.Length)
	})

	t.Run("missing page rejects the row", func(t *testing.T) {
		_, err := DecodeActivityRecord([]byte(`{"ts":1541990258796,"userId":"10"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingKey))
	})

	t.Run("missing ts rejects the row", func(t *testing.T) {
		_, err := DecodeActivityRecord([]byte(`{"page":"NextSong","userId":"10"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingKey))
	})

	t.Run("unparseable ts rejects the row", func(t *testing.T) {
		_, err := DecodeActivityRecord([]byte(`{"page":"NextSong","ts":"not-a-time","userId":"10"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingKey))
	})
}
