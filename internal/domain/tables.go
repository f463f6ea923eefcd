package domain

import "time"

// Warehouse table names double as dataset directory names under the
// output root.
const (
	SongsTable     = "songs_table"
	ArtistsTable   = "artists_table"
	UsersTable     = "users_table"
	TimeTable      = "time_table"
	SongplaysTable = "songplays_table"
)

// SongRow is one songs_table row, keyed by the natural song_id.
type SongRow struct {
	SongID   string  `parquet:"song_id" json:"song_id"`
	Title    string  `parquet:"title" json:"title"`
	ArtistID string  `parquet:"artist_id" json:"artist_id"`
	Year     int32   `parquet:"year" json:"year"`
	Duration float64 `parquet:"duration" json:"duration"`
}

// ArtistRow is one artists_table row, keyed by the natural artist_id.
type ArtistRow struct {
	ArtistID  string   `parquet:"artist_id" json:"artist_id"`
	Name      string   `parquet:"name" json:"name"`
	Location  *string  `parquet:"location,optional" json:"location"`
	Latitude  *float64 `parquet:"latitude,optional" json:"latitude"`
	Longitude *float64 `parquet:"longitude,optional" json:"longitude"`
}

// UserRow is one users_table row, keyed by the natural user_id. Level is the
// subscription tier captured by the dedup policy.
type UserRow struct {
	UserID    string `parquet:"user_id" json:"user_id"`
	FirstName string `parquet:"first_name" json:"first_name"`
	LastName  string `parquet:"last_name" json:"last_name"`
	Gender    string `parquet:"gender" json:"gender"`
	Level     string `parquet:"level" json:"level"`
}

// TimeRow is one time_table row: a distinct event timestamp decomposed into
// calendar attributes. Weekday uses 1=Sunday through 7=Saturday.
type TimeRow struct {
	StartTime time.Time `parquet:"start_time,timestamp(millisecond)" json:"start_time"`
	Hour      int32     `parquet:"hour" json:"hour"`
	Day       int32     `parquet:"day" json:"day"`
	Week      int32     `parquet:"week" json:"week"`
	Month     int32     `parquet:"month" json:"month"`
	Year      int32     `parquet:"year" json:"year"`
	Weekday   int32     `parquet:"weekday" json:"weekday"`
}

// SongplayRow is one songplays_table row: a play event matched against the
// catalog. SongID and ArtistID stay nullable in the schema even though the
// inner join always fills them; a left-join variant would emit them as null.
type SongplayRow struct {
	SongplayID int64     `parquet:"songplay_id" json:"songplay_id"`
	StartTime  time.Time `parquet:"start_time,timestamp(millisecond)" json:"start_time"`
	UserID     string    `parquet:"user_id" json:"user_id"`
	Level      string    `parquet:"level" json:"level"`
	SongID     *string   `parquet:"song_id,optional" json:"song_id"`
	ArtistID   *string   `parquet:"artist_id,optional" json:"artist_id"`
	SessionID  int64     `parquet:"session_id" json:"session_id"`
	Location   string    `parquet:"location" json:"location"`
	UserAgent  string    `parquet:"user_agent" json:"user_agent"`
	Year       int32     `parquet:"year" json:"year"`
	Month      int32     `parquet:"month" json:"month"`
}
