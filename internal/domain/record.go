package domain

// CatalogRecord is one raw catalog entry: a song plus its artist, as dumped
// in the song_data files. Optional columns are pointers so that absent and
// zero values stay distinguishable.
type CatalogRecord struct {
	ArtistID        string   `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistName      string   `json:"artist_name"`
	Duration        float64  `json:"duration"`
	NumSongs        int32    `json:"num_songs"`
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	Year            int32    `json:"year"`
}

// ActivityRecord is one raw user-interaction event from the log_data files.
// Field names follow the simulator's camelCase JSON keys.
type ActivityRecord struct {
	Artist        *string  `json:"artist"`
	Auth          string   `json:"auth"`
	FirstName     *string  `json:"firstName"`
	Gender        *string  `json:"gender"`
	ItemInSession int64    `json:"itemInSession"`
	LastName      *string  `json:"lastName"`
	Length        *float64 `json:"length"`
	Level         string   `json:"level"`
	Location      *string  `json:"location"`
	Method        string   `json:"method"`
	Page          string   `json:"page"`
	Registration  *float64 `json:"registration"`
	SessionID     int64    `json:"sessionId"`
	Song          *string  `json:"song"`
	Status        int64    `json:"status"`
	TS            int64    `json:"ts"`
	UserAgent     *string  `json:"userAgent"`
	UserID        string   `json:"userId"`
}

// PageNextSong is the page value that marks a genuine song play.
const PageNextSong = "NextSong"

// IsPlay reports whether the record is a song-play event. Only play events
// contribute to the users, time, and songplays tables.
func (r ActivityRecord) IsPlay() bool {
	return r.Page == PageNextSong
}
