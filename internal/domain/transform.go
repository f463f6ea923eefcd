package domain

import "fmt"

// DedupPolicy decides which occurrence wins when records collide on a
// dimension key.
type DedupPolicy int

const (
	// FirstSeen keeps the first occurrence in input order. This is the
	// historical warehouse behavior; for users it may capture a stale
	// subscription level.
	FirstSeen DedupPolicy = iota
	// LastSeen replaces the kept row with each later occurrence, so a user's
	// most recent level wins. Row order still follows first occurrence.
	LastSeen
)

// ParseDedupPolicy maps a config string ("first" or "last") to a policy.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch s {
	case "first", "":
		return FirstSeen, nil
	case "last":
		return LastSeen, nil
	default:
		return FirstSeen, fmt.Errorf("unknown dedup policy %q", s)
	}
}

// FilterPlays returns only the song-play events. Every other page type is
// discarded and never reaches a warehouse table.
func FilterPlays(records []ActivityRecord) []ActivityRecord {
	plays := make([]ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.IsPlay() {
			plays = append(plays, r)
		}
	}
	return plays
}

// ExtractSongs projects catalog records into songs_table rows, one per
// distinct song_id, first occurrence winning.
func ExtractSongs(records []CatalogRecord) []SongRow {
	seen := make(map[string]struct{}, len(records))
	rows := make([]SongRow, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.SongID]; ok {
			continue
		}
		seen[r.SongID] = struct{}{}
		rows = append(rows, SongRow{
			SongID:   r.SongID,
			Title:    r.Title,
			ArtistID: r.ArtistID,
			Year:     r.Year,
			Duration: r.Duration,
		})
	}
	return rows
}

// ExtractArtists projects catalog records into artists_table rows, one per
// distinct artist_id, first occurrence winning. Latitude comes from the
// artist_latitude column and longitude from artist_longitude.
func ExtractArtists(records []CatalogRecord) []ArtistRow {
	seen := make(map[string]struct{}, len(records))
	rows := make([]ArtistRow, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ArtistID]; ok {
			continue
		}
		seen[r.ArtistID] = struct{}{}
		rows = append(rows, ArtistRow{
			ArtistID:  r.ArtistID,
			Name:      r.ArtistName,
			Location:  r.ArtistLocation,
			Latitude:  r.ArtistLatitude,
			Longitude: r.ArtistLongitude,
		})
	}
	return rows
}

// ExtractUsers projects play events into users_table rows, one per distinct
// user_id. Events without a user id are skipped: they cannot key a row.
// Under LastSeen a later event overwrites the kept row in place, so the most
// recent level wins while row order stays stable.
func ExtractUsers(plays []ActivityRecord, policy DedupPolicy) []UserRow {
	index := make(map[string]int, len(plays))
	rows := make([]UserRow, 0, len(plays))
	for _, r := range plays {
		if r.UserID == "" {
			continue
		}
		row := UserRow{
			UserID:    r.UserID,
			FirstName: deref(r.FirstName),
			LastName:  deref(r.LastName),
			Gender:    deref(r.Gender),
			Level:     r.Level,
		}
		if i, ok := index[r.UserID]; ok {
			if policy == LastSeen {
				rows[i] = row
			}
			continue
		}
		index[r.UserID] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

// DeriveTimes decomposes each distinct play timestamp into time_table
// calendar attributes. The mapping is a pure function of ts and the working
// zone; duplicates collapse on the millisecond.
func DeriveTimes(plays []ActivityRecord) []TimeRow {
	seen := make(map[int64]struct{}, len(plays))
	rows := make([]TimeRow, 0, len(plays))
	for _, r := range plays {
		if _, ok := seen[r.TS]; ok {
			continue
		}
		seen[r.TS] = struct{}{}

		t := StartTime(r.TS)
		_, week := t.ISOWeek()
		rows = append(rows, TimeRow{
			StartTime: t,
			Hour:      int32(t.Hour()),
			Day:       int32(t.Day()),
			Week:      int32(week),
			Month:     int32(t.Month()),
			Year:      int32(t.Year()),
			Weekday:   int32(t.Weekday()) + 1,
		})
	}
	return rows
}

// catalogKey is the equality contract for matching a play against the
// catalog: exact title, exact float64 duration, exact artist name.
type catalogKey struct {
	title    string
	duration float64
	artist   string
}

// BuildSongplays matches play events against the full catalog record set
// (not the deduplicated songs table) and emits one fact row per matched
// play. Unmatched plays are dropped, counted in the second return value.
// songplay_id is a dense counter starting at zero, unique within this call.
func BuildSongplays(plays []ActivityRecord, catalog []CatalogRecord) ([]SongplayRow, int) {
	lookup := make(map[catalogKey]CatalogRecord, len(catalog))
	for _, c := range catalog {
		k := catalogKey{title: c.Title, duration: c.Duration, artist: c.ArtistName}
		if _, ok := lookup[k]; !ok {
			lookup[k] = c
		}
	}

	rows := make([]SongplayRow, 0, len(plays))
	unmatched := 0
	var nextID int64
	for _, p := range plays {
		if p.Song == nil || p.Length == nil || p.Artist == nil {
			unmatched++
			continue
		}
		c, ok := lookup[catalogKey{title: *p.Song, duration: *p.Length, artist: *p.Artist}]
		if !ok {
			unmatched++
			continue
		}

		t := StartTime(p.TS)
		songID, artistID := c.SongID, c.ArtistID
		rows = append(rows, SongplayRow{
			SongplayID: nextID,
			StartTime:  t,
			UserID:     p.UserID,
			Level:      p.Level,
			SongID:     &songID,
			ArtistID:   &artistID,
			SessionID:  p.SessionID,
			Location:   deref(p.Location),
			UserAgent:  deref(p.UserAgent),
			Year:       int32(t.Year()),
			Month:      int32(t.Month()),
		})
		nextID++
	}
	return rows, unmatched
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
