// Command genmock writes a small deterministic fixture tree in the layout
// the etl command expects: single-record catalog files under song_data/ and
// one NDJSON activity log under log_data/. The fixtures include plays that
// match the catalog, plays that do not, and non-play page events, so a run
// over them exercises every table.
//
// Usage:
//
//	go run ./cmd/genmock -out ./data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/l11ary/Data-Lake-with-Spark/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write song_data/ and log_data/ into")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	catalog := catalogFixtures()
	for _, rec := range catalog {
		if err := writeCatalogFile(*out, rec); err != nil {
			return err
		}
	}
	log.Printf("song_data: %d records", len(catalog))

	events := activityFixtures()
	if err := writeActivityLog(*out, "2018-11-12-events.json", events); err != nil {
		return err
	}
	log.Printf("log_data: %d events", len(events))

	return nil
}

func catalogFixtures() []domain.CatalogRecord {
	return []domain.CatalogRecord{
		catalogRecord("SOAAAA12AB018A001", "TRAAAAA128F deep dive", "ARAAAA1187B98A001", "Casual Static", 218.93179, 2004, "Brooklyn, NY", 40.678, -73.944),
		catalogRecord("SOBBBB12AB018A002", "Sleepless Harbor", "ARBBBB1187B98A002", "The Gradient", 186.17424, 2011, "Portland, OR", 45.512, -122.658),
		catalogRecord("SOCCCC12AB018A003", "Afternoon Arithmetic", "ARAAAA1187B98A001", "Casual Static", 305.04771, 0, "Brooklyn, NY", 40.678, -73.944),
	}
}

func catalogRecord(songID, title, artistID, artistName string, duration float64, year int32, loc string, lat, lon float64) domain.CatalogRecord {
	return domain.CatalogRecord{
		ArtistID:        artistID,
		ArtistLatitude:  &lat,
		ArtistLongitude: &lon,
		ArtistLocation:  &loc,
		ArtistName:      artistName,
		Duration:        duration,
		NumSongs:        1,
		SongID:          songID,
		Title:           title,
		Year:            year,
	}
}

func activityFixtures() []domain.ActivityRecord {
	base := int64(1541990258796) // 2018-11-12 02:37:38.796 UTC
	return []domain.ActivityRecord{
		play("26", "Ryan", "Smith", "M", "free", "San Jose-Sunnyvale-Santa Clara, CA",
			"Sleepless Harbor", "The Gradient", 186.17424, base, 583),
		play("26", "Ryan", "Smith", "M", "free", "San Jose-Sunnyvale-Santa Clara, CA",
			"Afternoon Arithmetic", "Casual Static", 305.04771, base+186174, 583),
		play("10", "Sylvie", "Cruz", "F", "paid", "Washington-Arlington-Alexandria, DC-VA-MD-WV",
			"TRAAAAA128F deep dive", "Casual Static", 218.93179, base+360000, 500),
		// No catalog match: dropped by the fact build, kept by users/time.
		play("10", "Sylvie", "Cruz", "F", "paid", "Washington-Arlington-Alexandria, DC-VA-MD-WV",
			"Unreleased Bootleg", "Unknown Artist", 99.5, base+540000, 500),
		// Non-play events never reach any table.
		page("26", "Ryan", "Smith", "M", "free", "Home", base+600000, 583),
		page("", "", "", "", "free", "Login", base+601000, 584),
	}
}

func play(userID, first, last, gender, level, location, song, artist string, length float64, ts int64, session int64) domain.ActivityRecord {
	rec := page(userID, first, last, gender, level, domain.PageNextSong, ts, session)
	rec.Artist = &artist
	rec.Song = &song
	rec.Length = &length
	rec.Location = &location
	return rec
}

func page(userID, first, last, gender, level, pageName string, ts int64, session int64) domain.ActivityRecord {
	ua := `"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_4)"`
	rec := domain.ActivityRecord{
		Auth:      "Logged In",
		Level:     level,
		Method:    "PUT",
		Page:      pageName,
		SessionID: session,
		Status:    200,
		TS:        ts,
		UserAgent: &ua,
		UserID:    userID,
	}
	if first != "" {
		rec.FirstName = &first
		rec.LastName = &last
		rec.Gender = &gender
	}
	return rec
}

// writeCatalogFile places one record at the dataset's three-level nesting,
// keyed by the first letters of the song ID.
func writeCatalogFile(root string, rec domain.CatalogRecord) error {
	letters := strings.Split(rec.SongID[2:5], "")
	dir := filepath.Join(root, "song_data", letters[0], letters[1], letters[2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, rec.SongID+".json"), data, 0o644)
}

func writeActivityLog(root, name string, events []domain.ActivityRecord) error {
	dir := filepath.Join(root, "log_data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var b strings.Builder
	for _, e := range events {
		line, err := json.Marshal(e)
		if err != nil {
			return err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644)
}
