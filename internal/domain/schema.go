package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingKey marks a record whose key field is absent or unparseable.
// Such rows are dropped by the reader; they never abort a run.
var ErrMissingKey = errors.New("record missing key field")

// FieldType is the semantic type of a raw record field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeDouble FieldType = "double"
	TypeLong   FieldType = "long"
	TypeInt    FieldType = "int"
)

// Field describes one column of a raw record shape.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
}

// Schema is a fixed record-shape descriptor. Decoding is schema-on-read and
// lenient: unparseable nullable fields coerce to absent, and only a missing
// key field rejects the row.
type Schema struct {
	Name   string
	Fields []Field
}

// CatalogSchema describes the song_data record shape.
func CatalogSchema() Schema {
	return Schema{
		Name: "catalog",
		Fields: []Field{
			{Name: "artist_id", Type: TypeString},
			{Name: "artist_latitude", Type: TypeDouble, Nullable: true},
			{Name: "artist_longitude", Type: TypeDouble, Nullable: true},
			{Name: "artist_location", Type: TypeString, Nullable: true},
			{Name: "artist_name", Type: TypeString},
			{Name: "duration", Type: TypeDouble},
			{Name: "num_songs", Type: TypeInt},
			{Name: "song_id", Type: TypeString},
			{Name: "title", Type: TypeString},
			{Name: "year", Type: TypeInt},
		},
	}
}

// ActivitySchema describes the log_data record shape.
func ActivitySchema() Schema {
	return Schema{
		Name: "activity",
		Fields: []Field{
			{Name: "artist", Type: TypeString, Nullable: true},
			{Name: "auth", Type: TypeString},
			{Name: "firstName", Type: TypeString, Nullable: true},
			{Name: "gender", Type: TypeString, Nullable: true},
			{Name: "itemInSession", Type: TypeLong},
			{Name: "lastName", Type: TypeString, Nullable: true},
			{Name: "length", Type: TypeDouble, Nullable: true},
			{Name: "level", Type: TypeString},
			{Name: "location", Type: TypeString, Nullable: true},
			{Name: "method", Type: TypeString},
			{Name: "page", Type: TypeString},
			{Name: "registration", Type: TypeDouble, Nullable: true},
			{Name: "sessionId", Type: TypeLong},
			{Name: "song", Type: TypeString, Nullable: true},
			{Name: "status", Type: TypeLong},
			{Name: "ts", Type: TypeLong},
			{Name: "userAgent", Type: TypeString, Nullable: true},
			{Name: "userId", Type: TypeString, Nullable: true},
		},
	}
}

// DecodeCatalogRecord parses one NDJSON line into a CatalogRecord.
// song_id and artist_id are the key fields; a row missing either is rejected.
func DecodeCatalogRecord(line []byte) (CatalogRecord, error) {
	fields, err := rawFields(line)
	if err != nil {
		return CatalogRecord{}, fmt.Errorf("decode catalog record: %w", err)
	}

	rec := CatalogRecord{
		ArtistID:        stringField(fields, "artist_id"),
		ArtistLatitude:  optFloatField(fields, "artist_latitude"),
		ArtistLongitude: optFloatField(fields, "artist_longitude"),
		ArtistLocation:  optStringField(fields, "artist_location"),
		ArtistName:      stringField(fields, "artist_name"),
		Duration:        floatField(fields, "duration"),
		NumSongs:        int32(longField(fields, "num_songs")),
		SongID:          stringField(fields, "song_id"),
		Title:           stringField(fields, "title"),
		Year:            int32(longField(fields, "year")),
	}

	if rec.SongID == "" {
		return CatalogRecord{}, fmt.Errorf("decode catalog record: song_id: %w", ErrMissingKey)
	}
	if rec.ArtistID == "" {
		return CatalogRecord{}, fmt.Errorf("decode catalog record: artist_id: %w", ErrMissingKey)
	}
	return rec, nil
}

// DecodeActivityRecord parses one NDJSON line into an ActivityRecord.
// page and ts are the key fields; without them the event cannot be filtered
// or placed in time, so the row is rejected.
func DecodeActivityRecord(line []byte) (ActivityRecord, error) {
	fields, err := rawFields(line)
	if err != nil {
		return ActivityRecord{}, fmt.Errorf("decode activity record: %w", err)
	}

	rec := ActivityRecord{
		Artist:        optStringField(fields, "artist"),
		Auth:          stringField(fields, "auth"),
		FirstName:     optStringField(fields, "firstName"),
		Gender:        optStringField(fields, "gender"),
		ItemInSession: longField(fields, "itemInSession"),
		LastName:      optStringField(fields, "lastName"),
		Length:        optFloatField(fields, "length"),
		Level:         stringField(fields, "level"),
		Location:      optStringField(fields, "location"),
		Method:        stringField(fields, "method"),
		Page:          stringField(fields, "page"),
		Registration:  optFloatField(fields, "registration"),
		SessionID:     longField(fields, "sessionId"),
		Song:          optStringField(fields, "song"),
		Status:        longField(fields, "status"),
		TS:            longField(fields, "ts"),
		UserAgent:     optStringField(fields, "userAgent"),
		UserID:        stringField(fields, "userId"),
	}

	if rec.Page == "" {
		return ActivityRecord{}, fmt.Errorf("decode activity record: page: %w", ErrMissingKey)
	}
	if rec.TS <= 0 {
		return ActivityRecord{}, fmt.Errorf("decode activity record: ts: %w", ErrMissingKey)
	}
	return rec, nil
}

func rawFields(line []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// stringField returns the field as a string, coercing bare numbers to their
// text form (the simulator emits userId both quoted and unquoted). Absent,
// null, or unparseable values become "".
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func optStringField(fields map[string]json.RawMessage, name string) *string {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// floatField parses a number, tolerating quoted numeric strings. Absent or
// unparseable values become 0.
func floatField(fields map[string]json.RawMessage, name string) float64 {
	v := optFloatField(fields, name)
	if v == nil {
		return 0
	}
	return *v
}

func optFloatField(fields map[string]json.RawMessage, name string) *float64 {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

// longField parses an integer, tolerating float encodings (registration-style
// epoch values) and quoted numbers. Absent or unparseable values become 0.
func longField(fields map[string]json.RawMessage, name string) int64 {
	v := optFloatField(fields, name)
	if v == nil {
		return 0
	}
	return int64(*v)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
