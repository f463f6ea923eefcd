// Package domain models the Sparkify music-streaming warehouse.
//
// # Data Sources
//
// Two NDJSON dumps feed the warehouse. Catalog files are a subset of the
// Million Song Dataset: one JSON object per file, nested three directory
// levels deep by the first letters of the track ID
// (song_data/A/B/C/TRABCEI128F424C983.json). Activity files are simulated
// streaming-app event logs, one file per day with one JSON object per line
// (log_data/2018-11-12-events.json).
//
// # Conventions
//
// Activity timestamps:
//
//	"ts" is epoch milliseconds. Dividing by 1000 and interpreting the result
//	as epoch seconds in the pipeline's working time zone yields the event's
//	start_time. Two events sharing a millisecond collapse to one time row.
//
// Page types:
//
//	"page" distinguishes user actions (NextSong, Home, Login, Logout, ...).
//	Only "NextSong" denotes an actual song play; every other page type is
//	discarded before any table is derived.
//
// Subscription level:
//
//	"level" is "free" or "paid" and can change across a user's events. The
//	users table keeps one row per user_id; which occurrence wins is a
//	[DedupPolicy] decision, first-encountered by default.
//
// Weekday encoding:
//
//	1 = Sunday through 7 = Saturday. "week" is the ISO week of year.
//
// Fact matching:
//
//	A play matches a catalog entry when song == title, length == duration,
//	and artist == artist_name, all by exact equality. Duration is compared
//	as a raw float64; the catalog and the event logs encode it identically,
//	so no tolerance is applied. Unmatched plays produce no fact row.
//
// Surrogate keys:
//
//	songplay_id is a dense counter starting at zero, unique within a run
//	only. Reruns may renumber rows; nothing downstream should attach meaning
//	to the ordering.
package domain
