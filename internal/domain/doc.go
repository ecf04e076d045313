// Package domain implements the row transformations of the MLB games ETL.
//
// # Data Sources
//
// Game schedules come from the MLB Stats API schedule endpoint. Each response
// carries a "dates" list; each date bucket carries a "games" list of nested
// records with "status", "venue", "content", and "teams" sub-objects. The
// flattener inlines the first three by prefixing their scalar keys with the
// parent name ("status_abstractGameState"), expands the home/away team block
// into twelve fixed columns, and removes the nested originals.
//
// Stadium coordinates come from a community-maintained JSON list keyed by
// team display name. The list predates two franchise changes and omits two
// parks, so the resolver appends fixed entries for the Miami Marlins and the
// Los Angeles Angels and rewrites two legacy names:
//
//	Cleveland Indians      -> Cleveland Guardians
//	Tampa Bay Devil Rays   -> Tampa Bay Rays
//
// Both rewrites are exact, case-sensitive string matches. Teams that still
// fail to match keep null coordinates; the join is a left join and never
// drops schedule rows.
//
// Hourly forecasts come from the open-meteo forecast endpoint, requested per
// distinct stadium coordinate with a 9-day horizon. Nine days is wider than
// the 7-day schedule window so every game hour is covered.
//
// # Join Keys
//
// Weather joins on the composite key (time_zero_minute, latitude, longitude).
// time_zero_minute is the game timestamp with its zone stripped and minutes
// and smaller units zeroed. The match is exact hour equality: a game starting
// at 19:10 joins the 19:00 forecast row because its bucket is 19:00; a bucket
// with no forecasted hour yields null weather fields. There is no
// nearest-hour fallback.
//
// # Synthetic Columns
//
// Two reproducible column families are appended after redaction, each from
// its own generator seeded with the same fixed seed (default 8675309):
// a 12-character alphanumeric random_id with an id_includes_nineteen flag,
// and a jenny value uniform on [-150, 150) with a jenny_error flag for
// values at or below -50. Fixed seed plus fixed row count gives bit-for-bit
// identical sequences across runs.
package domain
