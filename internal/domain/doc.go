// Package domain models citizen-submitted water-quality readings.
//
// # Data Source
//
// Readings are submitted through the dashboard UI, one per zip code and
// measurement date, carrying four numeric parameters: pH, turbidity (NTU),
// dissolved oxygen (mg/L), and nitrate (mg/L). Rows are persisted to a flat
// store with the header row:
//
//	Zipcode, Date, pH, Turbidity, Dissolved Oxygen, Nitrate
//
// Zip codes are five-digit strings and must be preserved as strings — coercing
// to an integer would drop leading zeros for east-coast codes.
//
// # Safe Ranges
//
// Each parameter has a fixed inclusive safe range, informed by EPA drinking
// water guidance:
//
//	pH:               6.5 – 8.5
//	Turbidity:        0 – 5 NTU
//	Dissolved Oxygen: 5 – 14 mg/L
//	Nitrate:          0 – 10 mg/L
//
// [Validate] checks a single submission against these ranges and produces
// advisory warnings; [Classify] applies the same ranges to per-zip means to
// produce Safe/Alert verdicts.
//
// # Zip Resolution
//
// A map click produces a raw (lat, lon) pair. [ResolveZip] asks an external
// reverse-geocoding service for the postal code and, when that fails for any
// reason, falls back to [NearestKnown]: a great-circle nearest-neighbor
// search over a fixed table of San Jose zip-code centroids. The fallback
// always yields a zip, so resolution as a whole never fails.
//
// # Aggregation
//
// [Summarize] groups stored readings by zip code and computes the arithmetic
// mean of each parameter per group. A field that failed to parse from the
// store is carried as NaN and excluded from that field's mean without
// disturbing the other fields or the group. Summaries are recomputed from
// scratch on every request; at dozens to low-thousands of rows there is
// nothing worth caching.
package domain
