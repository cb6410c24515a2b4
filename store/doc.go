// Package store journals accepted matches in Postgres.
//
// A Store wraps a database/sql handle and persists one row per match:
// pattern name, covered positions, matched items, named captures and
// any extractor substitution. Writes retry automatically when the
// failure classifies as transient. Recent, ByPattern and Since read the
// journal back; PruneBefore trims old rows.
package store
