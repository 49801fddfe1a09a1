// Package standings provides the standings row and snapshot types.
//
// A Snapshot is the document persisted to the output file after every run. It
// carries the extracted rows together with status metadata: a run that had to
// fall back to stale data, or that produced no rows at all, is marked
// "degraded" and carries a warning. Snapshots are built through NewSnapshot so
// the count and status fields always agree with the rows and the warning.
package standings
