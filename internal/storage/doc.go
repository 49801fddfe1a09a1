// Package storage provides JSON-based persistence for the standings snapshot.
//
// The snapshot lives in a single file that is read once at the start of a run
// and overwritten at the end of it. It doubles as the memory between runs:
// when a scrape fails, the rows stored there are served again.
package storage
