// Package cli implements the command-line interface for standings-scraper.
//
// The cli package provides the Cobra-based CLI with the run command, which
// fetches the standings page, writes the JSON snapshot and optionally publishes
// it and writes metrics, and the show command, which prints the current
// snapshot as a table or JSON. Flags are bound to the Viper configuration
// loaded by the config package.
package cli
