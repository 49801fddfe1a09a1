package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pfrederiksen/standings-scraper/internal/standings"
	"github.com/pfrederiksen/standings-scraper/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains the summary of a run
type OutputResult struct {
	CheckedAt     time.Time          `json:"checked_at"`
	Source        string             `json:"source"`
	OutputFile    string             `json:"output_file"`
	Status        standings.Status   `json:"status"`
	Warning       *string            `json:"warning"`
	StandingCount int                `json:"standing_count"`
	Stale         bool               `json:"stale"`
	Changes       []standings.Change `json:"changes,omitempty"`
	PublishedTo   string             `json:"published_to,omitempty"`
	MetricsFile   string             `json:"metrics_file,omitempty"`
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// WriteOutput writes the run summary in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fmt.Fprintf(w, "Wrote %s (%d entries, status=%s).\n", result.OutputFile, result.StandingCount, result.Status)

	if result.Warning != nil {
		fmt.Fprintf(w, "Warning: %s\n", *result.Warning)
	}

	if verbose {
		fmt.Fprintf(w, "Source: %s\n", result.Source)
		fmt.Fprintf(w, "Checked at: %s\n", result.CheckedAt.Format(time.RFC3339))
	}

	if len(result.Changes) > 0 {
		fmt.Fprintf(w, "\nChanges since last run (%d):\n", len(result.Changes))
		for _, c := range result.Changes {
			fmt.Fprintf(w, "  %s\n", describeChange(c))
		}
	} else if !result.Stale && verbose {
		fmt.Fprintln(w, "No changes since last run.")
	}

	if result.PublishedTo != "" {
		fmt.Fprintf(w, "Published to %s\n", result.PublishedTo)
	}
	if result.MetricsFile != "" && verbose {
		fmt.Fprintf(w, "Metrics written to %s\n", result.MetricsFile)
	}

	return nil
}

func describeChange(c standings.Change) string {
	switch c.Type {
	case standings.ChangeAdded:
		return fmt.Sprintf("+ %s (rank %s)", c.Name, c.NewValue)
	case standings.ChangeRemoved:
		return fmt.Sprintf("- %s (was rank %s)", c.Name, c.OldValue)
	default:
		return fmt.Sprintf("~ %s: %s %s -> %s", c.Name, c.Type, c.OldValue, c.NewValue)
	}
}

// WriteSnapshot prints a stored snapshot in the specified format
func WriteSnapshot(w io.Writer, snap *standings.Snapshot, format OutputFormat, order SortOrder, verbose bool) error {
	switch format {
	case FormatJSON:
		data, err := storage.Encode(snap)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatText:
		return writeSnapshotText(w, snap, order, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeSnapshotText(w io.Writer, snap *standings.Snapshot, order SortOrder, verbose bool) error {
	status := string(snap.Status)
	if snap.Degraded() {
		status = degradedStyle.Render(status)
	}
	fmt.Fprintf(w, "Updated: %s  Status: %s\n", snap.UpdatedAt, status)
	if snap.Warning != nil {
		fmt.Fprintf(w, "Warning: %s\n", *snap.Warning)
	}
	if verbose {
		fmt.Fprintf(w, "Source: %s\n", snap.Source)
	}

	if snap.StandingCount == 0 {
		fmt.Fprintln(w, "No standings.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "Team", "Pts", "Played", "Won", "Lost")

	for _, r := range sortRows(snap.Standings, order) {
		t.Row(r.Rank, r.Name, r.Points, r.Played, r.Won, r.Lost)
	}

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Total: %d teams\n", snap.StandingCount)

	return nil
}
