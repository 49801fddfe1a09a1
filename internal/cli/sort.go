package cli

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByRank   SortOrder = "rank"
	SortByName   SortOrder = "name"
	SortByPoints SortOrder = "points"
)

func (o SortOrder) valid() bool {
	switch o {
	case SortByRank, SortByName, SortByPoints:
		return true
	}
	return false
}

// sortRows returns a sorted copy of rows. Rank sorting keeps the page order
// for equal ranks; points sort descending.
func sortRows(rows []standings.Row, order SortOrder) []standings.Row {
	sorted := make([]standings.Row, len(rows))
	copy(sorted, rows)

	switch order {
	case SortByRank:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareNumeric(sorted[i].Rank, sorted[j].Rank) < 0
		})
	case SortByName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	case SortByPoints:
		sort.SliceStable(sorted, func(i, j int) bool {
			if c := compareNumericDesc(sorted[i].Points, sorted[j].Points); c != 0 {
				return c < 0
			}
			// Equal points, better rank first
			return compareNumeric(sorted[i].Rank, sorted[j].Rank) < 0
		})
	}

	return sorted
}

// compareNumeric compares two display values as integers when both parse,
// otherwise puts the numeric one first and falls back to string order.
// Ranks such as "3e" or "-" come after every plain number.
func compareNumeric(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// compareNumericDesc is compareNumeric with numbers in descending order
func compareNumericDesc(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return nb - na
	}
	return compareNumeric(a, b)
}
