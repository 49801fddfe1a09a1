package standings

import "strings"

// Row is a single line of a standings table. Values are display strings
// copied from the page; no numeric parsing is done.
type Row struct {
	Rank   string `json:"rank"`
	Name   string `json:"name"`
	Points string `json:"points"`
	Played string `json:"played"`
	Won    string `json:"won"`
	Lost   string `json:"lost"`
}

// MinCells is the number of cells a table row needs to be read as a Row.
const MinCells = 3

// RowFromCells maps cell texts to a Row by position: rank, name, points,
// played, won, lost. Missing trailing cells are left empty and extra cells are
// ignored. Every value is normalized.
func RowFromCells(cells []string) Row {
	at := func(i int) string {
		if i < len(cells) {
			return Normalize(cells[i])
		}
		return ""
	}
	return Row{
		Rank:   at(0),
		Name:   at(1),
		Points: at(2),
		Played: at(3),
		Won:    at(4),
		Lost:   at(5),
	}
}

// Normalize collapses runs of whitespace to a single space and trims both
// ends. Non-breaking spaces count as whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalized returns a copy of r with every field normalized.
func (r Row) normalized() Row {
	return RowFromCells([]string{r.Rank, r.Name, r.Points, r.Played, r.Won, r.Lost})
}
