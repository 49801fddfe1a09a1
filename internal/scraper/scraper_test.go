package scraper

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantErr  error
		wantRows []standings.Row
	}{
		{
			name: "minimal table",
			html: `<table><tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr><tr><td>1</td><td>Club A</td><td>20</td></tr></table>`,
			wantRows: []standings.Row{
				{Rank: "1", Name: "Club A", Points: "20"},
			},
		},
		{
			name: "full columns",
			html: `
				<table>
					<tr><th>Rang</th><th>Equipe</th><th>Pts</th><th>J</th><th>G</th><th>P</th></tr>
					<tr><td>1</td><td>Club A</td><td>20</td><td>10</td><td>10</td><td>0</td></tr>
					<tr><td>2</td><td>Club B</td><td>18</td><td>10</td><td>8</td><td>2</td></tr>
				</table>
			`,
			wantRows: []standings.Row{
				{Rank: "1", Name: "Club A", Points: "20", Played: "10", Won: "10", Lost: "0"},
				{Rank: "2", Name: "Club B", Points: "18", Played: "10", Won: "8", Lost: "2"},
			},
		},
		{
			name: "short rows skipped",
			html: `
				<table>
					<tr><th>Classement</th><th>Pts</th></tr>
					<tr><td colspan="3">Poule A</td></tr>
					<tr><td>1</td><td>Club A</td></tr>
					<tr><td>1</td><td>Club A</td><td>20</td></tr>
				</table>
			`,
			wantRows: []standings.Row{
				{Rank: "1", Name: "Club A", Points: "20"},
			},
		},
		{
			name:    "no table",
			html:    `<html><body><p>Maintenance en cours</p></body></html>`,
			wantErr: ErrTableNotFound,
		},
		{
			name:    "empty markup",
			html:    ``,
			wantErr: ErrTableNotFound,
		},
		{
			name:    "garbled markup",
			html:    `<<<div>>> </tr> <td>1</td>`,
			wantErr: ErrTableNotFound,
		},
		{
			name:    "header without points marker",
			html:    `<table><tr><th>Rang</th><th>Equipe</th></tr><tr><td>1</td><td>Club A</td><td>x</td></tr></table>`,
			wantErr: ErrTableNotFound,
		},
		{
			name:    "header without label marker",
			html:    `<table><tr><th>Joueur</th><th>Pts</th></tr><tr><td>1</td><td>Jean</td><td>30</td></tr></table>`,
			wantErr: ErrTableNotFound,
		},
		{
			name:    "table matched but no data rows",
			html:    `<table><tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr><tr><td>-</td></tr></table>`,
			wantErr: ErrNoRowsParsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := New(nil).Extract(tt.html)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				if rows == nil || len(rows) != 0 {
					t.Errorf("Extract() rows = %v, want empty slice", rows)
				}
				return
			}

			if err != nil {
				t.Fatalf("Extract() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(rows, tt.wantRows) {
				t.Errorf("Extract() = %+v, want %+v", rows, tt.wantRows)
			}
		})
	}
}

func TestExtract_ErrorMessages(t *testing.T) {
	if ErrTableNotFound.Error() != "table not found" {
		t.Errorf("ErrTableNotFound = %q", ErrTableNotFound.Error())
	}
	if ErrNoRowsParsed.Error() != "no rows parsed" {
		t.Errorf("ErrNoRowsParsed = %q", ErrNoRowsParsed.Error())
	}
}

func TestExtract_FirstMatchingTableWins(t *testing.T) {
	html := `
		<table><tr><th>Date</th><th>Match</th></tr><tr><td>1</td><td>x</td><td>y</td></tr></table>
		<table><tr><th>Rang</th><th>Pts</th></tr><tr><td>1</td><td>First</td><td>9</td></tr></table>
		<table><tr><th>Rang</th><th>Pts</th></tr><tr><td>1</td><td>Second</td><td>9</td></tr></table>
	`

	rows, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "First" {
		t.Errorf("Extract() = %+v, want the row of the first matching table", rows)
	}
}

func TestExtract_LayoutTableHeadersNotInherited(t *testing.T) {
	html := `
		<table class="layout">
			<tr>
				<td>Menu</td>
				<td>
					<table>
						<tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr>
						<tr><td>1</td><td>Club A</td><td>20</td></tr>
						<tr><td>2</td><td>Club B</td><td>18</td></tr>
					</table>
				</td>
				<td>Pub</td>
			</tr>
		</table>
	`

	rows, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := []standings.Row{
		{Rank: "1", Name: "Club A", Points: "20"},
		{Rank: "2", Name: "Club B", Points: "18"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Extract() = %+v, want the rows of the inner table %+v", rows, want)
	}
}

func TestExtract_NestedTables(t *testing.T) {
	html := `
		<table>
			<tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr>
			<tr>
				<td>1</td>
				<td>Club A
					<table><tr><td>x</td><td>y</td><td>z</td></tr></table>
				</td>
				<td>20</td>
			</tr>
		</table>
	`

	rows, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Extract() returned %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Points != "20" {
		t.Errorf("Points = %q, want 20", rows[0].Points)
	}
}

func TestExtract_WhitespaceAndEntities(t *testing.T) {
	html := `
		<table>
			<tr><th>RANG</th><th>ÉQUIPE</th><th>PTS</th></tr>
			<tr>
				<td>  1 </td>
				<td><a><span>Club</span><span>A</span></a> &amp;  Co</td>
				<td>
					20
				</td>
			</tr>
		</table>
	`

	rows, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Extract() returned %d rows, want 1", len(rows))
	}

	want := standings.Row{Rank: "1", Name: "Club A & Co", Points: "20"}
	if rows[0] != want {
		t.Errorf("Extract() = %+v, want %+v", rows[0], want)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	html := `<table><tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr>
		<tr><td>1</td><td>Club A</td><td>20</td></tr>
		<tr><td>2</td><td>Club B</td><td>18</td></tr></table>`

	e := New(nil)
	first, err := e.Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	second, err := e.Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract() not deterministic: %+v vs %+v", first, second)
	}
}

func TestExtract_CustomMatcher(t *testing.T) {
	html := `
		<table><tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr><tr><td>1</td><td>Wrong</td><td>1</td></tr></table>
		<table id="x"><tr><th>Position</th><th>Team</th><th>Points</th></tr><tr><td>1</td><td>Right</td><td>3</td></tr></table>
	`

	matcher := MatcherFunc(func(header string) bool {
		return strings.Contains(header, "position")
	})

	rows, err := New(matcher).Extract(html)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Right" {
		t.Errorf("Extract() = %+v, want the row selected by the custom matcher", rows)
	}
}

func TestExtract_Fixture(t *testing.T) {
	rows, err := New(nil).parseRows(openFixture(t, "classement.html"))
	if err != nil {
		t.Fatalf("parseRows() error: %v", err)
	}

	want := []standings.Row{
		{Rank: "1", Name: "ASC Le Cygne", Points: "20", Played: "10", Won: "10", Lost: "0"},
		{Rank: "2", Name: "US Matoury", Points: "18", Played: "10", Won: "8", Lost: "2"},
		{Rank: "3", Name: "Kourou Basket", Points: "15", Played: "10", Won: "5", Lost: "5"},
		{Rank: "4", Name: "Rémire-Montjoly BC", Points: "11", Played: "10", Won: "1", Lost: "9"},
	}

	if !reflect.DeepEqual(rows, want) {
		t.Errorf("parseRows() =\n%+v\nwant\n%+v", rows, want)
	}
}
