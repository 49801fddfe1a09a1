package scraper

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

var (
	// ErrTableNotFound is returned when no table header matches
	ErrTableNotFound = errors.New("table not found")
	// ErrNoRowsParsed is returned when the matched table has no usable rows
	ErrNoRowsParsed = errors.New("no rows parsed")
)

// Extractor finds the standings table in a page and reads its rows
type Extractor struct {
	matcher TableMatcher
}

// New creates an Extractor. A nil matcher uses the default keyword rule.
func New(matcher TableMatcher) *Extractor {
	if matcher == nil {
		matcher = NewKeywordMatcher(nil, nil)
	}
	return &Extractor{matcher: matcher}
}

// Extract returns the standings rows found in markup, in document order.
// When nothing usable is found it returns an empty slice and
// ErrTableNotFound or ErrNoRowsParsed.
func (e *Extractor) Extract(markup string) ([]standings.Row, error) {
	return e.parseRows(strings.NewReader(markup))
}

// parseRows extracts rows from HTML
func (e *Extractor) parseRows(r io.Reader) ([]standings.Row, error) {
	rows := make([]standings.Row, 0)

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return rows, fmt.Errorf("parsing HTML: %w", err)
	}

	table := e.findTable(doc)
	if table == nil {
		return rows, ErrTableNotFound
	}

	ownRows(table, "tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < standings.MinCells {
			// spacer or sub-header row
			return
		}

		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			texts = append(texts, cellText(td))
		})
		rows = append(rows, standings.RowFromCells(texts))
	})

	if len(rows) == 0 {
		return rows, ErrNoRowsParsed
	}

	return rows, nil
}

// findTable returns the first table whose header text satisfies the matcher
func (e *Extractor) findTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if e.matcher.Match(headerText(table)) {
			found = table
			return false
		}
		return true
	})

	return found
}

// headerText joins the text of a table's own th cells, lowercased
func headerText(table *goquery.Selection) string {
	headers := make([]string, 0)
	ownRows(table, "th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(cellText(th)))
	})
	return strings.Join(headers, " ")
}

// ownRows finds descendants of table matching selector that do not belong to
// a nested table.
func ownRows(table *goquery.Selection, selector string) *goquery.Selection {
	return table.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest("table").IsSelection(table)
	})
}

// cellText flattens the text nodes under sel, separated by spaces, and
// normalizes the result. Script and style contents are skipped.
func cellText(sel *goquery.Selection) string {
	parts := make([]string, 0)
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return standings.Normalize(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
