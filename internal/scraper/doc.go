// Package scraper extracts standings rows from the HTML of a competition page.
//
// The page is not under our control, so the extractor works heuristically: it
// picks the first table whose header cells mention a points column and a
// team/rank column, then reads every row with at least three data cells as
// rank, name, points, played, won and lost, in that order. The header rule is
// a TableMatcher and can be replaced without touching row extraction.
package scraper
