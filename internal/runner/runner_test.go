package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/standings-scraper/internal/fetcher"
	"github.com/pfrederiksen/standings-scraper/internal/logger"
	"github.com/pfrederiksen/standings-scraper/internal/scraper"
	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

const source = "https://example.com/classement"

var fixedTime = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

type stubFetcher struct {
	markup string
	err    error
	url    string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	s.url = url
	return s.markup, s.err
}

type stubExtractor struct {
	rows  []standings.Row
	err   error
	calls int
}

func (s *stubExtractor) Extract(string) ([]standings.Row, error) {
	s.calls++
	return s.rows, s.err
}

func newRunner(f Fetcher, e Extractor) *Runner {
	return New(source, f, e,
		WithClock(ClockFunc(func() time.Time { return fixedTime })),
		WithLogger(logger.New(logger.LevelError, &bytes.Buffer{})),
	)
}

func previousSnapshot(n int) *standings.Snapshot {
	rows := make([]standings.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, standings.Row{Rank: string(rune('1' + i)), Name: "Club", Points: "1"})
	}
	return standings.NewSnapshot(rows, source, "", fixedTime.Add(-24*time.Hour))
}

const exampleMarkup = `<table><tr><th>Rang</th><th>Equipe</th><th>Pts</th></tr><tr><td>1</td><td>Club A</td><td>20</td></tr></table>`

func TestRun_EndToEndExample(t *testing.T) {
	f := &stubFetcher{markup: exampleMarkup}

	result := newRunner(f, scraper.New(nil)).Run(context.Background(), nil)
	snap := result.Snapshot

	assert.Equal(t, source, f.url)
	assert.Equal(t, []standings.Row{
		{Rank: "1", Name: "Club A", Points: "20", Played: "", Won: "", Lost: ""},
	}, snap.Standings)
	assert.Equal(t, standings.StatusOK, snap.Status)
	assert.Nil(t, snap.Warning)
	assert.Equal(t, 1, snap.StandingCount)
	assert.Equal(t, "2026-03-14T18:30:00Z", snap.UpdatedAt)
	assert.Equal(t, source, snap.Source)
	assert.False(t, result.Stale)
}

func TestRun_GarbledMarkup(t *testing.T) {
	f := &stubFetcher{markup: "<<garbage>> no tables here"}

	result := newRunner(f, scraper.New(nil)).Run(context.Background(), nil)
	snap := result.Snapshot

	assert.Empty(t, snap.Standings)
	assert.NotNil(t, snap.Standings)
	assert.Equal(t, 0, snap.StandingCount)
	assert.Equal(t, standings.StatusDegraded, snap.Status)
	assert.Equal(t, "table not found", snap.WarningText())
	assert.ErrorIs(t, result.ParseErr, scraper.ErrTableNotFound)
}

func TestRun_EmptyMarkupIsExtracted(t *testing.T) {
	e := &stubExtractor{err: scraper.ErrTableNotFound}

	result := newRunner(&stubFetcher{markup: ""}, e).Run(context.Background(), nil)

	assert.Equal(t, 1, e.calls)
	assert.Equal(t, "table not found", result.Snapshot.WarningText())
}

func TestRun_NoRowsParsed(t *testing.T) {
	e := &stubExtractor{rows: []standings.Row{}, err: scraper.ErrNoRowsParsed}

	result := newRunner(&stubFetcher{markup: "<table></table>"}, e).Run(context.Background(), nil)

	assert.Equal(t, standings.StatusDegraded, result.Snapshot.Status)
	assert.Equal(t, "no rows parsed", result.Snapshot.WarningText())
}

func TestRun_FetchErrorSkipsExtraction(t *testing.T) {
	fetchErr := &fetcher.FetchError{
		URL:      source,
		Attempts: []fetcher.Attempt{{Transport: "http", Err: errors.New("timeout")}},
	}
	e := &stubExtractor{}

	result := newRunner(&stubFetcher{err: fetchErr}, e).Run(context.Background(), nil)

	assert.Equal(t, 0, e.calls)
	assert.Equal(t, "network error: http: timeout", result.Snapshot.WarningText())
	assert.Equal(t, standings.StatusDegraded, result.Snapshot.Status)
	assert.Empty(t, result.Snapshot.Standings)
}

func TestRun_FallbackToPrevious(t *testing.T) {
	tests := []struct {
		name        string
		fetcher     *stubFetcher
		extractor   *stubExtractor
		wantWarning string
	}{
		{
			name:        "fetch fails",
			fetcher:     &stubFetcher{err: errors.New("network error: colly: 403")},
			extractor:   &stubExtractor{},
			wantWarning: "network error: colly: 403; " + StaleWarning,
		},
		{
			name:        "table not found",
			fetcher:     &stubFetcher{markup: "<p>maintenance</p>"},
			extractor:   &stubExtractor{err: scraper.ErrTableNotFound},
			wantWarning: "table not found; " + StaleWarning,
		},
		{
			name:        "no rows and no error",
			fetcher:     &stubFetcher{markup: "<p></p>"},
			extractor:   &stubExtractor{},
			wantWarning: StaleWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := previousSnapshot(4)

			result := newRunner(tt.fetcher, tt.extractor).Run(context.Background(), previous)
			snap := result.Snapshot

			require.True(t, result.Stale)
			assert.Len(t, snap.Standings, 4)
			assert.Equal(t, 4, snap.StandingCount)
			assert.Equal(t, previous.Standings, snap.Standings)
			require.NotNil(t, snap.Warning)
			assert.Equal(t, tt.wantWarning, *snap.Warning)
			assert.Equal(t, standings.StatusDegraded, snap.Status)
			assert.Equal(t, "2026-03-14T18:30:00Z", snap.UpdatedAt)
			assert.Nil(t, result.Diff)
		})
	}
}

func TestRun_EmptyPreviousIsNotCarried(t *testing.T) {
	previous := standings.NewSnapshot(nil, source, "table not found", fixedTime)
	e := &stubExtractor{err: scraper.ErrTableNotFound}

	result := newRunner(&stubFetcher{markup: "x"}, e).Run(context.Background(), previous)

	assert.False(t, result.Stale)
	assert.Equal(t, "table not found", result.Snapshot.WarningText())
	assert.Equal(t, 0, result.Snapshot.StandingCount)
}

func TestRun_FreshRowsReplacePrevious(t *testing.T) {
	previous := previousSnapshot(3)
	rows := []standings.Row{{Rank: "1", Name: "New", Points: "3"}}

	result := newRunner(&stubFetcher{markup: "x"}, &stubExtractor{rows: rows}).Run(context.Background(), previous)

	assert.False(t, result.Stale)
	assert.Equal(t, rows, result.Snapshot.Standings)
	assert.Equal(t, standings.StatusOK, result.Snapshot.Status)
	require.NotNil(t, result.Diff)
	assert.False(t, result.Diff.Empty())
}

func TestRun_InvariantsHold(t *testing.T) {
	cases := []struct {
		f *stubFetcher
		e *stubExtractor
		p *standings.Snapshot
	}{
		{&stubFetcher{markup: exampleMarkup}, &stubExtractor{rows: []standings.Row{{Rank: "1", Name: "A", Points: "1"}}}, nil},
		{&stubFetcher{err: errors.New("down")}, &stubExtractor{}, nil},
		{&stubFetcher{err: errors.New("down")}, &stubExtractor{}, previousSnapshot(2)},
		{&stubFetcher{markup: ""}, &stubExtractor{err: scraper.ErrNoRowsParsed}, previousSnapshot(1)},
	}

	for _, c := range cases {
		snap := newRunner(c.f, c.e).Run(context.Background(), c.p).Snapshot

		assert.Equal(t, len(snap.Standings), snap.StandingCount)
		assert.Equal(t, snap.Warning != nil, snap.Status == standings.StatusDegraded)
	}
}

func TestClockFunc(t *testing.T) {
	c := ClockFunc(func() time.Time { return fixedTime })
	assert.Equal(t, fixedTime, c.Now())
}
