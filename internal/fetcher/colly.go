package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gocolly/colly/v2"
)

// NameColly identifies the Colly transport
const NameColly = "colly"

// CollyTransport fetches with a Colly collector. robots.txt is ignored: the
// scraper reads one fixed page, the way a browser would.
type CollyTransport struct {
	base *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// NewCollyTransport creates a CollyTransport
func NewCollyTransport(cfg Config) *CollyTransport {
	c := colly.NewCollector(
		colly.Async(false),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)
	c.MaxBodySize = MaxBodyBytes
	c.SetRequestTimeout(cfg.timeout())
	c.WithTransport(newRoundTripper())

	return &CollyTransport{base: c}
}

// Name implements Transport
func (t *CollyTransport) Name() string {
	return NameColly
}

// Fetch implements Transport
func (t *CollyTransport) Fetch(ctx context.Context, url string, header http.Header) (string, error) {
	var (
		body     string
		fetchErr error
	)

	collector := t.base.Clone()
	collector.Context = ctx
	if ua := header.Get("User-Agent"); ua != "" {
		collector.UserAgent = ua
	}
	configureHooks(collector, header, &body, &fetchErr)

	err := collector.Visit(url)
	if fetchErr != nil {
		return "", fetchErr
	}
	if err != nil {
		return "", fmt.Errorf("visit failed: %w", err)
	}
	return body, nil
}

func configureHooks(hooks collectorHooks, header http.Header, body *string, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		for key, values := range header {
			if key == "User-Agent" {
				continue
			}
			r.Headers.Del(key)
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	hooks.OnResponse(func(r *colly.Response) {
		*body = string(r.Body)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 && (r.StatusCode < 200 || r.StatusCode > 299) {
			*fetchErr = &StatusError{Code: r.StatusCode}
			return
		}
		*fetchErr = fmt.Errorf("response failed: %w", err)
	})
}
