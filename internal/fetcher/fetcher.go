package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/standings-scraper/internal/logger"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "fr,fr-FR;q=0.9,en;q=0.8"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultTimeout        = 25 * time.Second

	// MaxBodyBytes caps the size of a downloaded page
	MaxBodyBytes = 10 << 20
)

// Transport performs a single GET and returns the page as UTF-8 text
type Transport interface {
	Name() string
	Fetch(ctx context.Context, url string, header http.Header) (string, error)
}

// Observer is notified after every transport attempt
type Observer interface {
	ObserveFetch(transport string, d time.Duration, err error)
}

// Config holds the request settings shared by all transports
type Config struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// Header returns the browser-like request headers
func (c Config) Header() http.Header {
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	lang := c.AcceptLanguage
	if lang == "" {
		lang = DefaultAcceptLanguage
	}

	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept-Language", lang)
	h.Set("Accept", DefaultAccept)
	return h
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Attempt is the failure of one transport
type Attempt struct {
	Transport string
	Err       error
}

// FetchError is returned when every transport failed
type FetchError struct {
	URL      string
	Attempts []Attempt
}

func (e *FetchError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Transport, a.Err))
	}
	if len(parts) == 0 {
		return "network error: no transport configured"
	}
	return "network error: " + strings.Join(parts, "; ")
}

// Unwrap exposes the transport errors to errors.Is and errors.As
func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// StatusError reports a response outside the 2xx range
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Fetcher tries its transports in order until one succeeds
type Fetcher struct {
	transports []Transport
	header     http.Header
	observer   Observer
	log        *logger.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithObserver reports every attempt to o
func WithObserver(o Observer) Option {
	return func(f *Fetcher) {
		f.observer = o
	}
}

// WithLogger sets the logger used for attempt failures
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// New creates a Fetcher. The first transport is the primary one, the second
// the fallback; nil transports are skipped.
func New(cfg Config, primary, fallback Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		header: cfg.Header(),
		log:    logger.Default(),
	}
	for _, t := range []Transport{primary, fallback} {
		if t != nil {
			f.transports = append(f.transports, t)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the markup of url. When every transport fails the error is
// a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	fetchErr := &FetchError{URL: url}

	for i, t := range f.transports {
		start := time.Now()
		body, err := t.Fetch(ctx, url, f.header.Clone())
		elapsed := time.Since(start)

		if f.observer != nil {
			f.observer.ObserveFetch(t.Name(), elapsed, err)
		}

		if err == nil {
			f.log.Info("Fetched page", logger.Fields{
				"transport": t.Name(),
				"bytes":     len(body),
				"duration":  elapsed.String(),
			})
			return body, nil
		}

		fetchErr.Attempts = append(fetchErr.Attempts, Attempt{Transport: t.Name(), Err: err})

		if errors.Is(err, context.Canceled) {
			break
		}

		if i < len(f.transports)-1 {
			f.log.Warn("Transport failed, trying fallback", logger.Fields{
				"transport": t.Name(),
				"fallback":  f.transports[i+1].Name(),
				"error":     err.Error(),
			})
		}
	}

	return "", fetchErr
}
