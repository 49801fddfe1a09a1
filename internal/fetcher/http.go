package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// NameHTTP identifies the plain net/http transport
const NameHTTP = "http"

// HTTPTransport fetches with a standard net/http client
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport bounded by the configured timeout
func NewHTTPTransport(cfg Config) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Timeout:   cfg.timeout(),
			Transport: newRoundTripper(),
		},
	}
}

// Name implements Transport
func (t *HTTPTransport) Name() string {
	return NameHTTP
}

// Fetch implements Transport
func (t *HTTPTransport) Fetch(ctx context.Context, url string, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header = header

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, MaxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(data), nil
}

func newRoundTripper() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
