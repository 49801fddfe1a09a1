package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// NameHeadless identifies the headless Chrome transport
const NameHeadless = "headless"

// settleDelay lets challenge scripts finish before the DOM is read
const settleDelay = 1500 * time.Millisecond

// HeadlessTransport renders the page in headless Chrome and returns the
// resulting DOM. It needs a Chrome or Chromium binary on the host.
type HeadlessTransport struct {
	timeout     time.Duration
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewHeadlessTransport creates a HeadlessTransport. The browser is started
// lazily by the first Fetch.
func NewHeadlessTransport(cfg Config) *HeadlessTransport {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &HeadlessTransport{
		timeout:     cfg.timeout(),
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Name implements Transport
func (t *HeadlessTransport) Name() string {
	return NameHeadless
}

// Close stops the browser
func (t *HeadlessTransport) Close() {
	t.allocCancel()
}

// Fetch implements Transport
func (t *HeadlessTransport) Fetch(ctx context.Context, url string, header http.Header) (string, error) {
	taskCtx, taskCancel := chromedp.NewContext(t.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, t.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	status := &documentStatus{}
	chromedp.ListenTarget(taskCtx, status.capture)

	var html string
	actions := []chromedp.Action{
		networkSetup(header),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("headless fetch canceled: %w", ctx.Err())
		}
		return "", fmt.Errorf("chromedp run: %w", err)
	}

	if code := status.get(); code != 0 && (code < 200 || code > 299) {
		return "", &StatusError{Code: code}
	}

	return html, nil
}

func networkSetup(header http.Header) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}

		extra := network.Headers{}
		for key, values := range header {
			if len(values) == 0 {
				continue
			}
			if key == "User-Agent" {
				override := emulation.SetUserAgentOverride(values[0])
				if lang := header.Get("Accept-Language"); lang != "" {
					override = override.WithAcceptLanguage(lang)
				}
				if err := override.Do(ctx); err != nil {
					return fmt.Errorf("set user-agent: %w", err)
				}
				continue
			}
			extra[key] = values[0]
		}

		if len(extra) > 0 {
			if err := network.SetExtraHTTPHeaders(extra).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

// documentStatus keeps the status code of the last document response; a
// challenge page may redirect several times before the real page loads.
type documentStatus struct {
	mu   sync.Mutex
	code int
}

func (s *documentStatus) capture(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	s.mu.Lock()
	s.code = int(resp.Response.Status)
	s.mu.Unlock()
}

func (s *documentStatus) get() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}
