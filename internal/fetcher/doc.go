// Package fetcher downloads the standings page.
//
// A Fetcher issues one GET through a primary Transport and, when that fails,
// through an optional fallback Transport. There is no retry loop and no
// backoff. Three transports are available: a plain net/http client, a Colly
// collector and a headless Chrome driven by chromedp for pages that sit
// behind a JavaScript challenge.
package fetcher
