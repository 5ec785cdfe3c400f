package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assembly_crawler/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

type WaitCondition int

const (
	// WaitDOMReady waits for the document body only.
	WaitDOMReady WaitCondition = iota
	// WaitNetworkIdle additionally lets the page settle so client-rendered
	// listings (the petitions SPA) have time to populate.
	WaitNetworkIdle
)

// NavigationError wraps a failed or timed-out page navigation. Callers treat
// it as a per-item failure; there is no automatic retry.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// PageOpener is the surface the orchestrators consume, so tests can stand in
// a fake without a browser.
type PageOpener interface {
	Open(url string, wait WaitCondition, timeout time.Duration) (*goquery.Document, error)
}

// Session owns one headless browser context for the duration of a crawl run.
type Session struct {
	ctx    context.Context
	settle time.Duration
}

// WithSession launches a browser, runs fn against it and tears the browser
// down on every exit path, including a panic inside fn.
func WithSession(ctx context.Context, cfg config.FetcherConfig, fn func(*Session) error) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.Headful {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	s := &Session{
		ctx:    browserCtx,
		settle: time.Duration(cfg.SettleWaitSec) * time.Second,
	}
	return fn(s)
}

// Open navigates to url, waits per the given condition and returns a goquery
// snapshot of the rendered DOM.
func (s *Session) Open(url string, wait WaitCondition, timeout time.Duration) (*goquery.Document, error) {
	navCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if wait == WaitNetworkIdle && s.settle > 0 {
		tasks = append(tasks, chromedp.Sleep(s.settle))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(navCtx, tasks...); err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse DOM of %s: %w", url, err)
	}
	return doc, nil
}
