package collector

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"golang.org/x/net/html/charset"
)

// CollectLinks walks the paginated listing pageIndex 1..maxPages and harvests
// detail-page URLs whose href matches linkPattern. Collection stops early the
// first time a page yields no links. Duplicates across pages are kept; upsert
// idempotency downstream makes that safe.
//
// pageDelay is a politeness pause between listing fetches. Do not zero it in
// production; the assembly site blocks aggressive clients.
func CollectLinks(listURL, linkPattern string, maxPages int, pageDelay time.Duration, userAgent string) ([]string, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.IgnoreRobotsTxt = false

	var pageLinks []string
	var pageErr error

	c.OnResponse(func(r *colly.Response) {
		var body io.Reader = bytes.NewReader(r.Body)
		if decoded, err := charset.NewReader(body, r.Headers.Get("Content-Type")); err == nil {
			body = decoded
		} else {
			body = bytes.NewReader(r.Body)
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			pageErr = err
			return
		}

		base := r.Request.URL
		doc.Find("tbody tr a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if !strings.Contains(href, linkPattern) {
				return
			}
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			pageLinks = append(pageLinks, base.ResolveReference(ref).String())
		})
	})

	c.OnError(func(_ *colly.Response, err error) {
		pageErr = err
	})

	var all []string
	for page := 1; page <= maxPages; page++ {
		pageLinks = nil
		pageErr = nil

		pageURL := fmt.Sprintf("%s&pageIndex=%d", listURL, page)
		if err := c.Visit(pageURL); err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}
		if pageErr != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, pageErr)
		}

		if len(pageLinks) == 0 {
			log.Printf("no more links on page %d, stopping", page)
			break
		}

		all = append(all, pageLinks...)
		log.Printf("page %d: %d links (total %d)", page, len(pageLinks), len(all))

		if page < maxPages {
			time.Sleep(pageDelay)
		}
	}

	return all, nil
}
