package robots

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Gate answers whether the crawler may navigate to a URL on the target site.
// A nil or failed gate is permissive: robots.txt being unreachable must not
// stop a crawl, same as not honoring it at all would.
type Gate struct {
	group *robotstxt.Group
}

func Load(siteURL, userAgent string, timeout time.Duration) *Gate {
	u, err := url.Parse(siteURL)
	if err != nil {
		log.Printf("can't parse URL for robots.txt: %v", err)
		return &Gate{}
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequest(http.MethodGet, robotsURL, nil)
	if err != nil {
		return &Gate{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("robots.txt fetch failed (ignoring): %v", err)
		return &Gate{}
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		log.Printf("robots.txt parse failed (ignoring): %v", err)
		return &Gate{}
	}

	return &Gate{group: data.FindGroup(userAgent)}
}

func (g *Gate) Allowed(rawURL string) bool {
	if g == nil || g.group == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return g.group.Test(u.Path)
}
