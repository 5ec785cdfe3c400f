package crawler

import (
	"context"
	"fmt"
	"log"
	"time"

	"assembly_crawler/internal/collector"
	"assembly_crawler/internal/config"
	"assembly_crawler/internal/fetcher"
	"assembly_crawler/internal/models"
	"assembly_crawler/internal/robots"
)

// BillStore is the slice of the storage collaborator the bills crawler needs.
type BillStore interface {
	UpsertBill(b *models.Bill) (created bool, err error)
}

// BillCrawler sequences listing collection, per-bill detail fetch, extraction
// and upsert. Items are processed sequentially with a politeness delay; one
// bad page never aborts the run.
type BillCrawler struct {
	cfg   *config.Config
	store BillStore

	openSession func(ctx context.Context, fn func(fetcher.PageOpener) error) error
	collect     func() ([]string, error)
	loadGate    func() *robots.Gate
}

func NewBillCrawler(cfg *config.Config, store BillStore) *BillCrawler {
	c := &BillCrawler{cfg: cfg, store: store}
	c.openSession = func(ctx context.Context, fn func(fetcher.PageOpener) error) error {
		return fetcher.WithSession(ctx, cfg.Fetcher, func(s *fetcher.Session) error {
			return fn(s)
		})
	}
	c.collect = func() ([]string, error) {
		return collector.CollectLinks(
			cfg.Bills.ListURL,
			"view.do",
			cfg.Bills.MaxPages,
			time.Duration(cfg.Bills.PageDelayMS)*time.Millisecond,
			cfg.Fetcher.UserAgent,
		)
	}
	c.loadGate = func() *robots.Gate {
		return robots.Load(cfg.Bills.ListURL, cfg.Fetcher.UserAgent, 10*time.Second)
	}
	return c
}

func (c *BillCrawler) Run(ctx context.Context) (*models.CrawlStats, error) {
	log.Println("Starting bills crawler...")
	stats := &models.CrawlStats{StartTime: time.Now()}

	err := c.openSession(ctx, func(page fetcher.PageOpener) error {
		links, err := c.collect()
		if err != nil {
			// Listing unreachable is structural: the whole run fails.
			return fmt.Errorf("collect bill links: %w", err)
		}
		log.Printf("collected %d bill links", len(links))

		gate := c.loadGate()
		itemDelay := time.Duration(c.cfg.Bills.ItemDelayMS) * time.Millisecond
		navTimeout := time.Duration(c.cfg.Fetcher.NavTimeoutSec) * time.Second

		for i, link := range links {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i > 0 {
				time.Sleep(itemDelay)
			}

			if !gate.Allowed(link) {
				log.Printf("robots.txt disallows %s, skipping", link)
				continue
			}

			doc, err := page.Open(link, fetcher.WaitDOMReady, navTimeout)
			if err != nil {
				log.Printf("failed to open bill page %s: %v", link, err)
				stats.Errors++
				continue
			}
			stats.Fetched++

			bill := ExtractBill(doc, link)
			if bill == nil {
				continue
			}

			created, err := c.store.UpsertBill(bill)
			if err != nil {
				log.Printf("failed to save bill %s: %v", bill.BillNumber, err)
				stats.Errors++
				continue
			}
			if created {
				stats.New++
			} else {
				stats.Updated++
			}
			log.Printf("saved bill %s (%s)", bill.BillNumber, bill.BillName)
		}
		return nil
	})

	stats.EndTime = time.Now()
	if err != nil {
		return stats, err
	}

	log.Printf("Bills crawl completed: fetched=%d new=%d updated=%d errors=%d",
		stats.Fetched, stats.New, stats.Updated, stats.Errors)
	return stats, nil
}
