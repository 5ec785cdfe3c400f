package crawler

import (
	"context"
	"fmt"
	"log"
	"time"

	"assembly_crawler/internal/config"
	"assembly_crawler/internal/fetcher"
	"assembly_crawler/internal/models"
	"assembly_crawler/internal/robots"
)

// PetitionStore is the slice of the storage collaborator the petitions
// crawler needs. History rows are append-only.
type PetitionStore interface {
	UpsertPetition(p *models.Petition) (prevAgree int, existed bool, err error)
	AppendPetitionHistory(petitionID string, agreeCount int, recordedAt time.Time) error
}

type PetitionCrawler struct {
	cfg   *config.Config
	store PetitionStore

	openSession func(ctx context.Context, fn func(fetcher.PageOpener) error) error
	loadGate    func() *robots.Gate
}

func NewPetitionCrawler(cfg *config.Config, store PetitionStore) *PetitionCrawler {
	c := &PetitionCrawler{cfg: cfg, store: store}
	c.openSession = func(ctx context.Context, fn func(fetcher.PageOpener) error) error {
		return fetcher.WithSession(ctx, cfg.Fetcher, func(s *fetcher.Session) error {
			return fn(s)
		})
	}
	c.loadGate = func() *robots.Gate {
		return robots.Load(cfg.Petitions.ListURL, cfg.Fetcher.UserAgent, 10*time.Second)
	}
	return c
}

func (c *PetitionCrawler) Run(ctx context.Context) (*models.CrawlStats, error) {
	log.Println("Starting petitions crawler...")
	stats := &models.CrawlStats{StartTime: time.Now()}

	// The listing is the only navigation; disallowed means there is nothing
	// this crawl may do, which is structural.
	if gate := c.loadGate(); !gate.Allowed(c.cfg.Petitions.ListURL) {
		stats.EndTime = time.Now()
		return stats, fmt.Errorf("robots.txt disallows %s", c.cfg.Petitions.ListURL)
	}

	err := c.openSession(ctx, func(page fetcher.PageOpener) error {
		navTimeout := time.Duration(c.cfg.Fetcher.NavTimeoutSec) * time.Second

		doc, err := page.Open(c.cfg.Petitions.ListURL, fetcher.WaitNetworkIdle, navTimeout)
		if err != nil {
			return fmt.Errorf("open petitions listing: %w", err)
		}

		items := ExtractPetitions(doc, c.cfg.Petitions.BaseURL, time.Now(),
			c.cfg.Petitions.AgreeGoal, c.cfg.Petitions.WindowDays)
		log.Printf("Found %d petitions", len(items))

		for i := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := &items[i]
			stats.Fetched++

			prevAgree, existed, err := c.store.UpsertPetition(p)
			if err != nil {
				log.Printf("failed to save petition %s: %v", p.PetitionID, err)
				stats.Errors++
				continue
			}
			if !existed {
				stats.New++
				continue
			}

			stats.Updated++
			if prevAgree != p.AgreeCount {
				if err := c.store.AppendPetitionHistory(p.PetitionID, p.AgreeCount, time.Now()); err != nil {
					log.Printf("failed to append history for petition %s: %v", p.PetitionID, err)
					stats.Errors++
				}
			}
		}
		return nil
	})

	stats.EndTime = time.Now()
	if err != nil {
		return stats, err
	}

	log.Printf("Petitions crawl completed: fetched=%d new=%d updated=%d errors=%d",
		stats.Fetched, stats.New, stats.Updated, stats.Errors)
	return stats, nil
}
