package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"assembly_crawler/internal/config"
	"assembly_crawler/internal/crawler"
	"assembly_crawler/internal/db"
	"assembly_crawler/internal/models"
)

// Store is the persistence surface the daemon needs. *db.MongoDB satisfies it.
type Store interface {
	crawler.BillStore
	crawler.PetitionStore
	MarkEndedBills(now time.Time) (int64, error)
	CountBills(status string) (int64, error)
	CountPetitions() (int64, error)
	Close() error
}

// App wires the store, the two crawlers, the schedule and the trigger server
// into one daemon. The store client is constructed here and owned for the
// process lifetime; nothing lazily initializes it.
type App struct {
	cfg       *config.Config
	db        Store
	bills     *crawler.BillCrawler
	petitions *crawler.PetitionCrawler
	loc       *time.Location

	// ctx spans the daemon lifetime. Trigger-launched runs derive from it and
	// are counted in triggered so the store closes after the last writer.
	ctx       context.Context
	cancel    context.CancelFunc
	triggered sync.WaitGroup

	// Run locks: overlapping runs of the same crawl type are skipped, not
	// queued. Two different crawl types may run concurrently.
	billsMu     sync.Mutex
	petitionsMu sync.Mutex

	statsMu       sync.Mutex
	lastBills     *models.CrawlStats
	lastPetitions *models.CrawlStats
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.NewMongoDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, database), nil
}

func newApp(cfg *config.Config, store Store) *App {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, using UTC", cfg.Timezone)
		loc = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:       cfg,
		db:        store,
		bills:     crawler.NewBillCrawler(cfg, store),
		petitions: crawler.NewPetitionCrawler(cfg, store),
		loc:       loc,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RunBills executes one bills crawl unless one is already in flight.
func (a *App) RunBills(ctx context.Context) {
	if !a.billsMu.TryLock() {
		log.Println("bills crawl already running, skipping")
		return
	}
	defer a.billsMu.Unlock()

	stats, err := a.bills.Run(ctx)
	a.statsMu.Lock()
	a.lastBills = stats
	a.statsMu.Unlock()
	if err != nil {
		log.Printf("Bills crawl failed: %v", err)
	}
}

func (a *App) RunPetitions(ctx context.Context) {
	if !a.petitionsMu.TryLock() {
		log.Println("petitions crawl already running, skipping")
		return
	}
	defer a.petitionsMu.Unlock()

	stats, err := a.petitions.Run(ctx)
	a.statsMu.Lock()
	a.lastPetitions = stats
	a.statsMu.Unlock()
	if err != nil {
		log.Printf("Petitions crawl failed: %v", err)
	}
}

func (a *App) sweepEndedBills() {
	n, err := a.db.MarkEndedBills(time.Now())
	if err != nil {
		log.Printf("ended-bill sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("marked %d bills as ended", n)
	}
}

// Run starts the schedulers and the trigger server and blocks until SIGINT
// or SIGTERM.
func (a *App) Run() error {
	log.Println("🤖 Starting assembly crawler daemon...")
	log.Printf("⚙️  bills daily at %v, petitions every %d min (%s)",
		a.cfg.Bills.ScheduleHours, a.cfg.Petitions.IntervalMin, a.cfg.Timezone)

	ctx := a.ctx
	defer a.cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Initial crawl shortly after startup, bills first.
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
		log.Println("Running initial crawl...")
		a.RunBills(ctx)
		a.RunPetitions(ctx)
		a.sweepEndedBills()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduleDaily(ctx, a.cfg.Bills.ScheduleHours, func() { a.RunBills(ctx) })
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		every := time.Duration(a.cfg.Petitions.IntervalMin) * time.Minute
		a.scheduleEvery(ctx, every, func() { a.RunPetitions(ctx) })
	}()

	// Notice-period expiry sweep, once a day after midnight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduleDaily(ctx, []int{0}, a.sweepEndedBills)
	}()

	srv := &http.Server{Addr: ":" + a.cfg.Server.Port, Handler: a.router()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("trigger server: %v", err)
		}
	}()
	log.Printf("trigger server listening on :%s", a.cfg.Server.Port)

	<-sigChan
	log.Println("⚠️  interrupt received, shutting down...")
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("trigger server shutdown: %v", err)
	}

	wg.Wait()
	a.triggered.Wait()
	return a.db.Close()
}
