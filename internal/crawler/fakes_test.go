package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assembly_crawler/internal/config"
	"assembly_crawler/internal/fetcher"
	"assembly_crawler/internal/models"
	"assembly_crawler/internal/robots"

	"github.com/PuerkitoBio/goquery"
)

type fakeOpener struct {
	pages  map[string]string
	fails  map[string]bool
	opened []string
}

func (f *fakeOpener) Open(url string, _ fetcher.WaitCondition, _ time.Duration) (*goquery.Document, error) {
	f.opened = append(f.opened, url)
	if f.fails[url] {
		return nil, &fetcher.NavigationError{URL: url, Err: errors.New("timeout")}
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, &fetcher.NavigationError{URL: url, Err: errors.New("not found")}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

type fakeBillStore struct {
	bills  map[string]*models.Bill
	failOn map[string]bool
}

func newFakeBillStore() *fakeBillStore {
	return &fakeBillStore{bills: map[string]*models.Bill{}, failOn: map[string]bool{}}
}

func (s *fakeBillStore) UpsertBill(b *models.Bill) (bool, error) {
	if s.failOn[b.BillNumber] {
		return false, errors.New("constraint violation")
	}
	_, existed := s.bills[b.BillNumber]
	cp := *b
	cp.Status = models.BillInProgress
	s.bills[b.BillNumber] = &cp
	return !existed, nil
}

type fakePetitionStore struct {
	petitions map[string]*models.Petition
	history   []models.PetitionHistory
	failOn    map[string]bool
}

func newFakePetitionStore() *fakePetitionStore {
	return &fakePetitionStore{petitions: map[string]*models.Petition{}, failOn: map[string]bool{}}
}

// UpsertPetition mirrors the store contract: the update path touches only the
// fields the listing refreshes; the first-sight window, content and goal are
// insert-only.
func (s *fakePetitionStore) UpsertPetition(p *models.Petition) (int, bool, error) {
	if s.failOn[p.PetitionID] {
		return 0, false, errors.New("constraint violation")
	}
	prev, existed := s.petitions[p.PetitionID]
	if !existed {
		cp := *p
		cp.ProgressRate = float64(p.AgreeCount) / float64(p.AgreeGoal) * 100
		s.petitions[p.PetitionID] = &cp
		return 0, false, nil
	}
	upd := *prev
	upd.Title = p.Title
	upd.Category = p.Category
	upd.AgreeCount = p.AgreeCount
	upd.ProgressRate = float64(p.AgreeCount) / float64(prev.AgreeGoal) * 100
	s.petitions[p.PetitionID] = &upd
	return prev.AgreeCount, true, nil
}

func (s *fakePetitionStore) AppendPetitionHistory(petitionID string, agreeCount int, recordedAt time.Time) error {
	s.history = append(s.history, models.PetitionHistory{
		PetitionID: petitionID,
		AgreeCount: agreeCount,
		RecordedAt: recordedAt,
	})
	return nil
}

// sessionSpy wires a fake opener in place of a browser session and records
// that the session wrapper was entered and left.
type sessionSpy struct {
	opener   fetcher.PageOpener
	released bool
}

func (s *sessionSpy) open(_ context.Context, fn func(fetcher.PageOpener) error) error {
	defer func() { s.released = true }()
	return fn(s.opener)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Bills.ItemDelayMS = 0
	cfg.Bills.PageDelayMS = 0
	return cfg
}

func newTestBillCrawler(cfg *config.Config, store BillStore, spy *sessionSpy, links []string, collectErr error) *BillCrawler {
	c := NewBillCrawler(cfg, store)
	c.openSession = spy.open
	c.collect = func() ([]string, error) { return links, collectErr }
	c.loadGate = func() *robots.Gate { return nil }
	return c
}

func newTestPetitionCrawler(cfg *config.Config, store PetitionStore, spy *sessionSpy) *PetitionCrawler {
	c := NewPetitionCrawler(cfg, store)
	c.openSession = spy.open
	c.loadGate = func() *robots.Gate { return nil }
	return c
}

// denyingGate serves a robots.txt that blocks the given prefix and loads a
// real gate from it.
func denyingGate(t *testing.T, prefix string) *robots.Gate {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "User-agent: *\nDisallow: %s\n", prefix)
	}))
	t.Cleanup(srv.Close)
	return robots.Load(srv.URL, "test-agent", time.Second)
}
