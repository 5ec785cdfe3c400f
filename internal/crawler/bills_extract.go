package crawler

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"assembly_crawler/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker tokens of the 입법예고 detail pages. The markup around them is
// inconsistent, which is why extraction runs through ordered fallback chains.
const (
	markerLawBill     = "법률안"
	markerBoilerplate = "진행 중 입법예고"
	markerPeriod      = "입법예고기간"
	markerProposers   = "제안자목록"
	headerBoilerplate = "입법예고 법률안"
	defaultUnknown    = "미정"

	proposalReasonLimit = 500
	longTitleMinRunes   = 10
)

var reTrailingParen = regexp.MustCompile(`\s*\(([^()]*)\)$`)

type titleStrategy struct {
	name string
	find func(doc *goquery.Document) string
}

// Ordered title heuristics; first non-empty result wins.
var titleStrategies = []titleStrategy{
	{"marker-heading", markerHeading},
	{"long-heading", longHeading},
	{"heading-before-content", headingBeforeContent},
}

func markerHeading(doc *goquery.Document) string {
	var title string
	doc.Find("h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if strings.Contains(t, markerLawBill) {
			title = t
			return false
		}
		return true
	})
	return title
}

func longHeading(doc *goquery.Document) string {
	var title string
	doc.Find("h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(t) > longTitleMinRunes && !strings.Contains(t, markerBoilerplate) {
			title = t
			return false
		}
		return true
	})
	return title
}

// headingBeforeContent walks previous siblings of the main content container
// until it hits an h3.
func headingBeforeContent(doc *goquery.Document) string {
	viewCont := doc.Find(".view_cont").First()
	if viewCont.Length() == 0 {
		return ""
	}
	for n := viewCont.Nodes[0].PrevSibling; n != nil; n = n.PrevSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.H3 {
			return strings.TrimSpace(nodeText(n))
		}
	}
	return ""
}

// ExtractBill pulls a structured bill out of a rendered detail page. Returns
// nil when no title can be located at all; a page without that minimum signal
// is a skip, not an error.
func ExtractBill(doc *goquery.Document, sourceURL string) *models.Bill {
	var title string
	for _, st := range titleStrategies {
		if t := st.find(doc); t != "" {
			title = t
			break
		}
	}
	if title == "" {
		log.Printf("no bill title found at %s, skipping", sourceURL)
		return nil
	}

	billName := title
	proposer := defaultUnknown
	if m := reTrailingParen.FindStringSubmatch(title); m != nil {
		proposer = m[1]
		billName = strings.TrimSpace(reTrailingParen.ReplaceAllString(title, ""))
	}

	committee := defaultUnknown
	var startStr, endStr string

	viewCont := doc.Find(".view_cont").First()
	if viewCont.Length() > 0 {
		lines := blockLines(viewCont)

		for _, line := range lines {
			if strings.Contains(line, markerPeriod) {
				dates := strings.Replace(line, markerPeriod, "", 1)
				dates = strings.Replace(dates, ":", "", 1)
				parts := strings.Split(strings.TrimSpace(dates), "~")
				if len(parts) >= 2 {
					startStr = strings.TrimSpace(parts[0])
					endStr = strings.TrimSpace(parts[1])
				}
				break
			}
		}

		if len(lines) > 1 && lines[0] == headerBoilerplate {
			committee = lines[1]
		}

		if proposer == defaultUnknown && len(lines) > 2 {
			proposer = strings.TrimSpace(strings.Replace(lines[2], markerProposers, "", 1))
		}
	}

	content := extractBillBody(doc, sourceURL)

	proposerType := models.ProposerMember
	if strings.Contains(proposer, models.ProposerGovernment) {
		proposerType = models.ProposerGovernment
	}

	return &models.Bill{
		BillNumber:     billNumberFromURL(sourceURL),
		BillName:       billName,
		ProposerType:   proposerType,
		Proposer:       proposer,
		Committee:      committee,
		ProposalReason: truncateRunes(content, proposalReasonLimit),
		MainContent:    content,
		NoticeStart:    ParseDateSafe(startStr, 0),
		NoticeEnd:      ParseDateSafe(endStr, 14),
		OpinionCount:   0,
		SourceURL:      sourceURL,
	}
}

// extractBillBody: the subheading for 제안이유/주요내용 followed by a DIV is
// the normal case, .txt_content the older layout, readability the last
// resort when the markup matches neither.
func extractBillBody(doc *goquery.Document, sourceURL string) string {
	var header *goquery.Selection
	doc.Find("h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		if strings.Contains(t, "제안이유") || strings.Contains(t, "주요내용") {
			header = s
			return false
		}
		return true
	})

	if header != nil {
		for n := header.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
			if n.Type == html.ElementNode && n.DataAtom == atom.Div {
				return strings.TrimSpace(nodeText(n))
			}
		}
	}

	if content := strings.TrimSpace(doc.Find(".txt_content").First().Text()); content != "" {
		return content
	}

	return readabilityFallback(doc, sourceURL)
}

func readabilityFallback(doc *goquery.Document, sourceURL string) string {
	raw, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return ""
	}
	pageURL, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		return ""
	}
	log.Printf("bill body selectors missed at %s, using readability extract", sourceURL)
	return strings.TrimSpace(article.TextContent)
}

func billNumberFromURL(sourceURL string) string {
	if u, err := url.Parse(sourceURL); err == nil {
		if id := u.Query().Get("lgsltPaId"); id != "" {
			return id
		}
	}
	// Degraded key; the caller accepts it rather than fail the item.
	return fmt.Sprintf("UNKNOWN-%d", time.Now().UnixMilli())
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// blockLines flattens a selection into trimmed non-empty text lines, with a
// break after every block-level element. goquery's Text() alone loses the
// line structure the fixed-position heuristics depend on.
func blockLines(s *goquery.Selection) []string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Div, atom.P, atom.Br, atom.Li, atom.Ul, atom.Ol,
				atom.Tr, atom.Td, atom.Th, atom.Table, atom.Dt, atom.Dd,
				atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				b.WriteString("\n")
			}
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}
