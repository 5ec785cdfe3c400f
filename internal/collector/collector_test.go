package collector

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingHandler(t *testing.T, pagesWithLinks int, fetched *[]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		page := r.URL.Query().Get("pageIndex")
		*fetched = append(*fetched, page)

		var rows strings.Builder
		if p := atoi(page); p >= 1 && p <= pagesWithLinks {
			fmt.Fprintf(&rows, `<tr><td><a href="/napal/view.do?lgsltPaId=PRC_%s_1">의안 1</a></td></tr>`, page)
			fmt.Fprintf(&rows, `<tr><td><a href="/napal/view.do?lgsltPaId=PRC_%s_2">의안 2</a></td></tr>`, page)
			rows.WriteString(`<tr><td><a href="/napal/notice.do?id=1">공지</a></td></tr>`)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><table><tbody>%s</tbody></table></body></html>`, rows.String())
	}
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func TestCollectLinksStopsOnEmptyPage(t *testing.T) {
	var fetched []string
	srv := httptest.NewServer(listingHandler(t, 2, &fetched))
	defer srv.Close()

	links, err := CollectLinks(srv.URL+"/list.do?menuNo=1", "view.do", 10, 0, "test-agent")
	require.NoError(t, err)

	// Two link-bearing pages plus the empty page that stops the walk.
	assert.Equal(t, []string{"1", "2", "3"}, fetched)
	require.Len(t, links, 4)
	for _, link := range links {
		assert.True(t, strings.HasPrefix(link, srv.URL+"/napal/view.do"), "got %s", link)
	}
	assert.Contains(t, links, srv.URL+"/napal/view.do?lgsltPaId=PRC_1_1")
	assert.Contains(t, links, srv.URL+"/napal/view.do?lgsltPaId=PRC_2_2")
}

func TestCollectLinksHonorsMaxPages(t *testing.T) {
	var fetched []string
	srv := httptest.NewServer(listingHandler(t, 100, &fetched))
	defer srv.Close()

	links, err := CollectLinks(srv.URL+"/list.do?menuNo=1", "view.do", 2, 0, "test-agent")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, fetched)
	assert.Len(t, links, 4)
}

func TestCollectLinksServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "maintenance", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := CollectLinks(srv.URL+"/list.do?menuNo=1", "view.do", 10, 0, "test-agent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing page 1")
}
