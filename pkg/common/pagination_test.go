package common

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomnomnom/linkheader"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func pageOf(t *testing.T, link PageLink) string {
	t.Helper()
	return mustURL(t, link.URL).Query().Get(PageParam)
}

func TestBuildPageLinks_Clamping(t *testing.T) {
	tests := []struct {
		name                    string
		current, perPage, total int
		prev, next, last        int
	}{
		{"single page", 1, 10, 5, 1, 1, 1},
		{"first of five", 1, 2, 10, 1, 2, 5},
		{"middle", 3, 2, 10, 2, 4, 5},
		{"last page", 5, 2, 10, 4, 5, 5},
		{"empty listing", 1, 20, 0, 1, 1, 1},
		{"beyond the end", 9, 2, 10, 5, 5, 5},
		{"partial last page", 2, 3, 7, 1, 3, 3},
		{"far beyond the end", 100, 20, 45, 3, 3, 3},
		{"max page", math.MaxInt, 20, 45, 3, 3, 3},
		{"non positive page", 0, 20, 45, 1, 1, 3},
	}

	base := mustURL(t, "https://api.example.com/api/v1/cruxes/abc/dimensions")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := BuildPageLinks(tt.current, tt.perPage, tt.total, base, "")

			assert.Equal(t, tt.last, links.LastPage)
			assert.Equal(t, 1, links.First.Page)
			assert.Equal(t, tt.prev, links.Prev.Page)
			assert.Equal(t, tt.next, links.Next.Page)
			assert.Equal(t, tt.last, links.Last.Page)
			for _, l := range links.Links() {
				assert.GreaterOrEqual(t, l.Page, 1)
				assert.LessOrEqual(t, l.Page, tt.last)
			}
		})
	}
}

func TestBuildPageLinks_PreservesQueryAndPerPageSpelling(t *testing.T) {
	t.Run("perPage present is overwritten", func(t *testing.T) {
		u := mustURL(t, "https://api.example.com/dims?type=gate&page=2&perPage=2")
		links := BuildPageLinks(2, 2, 10, u, PerPageParam)

		next := mustURL(t, links.Next.URL)
		assert.Equal(t, "3", next.Query().Get("page"))
		assert.Equal(t, "2", next.Query().Get("perPage"))
		assert.Equal(t, "gate", next.Query().Get("type"))
		assert.Equal(t, "/dims", next.Path)
	})

	t.Run("per_page spelling kept", func(t *testing.T) {
		u := mustURL(t, "https://api.example.com/dims?per_page=500")
		links := BuildPageLinks(1, 100, 250, u, PerPageSnakeParam)

		last := mustURL(t, links.Last.URL)
		assert.Equal(t, "3", last.Query().Get("page"))
		assert.Equal(t, "100", last.Query().Get("per_page"))
		assert.False(t, last.Query().Has("perPage"))
	})

	t.Run("per-page not added when absent", func(t *testing.T) {
		u := mustURL(t, "https://api.example.com/dims")
		links := BuildPageLinks(1, 20, 45, u, "")

		first := mustURL(t, links.First.URL)
		assert.Equal(t, "1", pageOf(t, links.First))
		assert.False(t, first.Query().Has("perPage"))
		assert.False(t, first.Query().Has("per_page"))
	})

	t.Run("request url is not mutated", func(t *testing.T) {
		u := mustURL(t, "https://api.example.com/dims?page=4")
		BuildPageLinks(4, 10, 100, u, "")
		assert.Equal(t, "page=4", u.RawQuery)
	})
}

func TestPageLinks_Headers(t *testing.T) {
	u := mustURL(t, "https://api.example.com/dims?page=1&perPage=2")
	links := BuildPageLinks(1, 2, 10, u, PerPageParam)

	parsed := linkheader.Parse(links.LinkHeader())
	require.Len(t, parsed, 4)
	assert.Equal(t, []string{"first", "prev", "next", "last"},
		[]string{parsed[0].Rel, parsed[1].Rel, parsed[2].Rel, parsed[3].Rel})
	assert.Equal(t, links.Next.URL, parsed.FilterByRel("next")[0].URL)

	pagination, err := links.PaginationHeader()
	require.NoError(t, err)
	var summary map[string]int
	require.NoError(t, json.Unmarshal([]byte(pagination), &summary))
	assert.Equal(t, map[string]int{"currentPage": 1, "perPage": 2, "total": 10}, summary)

	rec := httptest.NewRecorder()
	require.NoError(t, links.WriteHeaders(rec))
	assert.Equal(t, links.LinkHeader(), rec.Header().Get("Link"))
	assert.JSONEq(t, pagination, rec.Header().Get("Pagination"))
}

func TestExtractPageRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PageRequest
	}{
		{"defaults", "", PageRequest{Page: 1, PerPage: 20}},
		{"camel case", "page=3&perPage=5", PageRequest{Page: 3, PerPage: 5, PerPageParam: PerPageParam}},
		{"snake case", "page=2&per_page=7", PageRequest{Page: 2, PerPage: 7, PerPageParam: PerPageSnakeParam}},
		{"camel case wins", "perPage=5&per_page=7", PageRequest{Page: 1, PerPage: 5, PerPageParam: PerPageParam}},
		{"capped", "perPage=1000", PageRequest{Page: 1, PerPage: 100, PerPageParam: PerPageParam}},
		{"garbage ignored", "page=-1&perPage=abc", PageRequest{Page: 1, PerPage: 20, PerPageParam: PerPageParam}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/dims?"+tt.query, nil)
			assert.Equal(t, tt.want, ExtractPageRequest(r, 20, 100))
		})
	}

	assert.Equal(t, 10, PageRequest{Page: 3, PerPage: 5}.Offset())
}

func TestExtractPageRequest_HugePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/dims?page=9223372036854775807&perPage=20", nil)

	req := ExtractPageRequest(r, 20, 100)

	assert.Equal(t, math.MaxInt/20, req.Page)
	assert.GreaterOrEqual(t, req.Offset(), 0)

	links := BuildPageLinks(req.Page, req.PerPage, 45, r.URL, req.PerPageParam)
	assert.Equal(t, 3, links.Prev.Page)
	assert.Equal(t, 3, links.Next.Page)
	assert.Equal(t, 3, links.Last.Page)
}

func TestRequestURL(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"direct", nil, "http://api.example.com/dims?page=2"},
		{"forwarded proto", map[string]string{"X-Forwarded-Proto": "https"}, "https://api.example.com/dims?page=2"},
		{"forwarded chain", map[string]string{"X-Forwarded-Proto": "HTTPS, http"}, "https://api.example.com/dims?page=2"},
		{"forwarded host", map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "cdn.example.com"}, "https://cdn.example.com/dims?page=2"},
		{"unknown proto ignored", map[string]string{"X-Forwarded-Proto": "gopher"}, "http://api.example.com/dims?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/dims?page=2", nil)
			r.Host = "api.example.com"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, RequestURL(r).String())
		})
	}
}
