package common

import (
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomnomnom/linkheader"
)

const (
	// PageParam is the query parameter holding the page number
	PageParam = "page"
	// PerPageParam is the preferred spelling of the page size parameter
	PerPageParam = "perPage"
	// PerPageSnakeParam is the alternate spelling of the page size parameter
	PerPageSnakeParam = "per_page"

	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Link relation names emitted in the Link header
const (
	RelFirst = "first"
	RelPrev  = "prev"
	RelNext  = "next"
	RelLast  = "last"
)

// PageRequest is the page position requested by a client
type PageRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	// PerPageParam is the spelling the client used, empty if it sent none
	PerPageParam string `json:"-"`
}

// Offset returns the number of items to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ExtractPageRequest reads page and perPage/per_page from the query string.
// Invalid values fall back to the defaults; perPage is capped at maxPerPage
// and page is capped so the offset never overflows.
func ExtractPageRequest(r *http.Request, defaultPerPage, maxPerPage int) PageRequest {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if maxPerPage <= 0 {
		maxPerPage = MaxPerPage
	}

	query := r.URL.Query()
	req := PageRequest{Page: 1, PerPage: defaultPerPage}

	if page := query.Get(PageParam); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			req.Page = p
		}
	}

	for _, name := range []string{PerPageParam, PerPageSnakeParam} {
		if !query.Has(name) {
			continue
		}
		req.PerPageParam = name
		if pp, err := strconv.Atoi(query.Get(name)); err == nil && pp > 0 {
			if pp > maxPerPage {
				pp = maxPerPage
			}
			req.PerPage = pp
		}
		break
	}

	if maxPage := math.MaxInt / req.PerPage; req.Page > maxPage {
		req.Page = maxPage
	}

	return req
}

// PageSummary is serialized into the Pagination header
type PageSummary struct {
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
	Total       int `json:"total"`
}

// PageLink is one navigation link
type PageLink struct {
	Rel  string
	Page int
	URL  string
}

// PageLinks holds the four navigation links of a listing page
type PageLinks struct {
	First    PageLink
	Prev     PageLink
	Next     PageLink
	Last     PageLink
	LastPage int
	Summary  PageSummary
}

// CalculateLastPage returns ceil(total/perPage), never less than 1
func CalculateLastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	pages := total / perPage
	if total%perPage > 0 {
		pages++
	}
	return pages
}

// BuildPageLinks computes first/prev/next/last links for a listing.
// Each link is a copy of requestURL with the page parameter overwritten and,
// when the request carried one, the per-page parameter overwritten too.
// Every link page lies in [1, lastPage].
func BuildPageLinks(currentPage, perPage, totalCount int, requestURL *url.URL, perPageParam string) PageLinks {
	last := CalculateLastPage(totalCount, perPage)

	prev, next := 1, last
	if currentPage > 1 {
		prev = clampPage(currentPage-1, last)
	}
	if currentPage < last {
		next = clampPage(currentPage+1, last)
	}

	build := func(rel string, page int) PageLink {
		return PageLink{Rel: rel, Page: page, URL: pageURL(requestURL, page, perPage, perPageParam)}
	}

	return PageLinks{
		First:    build(RelFirst, 1),
		Prev:     build(RelPrev, prev),
		Next:     build(RelNext, next),
		Last:     build(RelLast, last),
		LastPage: last,
		Summary: PageSummary{
			CurrentPage: currentPage,
			PerPage:     perPage,
			Total:       totalCount,
		},
	}
}

// Links returns the links in first, prev, next, last order
func (l PageLinks) Links() []PageLink {
	return []PageLink{l.First, l.Prev, l.Next, l.Last}
}

// LinkHeader renders the links as an RFC 5988 Link header value
func (l PageLinks) LinkHeader() string {
	links := make(linkheader.Links, 0, 4)
	for _, link := range l.Links() {
		links = append(links, linkheader.Link{URL: link.URL, Rel: link.Rel})
	}
	return links.String()
}

// PaginationHeader renders the summary as the Pagination header value
func (l PageLinks) PaginationHeader() (string, error) {
	b, err := json.Marshal(l.Summary)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteHeaders sets the Link and Pagination headers on w
func (l PageLinks) WriteHeaders(w http.ResponseWriter) error {
	pagination, err := l.PaginationHeader()
	if err != nil {
		return err
	}
	w.Header().Set("Link", l.LinkHeader())
	w.Header().Set("Pagination", pagination)
	return nil
}

// RequestURL returns the absolute URL of an inbound request. The scheme and
// host come from X-Forwarded-Proto and X-Forwarded-Host when a proxy set them.
func RequestURL(r *http.Request) *url.URL {
	u := *r.URL

	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto == "http" || proto == "https" {
		u.Scheme = proto
	}

	u.Host = r.Host
	if host := firstHeaderValue(r, "X-Forwarded-Host"); host != "" {
		u.Host = host
	}
	return &u
}

func firstHeaderValue(r *http.Request, name string) string {
	value, _, _ := strings.Cut(r.Header.Get(name), ",")
	return strings.ToLower(strings.TrimSpace(value))
}

func clampPage(page, last int) int {
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

func pageURL(base *url.URL, page, perPage int, perPageParam string) string {
	if base == nil {
		base = &url.URL{}
	}
	u := *base
	query := u.Query()
	query.Set(PageParam, strconv.Itoa(page))
	if perPageParam != "" && query.Has(perPageParam) {
		query.Set(perPageParam, strconv.Itoa(perPage))
	}
	u.RawQuery = query.Encode()
	return u.String()
}
