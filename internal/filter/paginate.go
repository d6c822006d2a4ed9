package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
)

// Page is one slice of a filtered, sorted result set plus the continuation
// metadata callers need to build their response envelope.
type Page struct {
	Entities []entity.Entity
	Total    int
	Offset   int
	Limit    int
	HasMore  bool
}

// Paginate slices a result set. The offset is clamped into [0, len]; a
// limit of zero or less returns everything from the offset.
func Paginate(entities []entity.Entity, offset, limit int) Page {
	total := len(entities)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}

	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return Page{
		Entities: entities[offset:end],
		Total:    total,
		Offset:   offset,
		Limit:    limit,
		HasMore:  end < total,
	}
}

// Link is one RFC 5988 web-link reference to a page of results.
type Link struct {
	Rel   string
	URL   string
	Count int
}

// PageLinks builds first/prev/next/last references for the page, each
// carrying the total count. prev is omitted on the first page and next on
// the last. The base URL's other query parameters are preserved.
func PageLinks(base *url.URL, p Page) []Link {
	if p.Limit <= 0 {
		return nil
	}

	links := []Link{pageLink(base, "first", 0, p)}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, pageLink(base, "prev", prev, p))
	}
	if p.HasMore {
		links = append(links, pageLink(base, "next", p.Offset+p.Limit, p))
	}

	last := 0
	if p.Total > 0 {
		last = ((p.Total - 1) / p.Limit) * p.Limit
	}
	return append(links, pageLink(base, "last", last, p))
}

func pageLink(base *url.URL, rel string, offset int, p Page) Link {
	u := *base
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(p.Limit))
	u.RawQuery = q.Encode()
	return Link{Rel: rel, URL: u.String(), Count: p.Total}
}

// FormatLinkHeader renders links as one RFC 5988 Link header value.
func FormatLinkHeader(links []Link) string {
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = fmt.Sprintf("<%s>; rel=%q; count=%d", l.URL, l.Rel, l.Count)
	}
	return strings.Join(parts, ", ")
}
