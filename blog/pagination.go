package blog

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SearchPager is the pagination metadata attached to a search
// response. Current, Next and Previous are absolute URLs carrying the
// query string and target page; Next/Previous are empty when the page
// does not exist.
type SearchPager struct {
	Total    int64  `json:"total"`
	Current  string `json:"current"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

func pageCount(total int64, pageSize int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func currentPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// buildSearchPager computes the pager for one search result page.
// When emptyOnFirst is set, links that would point at page 1 render as
// an empty string instead of an explicit page=1 URL; Current is always
// explicit. The flag exists only for clients built against the legacy
// pager shape.
func (b *BlogModule) buildSearchPager(c *gin.Context, q string, page, pageSize int, total int64) SearchPager {
	pages := pageCount(total, pageSize)
	emptyOnFirst := b.cfg.EmptyFirstPageURL

	pager := SearchPager{
		Total:   total,
		Current: b.absolutePageURL(c, q, page, false),
	}
	if page < pages {
		pager.Next = b.absolutePageURL(c, q, page+1, emptyOnFirst)
	}
	if page > 1 {
		pager.Previous = b.absolutePageURL(c, q, page-1, emptyOnFirst)
	}
	return pager
}

func (b *BlogModule) absolutePageURL(c *gin.Context, q string, page int, emptyOnFirst bool) string {
	if page <= 1 {
		if emptyOnFirst {
			return ""
		}
		page = 1
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("page", strconv.Itoa(page))

	return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, params.Encode())
}
