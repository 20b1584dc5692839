// Package blog is the public read side: paginated listings, entry
// detail, and full-text search over the published subset. It only ever
// serves data shapes; rendering belongs to the presentation layer.
package blog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/cache"
	"inkwell/common"
	"inkwell/config"
	"inkwell/models"
	"inkwell/search"
	"inkwell/store"
)

type BlogModule struct {
	cfg    config.Config
	store  *store.EntryStore
	index  *search.Index
	rcache *cache.RenderCache
}

func NewBlogModule(cfg config.Config, entryStore *store.EntryStore, index *search.Index, rcache *cache.RenderCache) *BlogModule {
	return &BlogModule{
		cfg:    cfg,
		store:  entryStore,
		index:  index,
		rcache: rcache,
	}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", b.list)
	router.GET("/category/:id", b.listByCategory)
	router.GET("/tag/:tag", b.listByTag)
	router.GET("/search", common.RequireAjax, b.search)
	router.GET("/images/:id", common.RequireAjax, b.imageDetail)
	router.GET("/entries/:slug", b.detail)
}

// EntrySummary is the listing shape of an entry.
type EntrySummary struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
	ID    uint   `json:"id"`
}

func summarize(e *models.Entry) EntrySummary {
	return EntrySummary{
		Title: e.Title,
		Slug:  e.Slug,
		URL:   "/entries/" + e.Slug,
		ID:    e.ID,
	}
}

func summarizeAll(entries []models.Entry) []EntrySummary {
	summaries := make([]EntrySummary, 0, len(entries))
	for i := range entries {
		summaries = append(summaries, summarize(&entries[i]))
	}
	return summaries
}

func (b *BlogModule) list(c *gin.Context) {
	b.listFiltered(c, store.PublishedFilter{}, "Latest Posts")
}

func (b *BlogModule) listByCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	title := "Latest Posts"
	if category, err := b.store.GetCategory(id); err == nil {
		title = "Category(" + category.Name + ")"
	}

	b.listFiltered(c, store.PublishedFilter{CategoryID: &id}, title)
}

func (b *BlogModule) listByTag(c *gin.Context) {
	tag := c.Param("tag")
	b.listFiltered(c, store.PublishedFilter{Tag: tag}, "Tag("+tag+")")
}

// listFiltered serves one page of published entries. Zero matches is a
// normal empty page, not a failure.
func (b *BlogModule) listFiltered(c *gin.Context, filter store.PublishedFilter, title string) {
	page := currentPage(c)

	entries, total, err := b.store.FindPublished(filter, page, b.cfg.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":   title,
		"entries": summarizeAll(entries),
		"total":   total,
		"page":    page,
		"pages":   pageCount(total, b.cfg.PageSize),
	})
}

// detail serves a single entry. The owning author sees their drafts as
// a private preview; everyone else sees published entries only, and
// each such read bumps the view counter atomically.
func (b *BlogModule) detail(c *gin.Context) {
	slug := c.Param("slug")

	var entry *models.Entry
	var err error
	preview := false

	if userID, ok := common.CurrentUserID(c); ok {
		if entry, err = b.store.GetOwnedBySlug(userID, slug); err == nil {
			preview = true
		}
	}
	if entry == nil {
		entry, err = b.store.GetPublishedBySlug(slug)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entry"})
			return
		}
	}

	if !preview {
		if err := b.store.IncrementViews(entry.ID); err == nil {
			entry.Views++
		}
	}

	payload := b.detailPayload(entry, preview)

	if b.cfg.CategoriesInDetail {
		if categories, _, err := b.store.ListCategories(1, b.cfg.CategoryPageSize); err == nil {
			payload["categories"] = categories
		}
	}

	c.JSON(http.StatusOK, payload)
}

func (b *BlogModule) detailPayload(entry *models.Entry, preview bool) gin.H {
	tags, _ := b.store.EntryTagNames(entry.ID)
	if tags == nil {
		tags = []string{}
	}

	var categoryName *string
	if entry.Category != nil {
		categoryName = &entry.Category.Name
	}

	var similar []EntrySummary
	if entries, err := b.store.SimilarEntries(entry); err == nil {
		similar = summarizeAll(entries)
	}

	var publishedAt *time.Time
	if entry.PublishedAt != nil {
		publishedAt = entry.PublishedAt
	}

	return gin.H{
		"id":           entry.ID,
		"title":        entry.Title,
		"slug":         entry.Slug,
		"url":          "/entries/" + entry.Slug,
		"body":         entry.Body,
		"body_html":    b.renderedBody(entry, preview),
		"excerpt":      excerpt(entry.Body),
		"reading_time": estimateReadingMinutes(entry.Body),
		"tags":         tags,
		"category":     categoryName,
		"poster_url":   entry.Poster,
		"views":        entry.Views,
		"published_at": publishedAt,
		"modified_at":  entry.ModifiedAt,
		"is_preview":   preview,
		"similar":      similar,
	}
}

// renderedBody serves the goldmark rendering from the file cache when
// possible. Drafts are never cached; their content churns under the
// editor.
func (b *BlogModule) renderedBody(entry *models.Entry, preview bool) string {
	if preview || !entry.IsPublished {
		return renderMarkdown(entry.Body)
	}

	if html, ok := b.rcache.Read(entry.Slug); ok {
		return html
	}
	html := renderMarkdown(entry.Body)
	_ = b.rcache.Write(entry.Slug, html)
	return html
}

// search delegates ranking to the full-text index and hydrates the
// ranked page from the store.
func (b *BlogModule) search(c *gin.Context) {
	q := c.Query("q")
	page := currentPage(c)
	pageSize := b.cfg.PageSize

	ids, total, err := b.index.Search(q, pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	entries, err := b.store.PublishedByIDs(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	pager := b.buildSearchPager(c, q, page, pageSize, total)
	c.JSON(http.StatusOK, gin.H{
		"suggestion": q,
		"results":    summarizeAll(entries),
		"total":      pager.Total,
		"current":    pager.Current,
		"next":       pager.Next,
		"previous":   pager.Previous,
	})
}

// imageDetail returns one image's data. Visibility follows the parent
// entry: a draft's images are only shown to the entry's author.
func (b *BlogModule) imageDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}

	image, entry, err := b.store.GetImage(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load image"})
		return
	}

	if !entry.IsPublished {
		userID, ok := common.CurrentUserID(c)
		if !ok || userID != entry.AuthorID {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"caption":    image.Caption,
		"photo_url":  image.Photo,
		"entry_slug": entry.Slug,
	})
}
