// Package dashboard is the author surface: entry creation and editing,
// publish/unpublish, image uploads, and category administration. Every
// route runs behind the RequireUser guard; the acting author always
// comes from the session, never from the request body.
package dashboard

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"inkwell/cache"
	"inkwell/common"
	"inkwell/config"
	"inkwell/models"
	"inkwell/storage"
	"inkwell/store"
)

type DashboardModule struct {
	cfg    config.Config
	store  *store.EntryStore
	media  storage.ObjectStorage
	rcache *cache.RenderCache
}

func NewDashboardModule(cfg config.Config, entryStore *store.EntryStore, media storage.ObjectStorage, rcache *cache.RenderCache) *DashboardModule {
	return &DashboardModule{
		cfg:    cfg,
		store:  entryStore,
		media:  media,
		rcache: rcache,
	}
}

func (d *DashboardModule) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/dashboard")
	group.Use(common.RequireUser)
	{
		group.GET("/entries", d.listEntries)
		group.POST("/entries", d.createEntry)
		group.POST("/entries/:id", d.updateEntry)
		group.POST("/entries/:id/publish", d.publishEntry)
		group.POST("/entries/:id/unpublish", d.unpublishEntry)
		group.POST("/images", common.RequireAjax, d.createImage)
		group.GET("/categories", d.listCategories)
		group.POST("/categories", d.createCategory)
		group.DELETE("/categories/:id", d.deleteCategory)
	}
}

func respondStoreError(c *gin.Context, err error) {
	if ve, ok := store.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{ve.Field: ve.Message})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func entryInputFromForm(c *gin.Context) store.EntryInput {
	input := store.EntryInput{
		Title: c.PostForm("title"),
		Body:  c.PostForm("body"),
	}

	if raw := c.PostForm("category_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			input.CategoryID = &id
		}
	}

	if raw := c.PostForm("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				input.Tags = append(input.Tags, tag)
			}
		}
	}

	return input
}

func (d *DashboardModule) listEntries(c *gin.Context) {
	userID := c.GetInt("user_id")

	entries, err := d.store.ListEntriesByAuthor(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entries"})
		return
	}

	type dashboardEntry struct {
		ID          uint   `json:"id"`
		Title       string `json:"title"`
		Slug        string `json:"slug"`
		IsPublished bool   `json:"is_published"`
		Views       uint   `json:"views"`
	}

	list := make([]dashboardEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, dashboardEntry{
			ID:          e.ID,
			Title:       e.Title,
			Slug:        e.Slug,
			IsPublished: e.IsPublished,
			Views:       e.Views,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}

func (d *DashboardModule) createEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	input := entryInputFromForm(c)

	entry, err := d.store.CreateEntry(userID, input)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	response := gin.H{
		"id":    entry.ID,
		"title": entry.Title,
		"slug":  entry.Slug,
		"url":   "/entries/" + entry.Slug,
	}

	// The poster is optional: a failed upload is reported but never
	// aborts the entry that was just created.
	if posterErr := d.attachPoster(c, userID, entry); posterErr != nil {
		log.Printf("poster upload failed for %q: %v", entry.Slug, posterErr)
		response["poster_error"] = "failed to store poster"
	}

	c.JSON(http.StatusCreated, response)
}

func (d *DashboardModule) updateEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	input := entryInputFromForm(c)
	entry, err := d.store.UpdateEntry(userID, uint(id), input)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	response := gin.H{
		"id":    entry.ID,
		"title": entry.Title,
		"slug":  entry.Slug,
		"url":   "/entries/" + entry.Slug,
	}

	if posterErr := d.attachPoster(c, userID, entry); posterErr != nil {
		log.Printf("poster upload failed for %q: %v", entry.Slug, posterErr)
		response["poster_error"] = "failed to store poster"
	}

	// the rendered body may be stale now
	if err := d.rcache.Clear(entry.Slug); err != nil {
		log.Printf("render cache clear failed for %q: %v", entry.Slug, err)
	}

	c.JSON(http.StatusOK, response)
}

// attachPoster stores an uploaded poster file, if any, and records its
// URL on the entry. Returns nil when the form carried no poster.
func (d *DashboardModule) attachPoster(c *gin.Context, userID int, entry *models.Entry) error {
	fileHeader, err := c.FormFile("poster")
	if err != nil {
		return nil // no poster in the form
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	url, err := d.media.Put(storage.PathHint("entry", "poster", entry.ID, fileHeader.Filename), file)
	if err != nil {
		return err
	}

	if err := d.store.SetPoster(userID, entry.ID, url); err != nil {
		return err
	}
	entry.Poster = url
	return nil
}

func (d *DashboardModule) publishEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	entry, err := d.store.Publish(userID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// informational: a miss here is either a bad id or someone
			// poking at another author's entry
			log.Printf("publish refused for user %d, entry %d", userID, id)
		}
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           entry.ID,
		"slug":         entry.Slug,
		"is_published": entry.IsPublished,
		"published_at": entry.PublishedAt,
	})
}

func (d *DashboardModule) unpublishEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	entry, err := d.store.Unpublish(userID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("unpublish refused for user %d, entry %d", userID, id)
		}
		respondStoreError(c, err)
		return
	}

	if err := d.rcache.Clear(entry.Slug); err != nil {
		log.Printf("render cache clear failed for %q: %v", entry.Slug, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           entry.ID,
		"slug":         entry.Slug,
		"is_published": entry.IsPublished,
		"published_at": entry.PublishedAt,
	})
}

// createImage attaches an image to one of the author's entries. The
// photo is mandatory: when storage fails, no Image record is created.
func (d *DashboardModule) createImage(c *gin.Context) {
	userID := c.GetInt("user_id")

	entryID, err := strconv.ParseUint(c.PostForm("entry_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"entry_id": "is required"})
		return
	}

	entry, err := d.store.GetOwnedByID(userID, uint(entryID))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	caption := c.PostForm("caption")
	if strings.TrimSpace(caption) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"caption": "is required"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"photo": "is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"photo": "is unreadable"})
		return
	}
	defer file.Close()

	url, err := d.media.Put(storage.PathHint("entry", "images", entry.ID, fileHeader.Filename), file)
	if err != nil {
		log.Printf("photo upload failed for entry %d: %v", entry.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
		return
	}

	image, err := d.store.CreateImage(userID, entry.ID, caption, url)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"caption":    image.Caption,
		"photo_url":  image.Photo,
		"entry_slug": entry.Slug,
	})
}

func (d *DashboardModule) listCategories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	categories, total, err := d.store.ListCategories(page, d.cfg.CategoryPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      total,
		"page":       page,
	})
}

func (d *DashboardModule) createCategory(c *gin.Context) {
	category, err := d.store.CreateCategory(c.PostForm("name"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (d *DashboardModule) deleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	if err := d.store.DeleteCategory(id); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
