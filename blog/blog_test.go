package blog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inkwell/cache"
	"inkwell/config"
	"inkwell/models"
	"inkwell/search"
	"inkwell/store"
)

func testConfig() config.Config {
	return config.Config{
		PageSize:           12,
		CategoryPageSize:   30,
		CategoriesInDetail: true,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal("failed to connect database")
	}

	db.AutoMigrate(&models.Entry{}, &models.Category{}, &models.Image{}, &models.Tag{}, &models.EntryTag{})
	return db
}

// setupBlogTest wires a router the way main does, minus the dashboard.
// The search index is only attached when the sqlite driver has FTS5.
func setupBlogTest(t *testing.T, cfg config.Config, withIndex bool) (*gin.Engine, *store.EntryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)

	var ix *search.Index
	if withIndex {
		var err error
		ix, err = search.NewIndex(db)
		if err != nil {
			if strings.Contains(err.Error(), "fts5") {
				t.Skip("sqlite driver built without FTS5")
			}
			t.Fatalf("creating index: %v", err)
		}
	}

	var syncer store.Synchronizer
	if ix != nil {
		syncer = ix
	}
	entryStore := store.NewEntryStore(db, syncer)
	rcache := cache.NewRenderCache(t.TempDir(), time.Minute)

	router := gin.New()
	router.Use(sessions.Sessions("inkwell-session", cookie.NewStore([]byte("test-secret"))))
	router.GET("/test-login/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		session := sessions.Default(c)
		session.Set("user_id", id)
		session.Save()
		c.Status(http.StatusNoContent)
	})

	NewBlogModule(cfg, entryStore, ix, rcache).RegisterRoutes(router)
	return router, entryStore
}

func loginAs(t *testing.T, router *gin.Engine, userID int) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", fmt.Sprintf("/test-login/%d", userID), nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Result().Cookies()
}

func doGet(router *gin.Engine, path string, cookies []*http.Cookie, ajax bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func publishTestEntry(t *testing.T, s *store.EntryStore, authorID int, title string) *models.Entry {
	t.Helper()

	entry, err := s.CreateEntry(authorID, store.EntryInput{Title: title, Body: "Some **markdown** body."})
	require.NoError(t, err)
	published, err := s.Publish(authorID, entry.ID)
	require.NoError(t, err)
	return published
}

func TestList(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	publishTestEntry(t, s, 1, "Visible Entry")
	_, err := s.CreateEntry(1, store.EntryInput{Title: "Hidden Draft", Body: "body"})
	require.NoError(t, err)

	w := doGet(router, "/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Latest Posts", body["title"])
	assert.Equal(t, float64(1), body["total"])

	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	first := entries[0].(map[string]any)
	assert.Equal(t, "Visible Entry", first["title"])
	assert.Equal(t, "/entries/visible-entry", first["url"])
}

func TestList_Pagination(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	for i := 0; i < 15; i++ {
		publishTestEntry(t, s, 1, fmt.Sprintf("Entry %d", i))
	}

	w := doGet(router, "/", nil, false)
	body := decodeBody(t, w)
	assert.Equal(t, float64(15), body["total"])
	assert.Equal(t, float64(2), body["pages"])
	assert.Len(t, body["entries"].([]any), 12)

	w = doGet(router, "/?page=2", nil, false)
	body = decodeBody(t, w)
	assert.Equal(t, float64(2), body["page"])
	assert.Len(t, body["entries"].([]any), 3)
}

func TestList_EmptyPageIsOK(t *testing.T) {
	router, _ := setupBlogTest(t, testConfig(), false)

	w := doGet(router, "/?page=7", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["total"])
	assert.Empty(t, body["entries"])
}

func TestListByCategory(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	category, err := s.CreateCategory("Infra")
	require.NoError(t, err)

	entry, err := s.CreateEntry(1, store.EntryInput{Title: "Infra Entry", Body: "body", CategoryID: &category.ID})
	require.NoError(t, err)
	_, err = s.Publish(1, entry.ID)
	require.NoError(t, err)
	publishTestEntry(t, s, 1, "Other Entry")

	w := doGet(router, fmt.Sprintf("/category/%d", category.ID), nil, false)
	body := decodeBody(t, w)
	assert.Equal(t, "Category(Infra)", body["title"])
	assert.Equal(t, float64(1), body["total"])
}

func TestListByTag(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	entry, err := s.CreateEntry(1, store.EntryInput{Title: "Tagged Entry", Body: "body", Tags: []string{"golang"}})
	require.NoError(t, err)
	_, err = s.Publish(1, entry.ID)
	require.NoError(t, err)

	w := doGet(router, "/tag/GOLANG", nil, false)
	body := decodeBody(t, w)
	assert.Equal(t, "Tag(GOLANG)", body["title"])
	assert.Equal(t, float64(1), body["total"])
}

func TestDetail(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)
	entry := publishTestEntry(t, s, 1, "Readable Entry")

	w := doGet(router, "/entries/"+entry.Slug, nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Readable Entry", body["title"])
	assert.Contains(t, body["body_html"], "<strong>markdown</strong>")
	assert.Equal(t, false, body["is_preview"])
	assert.NotNil(t, body["published_at"])
	assert.Contains(t, body, "categories")
}

func TestDetail_IncrementsViews(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)
	entry := publishTestEntry(t, s, 1, "Counted Entry")

	for i := 0; i < 3; i++ {
		doGet(router, "/entries/"+entry.Slug, nil, false)
	}

	after, err := s.GetByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Views+3, after.Views)
}

func TestDetail_DraftIs404ForPublic(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	_, err := s.CreateEntry(1, store.EntryInput{Title: "Secret Draft", Body: "body"})
	require.NoError(t, err)

	w := doGet(router, "/entries/secret-draft", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetail_OwnerPreviewsDraft(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	entry, err := s.CreateEntry(1, store.EntryInput{Title: "My Draft", Body: "body"})
	require.NoError(t, err)

	owner := loginAs(t, router, 1)
	w := doGet(router, "/entries/"+entry.Slug, owner, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["is_preview"])

	// preview reads do not count
	after, err := s.GetByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Views, after.Views)

	// another signed-in user gets the public treatment
	stranger := loginAs(t, router, 2)
	w = doGet(router, "/entries/"+entry.Slug, stranger, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch_RequiresAjax(t *testing.T) {
	router, _ := setupBlogTest(t, testConfig(), true)

	w := doGet(router, "/search?q=go", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), true)

	published := publishTestEntry(t, s, 1, "Go Deployment Notes")
	_, err := s.CreateEntry(1, store.EntryInput{Title: "Go Draft Notes", Body: "body"})
	require.NoError(t, err)

	w := doGet(router, "/search?q=deployment", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "deployment", body["suggestion"])
	assert.Equal(t, float64(1), body["total"])

	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, published.Slug, results[0].(map[string]any)["slug"])
}

func TestSearch_UnpublishedGone(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), true)

	entry := publishTestEntry(t, s, 1, "Ephemeral Entry")
	_, err := s.Unpublish(1, entry.ID)
	require.NoError(t, err)

	w := doGet(router, "/search?q=ephemeral", nil, true)
	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["total"])
	assert.Empty(t, body["results"])
}

func TestSearch_Pager(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), true)

	for i := 0; i < 15; i++ {
		publishTestEntry(t, s, 1, fmt.Sprintf("Common Topic %d", i))
	}

	w := doGet(router, "/search?q=common&page=2", nil, true)
	body := decodeBody(t, w)
	assert.Equal(t, float64(15), body["total"])
	assert.Equal(t, "http://example.com/search?page=2&q=common", body["current"])
	assert.Equal(t, "http://example.com/search?page=1&q=common", body["previous"])
	assert.Equal(t, "", body["next"])

	w = doGet(router, "/search?q=common", nil, true)
	body = decodeBody(t, w)
	assert.Equal(t, "http://example.com/search?page=1&q=common", body["current"])
	assert.Equal(t, "http://example.com/search?page=2&q=common", body["next"])
	assert.Equal(t, "", body["previous"])
}

func TestSearch_PagerLegacyEmptyFirstPage(t *testing.T) {
	cfg := testConfig()
	cfg.EmptyFirstPageURL = true
	router, s := setupBlogTest(t, cfg, true)

	for i := 0; i < 15; i++ {
		publishTestEntry(t, s, 1, fmt.Sprintf("Common Topic %d", i))
	}

	w := doGet(router, "/search?q=common&page=2", nil, true)
	body := decodeBody(t, w)
	assert.Equal(t, "http://example.com/search?page=2&q=common", body["current"])
	assert.Equal(t, "", body["previous"])
}

func TestImageDetail(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	entry := publishTestEntry(t, s, 1, "Illustrated Entry")
	image, err := s.CreateImage(1, entry.ID, "A chart", "/media/chart.png")
	require.NoError(t, err)

	w := doGet(router, fmt.Sprintf("/images/%d", image.ID), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "A chart", body["caption"])
	assert.Equal(t, "/media/chart.png", body["photo_url"])
	assert.Equal(t, entry.Slug, body["entry_slug"])
}

func TestImageDetail_DraftVisibility(t *testing.T) {
	router, s := setupBlogTest(t, testConfig(), false)

	draft, err := s.CreateEntry(1, store.EntryInput{Title: "Draft With Image", Body: "body"})
	require.NoError(t, err)
	image, err := s.CreateImage(1, draft.ID, "hidden", "/media/hidden.png")
	require.NoError(t, err)

	path := fmt.Sprintf("/images/%d", image.ID)

	w := doGet(router, path, nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	stranger := loginAs(t, router, 2)
	w = doGet(router, path, stranger, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	owner := loginAs(t, router, 1)
	w = doGet(router, path, owner, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImageDetail_RequiresAjax(t *testing.T) {
	router, _ := setupBlogTest(t, testConfig(), false)

	w := doGet(router, "/images/1", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
