package store

import (
	"log"
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

// Synchronizer keeps an external full-text index aligned with the
// published subset of entries. Both operations are idempotent.
type Synchronizer interface {
	IndexEntry(entry *models.Entry) error
	Remove(entryID uint) error
}

// EntryStore owns Entry, Category, Image and Tag records and their
// invariants. All writes go through it.
type EntryStore struct {
	db    *gorm.DB
	index Synchronizer
}

func NewEntryStore(db *gorm.DB, index Synchronizer) *EntryStore {
	return &EntryStore{db: db, index: index}
}

// EntryInput carries the author-editable fields of an entry. The slug,
// author, timestamps and publication state are never client-supplied.
type EntryInput struct {
	Title      string
	Body       string
	CategoryID *int
	Poster     string
	Tags       []string
}

func validateEntryInput(in EntryInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(in.Body) == "" {
		return &ValidationError{Field: "body", Message: "is required"}
	}
	return nil
}

// CreateEntry creates a draft entry owned by authorID. The slug is
// assigned here, exactly once. A duplicate title surfaces as a
// validation failure from the store-level unique constraint.
func (s *EntryStore) CreateEntry(authorID int, in EntryInput) (*models.Entry, error) {
	if authorID == 0 {
		return nil, &ValidationError{Field: "author", Message: "is required"}
	}
	if err := validateEntryInput(in); err != nil {
		return nil, err
	}

	var entry models.Entry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(tx, in.Title)
		if err != nil {
			return err
		}

		entry = models.Entry{
			Title:      strings.TrimSpace(in.Title),
			Slug:       slug,
			Body:       in.Body,
			AuthorID:   authorID,
			CategoryID: in.CategoryID,
			Poster:     in.Poster,
			Views:      1,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if isUniqueViolation(err, "entries", "title") {
				return &ValidationError{Field: "title", Message: "already in use"}
			}
			if isUniqueViolation(err, "entries", "slug") {
				// lost a slug race; once titles are unique this cannot
				// recur with the same input
				return &ValidationError{Field: "title", Message: "already in use"}
			}
			return err
		}

		return replaceEntryTags(tx, entry.ID, in.Tags)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry mutates an entry's editable fields. Owner-scoped: a miss
// on (author, id) is a uniform ErrNotFound. The slug is immutable even
// when the title changes. A published entry is re-synchronized with
// the search index after the write.
func (s *EntryStore) UpdateEntry(authorID int, id uint, in EntryInput) (*models.Entry, error) {
	if err := validateEntryInput(in); err != nil {
		return nil, err
	}

	var entry models.Entry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND author_id = ?", id, authorID).First(&entry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}

		entry.Title = strings.TrimSpace(in.Title)
		entry.Body = in.Body
		entry.CategoryID = in.CategoryID
		if in.Poster != "" {
			entry.Poster = in.Poster
		}

		if err := tx.Save(&entry).Error; err != nil {
			if isUniqueViolation(err, "entries", "title") {
				return &ValidationError{Field: "title", Message: "already in use"}
			}
			return err
		}

		return replaceEntryTags(tx, entry.ID, in.Tags)
	})
	if err != nil {
		return nil, err
	}

	if entry.IsPublished {
		s.syncIndex(&entry)
	}
	return &entry, nil
}

// GetPublishedBySlug is the reader's view: published entries only.
func (s *EntryStore) GetPublishedBySlug(slug string) (*models.Entry, error) {
	var entry models.Entry
	err := s.db.Preload("Category").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetOwnedBySlug is the owner's private preview: any state, but only
// the author's own entries.
func (s *EntryStore) GetOwnedBySlug(authorID int, slug string) (*models.Entry, error) {
	var entry models.Entry
	err := s.db.Preload("Category").
		Where("slug = ? AND author_id = ?", slug, authorID).
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetOwnedByID is the id-keyed variant of GetOwnedBySlug.
func (s *EntryStore) GetOwnedByID(authorID int, id uint) (*models.Entry, error) {
	var entry models.Entry
	err := s.db.Where("id = ? AND author_id = ?", id, authorID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetPoster records the stored poster URL for an entry. Owner-scoped,
// and deliberately a column write: a failed poster upload should never
// disturb the rest of the entry.
func (s *EntryStore) SetPoster(authorID int, id uint, url string) error {
	res := s.db.Model(&models.Entry{}).
		Where("id = ? AND author_id = ?", id, authorID).
		UpdateColumn("poster", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID loads an entry regardless of state or owner. Internal use.
func (s *EntryStore) GetByID(id uint) (*models.Entry, error) {
	var entry models.Entry
	err := s.db.Preload("Category").First(&entry, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// IncrementViews bumps the view counter with a single UPDATE
// expression, so concurrent readers never lose an increment. It does
// not touch modified_at.
func (s *EntryStore) IncrementViews(id uint) error {
	return s.db.Model(&models.Entry{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// PublishedFilter narrows a published listing. Zero value means the
// default recency listing.
type PublishedFilter struct {
	CategoryID *int
	Tag        string
}

// FindPublished returns one page of published entries ordered by
// modification time descending, plus the total match count. A page
// with zero matches is an empty slice, not an error.
func (s *EntryStore) FindPublished(filter PublishedFilter, page, pageSize int) ([]models.Entry, int64, error) {
	if page < 1 {
		page = 1
	}

	query := s.db.Model(&models.Entry{}).Where("entries.is_published = ?", true)
	if filter.CategoryID != nil {
		query = query.Where("entries.category_id = ?", *filter.CategoryID)
	}
	if filter.Tag != "" {
		query = query.
			Joins("JOIN entry_tags ON entry_tags.entry_id = entries.id").
			Joins("JOIN tags ON tags.id = entry_tags.tag_id").
			Where("tags.name = ?", normalizeTag(filter.Tag))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Entry
	err := query.Preload("Category").
		Order("entries.modified_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListEntriesByAuthor is the dashboard listing: the author's own
// entries, drafts included, newest modification first.
func (s *EntryStore) ListEntriesByAuthor(authorID int) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.Where("author_id = ?", authorID).
		Order("modified_at DESC").
		Find(&entries).Error
	return entries, err
}

// SimilarEntries returns other published entries sharing at least one
// tag with entry.
func (s *EntryStore) SimilarEntries(entry *models.Entry) ([]models.Entry, error) {
	tagIDs := s.db.Model(&models.EntryTag{}).Select("tag_id").Where("entry_id = ?", entry.ID)

	var entries []models.Entry
	err := s.db.Distinct("entries.*").
		Joins("JOIN entry_tags ON entry_tags.entry_id = entries.id").
		Where("entry_tags.tag_id IN (?)", tagIDs).
		Where("entries.is_published = ? AND entries.id <> ?", true, entry.ID).
		Order("entries.modified_at DESC").
		Find(&entries).Error
	return entries, err
}

// PublishedByIDs returns the published entries among ids, preserving
// the order of ids. Used to hydrate a ranked search result page; an id
// that has drifted out of the published set is silently skipped.
func (s *EntryStore) PublishedByIDs(ids []uint) ([]models.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var entries []models.Entry
	err := s.db.Preload("Category").
		Where("id IN ? AND is_published = ?", ids, true).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	ordered := make([]models.Entry, 0, len(entries))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// syncIndex pushes an entry to the search index, best-effort. An index
// failure never rolls back the store write; the entry stays published
// but unsearchable until the next edit or republish retries the sync.
func (s *EntryStore) syncIndex(entry *models.Entry) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexEntry(entry); err != nil {
		log.Printf("search index sync failed for %q: %v", entry.Slug, err)
	}
}

func (s *EntryStore) removeFromIndex(entryID uint) {
	if s.index == nil {
		return
	}
	if err := s.index.Remove(entryID); err != nil {
		log.Printf("search index removal failed for entry %d: %v", entryID, err)
	}
}
