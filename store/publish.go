package store

import (
	"time"

	"inkwell/models"

	"gorm.io/gorm"
)

// Publish moves an entry from draft to published. Single conditional
// UPDATE scoped to (author, id): a miss on either is the same uniform
// ErrNotFound with no state change. published_at is set on the first
// publication only; re-publishing after an unpublish keeps the
// original date.
func (s *EntryStore) Publish(authorID int, id uint) (*models.Entry, error) {
	now := time.Now()
	res := s.db.Model(&models.Entry{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]interface{}{
			"is_published": true,
			"published_at": gorm.Expr("COALESCE(published_at, ?)", now),
			"modified_at":  now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	entry, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.syncIndex(entry)
	return entry, nil
}

// Unpublish moves a published entry back to draft. published_at is
// left untouched; unpublishing does not revert history. The entry is
// removed from the search index best-effort.
func (s *EntryStore) Unpublish(authorID int, id uint) (*models.Entry, error) {
	res := s.db.Model(&models.Entry{}).
		Where("id = ? AND author_id = ? AND is_published = ?", id, authorID, true).
		Updates(map[string]interface{}{
			"is_published": false,
			"modified_at":  time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	s.removeFromIndex(id)
	return s.GetByID(id)
}
