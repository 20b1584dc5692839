package store

import (
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

// CreateImage attaches an image to one of the author's entries. The
// photo URL must already point at successfully stored media; callers
// abort before reaching here when the upload failed, because an Image
// without its asset is useless.
func (s *EntryStore) CreateImage(authorID int, entryID uint, caption, photoURL string) (*models.Image, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, &ValidationError{Field: "caption", Message: "is required"}
	}
	if photoURL == "" {
		return nil, &ValidationError{Field: "photo", Message: "is required"}
	}

	var entry models.Entry
	err := s.db.Where("id = ? AND author_id = ?", entryID, authorID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	image := models.Image{
		Caption: strings.TrimSpace(caption),
		Photo:   photoURL,
		EntryID: entryID,
	}
	if err := s.db.Create(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// GetImage loads an image together with its parent entry. An image has
// no publish state of its own; visibility follows the entry.
func (s *EntryStore) GetImage(id uint) (*models.Image, *models.Entry, error) {
	var image models.Image
	err := s.db.First(&image, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var entry models.Entry
	if err := s.db.First(&entry, image.EntryID).Error; err != nil {
		return nil, nil, err
	}
	return &image, &entry, nil
}

// ListImages returns an entry's images, oldest first.
func (s *EntryStore) ListImages(entryID uint) ([]models.Image, error) {
	var images []models.Image
	err := s.db.Where("entry_id = ?", entryID).Order("created_at").Find(&images).Error
	return images, err
}
