package store

import (
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

// Tags are case-insensitive: "DevOps" and "devops" are the same label.
// Normalization to lowercase happens once, on write.
func normalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func getOrCreateTag(tx *gorm.DB, name string) (*models.Tag, error) {
	var tag models.Tag
	err := tx.Where("name = ?", name).First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		tag = models.Tag{Name: name}
		if err := tx.Create(&tag).Error; err != nil {
			if isUniqueViolation(err, "tags", "name") {
				// concurrent writer created it first
				if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
					return nil, err
				}
				return &tag, nil
			}
			return nil, err
		}
		return &tag, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// replaceEntryTags makes names the entry's exact tag set.
func replaceEntryTags(tx *gorm.DB, entryID uint, names []string) error {
	if err := tx.Where("entry_id = ?", entryID).Delete(&models.EntryTag{}).Error; err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, name := range names {
		name = normalizeTag(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := getOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Create(&models.EntryTag{EntryID: entryID, TagID: tag.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// EntryTagNames returns the entry's tags sorted by name.
func (s *EntryStore) EntryTagNames(entryID uint) ([]string, error) {
	var names []string
	err := s.db.Model(&models.Tag{}).
		Joins("JOIN entry_tags ON entry_tags.tag_id = tags.id").
		Where("entry_tags.entry_id = ?", entryID).
		Order("tags.name").
		Pluck("tags.name", &names).Error
	return names, err
}
