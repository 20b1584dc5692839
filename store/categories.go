package store

import (
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

// ListCategories returns one page of categories in name order plus the
// total count.
func (s *EntryStore) ListCategories(page, pageSize int) ([]models.Category, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category
	err := s.db.Order("name").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&categories).Error
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (s *EntryStore) GetCategory(id int) (*models.Category, error) {
	var category models.Category
	err := s.db.First(&category, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *EntryStore) CreateCategory(name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}

	category := models.Category{Name: name}
	if err := s.db.Create(&category).Error; err != nil {
		if isUniqueViolation(err, "categories", "name") {
			return nil, &ValidationError{Field: "name", Message: "already in use"}
		}
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category. Entries referencing it keep
// existing and lose only the reference; deletion never cascades into
// the entries table.
func (s *EntryStore) DeleteCategory(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Entry{}).
			Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
