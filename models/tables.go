package models

import "time"

type Entry struct {
	ID          uint       `gorm:"primary_key;autoIncrement" json:"id"`
	Title       string     `gorm:"size:500;uniqueIndex;not null" json:"title"`
	Slug        string     `gorm:"size:140;uniqueIndex;not null" json:"slug"` // derived from title, never recomputed
	Body        string     `gorm:"type:text;not null" json:"body"`
	AuthorID    int        `gorm:"not null;index" json:"author_id"` // identity of the acting user, never client-supplied
	CategoryID  *int       `gorm:"index" json:"category_id,omitempty"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Poster      string     `json:"poster,omitempty"` // object-storage URL, optional
	IsPublished bool       `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // set once on first publish, kept on unpublish
	Views       uint       `gorm:"not null;default:1" json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  time.Time  `gorm:"autoUpdateTime" json:"modified_at"`
}

type Category struct {
	ID   int    `gorm:"primary_key;autoIncrement" json:"id"`
	Name string `gorm:"size:150;uniqueIndex;not null" json:"name"`
}

type Image struct {
	ID         uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Caption    string    `gorm:"size:255;not null" json:"caption"`
	Photo      string    `gorm:"not null" json:"photo"` // object-storage URL
	EntryID    uint      `gorm:"not null;index" json:"entry_id"`
	Entry      *Entry    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modified_at"`
}

// Tag names are normalized to lowercase on write so that labels
// differing only by case resolve to the same tag.
type Tag struct {
	ID   uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

type EntryTag struct {
	ID      uint `gorm:"primary_key;autoIncrement"`
	EntryID uint `gorm:"not null;uniqueIndex:idx_entry_tag"`
	TagID   uint `gorm:"not null;uniqueIndex:idx_entry_tag;index"`
}
