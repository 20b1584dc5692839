package store

import (
	"fmt"
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

// slugify normalizes a title into a URL-safe token: lowercase, accents
// folded to ASCII, runs of anything non-alphanumeric collapsed into a
// single hyphen, hyphens trimmed from the edges.
func slugify(title string) string {
	accentMap := map[rune]rune{
		'á': 'a', 'à': 'a', 'ã': 'a', 'â': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a',
		'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e',
		'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i',
		'ó': 'o', 'ò': 'o', 'õ': 'o', 'ô': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o',
		'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u',
		'ç': 'c', 'ć': 'c', 'č': 'c',
		'ñ': 'n', 'ń': 'n',
		'ý': 'y', 'ÿ': 'y',
		'ß': 's',
	}

	slug := strings.ToLower(title)
	slug = strings.Map(func(r rune) rune {
		if replacement, exists := accentMap[r]; exists {
			return replacement
		}
		return r
	}, slug)

	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return ' '
	}, slug)

	slug = strings.Join(strings.Fields(slug), "-")
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return slug
}

// uniqueSlug derives the slug for a new entry. The normalized title is
// used as-is when free; otherwise -1, -2, ... are appended until an
// unused token is found. Called exactly once per entry, at first save;
// the slug is never recomputed afterwards so URLs stay stable across
// title edits. The unique index on entries.slug backs this up if two
// writers race past the check.
func uniqueSlug(tx *gorm.DB, title string) (string, error) {
	base := slugify(title)
	candidate := base

	for num := 1; ; num++ {
		var count int64
		if err := tx.Model(&models.Entry{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, num)
	}
}
