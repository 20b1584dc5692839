// Package search maintains a sqlite FTS5 full-text index whose
// document set is exactly the published entries. Synchronization is
// synchronous-on-write and best-effort: callers treat failures as
// non-fatal and retry on the next write to the same entry.
package search

import (
	"regexp"
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

// Index wraps the entry_search virtual table. Documents are keyed by
// entry id through the FTS5 rowid.
type Index struct {
	db *gorm.DB
}

// NewIndex ensures the virtual table exists. Needs the sqlite driver
// compiled with FTS5 (build tag sqlite_fts5).
func NewIndex(db *gorm.DB) (*Index, error) {
	err := db.Exec(`
CREATE VIRTUAL TABLE IF NOT EXISTS entry_search USING fts5(
    title,
    body,
    prefix,
    tokenize = 'unicode61',
    prefix = '2 3 4'
);
`).Error
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// IndexEntry adds or updates an entry's document in place. Indexing an
// already-indexed entry replaces it.
func (ix *Index) IndexEntry(entry *models.Entry) error {
	return ix.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM entry_search WHERE rowid = ?`, entry.ID).Error; err != nil {
			return err
		}
		return tx.Exec(
			`INSERT INTO entry_search (rowid, title, body, prefix) VALUES (?, ?, ?, ?)`,
			entry.ID, entry.Title, entry.Body, autocompletePrefix(entry.Body),
		).Error
	})
}

// Remove deletes an entry's document. Removing an absent entry is a
// no-op.
func (ix *Index) Remove(entryID uint) error {
	return ix.db.Exec(`DELETE FROM entry_search WHERE rowid = ?`, entryID).Error
}

// Search returns one page of matching entry ids ranked by bm25
// relevance, plus the total match count. An empty or unmatched query
// yields zero results, not an error.
func (ix *Index) Search(q string, limit, offset int) ([]uint, int64, error) {
	match := buildMatchQuery(q)
	if match == "" {
		return nil, 0, nil
	}

	var total int64
	row := ix.db.Raw(`SELECT count(*) FROM entry_search WHERE entry_search MATCH ?`, match).Row()
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := ix.db.Raw(
		`SELECT rowid FROM entry_search WHERE entry_search MATCH ? ORDER BY bm25(entry_search) LIMIT ? OFFSET ?`,
		match, limit, offset,
	).Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ids []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// buildMatchQuery quotes every token so user input cannot inject FTS5
// operators. The final token gets a trailing * so a query typed into
// the navbar matches as a prefix while the user is still typing.
func buildMatchQuery(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return ""
	}
	for i, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		if i == len(fields)-1 {
			fields[i] = `"` + f + `"*`
		} else {
			fields[i] = `"` + f + `"`
		}
	}
	return strings.Join(fields, " ")
}

var htmlTag = regexp.MustCompile(`<.*?>`)

// autocompletePrefix derives the short plain-text field indexed for
// prefix suggestions: markup stripped, whitespace collapsed, first 240
// bytes of the body.
func autocompletePrefix(body string) string {
	text := htmlTag.ReplaceAllString(body, "")
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 240 {
		text = text[:240]
	}
	return text
}
