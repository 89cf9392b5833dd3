package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.NoteError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// MaxSearchQueryChars bounds the length of a search query in runes.
const MaxSearchQueryChars = 500

// NoteFilter narrows ListNotes, CountNotes and SearchNotes. Zero fields
// match everything.
type NoteFilter struct {
	CategoryID    string
	Uncategorized bool
	Tag           string
	AnyTags       []string // note carries at least one of these
	Type          note.Type
}

// SearchResult is a note matched by SearchNotes with its match context.
// Snippet marks hits with [[[B]]] and [[[/B]]].
type SearchResult struct {
	Note    note.Note
	Snippet string
}

// InsertCategory stores a new category.
func InsertCategory(db *sql.DB, c *note.Category) error {
	_, err := db.Exec(`
		INSERT INTO categories (id, name, name_norm, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.NameNorm, toNullString(c.Color), c.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetCategory retrieves a category by its ULID.
func GetCategory(db *sql.DB, id string) (*note.Category, error) {
	row := db.QueryRow(`
		SELECT id, name, name_norm, color, created_at
		FROM categories WHERE id = ?
	`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("category", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// GetCategoryByName retrieves a category by normalized name.
func GetCategoryByName(db *sql.DB, nameNorm string) (*note.Category, error) {
	row := db.QueryRow(`
		SELECT id, name, name_norm, color, created_at
		FROM categories WHERE name_norm = ?
	`, nameNorm)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("category", nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(db *sql.DB) ([]note.Category, error) {
	rows, err := db.Query(`
		SELECT id, name, name_norm, color, created_at
		FROM categories ORDER BY name_norm ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []note.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// InsertNote stores a new note.
func InsertNote(db *sql.DB, n *note.Note) error {
	tagsJSON, err := toNullJSON(n.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}
	imagesJSON, err := toNullJSON(n.Images)
	if err != nil {
		return errors.NewInternal(err)
	}

	var reminder sql.NullInt64
	if n.Reminder != nil {
		reminder = sql.NullInt64{Int64: *n.Reminder, Valid: true}
	}

	_, err = db.Exec(`
		INSERT INTO notes (
			id, title, content, type, category_id, tags_json, images_json,
			audio_path, is_locked, reminder_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID, n.Title, n.Content, string(n.Type), toNullString(n.CategoryID),
		tagsJSON, imagesJSON, toNullString(n.AudioPath), n.IsLocked, reminder,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetNote retrieves a note by its ULID.
func GetNote(db *sql.DB, id string) (*note.Note, error) {
	row := db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("note", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// ListNotes returns notes matching filter, newest first, and the total
// number of matches ignoring limit and offset.
func ListNotes(db *sql.DB, filter NoteFilter, limit, offset int) ([]note.Note, int, error) {
	where, args := filter.where()

	total, err := countWhere(db, where, args)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + noteColumns + ` FROM notes` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// CountNotes returns the number of notes matching filter.
func CountNotes(db *sql.DB, filter NoteFilter) (int, error) {
	where, args := filter.where()
	return countWhere(db, where, args)
}

func countWhere(db *sql.DB, where string, args []any) (int, error) {
	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes`+where, args...).Scan(&total); err != nil {
		return 0, errors.NewInternal(err)
	}
	return total, nil
}

func (f NoteFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	switch {
	case f.Uncategorized:
		clauses = append(clauses, "notes.category_id IS NULL")
	case f.CategoryID != "":
		clauses = append(clauses, "notes.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		clauses = append(clauses, "notes.type = ?")
		args = append(args, string(f.Type))
	}
	if f.Tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(notes.tags_json) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}
	if len(f.AnyTags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.AnyTags)), ",")
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(notes.tags_json) WHERE json_each.value IN ("+placeholders+"))")
		for _, t := range f.AnyTags {
			args = append(args, t)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const noteColumns = `notes.id, notes.title, notes.content, notes.type, notes.category_id,
	notes.tags_json, notes.images_json, notes.audio_path, notes.is_locked,
	notes.reminder_at, notes.created_at, notes.updated_at`

// DeleteNote permanently removes a note.
func DeleteNote(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("note", id)
	}
	return nil
}

// DeleteCategory removes a category that no note references. The check
// and the delete are one statement, so a note added concurrently cannot
// be left pointing at a missing category.
func DeleteCategory(db *sql.DB, id string) error {
	res, err := db.Exec(`
		DELETE FROM categories
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM notes WHERE category_id = ?)
	`, id, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n > 0 {
		return nil
	}

	c, err := GetCategory(db, id)
	if err != nil {
		return err
	}
	count, err := CountNotes(db, NoteFilter{CategoryID: id})
	if err != nil {
		return err
	}
	return errors.NewCategoryNotEmpty(c.Name, count)
}

// CountNotesByCategory returns the number of notes per category ID.
// Categories without notes are absent from the map.
func CountNotesByCategory(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT category_id, COUNT(*) FROM notes
		WHERE category_id IS NOT NULL
		GROUP BY category_id
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

// SearchNotes runs a full-text search over title, content and tags.
// Every word of query must match, each as a prefix. Results are ranked by
// BM25 with title hits weighted highest, newest first on ties. The second
// return value is the total number of matches ignoring limit and offset.
func SearchNotes(ctx context.Context, db *sql.DB, query string, filter NoteFilter, limit, offset int) ([]SearchResult, int, error) {
	match := MatchExpression(query)
	if match == "" {
		return nil, 0, errors.NewInvalidRequest("query has no searchable words")
	}

	where, args := filter.where()
	if where == "" {
		where = " WHERE notes_fts MATCH ?"
	} else {
		where = " WHERE notes_fts MATCH ? AND " + strings.TrimPrefix(where, " WHERE ")
	}
	args = append([]any{match}, args...)

	const from = ` FROM notes_fts JOIN notes ON notes.id = notes_fts.note_id`

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	q := `SELECT ` + noteColumns + `,
		snippet(notes_fts, -1, '[[[B]]]', '[[[/B]]]', '...', 24)` + from + where + `
		ORDER BY bm25(notes_fts, 0.0, 5.0, 1.0, 2.0), notes.created_at DESC, notes.id DESC
		LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var snippet sql.NullString
		n, err := scanNote(snippetScanner{rows, &snippet})
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, SearchResult{Note: *n, Snippet: snippet.String})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// MatchExpression turns free text into an FTS5 query: each word becomes a
// quoted prefix term, so FTS operators in user input are matched literally.
func MatchExpression(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, fmt.Sprintf(`"%s"*`, w))
	}
	return strings.Join(terms, " ")
}

// snippetScanner appends the snippet column to a note scan.
type snippetScanner struct {
	rows    *sql.Rows
	snippet *sql.NullString
}

func (s snippetScanner) Scan(dest ...any) error {
	return s.rows.Scan(append(dest, s.snippet)...)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*note.Note, error) {
	var (
		n          note.Note
		typ        string
		categoryID sql.NullString
		tagsJSON   sql.NullString
		imagesJSON sql.NullString
		audioPath  sql.NullString
		reminder   sql.NullInt64
	)

	err := row.Scan(
		&n.ID, &n.Title, &n.Content, &typ, &categoryID, &tagsJSON, &imagesJSON,
		&audioPath, &n.IsLocked, &reminder, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = note.Type(typ)
	n.CategoryID = fromNullString(categoryID)
	n.AudioPath = fromNullString(audioPath)
	if reminder.Valid {
		n.Reminder = &reminder.Int64
	}
	if n.Tags, err = fromNullJSON(tagsJSON); err != nil {
		return nil, err
	}
	if n.Images, err = fromNullJSON(imagesJSON); err != nil {
		return nil, err
	}

	return &n, nil
}

func scanCategory(row scanner) (*note.Category, error) {
	var (
		c     note.Category
		color sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.NameNorm, &color, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Color = fromNullString(color)
	return &c, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toNullJSON(list []string) (sql.NullString, error) {
	if len(list) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func fromNullJSON(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(ns.String), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
