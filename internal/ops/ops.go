package ops

import (
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxExportNotes   = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// NoteItem is the JSON view of a stored note with its category name resolved.
type NoteItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content,omitempty"`
	Type       string   `json:"type"`
	CategoryID *string  `json:"category_id,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Images     []string `json:"images,omitempty"`
	AudioPath  *string  `json:"audio_path,omitempty"`
	IsLocked   bool     `json:"is_locked"`
	Reminder   *int64   `json:"reminder,omitempty"`
	CreatedAt  int64    `json:"created_at"`
	UpdatedAt  int64    `json:"updated_at"`
}

func toItem(n *note.Note, categoryName *string) NoteItem {
	return NoteItem{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Type:       string(n.Type),
		CategoryID: n.CategoryID,
		Category:   categoryName,
		Tags:       n.Tags,
		Images:     n.Images,
		AudioPath:  n.AudioPath,
		IsLocked:   n.IsLocked,
		Reminder:   n.Reminder,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

// categoryNames resolves category IDs to display names, caching lookups.
// A dangling reference resolves to nil, which renders as uncategorized.
type categoryNames struct {
	database *sql.DB
	cache    map[string]*string
}

func newCategoryNames(database *sql.DB) *categoryNames {
	return &categoryNames{database: database, cache: make(map[string]*string)}
}

func (c *categoryNames) lookup(id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if name, ok := c.cache[*id]; ok {
		return name, nil
	}

	cat, err := db.GetCategory(c.database, *id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.cache[*id] = nil
			return nil, nil
		}
		return nil, err
	}

	name := cat.Name
	c.cache[*id] = &name
	return &name, nil
}

// resolveCategory finds a category by ULID first, then by normalized name.
func resolveCategory(database *sql.DB, ref string) (*note.Category, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewInvalidRequest("category must not be empty")
	}

	cat, err := db.GetCategory(database, ref)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	cat, err = db.GetCategoryByName(database, note.Normalize(ref))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewNotFound("category", ref)
		}
		return nil, err
	}
	return cat, nil
}

// clampPage applies limit defaults and bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}

// cleanOptionalString trims s and returns nil when empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
