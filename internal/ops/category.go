package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
)

// AddCategoryInput contains parameters for the AddCategory operation.
type AddCategoryInput struct {
	Name  string  // required
	Color *string // optional display color
}

// CategoryItem is the JSON view of a category.
type CategoryItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     *string `json:"color,omitempty"`
	NoteCount int     `json:"note_count"`
	CreatedAt int64   `json:"created_at"`
}

// ListCategoriesOutput contains the result of the ListCategories operation.
type ListCategoriesOutput struct {
	Items []CategoryItem `json:"items"`
}

// AddCategory creates a category. Names are unique ignoring case and
// surrounding whitespace.
func AddCategory(ctx context.Context, database *sql.DB, input AddCategoryInput) (*CategoryItem, error) {
	nameNorm := note.Normalize(input.Name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	c := &note.Category{
		ID:        id,
		Name:      strings.TrimSpace(input.Name),
		NameNorm:  nameNorm,
		Color:     cleanOptionalString(input.Color),
		CreatedAt: time.Now().Unix(),
	}

	if err := db.InsertCategory(database, c); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(c.Name)
		}
		return nil, err
	}

	item := toCategoryItem(c)
	return &item, nil
}

// ListCategories returns all categories ordered by name, each with the
// number of notes filed under it.
func ListCategories(ctx context.Context, database *sql.DB) (*ListCategoriesOutput, error) {
	cats, err := db.ListCategories(database)
	if err != nil {
		return nil, err
	}
	counts, err := db.CountNotesByCategory(database)
	if err != nil {
		return nil, err
	}

	out := &ListCategoriesOutput{Items: make([]CategoryItem, 0, len(cats))}
	for i := range cats {
		item := toCategoryItem(&cats[i])
		item.NoteCount = counts[cats[i].ID]
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func toCategoryItem(c *note.Category) CategoryItem {
	return CategoryItem{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}
