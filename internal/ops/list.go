package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/note"
)

// ListInput contains parameters for the ListNotes operation.
type ListInput struct {
	Category      string // optional category ULID or name
	Uncategorized bool   // only notes without a category
	Tag           string
	Type          string
	Limit         int // default: 20, max: 100
	Offset        int // default: 0
}

// ListOutput contains the result of the ListNotes operation.
type ListOutput struct {
	Items      []NoteItem `json:"items"`
	Pagination Pagination `json:"pagination"`
	Sort       string     `json:"sort"`
}

// ListNotes retrieves notes with optional filters and pagination.
// Content is omitted from list items.
func ListNotes(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	filter, err := buildFilter(database, input)
	if err != nil {
		return nil, err
	}

	limit, offset := clampPage(input.Limit, input.Offset)

	notes, total, err := db.ListNotes(database, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	names := newCategoryNames(database)
	items := make([]NoteItem, 0, len(notes))
	for i := range notes {
		name, err := names.lookup(notes[i].CategoryID)
		if err != nil {
			return nil, err
		}
		item := toItem(&notes[i], name)
		item.Content = ""
		items = append(items, item)
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

// buildFilter turns list parameters into a store filter, resolving the
// category reference.
func buildFilter(database *sql.DB, input ListInput) (db.NoteFilter, error) {
	filter := db.NoteFilter{
		Uncategorized: input.Uncategorized,
		Type:          note.Type(strings.ToLower(strings.TrimSpace(input.Type))),
	}
	if tags := note.NormalizeTags([]string{input.Tag}); len(tags) > 0 {
		filter.Tag = tags[0]
	}
	if !input.Uncategorized && strings.TrimSpace(input.Category) != "" {
		cat, err := resolveCategory(database, input.Category)
		if err != nil {
			return db.NoteFilter{}, err
		}
		filter.CategoryID = cat.ID
	}
	return filter, nil
}
