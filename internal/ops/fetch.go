package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
)

// FetchInput contains parameters for the FetchNote operation.
type FetchInput struct {
	ID string
}

// FetchNote retrieves a note by ID with its category name resolved.
func FetchNote(ctx context.Context, database *sql.DB, input FetchInput) (*NoteItem, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	n, err := db.GetNote(database, id)
	if err != nil {
		return nil, err
	}

	name, err := newCategoryNames(database).lookup(n.CategoryID)
	if err != nil {
		return nil, err
	}

	item := toItem(n, name)
	return &item, nil
}
