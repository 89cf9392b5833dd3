package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
)

// DeleteNoteInput contains parameters for the DeleteNote operation.
type DeleteNoteInput struct {
	ID string // required
}

// DeleteCategoryInput contains parameters for the DeleteCategory operation.
type DeleteCategoryInput struct {
	Category string // required: ULID or name
}

// DeleteOutput contains the result of a delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteNote permanently removes a note.
func DeleteNote(ctx context.Context, database *sql.DB, input DeleteNoteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if err := db.DeleteNote(database, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, ID: id}, nil
}

// DeleteCategory removes a category. A category that still holds notes is
// refused with CATEGORY_NOT_EMPTY.
func DeleteCategory(ctx context.Context, database *sql.DB, input DeleteCategoryInput) (*DeleteOutput, error) {
	cat, err := resolveCategory(database, input.Category)
	if err != nil {
		return nil, err
	}

	if err := db.DeleteCategory(database, cat.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, ID: cat.ID}, nil
}
