package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
)

// MaxTypeLength bounds the free-form note type string.
const MaxTypeLength = 32

// AddNoteInput contains parameters for the AddNote operation.
type AddNoteInput struct {
	Title     string
	Content   string
	Type      string // default: "text"; unknown kinds are stored as-is
	Category  string // optional category ULID or name
	Tags      []string
	Images    []string
	AudioPath *string
	IsLocked  bool
	Reminder  *int64 // Unix seconds
}

// AddNoteOutput contains the result of the AddNote operation.
type AddNoteOutput struct {
	ID         string  `json:"id"`
	CategoryID *string `json:"category_id,omitempty"`
	CreatedAt  int64   `json:"created_at"`
	// Warnings lists accepted input that will not render as intended.
	Warnings []string `json:"warnings,omitempty"`
}

// AddNote creates a note.
func AddNote(ctx context.Context, database *sql.DB, input AddNoteInput) (*AddNoteOutput, error) {
	audio := cleanOptionalString(input.AudioPath)
	images := cleanList(input.Images)

	if strings.TrimSpace(input.Title) == "" && strings.TrimSpace(input.Content) == "" &&
		len(images) == 0 && audio == nil {
		return nil, errors.NewInvalidRequest("note is empty: set a title or content")
	}

	typ := note.Type(strings.ToLower(strings.TrimSpace(input.Type)))
	if typ == "" {
		typ = note.TypeText
	}
	if len(typ) > MaxTypeLength || strings.ContainsAny(string(typ), " \t\r\n") {
		return nil, errors.NewInvalidRequest("type must be a single word of at most 32 characters")
	}

	if input.Reminder != nil && *input.Reminder <= 0 {
		return nil, errors.NewInvalidRequest("reminder must be a positive Unix timestamp")
	}

	var categoryID *string
	if strings.TrimSpace(input.Category) != "" {
		cat, err := resolveCategory(database, input.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &cat.ID
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	n := &note.Note{
		ID:         id,
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Type:       typ,
		CategoryID: categoryID,
		Tags:       note.NormalizeTags(input.Tags),
		Images:     images,
		AudioPath:  audio,
		IsLocked:   input.IsLocked,
		Reminder:   input.Reminder,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := db.InsertNote(database, n); err != nil {
		return nil, err
	}

	out := &AddNoteOutput{ID: id, CategoryID: categoryID, CreatedAt: now}
	if !note.Known(typ) {
		out.Warnings = append(out.Warnings, unknownTypeWarning(typ))
	}
	return out, nil
}

// unknownTypeWarning explains that typ renders with the generic icon and label.
func unknownTypeWarning(typ note.Type) string {
	known := make([]string, len(note.KnownTypes))
	for i, t := range note.KnownTypes {
		known[i] = string(t)
	}
	return fmt.Sprintf("type %q is not one of %s; it renders as a generic note", typ, strings.Join(known, ", "))
}

// cleanList trims entries and drops empty ones.
func cleanList(list []string) []string {
	var out []string
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
