package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
	"github.com/hpungsan/memnotes/internal/render"
)

// PrintablesInput selects notes for a list document. When IDs is set the
// notes are taken in that order and everything else is ignored. When Query
// is set the notes are the search results in relevance order.
type PrintablesInput struct {
	IDs           []string
	Query         string
	Category      string
	Uncategorized bool
	Tag           string
	Tags          []string // any of
	Type          string
	Limit         int // default and max: MaxExportNotes
}

// Printable loads one note and projects it for rendering.
func Printable(ctx context.Context, database *sql.DB, id string) (*note.PrintableNote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	n, err := db.GetNote(database, id)
	if err != nil {
		return nil, err
	}

	label, err := newCategoryNames(database).lookup(n.CategoryID)
	if err != nil {
		return nil, err
	}

	p := note.Project(n, label)
	return &p, nil
}

// Printables loads the notes selected by input and projects them.
func Printables(ctx context.Context, database *sql.DB, input PrintablesInput) ([]note.PrintableNote, error) {
	names := newCategoryNames(database)
	out := []note.PrintableNote{}

	if len(input.IDs) > 0 {
		if len(input.IDs) > MaxExportNotes {
			return nil, errors.NewInvalidRequest("too many ids")
		}
		for _, id := range input.IDs {
			if err := ctx.Err(); err != nil {
				return nil, errors.NewInternal(err)
			}
			n, err := db.GetNote(database, strings.TrimSpace(id))
			if err != nil {
				return nil, err
			}
			label, err := names.lookup(n.CategoryID)
			if err != nil {
				return nil, err
			}
			out = append(out, note.Project(n, label))
		}
		return out, nil
	}

	filter, err := buildSearchFilter(database, input.Category, input.Uncategorized, input.Type, input.Tags)
	if err != nil {
		return nil, err
	}
	if tags := note.NormalizeTags([]string{input.Tag}); len(tags) > 0 {
		filter.Tag = tags[0]
	}

	limit := input.Limit
	if limit <= 0 || limit > MaxExportNotes {
		limit = MaxExportNotes
	}

	var notes []note.Note
	if strings.TrimSpace(input.Query) != "" {
		query, err := validateQuery(input.Query)
		if err != nil {
			return nil, err
		}
		results, _, err := db.SearchNotes(ctx, database, query, filter, limit, 0)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			notes = append(notes, r.Note)
		}
	} else {
		notes, _, err = db.ListNotes(database, filter, limit, 0)
		if err != nil {
			return nil, err
		}
	}
	for i := range notes {
		label, err := names.lookup(notes[i].CategoryID)
		if err != nil {
			return nil, err
		}
		out = append(out, note.Project(&notes[i], label))
	}
	return out, nil
}

// RenderNote renders the document for one stored note.
func RenderNote(ctx context.Context, database *sql.DB, renderer *render.Renderer, id string) (render.Document, error) {
	p, err := Printable(ctx, database, id)
	if err != nil {
		return "", err
	}
	return renderer.RenderSingle(*p, nil)
}

// RenderNotes renders one list document for the notes selected by input.
func RenderNotes(ctx context.Context, database *sql.DB, renderer *render.Renderer, input PrintablesInput, title string) (render.Document, error) {
	notes, err := Printables(ctx, database, input)
	if err != nil {
		return "", err
	}
	return renderer.RenderList(notes, title)
}
