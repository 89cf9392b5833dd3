package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/memnotes/internal/errors"
)

func TestDeleteNote(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	id := mustAddNote(t, database, AddNoteInput{Title: "gone soon", Content: "ephemeral"})

	out, err := DeleteNote(ctx, database, DeleteNoteInput{ID: " " + id + " "})
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if !out.Deleted || out.ID != id {
		t.Errorf("output = %+v", out)
	}

	if _, err := FetchNote(ctx, database, FetchInput{ID: id}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("FetchNote after delete: %v, want NOT_FOUND", err)
	}
	search, err := SearchNotes(ctx, database, SearchInput{Query: "ephemeral"})
	if err != nil {
		t.Fatalf("SearchNotes failed: %v", err)
	}
	if len(search.Items) != 0 {
		t.Errorf("deleted note still found by search")
	}

	if _, err := DeleteNote(ctx, database, DeleteNoteInput{ID: id}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete: %v, want NOT_FOUND", err)
	}
	if _, err := DeleteNote(ctx, database, DeleteNoteInput{ID: "  "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank id: %v, want INVALID_REQUEST", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	empty, err := AddCategory(ctx, database, AddCategoryInput{Name: "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AddCategory(ctx, database, AddCategoryInput{Name: "Work"}); err != nil {
		t.Fatal(err)
	}
	noteID := mustAddNote(t, database, AddNoteInput{Title: "filed", Category: "Work"})

	out, err := DeleteCategory(ctx, database, DeleteCategoryInput{Category: "empty"})
	if err != nil {
		t.Fatalf("DeleteCategory by name failed: %v", err)
	}
	if !out.Deleted || out.ID != empty.ID {
		t.Errorf("output = %+v, want ID %s", out, empty.ID)
	}

	_, err = DeleteCategory(ctx, database, DeleteCategoryInput{Category: "Work"})
	if !errors.Is(err, errors.ErrCategoryNotEmpty) {
		t.Fatalf("non-empty delete: %v, want CATEGORY_NOT_EMPTY", err)
	}

	// Emptying the category makes it deletable.
	if _, err := DeleteNote(ctx, database, DeleteNoteInput{ID: noteID}); err != nil {
		t.Fatal(err)
	}
	if _, err := DeleteCategory(ctx, database, DeleteCategoryInput{Category: "Work"}); err != nil {
		t.Errorf("delete after emptying: %v", err)
	}

	list, err := ListCategories(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 0 {
		t.Errorf("categories left: %+v", list.Items)
	}

	if _, err := DeleteCategory(ctx, database, DeleteCategoryInput{Category: "Work"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing category: %v, want NOT_FOUND", err)
	}
	if _, err := DeleteCategory(ctx, database, DeleteCategoryInput{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank category: %v, want INVALID_REQUEST", err)
	}
}
