package ops

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/memnotes/internal/errors"
)

// TestFullWorkflow exercises the note lifecycle:
// category → add → list → fetch → render → export → export list
func TestFullWorkflow(t *testing.T) {
	database := openTestDB(t)
	single, multiple, _ := testButtons(t)
	ctx := context.Background()

	// 1. Category
	cat, err := AddCategory(ctx, database, AddCategoryInput{Name: "Ideas"})
	require.NoError(t, err)
	require.NotEmpty(t, cat.ID)

	// 2. Notes
	first, err := AddNote(ctx, database, AddNoteInput{
		Title:    "Garden",
		Content:  "Plant tomatoes\nWater daily",
		Type:     "checklist",
		Category: "ideas",
		Tags:     []string{"spring"},
	})
	require.NoError(t, err)
	require.Equal(t, cat.ID, *first.CategoryID)

	_, err = AddNote(ctx, database, AddNoteInput{Content: strings.Repeat("z", 250), Type: "drawing"})
	require.NoError(t, err)

	// 3. List
	listOut, err := ListNotes(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Len(t, listOut.Items, 2)
	require.Equal(t, 2, listOut.Pagination.Total)

	// 4. Fetch
	fetched, err := FetchNote(ctx, database, FetchInput{ID: first.ID})
	require.NoError(t, err)
	require.Equal(t, "Ideas", *fetched.Category)
	require.Equal(t, []string{"spring"}, fetched.Tags)

	// 5. Render preview
	doc, err := RenderNote(ctx, database, testRenderer(), first.ID)
	require.NoError(t, err)
	require.Contains(t, string(doc), "Plant tomatoes<br>\nWater daily")
	require.Contains(t, string(doc), "#spring")

	// 6. Export one note
	exported, err := Export(ctx, database, single, ExportInput{ID: first.ID})
	require.NoError(t, err)
	require.True(t, exported.Shared)
	_, err = os.Stat(exported.Path)
	require.NoError(t, err)

	// 7. Export the whole list; long content is truncated
	listExport, err := ExportList(ctx, database, multiple, ExportListInput{})
	require.NoError(t, err)
	data, err := os.ReadFile(listExport.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "2 notes")
	require.Contains(t, string(data), strings.Repeat("z", 200)+"...")
	require.NotContains(t, string(data), strings.Repeat("z", 201))

	// 8. Missing note
	_, err = Export(ctx, database, single, ExportInput{ID: "missing"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
