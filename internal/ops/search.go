package ops

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
)

// Search limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	MaxQueryLength     = db.MaxSearchQueryChars
	MaxSnippetChars    = 300
)

// SearchInput contains parameters for the SearchNotes operation.
type SearchInput struct {
	Query         string   // required
	Tags          []string // optional; a note matches when it has any of them
	Category      string   // optional category ULID or name
	Uncategorized bool
	Type          string
	Limit         int // default: 20, max: 100
	Offset        int // default: 0
}

// SearchResultItem wraps a NoteItem with a match snippet.
type SearchResultItem struct {
	NoteItem
	// Snippet is HTML-safe: note text is escaped and only <b>...</b>
	// highlight tags are present.
	Snippet string `json:"snippet"`
}

// SearchOutput contains the result of the SearchNotes operation.
type SearchOutput struct {
	Items      []SearchResultItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"` // "relevance"
}

// SearchNotes performs full-text search across note titles, content and tags.
// Results are ranked by relevance (BM25) with title matches weighted highest.
// Content is omitted from result items; the snippet shows the match.
func SearchNotes(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query, err := validateQuery(input.Query)
	if err != nil {
		return nil, err
	}

	filter, err := buildSearchFilter(database, input.Category, input.Uncategorized, input.Type, input.Tags)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	offset := max(input.Offset, 0)

	results, total, err := db.SearchNotes(ctx, database, query, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	names := newCategoryNames(database)
	items := make([]SearchResultItem, 0, len(results))
	for i := range results {
		name, err := names.lookup(results[i].Note.CategoryID)
		if err != nil {
			return nil, err
		}
		item := toItem(&results[i].Note, name)
		item.Content = ""

		snippet := escapeSnippetHTML(results[i].Snippet)
		snippet = truncateSnippet(snippet, MaxSnippetChars)

		items = append(items, SearchResultItem{NoteItem: item, Snippet: snippet})
	}

	return &SearchOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "relevance",
	}, nil
}

// validateQuery trims the query and enforces the length bound.
func validateQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return "", errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}
	return query, nil
}

// buildSearchFilter is buildFilter plus the any-of tag set used by search.
func buildSearchFilter(database *sql.DB, category string, uncategorized bool, typ string, tags []string) (db.NoteFilter, error) {
	filter, err := buildFilter(database, ListInput{
		Category:      category,
		Uncategorized: uncategorized,
		Type:          typ,
	})
	if err != nil {
		return db.NoteFilter{}, err
	}
	filter.AnyTags = note.NormalizeTags(tags)
	return filter, nil
}

// truncateSnippet truncates a snippet to approximately maxChars while:
// 1. Preserving valid UTF-8 (never splits multi-byte runes)
// 2. Preserving markup integrity (closes any open <b> tags)
// 3. Preferring word boundaries when possible
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return "..."
	}
	if len(s) <= maxChars {
		return s
	}

	truncateAt := maxChars
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	if truncateAt == 0 {
		return "..."
	}

	truncated := s[:truncateAt]

	// Drop a partial tag or entity at the cut.
	if lastLT := strings.LastIndex(truncated, "<"); lastLT != -1 && !strings.Contains(truncated[lastLT:], ">") {
		truncated = truncated[:lastLT]
	}
	if lastAmp := strings.LastIndex(truncated, "&"); lastAmp != -1 && !strings.Contains(truncated[lastAmp:], ";") {
		truncated = truncated[:lastAmp]
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > truncateAt/2 {
		truncated = truncated[:lastSpace]
	}

	for range strings.Count(truncated, "<b>") - strings.Count(truncated, "</b>") {
		truncated += "</b>"
	}

	return truncated + "..."
}

// escapeSnippetHTML escapes note text in a snippet while turning the
// store's highlight markers into <b> tags.
func escapeSnippetHTML(s string) string {
	const (
		openPlaceholder  = "\x00MEMNOTES_B_OPEN\x00"
		closePlaceholder = "\x00MEMNOTES_B_CLOSE\x00"
		openMarker       = "[[[B]]]"
		closeMarker      = "[[[/B]]]"
	)

	s = strings.ReplaceAll(s, openMarker, openPlaceholder)
	s = strings.ReplaceAll(s, closeMarker, closePlaceholder)
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, openPlaceholder, "<b>")
	s = strings.ReplaceAll(s, closePlaceholder, "</b>")
	return s
}
