package web

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/ops"
)

// Handlers contains HTTP route handlers for the note preview.
type Handlers struct {
	db      *sql.DB
	ex      *ops.Exporters
	logger  *slog.Logger
	version string
}

// HandleList handles GET /notes: the list document for the selected notes.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doc, err := ops.RenderNotes(r.Context(), h.db, h.ex.Renderer, printablesInput(q), q.Get("title"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderDocument(w, string(doc))
}

// HandleDetail handles GET /notes/{id}: the single note document.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	doc, err := ops.RenderNote(r.Context(), h.db, h.ex.Renderer, r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderDocument(w, string(doc))
}

// HandleSearch handles GET /notes/search: ranked search results as JSON.
// Parameters: q, tags (comma separated or repeated), category,
// uncategorized, type, limit, offset.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := ops.SearchNotes(r.Context(), h.db, ops.SearchInput{
		Query:         q.Get("q"),
		Tags:          parseList(q, "tags"),
		Category:      q.Get("category"),
		Uncategorized: parseBool(q.Get("uncategorized")),
		Type:          q.Get("type"),
		Limit:         parseInt(q.Get("limit"), ops.DefaultSearchLimit),
		Offset:        parseInt(q.Get("offset"), 0),
	})
	if err != nil {
		h.renderJSONError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleDelete handles DELETE /notes/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeleteNote(r.Context(), h.db, ops.DeleteNoteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderJSONError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleCategories handles GET /categories: categories with note counts.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListCategories(r.Context(), h.db)
	if err != nil {
		h.renderJSONError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleDeleteCategory handles DELETE /categories/{ref}, where ref is an
// ID or a name.
func (h *Handlers) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeleteCategory(r.Context(), h.db, ops.DeleteCategoryInput{Category: r.PathValue("ref")})
	if err != nil {
		h.renderJSONError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleExportStatus handles GET /export/status?mode=single|multiple.
func (h *Handlers) HandleExportStatus(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ExportStatus(h.ex, r.URL.Query().Get("mode"))
	if err != nil {
		h.renderJSONError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleExport handles POST /notes/{id}/export: export and share one note.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Export(r.Context(), h.db, h.ex.Single, ops.ExportInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleExportList handles POST /notes/export: export and share a list
// document. Parameters come from the query string or a form body.
func (h *Handlers) HandleExportList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.ExportListInput{
		PrintablesInput: printablesInput(r.Form),
		Title:           r.Form.Get("title"),
	}

	result, err := ops.ExportList(r.Context(), h.db, h.ex.Multiple, input)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// printablesInput reads the list selection: ids and tags (comma separated
// or repeated), q, category, uncategorized, tag, type and limit.
func printablesInput(v url.Values) ops.PrintablesInput {
	return ops.PrintablesInput{
		IDs:           parseIDs(v),
		Query:         v.Get("q"),
		Category:      v.Get("category"),
		Uncategorized: parseBool(v.Get("uncategorized")),
		Tag:           v.Get("tag"),
		Tags:          parseList(v, "tags"),
		Type:          v.Get("type"),
		Limit:         parseInt(v.Get("limit"), 0),
	}
}

func parseIDs(v url.Values) []string {
	return parseList(v, "ids")
}

// parseList collects a parameter given comma separated, repeated or both.
func parseList(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// parseInt parses an integer parameter with a default value.
func parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}
