package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	ex     *ops.Exporters
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, ex *ops.Exporters, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{db: db, ex: ex, logger: logger}
}

// Request types for each tool

// CategoryAddRequest represents the arguments for category_add.
type CategoryAddRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// CategoryDeleteRequest represents the arguments for category_delete.
type CategoryDeleteRequest struct {
	Category string `json:"category"`
}

// NoteAddRequest represents the arguments for note_add.
type NoteAddRequest struct {
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	Type      string   `json:"type,omitempty"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Images    []string `json:"images,omitempty"`
	AudioPath *string  `json:"audio_path,omitempty"`
	IsLocked  bool     `json:"is_locked,omitempty"`
	Reminder  *int64   `json:"reminder,omitempty"`
}

// NoteListRequest represents the arguments for note_list.
type NoteListRequest struct {
	Category      string `json:"category,omitempty"`
	Uncategorized bool   `json:"uncategorized,omitempty"`
	Tag           string `json:"tag,omitempty"`
	Type          string `json:"type,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// NoteSearchRequest represents the arguments for note_search.
type NoteSearchRequest struct {
	Query         string   `json:"query"`
	Tags          []string `json:"tags,omitempty"`
	Category      string   `json:"category,omitempty"`
	Uncategorized bool     `json:"uncategorized,omitempty"`
	Type          string   `json:"type,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Offset        int      `json:"offset,omitempty"`
}

// NoteIDRequest represents the arguments for note_render, note_export and
// note_delete.
type NoteIDRequest struct {
	ID string `json:"id"`
}

// NotesExportRequest represents the arguments for notes_export.
type NotesExportRequest struct {
	IDs           []string `json:"ids,omitempty"`
	Query         string   `json:"query,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Category      string   `json:"category,omitempty"`
	Uncategorized bool     `json:"uncategorized,omitempty"`
	Tag           string   `json:"tag,omitempty"`
	Type          string   `json:"type,omitempty"`
	Title         string   `json:"title,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// ExportStatusRequest represents the arguments for export_status.
type ExportStatusRequest struct {
	Mode string `json:"mode"`
}

// RenderResult is the note_render payload.
type RenderResult struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	HTML     string `json:"html"`
}

// Handler implementations

// HandleCategoryAdd handles the category_add tool call.
func (h *Handlers) HandleCategoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryAddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddCategory(ctx, h.db, ops.AddCategoryInput{
		Name:  input.Name,
		Color: input.Color,
	})
	if err != nil {
		return h.failure("category_add", err), nil
	}

	return successResult(result)
}

// HandleCategoryList handles the category_list tool call.
func (h *Handlers) HandleCategoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListCategories(ctx, h.db)
	if err != nil {
		return h.failure("category_list", err), nil
	}

	return successResult(result)
}

// HandleCategoryDelete handles the category_delete tool call.
func (h *Handlers) HandleCategoryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryDeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteCategory(ctx, h.db, ops.DeleteCategoryInput{Category: input.Category})
	if err != nil {
		return h.failure("category_delete", err), nil
	}

	return successResult(result)
}

// HandleNoteAdd handles the note_add tool call.
func (h *Handlers) HandleNoteAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteAddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddNote(ctx, h.db, ops.AddNoteInput{
		Title:     input.Title,
		Content:   input.Content,
		Type:      input.Type,
		Category:  input.Category,
		Tags:      input.Tags,
		Images:    input.Images,
		AudioPath: input.AudioPath,
		IsLocked:  input.IsLocked,
		Reminder:  input.Reminder,
	})
	if err != nil {
		return h.failure("note_add", err), nil
	}

	return successResult(result)
}

// HandleNoteList handles the note_list tool call.
func (h *Handlers) HandleNoteList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListNotes(ctx, h.db, ops.ListInput{
		Category:      input.Category,
		Uncategorized: input.Uncategorized,
		Tag:           input.Tag,
		Type:          input.Type,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return h.failure("note_list", err), nil
	}

	return successResult(result)
}

// HandleNoteSearch handles the note_search tool call.
func (h *Handlers) HandleNoteSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteSearchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SearchNotes(ctx, h.db, ops.SearchInput{
		Query:         input.Query,
		Tags:          input.Tags,
		Category:      input.Category,
		Uncategorized: input.Uncategorized,
		Type:          input.Type,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return h.failure("note_search", err), nil
	}

	return successResult(result)
}

// HandleNoteDelete handles the note_delete tool call.
func (h *Handlers) HandleNoteDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteIDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteNote(ctx, h.db, ops.DeleteNoteInput{ID: input.ID})
	if err != nil {
		return h.failure("note_delete", err), nil
	}

	return successResult(result)
}

// HandleNoteRender handles the note_render tool call.
func (h *Handlers) HandleNoteRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteIDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	doc, err := ops.RenderNote(ctx, h.db, h.ex.Renderer, input.ID)
	if err != nil {
		return h.failure("note_render", err), nil
	}

	return successResult(RenderResult{ID: input.ID, MimeType: "text/html", HTML: string(doc)})
}

// HandleNoteExport handles the note_export tool call.
func (h *Handlers) HandleNoteExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteIDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.db, h.ex.Single, ops.ExportInput{ID: input.ID})
	if err != nil {
		return h.failure("note_export", err), nil
	}

	return successResult(result)
}

// HandleNotesExport handles the notes_export tool call.
func (h *Handlers) HandleNotesExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NotesExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ExportList(ctx, h.db, h.ex.Multiple, ops.ExportListInput{
		PrintablesInput: ops.PrintablesInput{
			IDs:           input.IDs,
			Query:         input.Query,
			Tags:          input.Tags,
			Category:      input.Category,
			Uncategorized: input.Uncategorized,
			Tag:           input.Tag,
			Type:          input.Type,
			Limit:         input.Limit,
		},
		Title: input.Title,
	})
	if err != nil {
		return h.failure("notes_export", err), nil
	}

	return successResult(result)
}

// HandleExportStatus handles the export_status tool call.
func (h *Handlers) HandleExportStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportStatusRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ExportStatus(h.ex, input.Mode)
	if err != nil {
		return h.failure("export_status", err), nil
	}

	return successResult(result)
}

// failure logs internal errors before converting err to a tool result.
func (h *Handlers) failure(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, errors.ErrInternal) {
		h.logger.Error("tool failed", "tool", tool, "error", err)
	}
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if nErr, ok := err.(*errors.NoteError); ok && nErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    nErr.Code,
			"message": nErr.Message,
			"status":  nErr.Status,
		}
		if nErr.Details != nil {
			errorObj["details"] = nErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
