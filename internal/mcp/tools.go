package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = mcp.Items(map[string]any{"type": "string"})

var categoryAddToolDef = mcp.NewTool("category_add",
	mcp.WithDescription("Create a category. Names are unique ignoring case and surrounding whitespace."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
	mcp.WithString("color", mcp.Description("Optional display color, e.g. #ff8800")),
)

var categoryListToolDef = mcp.NewTool("category_list",
	mcp.WithDescription("List all categories ordered by name."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var categoryDeleteToolDef = mcp.NewTool("category_delete",
	mcp.WithDescription("Delete a category. Refused with CATEGORY_NOT_EMPTY while any note is filed under it."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category ID or name")),
)

var noteAddToolDef = mcp.NewTool("note_add",
	mcp.WithDescription("Create a note. Set at least a title or content."),
	mcp.WithString("title", mcp.Description("Title; may be empty")),
	mcp.WithString("content", mcp.Description("Body text; newlines are kept")),
	mcp.WithString("type", mcp.Description("Note kind: text, checklist, voice, drawing, timer, photo (default text)")),
	mcp.WithString("category", mcp.Description("Category ID or name")),
	mcp.WithArray("tags", mcp.Description("Tags; a leading # is stripped"), stringItems),
	mcp.WithArray("images", mcp.Description("Image attachment references"), stringItems),
	mcp.WithString("audio_path", mcp.Description("Audio attachment reference")),
	mcp.WithBoolean("is_locked", mcp.Description("Mark the note as locked")),
	mcp.WithNumber("reminder", mcp.Description("Reminder time as Unix seconds")),
)

var noteListToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List notes, newest first. Content is omitted."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("category", mcp.Description("Filter by category ID or name")),
	mcp.WithBoolean("uncategorized", mcp.Description("Only notes without a category")),
	mcp.WithString("tag", mcp.Description("Filter by tag")),
	mcp.WithString("type", mcp.Description("Filter by note kind")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var noteSearchToolDef = mcp.NewTool("note_search",
	mcp.WithDescription("Full-text search over note titles, content and tags, best match first. Every word must match as a prefix. Snippets are HTML-escaped with <b> highlights."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search words (max 500 characters)")),
	mcp.WithArray("tags", mcp.Description("Only notes with any of these tags"), stringItems),
	mcp.WithString("category", mcp.Description("Filter by category ID or name")),
	mcp.WithBoolean("uncategorized", mcp.Description("Only notes without a category")),
	mcp.WithString("type", mcp.Description("Filter by note kind")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var noteDeleteToolDef = mcp.NewTool("note_delete",
	mcp.WithDescription("Permanently delete a note."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ID")),
)

var noteRenderToolDef = mcp.NewTool("note_render",
	mcp.WithDescription("Render one note as a self-contained printable HTML document."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ID")),
)

var noteExportToolDef = mcp.NewTool("note_export",
	mcp.WithDescription("Export one note to a printable file and hand it to the share facility."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note ID")),
)

var notesExportToolDef = mcp.NewTool("notes_export",
	mcp.WithDescription("Export several notes as one list document and hand it to the share facility. Without ids, filters select the notes; with a query they are the search results in relevance order."),
	mcp.WithArray("ids", mcp.Description("Note IDs in document order"), stringItems),
	mcp.WithString("query", mcp.Description("Search words; same matching as note_search")),
	mcp.WithArray("tags", mcp.Description("Only notes with any of these tags"), stringItems),
	mcp.WithString("category", mcp.Description("Filter by category ID or name")),
	mcp.WithBoolean("uncategorized", mcp.Description("Only notes without a category")),
	mcp.WithString("tag", mcp.Description("Filter by tag")),
	mcp.WithString("type", mcp.Description("Filter by note kind")),
	mcp.WithString("title", mcp.Description("Document title")),
	mcp.WithNumber("limit", mcp.Description("Maximum notes (default and max 500)")),
)

var exportStatusToolDef = mcp.NewTool("export_status",
	mcp.WithDescription("Report whether an export is running for a mode."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("mode", mcp.Required(), mcp.Description("single or multiple")),
)
