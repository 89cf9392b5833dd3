// Package render turns PrintableNotes into self-contained HTML documents.
// Rendering is pure: no I/O, and the only time-dependent part (the footer
// stamp) comes from an injectable clock.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/locale"
	"github.com/hpungsan/memnotes/internal/note"
)

// TruncateChars is the list-view content budget, in characters (runes).
const TruncateChars = 200

// Ellipsis is appended to list-view content cut at TruncateChars.
const Ellipsis = "..."

//go:embed templates/*.html
var templateFS embed.FS

// Document is a complete, self-contained HTML document.
type Document string

// Renderer builds single-note and note-list documents.
type Renderer struct {
	catalog  *locale.Catalog
	location *time.Location
	now      func() time.Time
	markdown goldmark.Markdown // nil unless markdown content is enabled

	templates *template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCatalog sets the string catalog (default: English).
func WithCatalog(c *locale.Catalog) Option {
	return func(r *Renderer) {
		if c != nil {
			r.catalog = c
		}
	}
}

// WithLocation sets the time zone dates are shown in (default: time.Local).
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithClock sets the clock used for the footer stamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMarkdown renders single-note content as Markdown. Raw HTML in the
// note is not passed through and newlines become hard line breaks.
func WithMarkdown(enabled bool) Option {
	return func(r *Renderer) {
		if !enabled {
			r.markdown = nil
			return
		}
		r.markdown = goldmark.New(
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	}
}

// New creates a Renderer. Templates are parsed once here.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		catalog:  locale.English,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.templates = template.Must(template.New("render").ParseFS(templateFS,
		"templates/base.html", "templates/single.html", "templates/list.html"))

	return r
}

// Catalog returns the renderer's string catalog.
func (r *Renderer) Catalog() *locale.Catalog {
	return r.catalog
}

type typeBadge struct {
	Icon  string
	Label string
}

type singleView struct {
	Lang          string
	Title         string
	Type          typeBadge
	Category      string
	CreatedOn     string
	Created       string
	Content       template.HTML
	Attachments   string
	ReminderLabel string
	Reminder      string
	Tags          []string
	Footer        string
}

type listItem struct {
	Title    string
	Type     typeBadge
	Content  template.HTML
	Category string
	Date     string
}

type listView struct {
	Lang   string
	Title  string
	Count  string
	Items  []listItem
	Footer string
}

// RenderSingle renders the detail document for one note. categoryLabel,
// when non-empty, takes precedence over the note's own category.
// The content is never truncated.
func (r *Renderer) RenderSingle(n note.PrintableNote, categoryLabel *string) (Document, error) {
	view := singleView{
		Lang:          r.catalog.Lang(),
		Title:         r.title(n.Title),
		Type:          r.badge(n.Type),
		CreatedOn:     r.catalog.CreatedOn,
		Created:       r.catalog.LongDate(n.CreatedAt.In(r.location)),
		Content:       r.singleContent(n.Content),
		Attachments:   r.attachments(n),
		ReminderLabel: r.catalog.ReminderLabel,
		Tags:          n.Tags,
		Footer:        r.footer(),
	}

	switch {
	case categoryLabel != nil && *categoryLabel != "":
		view.Category = *categoryLabel
	case n.Category != nil:
		view.Category = *n.Category
	}
	if n.Reminder != nil {
		view.Reminder = r.catalog.LongDate(n.Reminder.In(r.location))
	}

	return r.execute("single", view)
}

// RenderList renders one document listing notes in input order.
// An empty title falls back to the catalog's default list title.
func (r *Renderer) RenderList(notes []note.PrintableNote, title string) (Document, error) {
	if strings.TrimSpace(title) == "" {
		title = r.catalog.DefaultListTitle
	}

	view := listView{
		Lang:   r.catalog.Lang(),
		Title:  title,
		Count:  r.catalog.CountLine(len(notes)),
		Items:  make([]listItem, 0, len(notes)),
		Footer: r.footer(),
	}

	for _, n := range notes {
		category := r.catalog.Uncategorized
		if n.Category != nil && *n.Category != "" {
			category = *n.Category
		}

		content, truncated := Truncate(n.Content, TruncateChars)
		if truncated {
			content += Ellipsis
		}

		view.Items = append(view.Items, listItem{
			Title:    r.title(n.Title),
			Type:     r.badge(n.Type),
			Content:  lineBreaks(content),
			Category: category,
			Date:     r.catalog.ShortDate(n.CreatedAt.In(r.location)),
		})
	}

	return r.execute("list", view)
}

// Truncate cuts s to at most max characters and reports whether it did.
func Truncate(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	return string([]rune(s)[:max]), true
}

func (r *Renderer) execute(name string, data any) (Document, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.NewRenderFailure(fmt.Errorf("template %s: %w", name, err))
	}
	return Document(buf.String()), nil
}

func (r *Renderer) title(t string) string {
	if strings.TrimSpace(t) == "" {
		return r.catalog.UntitledNote
	}
	return t
}

func (r *Renderer) badge(t note.Type) typeBadge {
	return typeBadge{
		Icon:  note.Lookup(t).Icon,
		Label: r.catalog.TypeLabel(t),
	}
}

func (r *Renderer) footer() string {
	return r.catalog.GeneratedBy + " - " + r.catalog.ShortDate(r.now().In(r.location))
}

func (r *Renderer) attachments(n note.PrintableNote) string {
	var parts []string
	if len(n.Images) > 0 {
		parts = append(parts, r.catalog.ImageCount(len(n.Images)))
	}
	if n.HasAudio() {
		parts = append(parts, r.catalog.AudioLabel)
	}
	return strings.Join(parts, " · ")
}

func (r *Renderer) singleContent(content string) template.HTML {
	if r.markdown == nil {
		return lineBreaks(content)
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return lineBreaks(content)
	}
	return template.HTML(buf.String())
}

// lineBreaks escapes text and turns each newline into a <br>.
func lineBreaks(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>\n"))
}
