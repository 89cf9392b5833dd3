// Package export renders notes, persists the document to a new file and
// hands that file to a share facility.
package export

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/note"
	"github.com/hpungsan/memnotes/internal/render"
	"github.com/hpungsan/memnotes/internal/safefile"
	"github.com/hpungsan/memnotes/internal/share"
)

// Output describes a file produced by an export.
type Output struct {
	Path      string `json:"path"`
	MimeType  string `json:"mime_type"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
}

// ShareOutput reports what happened to a share request.
// Shared is false when no share facility is available; that is not an error.
type ShareOutput struct {
	Path   string `json:"path"`
	Shared bool   `json:"shared"`
}

// Pipeline runs render → persist → share. It keeps no state between calls
// and does not delete files it created: ownership passes to the caller.
type Pipeline struct {
	renderer  *render.Renderer
	converter Converter
	sharer    share.Sharer
	dir       string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDir sets the directory new files are created in (default: <tmp>/memnotes).
func WithDir(dir string) Option {
	return func(p *Pipeline) {
		if dir != "" {
			p.dir = dir
		}
	}
}

// WithConverter sets the document converter (default: HTML passthrough).
func WithConverter(c Converter) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.converter = c
		}
	}
}

// WithSharer sets the share facility (default: none available).
func WithSharer(s share.Sharer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.sharer = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the clock used for file timestamps and ULIDs.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Pipeline around renderer.
func New(renderer *render.Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:  renderer,
		converter: HTMLConverter{},
		sharer:    share.Unavailable{},
		dir:       filepath.Join(os.TempDir(), "memnotes"),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir returns the directory exports are written to.
func (p *Pipeline) Dir() string {
	return p.dir
}

// MimeType returns the MIME type of files this pipeline produces.
func (p *Pipeline) MimeType() string {
	return p.converter.MimeType()
}

// FileExtension returns the extension of files this pipeline produces.
func (p *Pipeline) FileExtension() string {
	return p.converter.FileExtension()
}

// ExportNote renders one note and writes it to a new file.
func (p *Pipeline) ExportNote(ctx context.Context, n note.PrintableNote, categoryLabel *string) (*Output, error) {
	doc, err := p.render("note", func() (render.Document, error) {
		return p.renderer.RenderSingle(n, categoryLabel)
	})
	if err != nil {
		return nil, err
	}
	return p.persist(ctx, "note", doc)
}

// ExportList renders notes as one listing document and writes it to a new file.
func (p *Pipeline) ExportList(ctx context.Context, notes []note.PrintableNote, title string) (*Output, error) {
	doc, err := p.render("list", func() (render.Document, error) {
		return p.renderer.RenderList(notes, title)
	})
	if err != nil {
		return nil, err
	}
	return p.persist(ctx, "notes", doc)
}

// Share hands the file at path to the share facility under filename.
// When no facility is available it does nothing and reports Shared=false.
func (p *Pipeline) Share(ctx context.Context, path, filename string) (*ShareOutput, error) {
	if !p.sharer.Available(ctx) {
		p.logger.Info("share facility unavailable", "path", path)
		return &ShareOutput{Path: path, Shared: false}, nil
	}

	mime := p.converter.MimeType()
	if strings.HasSuffix(strings.ToLower(path), ".html") {
		mime = HTMLConverter{}.MimeType()
	}

	req := share.Request{
		Path:        path,
		Filename:    filename,
		MimeType:    mime,
		DialogTitle: p.renderer.Catalog().ShareDialogTitle,
		UTI:         share.UTIForMime(mime),
	}
	if err := p.sharer.Share(ctx, req); err != nil {
		p.logger.Error("share failed", "op", "share", "path", path, "error", err)
		return nil, errors.NewShareFailure(path, err)
	}

	return &ShareOutput{Path: path, Shared: true}, nil
}

// render runs fn and converts both errors and panics into RENDER_FAILURE.
func (p *Pipeline) render(kind string, fn func() (render.Document, error)) (doc render.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewRenderFailure(fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			p.logger.Error("render failed", "op", "render", "kind", kind, "error", err)
		}
	}()

	doc, err = fn()
	if err != nil && !errors.Is(err, errors.ErrRenderFailure) {
		err = errors.NewRenderFailure(err)
	}
	return doc, err
}

// persist writes doc to exactly one new file in the export directory.
// A partially written file is removed on failure.
func (p *Pipeline) persist(ctx context.Context, prefix string, doc render.Document) (*Output, error) {
	now := p.now()
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	path := filepath.Join(p.dir, prefix+"-"+id.String()+p.converter.FileExtension())

	fail := func(err error) (*Output, error) {
		p.logger.Error("persist failed", "op", "persist", "path", path, "error", err)
		return nil, errors.NewPersistFailure(path, err)
	}

	if err := safefile.EnsureDir(p.dir); err != nil {
		return fail(err)
	}

	file, err := safefile.CreateExclusive(path, 0600)
	if err != nil {
		return fail(err)
	}

	counter := &countingWriter{w: file}
	convErr := p.converter.Convert(ctx, doc, counter)
	if convErr == nil {
		convErr = file.Sync()
	}
	closeErr := file.Close()

	if convErr != nil || closeErr != nil {
		os.Remove(path)
		if convErr != nil {
			return fail(convErr)
		}
		return fail(closeErr)
	}

	p.logger.Debug("document written", "path", path, "bytes", counter.n)
	return &Output{
		Path:      path,
		MimeType:  p.converter.MimeType(),
		Bytes:     counter.n,
		CreatedAt: now.Unix(),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
