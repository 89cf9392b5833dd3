// Package trigger drives one export at a time: it asks a producer for note
// data, runs the export pipeline, shares the result and notifies the user.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/export"
	"github.com/hpungsan/memnotes/internal/locale"
	"github.com/hpungsan/memnotes/internal/note"
)

// Mode selects whether a Button exports one note or a list.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeMultiple Mode = "multiple"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle, nil
	case ModeMultiple:
		return ModeMultiple, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown export mode %q", s))
}

// State is the observable state of a Button.
type State int32

const (
	StateIdle State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// Status is the result of a single Press.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusIgnored   Status = "ignored"
)

// Payload carries the data a Producer supplies.
// Single mode reads Note; multiple mode reads Notes (falling back to Note).
// A non-empty Title overrides the button's list title for this press.
type Payload struct {
	Note  *note.PrintableNote
	Notes []note.PrintableNote
	Title string
}

// Producer supplies note data for one press.
type Producer func(ctx context.Context) (Payload, error)

// Outcome describes what one press did.
// Path is set whenever a file was written, even if sharing failed.
type Outcome struct {
	Status   Status
	Path     string
	MimeType string
	Bytes    int64
	Shared   bool
	Err      *errors.NoteError
}

// Exporter is the part of the export pipeline a Button drives.
type Exporter interface {
	ExportNote(ctx context.Context, n note.PrintableNote, categoryLabel *string) (*export.Output, error)
	ExportList(ctx context.Context, notes []note.PrintableNote, title string) (*export.Output, error)
	Share(ctx context.Context, path, filename string) (*export.ShareOutput, error)
	FileExtension() string
}

// Button is an invocation surface. At most one press runs at a time;
// presses made while one is running are ignored.
type Button struct {
	exporter Exporter
	mode     Mode
	title    string
	filename string
	catalog  *locale.Catalog
	notifier Notifier
	logger   *slog.Logger
	onState  func(State)

	busy  atomic.Bool
	state atomic.Int32
}

// Option configures a Button.
type Option func(*Button)

// WithTitle sets the list title used in multiple mode.
func WithTitle(title string) Option {
	return func(b *Button) { b.title = title }
}

// WithFilename sets the display name handed to the share facility.
// The extension is replaced to match the exporter's output.
func WithFilename(name string) Option {
	return func(b *Button) { b.filename = name }
}

// WithCatalog sets the catalog used for notification strings.
func WithCatalog(c *locale.Catalog) Option {
	return func(b *Button) {
		if c != nil {
			b.catalog = c
		}
	}
}

// WithNotifier sets where success and failure notifications go.
func WithNotifier(n Notifier) Option {
	return func(b *Button) {
		if n != nil {
			b.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Button) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStateHook registers fn to be called on every state change.
func WithStateHook(fn func(State)) Option {
	return func(b *Button) { b.onState = fn }
}

// New creates a Button around exporter.
func New(exporter Exporter, mode Mode, opts ...Option) *Button {
	b := &Button{
		exporter: exporter,
		mode:     mode,
		catalog:  locale.English,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.notifier == nil {
		b.notifier = LogNotifier{Logger: b.logger}
	}
	return b
}

// Mode returns the button's mode.
func (b *Button) Mode() Mode {
	return b.mode
}

// State returns the current state.
func (b *Button) State() State {
	return State(b.state.Load())
}

// Busy reports whether a press is running.
func (b *Button) Busy() bool {
	return b.busy.Load()
}

// Press runs one export. It never panics and always returns to idle.
func (b *Button) Press(ctx context.Context, produce Producer) Outcome {
	if !b.busy.CompareAndSwap(false, true) {
		b.logger.Debug("press ignored, export in progress", "mode", b.mode)
		return Outcome{Status: StatusIgnored}
	}

	b.setState(StateInProgress)
	out := b.run(ctx, produce)
	b.setState(StateCompleted)
	b.notify(ctx, out)

	// run, notify and setState recover their own panics. Busy is released
	// before Idle is published so an Idle observer can press again.
	b.busy.Store(false)
	b.setState(StateIdle)

	return out
}

func (b *Button) run(ctx context.Context, produce Producer) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = b.fail(out.Path, errors.NewInternal(fmt.Errorf("panic: %v", r)))
		}
	}()

	payload, err := b.produce(ctx, produce)
	if err != nil {
		return b.fail("", err)
	}

	var written *export.Output
	switch b.mode {
	case ModeMultiple:
		notes := payload.Notes
		if notes == nil && payload.Note != nil {
			notes = []note.PrintableNote{*payload.Note}
		}
		if notes == nil {
			return b.fail("", errors.NewProducerFailure(nil))
		}
		title := b.title
		if strings.TrimSpace(payload.Title) != "" {
			title = payload.Title
		}
		written, err = b.exporter.ExportList(ctx, notes, title)
	default:
		if payload.Note == nil {
			return b.fail("", errors.NewProducerFailure(nil))
		}
		written, err = b.exporter.ExportNote(ctx, *payload.Note, nil)
	}
	if err != nil {
		return b.fail("", err)
	}

	out = Outcome{
		Path:     written.Path,
		MimeType: written.MimeType,
		Bytes:    written.Bytes,
	}

	shared, err := b.exporter.Share(ctx, written.Path, b.shareFilename())
	if err != nil {
		return b.failWith(out, err)
	}
	if !shared.Shared {
		return b.failWith(out, errors.NewShareUnavailable(written.Path))
	}

	out.Status = StatusSucceeded
	out.Shared = true
	b.logger.Info("export shared", "mode", b.mode, "path", out.Path, "bytes", out.Bytes)
	return out
}

// produce calls the producer, turning errors and panics into PRODUCER_FAILURE.
func (b *Button) produce(ctx context.Context, produce Producer) (p Payload, err error) {
	if produce == nil {
		return Payload{}, errors.NewProducerFailure(nil)
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewProducerFailure(fmt.Errorf("panic: %v", r))
		}
	}()

	p, err = produce(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrProducerFailure) {
			return p, err
		}
		return p, errors.NewProducerFailure(err)
	}
	return p, nil
}

func (b *Button) fail(path string, err error) Outcome {
	return b.failWith(Outcome{Path: path}, err)
}

func (b *Button) failWith(out Outcome, err error) Outcome {
	nErr := errors.As(err)
	out.Status = StatusFailed
	out.Err = nErr
	b.logger.Error("export failed", "mode", b.mode, "code", nErr.Code, "path", out.Path, "error", err)
	return out
}

func (b *Button) shareFilename() string {
	ext := b.exporter.FileExtension()
	name := strings.TrimSpace(b.filename)
	if name == "" {
		if b.mode == ModeMultiple {
			return "notes" + ext
		}
		return "note" + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

func (b *Button) setState(s State) {
	b.state.Store(int32(s))
	if b.onState == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("state hook panicked", "state", s.String(), "panic", r)
		}
	}()
	b.onState(s)
}

func (b *Button) notify(ctx context.Context, out Outcome) {
	n := Notification{Outcome: out}
	if out.Status == StatusSucceeded {
		n.Title = b.catalog.SuccessTitle
		n.Message = b.catalog.SuccessMessage
	} else {
		n.Title = b.catalog.FailureTitle
		n.Message = b.catalog.FailureMessage
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("notifier panicked", "panic", r)
		}
	}()
	b.notifier.Notify(ctx, n)
}
