package ops

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/memnotes/internal/config"
	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/export"
	"github.com/hpungsan/memnotes/internal/locale"
	"github.com/hpungsan/memnotes/internal/render"
	"github.com/hpungsan/memnotes/internal/share"
	"github.com/hpungsan/memnotes/internal/trigger"
)

// Exporters is the export stack shared by every surface. One pair of
// buttons per process keeps at most one single and one list export in
// flight, whichever surface pressed them.
type Exporters struct {
	Renderer *render.Renderer
	Pipeline *export.Pipeline
	Single   *trigger.Button
	Multiple *trigger.Button
}

// NewExporters builds the renderer, pipeline and buttons from cfg.
// Exports go to cfg.ExportsDir, or baseDir/exports when unset.
func NewExporters(cfg *config.Config, baseDir string, logger *slog.Logger) (*Exporters, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid time_zone %q: %v", cfg.TimeZone, err))
	}

	catalog := locale.Match(cfg.Locale)
	if cfg.Locale != "" && !locale.Supported(cfg.Locale) {
		logger.Warn("unsupported locale, using fallback", "locale", cfg.Locale, "using", catalog.Lang())
	}

	renderer := render.New(
		render.WithCatalog(catalog),
		render.WithLocation(loc),
		render.WithMarkdown(cfg.MarkdownContent),
	)

	pipeline := export.New(renderer,
		export.WithDir(exportsDir(cfg, baseDir)),
		export.WithConverter(export.NewConverter(cfg.ConverterCommand)),
		export.WithSharer(NewSharer(cfg)),
		export.WithLogger(logger),
	)

	return &Exporters{
		Renderer: renderer,
		Pipeline: pipeline,
		Single: trigger.New(pipeline, trigger.ModeSingle,
			trigger.WithCatalog(catalog),
			trigger.WithLogger(logger),
		),
		Multiple: trigger.New(pipeline, trigger.ModeMultiple,
			trigger.WithCatalog(catalog),
			trigger.WithLogger(logger),
		),
	}, nil
}

// Button returns the button for a mode name ("single" or "multiple").
func (e *Exporters) Button(mode string) (*trigger.Button, error) {
	m, err := trigger.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if m == trigger.ModeMultiple {
		return e.Multiple, nil
	}
	return e.Single, nil
}

// ExportStatusOutput reports what a button is doing.
type ExportStatusOutput struct {
	Mode  string `json:"mode"`
	State string `json:"state"`
	Busy  bool   `json:"busy"`
}

// ExportStatus reports the state of the button for mode.
func ExportStatus(ex *Exporters, mode string) (*ExportStatusOutput, error) {
	b, err := ex.Button(mode)
	if err != nil {
		return nil, err
	}
	return &ExportStatusOutput{
		Mode:  string(b.Mode()),
		State: b.State().String(),
		Busy:  b.Busy(),
	}, nil
}

// NewSharer picks the share facility configured in cfg.
func NewSharer(cfg *config.Config) share.Sharer {
	switch {
	case cfg.DisableShare:
		return share.Unavailable{}
	case cfg.ShareDir != "":
		return share.DirSharer{Dir: expandHome(cfg.ShareDir)}
	default:
		return share.OpenSharer{Command: cfg.ShareCommand}
	}
}

func exportsDir(cfg *config.Config, baseDir string) string {
	if cfg.ExportsDir != "" {
		return expandHome(cfg.ExportsDir)
	}
	return db.ExportsDir(baseDir)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
