package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/memnotes/internal/config"
	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/ops"
	"github.com/hpungsan/memnotes/internal/safefile"
	"github.com/hpungsan/memnotes/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, ex *ops.Exporters, logger *slog.Logger) *cli.App {
	app := &cli.App{
		Name:    "memnotes",
		Usage:   "Notes with printable exports",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"MEMNOTES_LOG_LEVEL"},
				Usage:   "Log level: debug|info|warn|error",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.IsSet("log-level") {
				return nil
			}
			if err := setLogLevel(c.String("log-level")); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			return nil
		},
		Commands: []*cli.Command{
			categoryCmd(db),
			addCmd(db),
			listCmd(db),
			searchCmd(db),
			deleteCmd(db),
			renderCmd(db, ex),
			exportCmd(db, ex),
			exportListCmd(db, ex),
			exportStatusCmd(ex),
			serveCmd(db, ex, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// selectionFlags are shared by the commands that pick notes for a list document.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "ids", Usage: "Comma-separated note IDs, in document order (overrides filters)"},
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search words; matching notes in relevance order"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category ID or name"},
		&cli.BoolFlag{Name: "uncategorized", Usage: "Only notes without a category"},
		&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags; notes with any of them"},
		&cli.StringFlag{Name: "type", Usage: "Filter by note type"},
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum notes in the document (default and max: 500)"},
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Document title (default: My Notes)"},
	}
}

func selectionInput(c *cli.Context) ops.PrintablesInput {
	return ops.PrintablesInput{
		IDs:           parseTags(c.String("ids")),
		Query:         c.String("query"),
		Category:      c.String("category"),
		Uncategorized: c.Bool("uncategorized"),
		Tag:           c.String("tag"),
		Tags:          parseTags(c.String("tags")),
		Type:          c.String("type"),
		Limit:         c.Int("limit"),
	}
}

// categoryCmd creates the category command and its subcommands.
func categoryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "category",
		Usage: "Manage note categories",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a category",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "color", Usage: "Display color"},
				},
				Action: func(c *cli.Context) error {
					input := ops.AddCategoryInput{Name: strings.Join(c.Args().Slice(), " ")}
					if color := c.String("color"); color != "" {
						input.Color = &color
					}

					output, err := ops.AddCategory(c.Context, db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List categories",
				Action: func(c *cli.Context) error {
					output, err := ops.ListCategories(c.Context, db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a category that holds no notes",
				ArgsUsage: "<id|name>",
				Action: func(c *cli.Context) error {
					input := ops.DeleteCategoryInput{Category: strings.Join(c.Args().Slice(), " ")}

					output, err := ops.DeleteCategory(c.Context, db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// addCmd creates the add command.
func addCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a note (content from --content or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
			&cli.StringFlag{Name: "content", Usage: "Note content (default: read from stdin)"},
			&cli.StringFlag{Name: "type", Value: "text", Usage: "Note type: text|checklist|voice|drawing|timer|photo"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category ID or name"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringSliceFlag{Name: "image", Usage: "Image path (repeatable)"},
			&cli.StringFlag{Name: "audio", Usage: "Audio recording path"},
			&cli.BoolFlag{Name: "locked", Usage: "Mark the note as locked"},
			&cli.Int64Flag{Name: "reminder", Usage: "Reminder time (Unix seconds)"},
		},
		Action: func(c *cli.Context) error {
			content := c.String("content")
			if !c.IsSet("content") && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
			}

			input := ops.AddNoteInput{
				Title:    c.String("title"),
				Content:  content,
				Type:     c.String("type"),
				Category: c.String("category"),
				Tags:     parseTags(c.String("tags")),
				Images:   c.StringSlice("image"),
				IsLocked: c.Bool("locked"),
			}
			if audio := c.String("audio"); audio != "" {
				input.AudioPath = &audio
			}
			if c.IsSet("reminder") {
				reminder := c.Int64("reminder")
				input.Reminder = &reminder
			}

			output, err := ops.AddNote(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category ID or name"},
			&cli.BoolFlag{Name: "uncategorized", Usage: "Only notes without a category"},
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.StringFlag{Name: "type", Usage: "Filter by note type"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Category:      c.String("category"),
				Uncategorized: c.Bool("uncategorized"),
				Tag:           c.String("tag"),
				Type:          c.String("type"),
				Limit:         c.Int("limit"),
				Offset:        c.Int("offset"),
			}

			output, err := ops.ListNotes(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search over titles, content and tags, best match first",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags; notes with any of them"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category ID or name"},
			&cli.BoolFlag{Name: "uncategorized", Usage: "Only notes without a category"},
			&cli.StringFlag{Name: "type", Usage: "Filter by note type"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Query:         strings.Join(c.Args().Slice(), " "),
				Tags:          parseTags(c.String("tags")),
				Category:      c.String("category"),
				Uncategorized: c.Bool("uncategorized"),
				Type:          c.String("type"),
				Limit:         c.Int("limit"),
				Offset:        c.Int("offset"),
			}

			output, err := ops.SearchNotes(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a note",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteNote(c.Context, db, ops.DeleteNoteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// renderCmd creates the render command.
func renderCmd(db *sql.DB, ex *ops.Exporters) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Print the HTML document for one note, or for a list of notes when no ID is given",
		ArgsUsage: "[id]",
		Flags: append(selectionFlags(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the document to a file instead of stdout"},
		),
		Action: func(c *cli.Context) error {
			var (
				doc string
				err error
			)
			if c.NArg() > 0 {
				d, rerr := ops.RenderNote(c.Context, db, ex.Renderer, c.Args().First())
				doc, err = string(d), rerr
			} else {
				d, rerr := ops.RenderNotes(c.Context, db, ex.Renderer, selectionInput(c), c.String("title"))
				doc, err = string(d), rerr
			}
			if err != nil {
				return outputError(err)
			}

			if out := c.String("out"); out != "" {
				if err := ops.ValidateDocumentPath(out); err != nil {
					return outputError(err)
				}
				err := safefile.WriteAtomic(out, func(f *os.File) error {
					_, err := io.WriteString(f, doc)
					return err
				})
				if err != nil {
					return outputError(errors.NewPersistFailure(out, err))
				}
				return nil
			}

			_, err = io.WriteString(os.Stdout, doc)
			return err
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, ex *ops.Exporters) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export one note to a document and share it",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, ex.Single, ops.ExportInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportListCmd creates the export-list command.
func exportListCmd(db *sql.DB, ex *ops.Exporters) *cli.Command {
	return &cli.Command{
		Name:  "export-list",
		Usage: "Export several notes to one document and share it",
		Flags: selectionFlags(),
		Action: func(c *cli.Context) error {
			input := ops.ExportListInput{
				PrintablesInput: selectionInput(c),
				Title:           c.String("title"),
			}

			output, err := ops.ExportList(c.Context, db, ex.Multiple, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportStatusCmd creates the export-status command.
func exportStatusCmd(ex *ops.Exporters) *cli.Command {
	return &cli.Command{
		Name:  "export-status",
		Usage: "Show whether an export is running",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "single", Usage: "Export mode: single|multiple"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportStatus(ex, c.String("mode"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, ex *ops.Exporters, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve note documents for preview in a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}
			srv := web.NewServer(db, ex, logger, Version, c.String("bind"), port)
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI. Export failures that left a file
// behind name it.
func outputError(err error) error {
	if nErr, ok := err.(*errors.NoteError); ok {
		msg := fmt.Sprintf("[%s] %s", nErr.Code, nErr.Message)
		if path, ok := nErr.Details["path"].(string); ok && path != "" {
			msg += fmt.Sprintf(" (file: %s)", path)
		}
		return cli.Exit(msg, 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of values.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
