package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/hpungsan/memnotes/internal/render"
)

// Converter turns a rendered document into the bytes of the exported file.
type Converter interface {
	// Convert writes the converted document to w.
	Convert(ctx context.Context, doc render.Document, w io.Writer) error

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the produced file.
	MimeType() string
}

// HTMLConverter writes the document unchanged. The output opens in any
// browser and prints to PDF from there.
type HTMLConverter struct{}

// Convert writes doc to w.
func (HTMLConverter) Convert(_ context.Context, doc render.Document, w io.Writer) error {
	_, err := io.WriteString(w, string(doc))
	return err
}

// FileExtension returns ".html".
func (HTMLConverter) FileExtension() string { return ".html" }

// MimeType returns "text/html".
func (HTMLConverter) MimeType() string { return "text/html" }

// CommandConverter pipes the document through an external HTML to PDF
// program that reads HTML on stdin and writes PDF on stdout, such as
// `wkhtmltopdf --quiet - -`. Documents are self-contained, so the program
// needs no network access.
type CommandConverter struct {
	Command []string
}

// Convert runs the command with doc on stdin and copies stdout to w.
func (c CommandConverter) Convert(ctx context.Context, doc render.Document, w io.Writer) error {
	if len(c.Command) == 0 {
		return fmt.Errorf("converter command is empty")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Stdin = strings.NewReader(string(doc))
	cmd.Stdout = w
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", c.Command[0], err, msg)
		}
		return fmt.Errorf("%s: %w", c.Command[0], err)
	}
	return nil
}

// FileExtension returns ".pdf".
func (CommandConverter) FileExtension() string { return ".pdf" }

// MimeType returns "application/pdf".
func (CommandConverter) MimeType() string { return "application/pdf" }

// NewConverter returns a CommandConverter for a non-empty command, and the
// HTML passthrough otherwise.
func NewConverter(command []string) Converter {
	if len(command) == 0 {
		return HTMLConverter{}
	}
	return CommandConverter{Command: command}
}
