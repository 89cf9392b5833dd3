package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/memnotes/internal/errors"
	"github.com/hpungsan/memnotes/internal/trigger"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID string // required
}

// ExportListInput contains parameters for the ExportList operation.
type ExportListInput struct {
	PrintablesInput
	Title string // default: the catalog's list title
}

// ExportOutput contains the result of a successful export.
type ExportOutput struct {
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Bytes    int64  `json:"bytes"`
	Shared   bool   `json:"shared"`
}

// Export presses a single-mode button with a producer that loads the note.
func Export(ctx context.Context, database *sql.DB, button *trigger.Button, input ExportInput) (*ExportOutput, error) {
	if button == nil || button.Mode() != trigger.ModeSingle {
		return nil, errors.NewInternal(fmt.Errorf("export needs a single-mode button"))
	}

	out := button.Press(ctx, func(ctx context.Context) (trigger.Payload, error) {
		p, err := Printable(ctx, database, input.ID)
		if err != nil {
			return trigger.Payload{}, err
		}
		return trigger.Payload{Note: p}, nil
	})
	return outcomeResult(out)
}

// ExportList presses a multiple-mode button with a producer that loads the
// selected notes.
func ExportList(ctx context.Context, database *sql.DB, button *trigger.Button, input ExportListInput) (*ExportOutput, error) {
	if button == nil || button.Mode() != trigger.ModeMultiple {
		return nil, errors.NewInternal(fmt.Errorf("list export needs a multiple-mode button"))
	}

	out := button.Press(ctx, func(ctx context.Context) (trigger.Payload, error) {
		notes, err := Printables(ctx, database, input.PrintablesInput)
		if err != nil {
			return trigger.Payload{}, err
		}
		return trigger.Payload{Notes: notes, Title: input.Title}, nil
	})
	return outcomeResult(out)
}

// outcomeResult maps a press outcome to an operation result.
// Producer failures caused by a store error keep the store error's code.
func outcomeResult(out trigger.Outcome) (*ExportOutput, error) {
	switch out.Status {
	case trigger.StatusIgnored:
		return nil, errors.NewBusy()
	case trigger.StatusFailed:
		if out.Err.Code == errors.ErrProducerFailure {
			if cause := errors.As(out.Err.Unwrap()); cause != nil && cause.Code != errors.ErrInternal {
				return nil, cause
			}
		}
		return nil, out.Err
	}
	return &ExportOutput{
		Path:     out.Path,
		MimeType: out.MimeType,
		Bytes:    out.Bytes,
		Shared:   out.Shared,
	}, nil
}
