package note

import (
	"slices"
	"time"
)

// Project converts a stored note into a PrintableNote.
// categoryLabel is the resolved category name; nil or empty means uncategorized.
// Absent optional fields stay nil: fallback labels belong to rendering.
func Project(n *Note, categoryLabel *string) PrintableNote {
	p := PrintableNote{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		CreatedAt: time.Unix(n.CreatedAt, 0),
		Tags:      slices.Clone(n.Tags),
		Images:    slices.Clone(n.Images),
		IsLocked:  n.IsLocked,
	}

	if categoryLabel != nil && *categoryLabel != "" {
		label := *categoryLabel
		p.Category = &label
	}
	if n.AudioPath != nil && *n.AudioPath != "" {
		audio := *n.AudioPath
		p.AudioPath = &audio
	}
	if n.Reminder != nil {
		r := time.Unix(*n.Reminder, 0)
		p.Reminder = &r
	}

	return p
}
