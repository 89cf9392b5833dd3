package note

import "time"

// Note is a stored note record.
type Note struct {
	// ID is a ULID that uniquely identifies this note
	ID string

	// Title may be empty; renderers substitute a fallback label
	Title string

	// Content is the note body; newlines are significant
	Content string

	// Type is the note kind (text, checklist, voice, ...); unknown values are kept as-is
	Type Type

	// CategoryID references a Category (nullable)
	CategoryID *string

	// Tags are display-only labels, in insertion order
	Tags []string

	// Images are attachment references
	Images []string

	// AudioPath references an audio attachment (nullable)
	AudioPath *string

	// IsLocked hides the note behind a lock in the app UI
	IsLocked bool

	// Reminder is the Unix timestamp of an optional reminder
	Reminder *int64

	// CreatedAt is the Unix timestamp when the note was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the note was last updated
	UpdatedAt int64
}

// Category groups notes under a display name.
type Category struct {
	ID        string
	Name      string
	NameNorm  string
	Color     *string
	CreatedAt int64
}

// PrintableNote is the renderer-ready projection of a Note.
// Values are built fresh for each export and never mutated afterwards.
type PrintableNote struct {
	ID        string
	Title     string
	Content   string
	Type      Type
	Category  *string // resolved display name, nil when uncategorized
	CreatedAt time.Time
	Tags      []string
	Images    []string
	AudioPath *string
	IsLocked  bool
	Reminder  *time.Time
}

// HasAudio reports whether an audio attachment is present.
func (p PrintableNote) HasAudio() bool {
	return p.AudioPath != nil && *p.AudioPath != ""
}
