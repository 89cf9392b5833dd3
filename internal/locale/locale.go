// Package locale holds the user-facing strings and date formats used in
// rendered documents and export notifications.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/hpungsan/memnotes/internal/note"
)

// Catalog is the set of strings for one language.
type Catalog struct {
	Tag language.Tag

	UntitledNote     string
	Uncategorized    string
	DefaultListTitle string
	CreatedOn        string
	GeneratedBy      string
	ReminderLabel    string
	AudioLabel       string

	ShareDialogTitle string
	SuccessTitle     string
	SuccessMessage   string
	FailureTitle     string
	FailureMessage   string

	typeLabels map[note.Type]string
	noteWord   [2]string // singular, plural
	imageWord  [2]string
	singular   func(n int) bool
	longDate   func(t time.Time) string
	shortDate  func(t time.Time) string
}

// Lang returns the BCP 47 base language, for the HTML lang attribute.
func (c *Catalog) Lang() string {
	base, _ := c.Tag.Base()
	return base.String()
}

// TypeLabel returns the localized label for t, falling back to the
// default label for unknown types.
func (c *Catalog) TypeLabel(t note.Type) string {
	if label, ok := c.typeLabels[t]; ok {
		return label
	}
	if label, ok := c.typeLabels[""]; ok {
		return label
	}
	return note.Lookup(t).Label
}

// CountLine returns "N notes" with the language's plural rule.
func (c *Catalog) CountLine(n int) string {
	return fmt.Sprintf("%d %s", n, c.pick(c.noteWord, n))
}

// ImageCount returns "N images" with the language's plural rule.
func (c *Catalog) ImageCount(n int) string {
	return fmt.Sprintf("%d %s", n, c.pick(c.imageWord, n))
}

// LongDate formats a date-time for the single note header.
func (c *Catalog) LongDate(t time.Time) string {
	return c.longDate(t)
}

// ShortDate formats a date for list entries and footers.
func (c *Catalog) ShortDate(t time.Time) string {
	return c.shortDate(t)
}

func (c *Catalog) pick(words [2]string, n int) string {
	if c.singular(n) {
		return words[0]
	}
	return words[1]
}

// English is the default catalog.
var English = &Catalog{
	Tag:              language.English,
	UntitledNote:     "Untitled note",
	Uncategorized:    "Uncategorized",
	DefaultListTitle: "My Notes",
	CreatedOn:        "Created on",
	GeneratedBy:      "Generated by Memory Notes",
	ReminderLabel:    "Reminder",
	AudioLabel:       "audio",
	ShareDialogTitle: "Share the PDF",
	SuccessTitle:     "Success",
	SuccessMessage:   "The PDF was generated and shared successfully!",
	FailureTitle:     "Error",
	FailureMessage:   "Unable to generate the PDF. Please try again.",
	typeLabels: map[note.Type]string{
		note.TypeText:      "Text",
		note.TypeChecklist: "Checklist",
		note.TypeVoice:     "Audio",
		note.TypeDrawing:   "Drawing",
		note.TypeTimer:     "Timer",
		note.TypePhoto:     "Photo",
		"":                 "Note",
	},
	noteWord:  [2]string{"note", "notes"},
	imageWord: [2]string{"image", "images"},
	singular:  func(n int) bool { return n == 1 },
	longDate:  func(t time.Time) string { return t.Format("January 2, 2006 at 15:04") },
	shortDate: func(t time.Time) string { return t.Format("01/02/2006") },
}

// frenchMonths are the lowercase French month names, January first.
var frenchMonths = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// French mirrors the strings of the original mobile app.
var French = &Catalog{
	Tag:              language.French,
	UntitledNote:     "Note sans titre",
	Uncategorized:    "Sans catégorie",
	DefaultListTitle: "Mes Notes",
	CreatedOn:        "Créé le",
	GeneratedBy:      "Généré par Memory Notes",
	ReminderLabel:    "Rappel",
	AudioLabel:       "audio",
	ShareDialogTitle: "Partager le PDF",
	SuccessTitle:     "Succès",
	SuccessMessage:   "Le PDF a été généré et partagé avec succès !",
	FailureTitle:     "Erreur",
	FailureMessage:   "Impossible de générer le PDF. Veuillez réessayer.",
	typeLabels: map[note.Type]string{
		note.TypeText:      "Texte",
		note.TypeChecklist: "Liste",
		note.TypeVoice:     "Audio",
		note.TypeDrawing:   "Dessin",
		note.TypeTimer:     "Minuteur",
		note.TypePhoto:     "Photo",
		"":                 "Note",
	},
	noteWord:  [2]string{"note", "notes"},
	imageWord: [2]string{"image", "images"},
	// French treats 0 and 1 as singular.
	singular: func(n int) bool { return n <= 1 },
	longDate: func(t time.Time) string {
		return fmt.Sprintf("%d %s %d à %02d:%02d",
			t.Day(), frenchMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	},
	shortDate: func(t time.Time) string { return t.Format("02/01/2006") },
}

var (
	catalogs = []*Catalog{English, French}
	matcher  = language.NewMatcher([]language.Tag{English.Tag, French.Tag})
)

// Match returns the catalog closest to the given BCP 47 tag
// ("fr", "fr-CA", "en-US", ...). Empty or unsupported tags get English.
func Match(tag string) *Catalog {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return English
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(parsed)
	if conf == language.No || idx < 0 || idx >= len(catalogs) {
		return English
	}
	return catalogs[idx]
}

// Supported reports whether tag resolves to a catalog other than the fallback.
func Supported(tag string) bool {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return false
	}
	_, _, conf := matcher.Match(parsed)
	return conf != language.No
}
