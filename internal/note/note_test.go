package note

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestLookup_KnownTypes(t *testing.T) {
	tests := []struct {
		typ   Type
		icon  string
		label string
	}{
		{TypeText, "📝", "Text"},
		{TypeChecklist, "✅", "Checklist"},
		{TypeVoice, "🎤", "Audio"},
		{TypeDrawing, "🎨", "Drawing"},
		{TypeTimer, "⏰", "Timer"},
		{TypePhoto, "📷", "Photo"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			info := Lookup(tt.typ)
			if info.Icon != tt.icon {
				t.Errorf("Icon = %q, want %q", info.Icon, tt.icon)
			}
			if info.Label != tt.label {
				t.Errorf("Label = %q, want %q", info.Label, tt.label)
			}
			if !Known(tt.typ) {
				t.Errorf("Known(%q) = false, want true", tt.typ)
			}
		})
	}
}

func TestLookup_UnknownFallsBack(t *testing.T) {
	for _, typ := range []Type{"", "sketch", "TEXT", "other"} {
		info := Lookup(typ)
		if info != DefaultTypeInfo {
			t.Errorf("Lookup(%q) = %+v, want default %+v", typ, info, DefaultTypeInfo)
		}
		if Known(typ) {
			t.Errorf("Known(%q) = true, want false", typ)
		}
	}
}

func TestKnownTypes_CoverTable(t *testing.T) {
	if len(KnownTypes) != len(typeTable) {
		t.Fatalf("KnownTypes has %d entries, table has %d", len(KnownTypes), len(typeTable))
	}
	for _, typ := range KnownTypes {
		if _, ok := typeTable[typ]; !ok {
			t.Errorf("KnownTypes entry %q missing from table", typ)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Work", "work"},
		{"  Work  Stuff ", "work stuff"},
		{"A\t\nB", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" b ", "a", "", "#b", "c", "a"})
	want := []string{"b", "a", "c"}

	if len(got) != len(want) {
		t.Fatalf("NormalizeTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if NormalizeTags([]string{" ", ""}) != nil {
		t.Error("NormalizeTags of blanks should be nil")
	}
}

func TestProject_AllFields(t *testing.T) {
	reminder := int64(1700003600)
	n := &Note{
		ID:         "01NOTE",
		Title:      "Groceries",
		Content:    "milk\neggs",
		Type:       TypeChecklist,
		CategoryID: strPtr("01CAT"),
		Tags:       []string{"home", "shopping"},
		Images:     []string{"img1.jpg"},
		AudioPath:  strPtr("memo.m4a"),
		IsLocked:   true,
		Reminder:   &reminder,
		CreatedAt:  1700000000,
	}

	p := Project(n, strPtr("Personal"))

	if p.ID != "01NOTE" || p.Title != "Groceries" || p.Content != "milk\neggs" {
		t.Errorf("basic fields not copied: %+v", p)
	}
	if p.Type != TypeChecklist {
		t.Errorf("Type = %q, want %q", p.Type, TypeChecklist)
	}
	if p.Category == nil || *p.Category != "Personal" {
		t.Errorf("Category = %v, want Personal", p.Category)
	}
	if !p.CreatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("CreatedAt = %v", p.CreatedAt)
	}
	if p.Reminder == nil || p.Reminder.Unix() != reminder {
		t.Errorf("Reminder = %v", p.Reminder)
	}
	if !p.HasAudio() {
		t.Error("HasAudio() = false, want true")
	}
	if !p.IsLocked {
		t.Error("IsLocked = false, want true")
	}
	if len(p.Tags) != 2 || len(p.Images) != 1 {
		t.Errorf("Tags = %v, Images = %v", p.Tags, p.Images)
	}
}

func TestProject_AbsentOptionalsStayAbsent(t *testing.T) {
	n := &Note{ID: "01NOTE", Type: "mystery", CreatedAt: 1}

	p := Project(n, nil)

	if p.Title != "" {
		t.Errorf("Title = %q, want empty (no placeholder in data)", p.Title)
	}
	if p.Category != nil {
		t.Errorf("Category = %q, want nil", *p.Category)
	}
	if p.AudioPath != nil || p.HasAudio() {
		t.Error("AudioPath should be nil")
	}
	if p.Reminder != nil {
		t.Error("Reminder should be nil")
	}
	if p.Tags != nil || p.Images != nil {
		t.Errorf("Tags = %v, Images = %v, want nil", p.Tags, p.Images)
	}
	if p.Type != "mystery" {
		t.Errorf("Type = %q, unknown types must pass through", p.Type)
	}

	empty := ""
	if Project(n, &empty).Category != nil {
		t.Error("empty category label should project to nil")
	}
}

func TestProject_CopiesSlices(t *testing.T) {
	n := &Note{ID: "01", Tags: []string{"a"}, Images: []string{"x"}}

	p := Project(n, nil)
	n.Tags[0] = "changed"
	n.Images[0] = "changed"

	if p.Tags[0] != "a" || p.Images[0] != "x" {
		t.Error("PrintableNote shares backing arrays with the source note")
	}
}
