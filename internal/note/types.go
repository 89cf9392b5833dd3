package note

// Type is the kind of a note. The set is closed, but stored values are
// not validated: anything outside it renders with the default TypeInfo.
type Type string

const (
	TypeText      Type = "text"
	TypeChecklist Type = "checklist"
	TypeVoice     Type = "voice"
	TypeDrawing   Type = "drawing"
	TypeTimer     Type = "timer"
	TypePhoto     Type = "photo"
)

// TypeInfo is the display data for a note type.
type TypeInfo struct {
	Icon  string
	Label string // English label; locale catalogs may override it
}

// DefaultTypeInfo is used for any type outside the known set.
var DefaultTypeInfo = TypeInfo{Icon: "📄", Label: "Note"}

// typeTable maps every known type to its display data.
var typeTable = map[Type]TypeInfo{
	TypeText:      {Icon: "📝", Label: "Text"},
	TypeChecklist: {Icon: "✅", Label: "Checklist"},
	TypeVoice:     {Icon: "🎤", Label: "Audio"},
	TypeDrawing:   {Icon: "🎨", Label: "Drawing"},
	TypeTimer:     {Icon: "⏰", Label: "Timer"},
	TypePhoto:     {Icon: "📷", Label: "Photo"},
}

// KnownTypes lists the closed enumeration in canonical order.
var KnownTypes = []Type{TypeText, TypeChecklist, TypeVoice, TypeDrawing, TypeTimer, TypePhoto}

// Lookup returns the display data for t, or DefaultTypeInfo when t is unknown.
func Lookup(t Type) TypeInfo {
	if info, ok := typeTable[t]; ok {
		return info
	}
	return DefaultTypeInfo
}

// Known reports whether t belongs to the closed enumeration.
func Known(t Type) bool {
	_, ok := typeTable[t]
	return ok
}
