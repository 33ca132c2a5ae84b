package trace

import "strings"

// Category classifies a trace event by the engine subsystem that produced it.
type Category int

const (
	CategoryOther Category = iota
	CategoryRender
	CategoryScript
	CategoryPaint
	CategoryComposite
)

// String returns the category name used in output formats.
func (c Category) String() string {
	switch c {
	case CategoryRender:
		return "render"
	case CategoryScript:
		return "script"
	case CategoryPaint:
		return "paint"
	case CategoryComposite:
		return "composite"
	default:
		return "other"
	}
}

// ParseCategory maps a raw category field to a Category.
// Trace files carry comma-separated category lists; the first token that
// matches a known subsystem wins. Unknown categories map to CategoryOther —
// upstream tooling adds categories faster than we care to track them.
func ParseCategory(raw string) Category {
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "cc", strings.HasPrefix(tok, "cc."), strings.Contains(tok, "compositor"):
			return CategoryComposite
		case strings.Contains(tok, "paint"):
			return CategoryPaint
		case strings.Contains(tok, "v8"), strings.Contains(tok, "script"):
			return CategoryScript
		case strings.Contains(tok, "render"), strings.Contains(tok, "blink"):
			return CategoryRender
		}
	}
	return CategoryOther
}

// Event is one timed record from a captured browser trace.
// Immutable once parsed.
type Event struct {
	Name        string
	Category    Category
	StartMicros int64
	DurMicros   int64
	ThreadID    int
}
