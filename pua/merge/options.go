// Package merge inserts custom character records into a sorted
// UnicodeDataOverrides.txt table.
//
// The merge is a single forward pass over two ascending sequences: the
// baseline table's data lines and the custom records. A custom record whose
// codepoint falls between two baseline lines is inserted between them; one
// whose codepoint equals a baseline line's codepoint replaces that line.
// Structural lines (headers, block directives, comments, blanks) are copied
// verbatim wherever they occur.
package merge

import (
	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/pua"
)

// Action says how a custom record reached the output.
type Action int

const (
	// ActionInserted: the record landed between two baseline lines.
	ActionInserted Action = iota
	// ActionReplaced: the record shadowed a baseline line with the same codepoint.
	ActionReplaced
	// ActionAppended: the record followed the last baseline data line.
	ActionAppended
)

func (a Action) String() string {
	switch a {
	case ActionInserted:
		return "inserted"
	case ActionReplaced:
		return "replaced"
	case ActionAppended:
		return "appended"
	}
	return "unknown"
}

// Options configures a merge.
type Options struct {
	// Comment is appended as " #<Comment>" to every synthesized line.
	Comment string

	// LineEnding for synthesized lines. Empty means: follow the baseline's
	// first line terminator (LF when the baseline has none).
	LineEnding string

	// InputEncoding of the baseline when it carries no byte-order mark.
	// Default: UTF-8.
	InputEncoding string

	// Flush controls syncing of the output file (InsertFile only).
	// Default: durable.FlushAuto
	Flush durable.FlushMode

	// OnRecord, when set, is called for every custom record written.
	OnRecord func(rec pua.Record, action Action)
}

// DefaultOptions returns options with the given comment and defaults for
// everything else.
func DefaultOptions(comment string) Options {
	return Options{
		Comment: comment,
		Flush:   durable.FlushAuto,
	}
}
