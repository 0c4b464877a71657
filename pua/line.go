package pua

import (
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
)

// LineKind classifies a line of the override table.
type LineKind int

const (
	// LineStructural lines (headers, block directives, comments, blanks) are
	// copied verbatim and never reordered.
	LineStructural LineKind = iota
	// LineData lines start with a hex codepoint field.
	LineData
)

// IsHeader reports whether line begins with a reserved header token.
func IsHeader(line string) bool {
	return strings.HasPrefix(line, format.HeaderCode) || strings.HasPrefix(line, format.HeaderBlock)
}

// Classify reports how the merge engine must treat line. The line must not
// include its terminator.
func Classify(line string) LineKind {
	if IsHeader(line) {
		return LineStructural
	}
	t := strings.TrimSpace(line)
	if t == "" || strings.HasPrefix(t, format.CommentPrefix) {
		return LineStructural
	}
	return LineData
}

// LeadingCodepoint parses the codepoint field of a data line.
func LeadingCodepoint(line string) (Codepoint, error) {
	code, _, _ := strings.Cut(line, format.FieldSeparator)
	return ParseCodepoint(code)
}
