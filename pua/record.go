// Package pua models the character-property records that user-defined
// Private Use Area characters are installed as, and the lines of the
// UnicodeDataOverrides.txt table they are merged into.
package pua

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
)

// Codepoint is a Unicode scalar value.
type Codepoint uint32

// String renders the codepoint as UnicodeData does: uppercase hex, at least
// four digits.
func (c Codepoint) String() string {
	return fmt.Sprintf(format.CodepointFormat, uint32(c))
}

// ParseCodepoint parses 1 to 6 hex digits, surrounding space ignored.
func ParseCodepoint(s string) (Codepoint, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > format.MaxCodepointDigits {
		return 0, fmt.Errorf("invalid codepoint %q: want 1-%d hex digits", s, format.MaxCodepointDigits)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", s, err)
	}
	if v > format.MaxCodepoint {
		return 0, fmt.Errorf("invalid codepoint %q: beyond U+10FFFF", s)
	}
	return Codepoint(v), nil
}

// Record is one custom character definition: a codepoint and the fourteen
// UnicodeData fields that follow it. Records are values and never change
// after construction.
type Record struct {
	code   Codepoint
	fields [format.PropertyCount]string
	n      int // number of fields present in the source text
}

// NewRecord builds a record from a codepoint and its property fields, in
// UnicodeData order (name first).
func NewRecord(code Codepoint, fields ...string) (Record, error) {
	if len(fields) > format.PropertyCount {
		return Record{}, types.FormatError("", 0, "%s: %d property fields, at most %d allowed",
			code, len(fields), format.PropertyCount)
	}
	r := Record{code: code, n: len(fields)}
	copy(r.fields[:], fields)
	return r, nil
}

// ParseRecord builds a record from a hex codepoint and the ';'-delimited
// property data that follows it in the table.
func ParseRecord(code, data string) (Record, error) {
	cp, err := ParseCodepoint(code)
	if err != nil {
		return Record{}, types.FormatError("", 0, "%v", err)
	}
	var fields []string
	if data != "" {
		fields = strings.Split(data, format.FieldSeparator)
	}
	return NewRecord(cp, fields...)
}

// ParseLine parses a complete table data line (codepoint included). Any
// trailing " #comment" is dropped.
func ParseLine(line string) (Record, error) {
	if i := strings.Index(line, format.TrailerSeparator); i >= 0 {
		line = line[:i]
	}
	code, data, _ := strings.Cut(line, format.FieldSeparator)
	return ParseRecord(code, data)
}

// Code returns the record's codepoint.
func (r Record) Code() Codepoint { return r.code }

// Field returns the UnicodeData field at position i (format.FieldName ..
// format.FieldTitlecase), or "" when the source omitted it.
func (r Record) Field(i int) string {
	if i <= format.FieldCode || i > r.n {
		return ""
	}
	return r.fields[i-1]
}

// Fields returns a copy of the property fields as supplied.
func (r Record) Fields() []string {
	out := make([]string, r.n)
	copy(out, r.fields[:r.n])
	return out
}

func (r Record) Name() string           { return r.Field(format.FieldName) }
func (r Record) Category() string       { return r.Field(format.FieldCategory) }
func (r Record) CombiningClass() string { return r.Field(format.FieldCombiningClass) }
func (r Record) BidiClass() string      { return r.Field(format.FieldBidiClass) }
func (r Record) Decomposition() string  { return r.Field(format.FieldDecomposition) }
func (r Record) DecimalDigit() string   { return r.Field(format.FieldDecimalDigit) }
func (r Record) Digit() string          { return r.Field(format.FieldDigit) }
func (r Record) Numeric() string        { return r.Field(format.FieldNumeric) }
func (r Record) Mirrored() string       { return r.Field(format.FieldMirrored) }
func (r Record) LegacyName() string     { return r.Field(format.FieldLegacyName) }
func (r Record) ISOComment() string     { return r.Field(format.FieldISOComment) }
func (r Record) Uppercase() string      { return r.Field(format.FieldUppercase) }
func (r Record) Lowercase() string      { return r.Field(format.FieldLowercase) }
func (r Record) Titlecase() string      { return r.Field(format.FieldTitlecase) }

// String serializes the record in table wire form, without a trailing comment.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString(r.code.String())
	for _, f := range r.fields[:r.n] {
		b.WriteByte(format.FieldSeparatorByte)
		b.WriteString(f)
	}
	return b.String()
}

// Tagged serializes the record followed by " #comment", the form used for
// lines synthesized by an install.
func (r Record) Tagged(comment string) string {
	return r.String() + format.TrailerSeparator + comment
}
