package merge

import "fmt"

// Stats summarizes one merge.
type Stats struct {
	// Inserted counts custom records placed before a larger baseline codepoint.
	Inserted int

	// Replaced counts custom records that shadowed a baseline line.
	Replaced int

	// Appended counts custom records written after the last baseline line.
	Appended int

	// Kept counts baseline data lines copied unchanged.
	Kept int

	// Structural counts header, comment, and blank lines copied unchanged.
	Structural int

	// Bytes is the number of bytes copied on the pass-through fast path.
	Bytes int64
}

// Written returns the number of custom records that reached the output.
func (s Stats) Written() int {
	return s.Inserted + s.Replaced + s.Appended
}

// String renders stats for log lines and CLI output.
func (s Stats) String() string {
	return fmt.Sprintf("%d inserted, %d replaced, %d appended, %d kept",
		s.Inserted, s.Replaced, s.Appended, s.Kept)
}
