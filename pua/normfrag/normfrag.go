// Package normfrag derives the gennorm2 override fragments from a merged
// UnicodeDataOverrides.txt table.
//
// Two fragments are produced:
//   - nfcOverrides.txt: "CODE:CLASS" for every non-zero combining class
//   - nfkcOverrides.txt: "CODE>MAPPING" for every decomposition
//
// Canonical and compatibility decompositions are not told apart; both are
// written to the compatibility fragment so standard canonical normalization
// is never altered.
package normfrag

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/textenc"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua"
)

// Fragments holds the lines of both override fragments, without terminators.
type Fragments struct {
	Combining     []string
	Decomposition []string

	// Skipped counts data lines ignored as malformed.
	Skipped int
}

// Extract scans a table and collects both fragments. Header, comment, and
// blank lines are ignored; malformed lines are counted and skipped rather
// than failing the extraction. Only read errors are returned.
func Extract(r io.Reader) (Fragments, error) {
	var frags Fragments

	src, err := textenc.NewReader(r, "")
	if err != nil {
		return frags, err
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if pua.Classify(line) == pua.LineStructural {
			continue
		}
		if !frags.add(line) {
			frags.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return frags, types.IOError("read override table", "", err)
	}
	return frags, nil
}

// ExtractFile is Extract over the file at path.
func ExtractFile(path string) (Fragments, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fragments{}, types.IOError("open override table", path, err)
	}
	defer f.Close()

	frags, err := Extract(f)
	if err != nil {
		if te, ok := err.(*types.Error); ok && te.Path == "" {
			te.Path = path
		}
		return frags, err
	}
	return frags, nil
}

// add parses one data line and reports whether it was well formed.
func (f *Fragments) add(line string) bool {
	parts := strings.SplitN(line, format.FieldSeparator, format.MinExtractFields+1)
	if len(parts) < format.MinExtractFields {
		return false
	}
	code := strings.TrimSpace(parts[format.FieldCode])
	class := strings.TrimSpace(parts[format.FieldCombiningClass])
	decomp := strings.TrimSpace(parts[format.FieldDecomposition])
	if code == "" {
		return false
	}

	if class != "" && class != format.ZeroClass {
		f.Combining = append(f.Combining, code+format.CombiningSeparator+class)
	}

	if decomp == "" {
		return true
	}
	if strings.HasPrefix(decomp, format.TagOpen) {
		end := strings.Index(decomp, format.TagClose)
		if end < 0 {
			// Unterminated tag: drop the decomposition only.
			return false
		}
		decomp = strings.TrimSpace(decomp[end+1:])
	}
	f.Decomposition = append(f.Decomposition, code+format.DecompositionSeparator+decomp)
	return true
}

// WriteFiles writes the combining-class fragment to nfcPath and the
// decomposition fragment to nfkcPath, replacing any previous content.
func (f Fragments) WriteFiles(nfcPath, nfkcPath string, mode durable.FlushMode) error {
	if err := writeLines(nfcPath, f.Combining, mode); err != nil {
		return err
	}
	return writeLines(nfkcPath, f.Decomposition, mode)
}

// WriteTo writes one fragment's lines to w, each terminated by "\n".
func WriteTo(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteString(format.LF)
	}
	return bw.Flush()
}

func writeLines(path string, lines []string, mode durable.FlushMode) error {
	f, err := os.Create(path)
	if err != nil {
		return types.IOError("create fragment", path, err)
	}
	if err := WriteTo(f, lines); err != nil {
		f.Close()
		return types.IOError("write fragment", path, err)
	}
	if err := durable.Sync(f, mode); err != nil {
		f.Close()
		return types.IOError("sync fragment", path, err)
	}
	if err := f.Close(); err != nil {
		return types.IOError("close fragment", path, err)
	}
	return nil
}
