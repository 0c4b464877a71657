package merge

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/textenc"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua"
)

// Insert merges recs into the baseline table read from baseline and writes
// the result to w.
//
// recs must be strictly ascending by codepoint (pua.Batch.Sorted guarantees
// this). With no records the baseline is copied byte for byte.
//
// Example:
//
//	var out bytes.Buffer
//	stats, err := merge.Insert(ctx, &out, baseline, batch.Sorted(), merge.DefaultOptions(comment))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d replaced, %d inserted\n", stats.Replaced, stats.Inserted+stats.Appended)
func Insert(ctx context.Context, w io.Writer, baseline io.Reader, recs []pua.Record, opts Options) (Stats, error) {
	var stats Stats

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	// Pure pass-through: nothing to insert.
	if len(recs) == 0 {
		n, err := io.Copy(w, baseline)
		stats.Bytes = n
		if err != nil {
			return stats, types.IOError("copy baseline", "", err)
		}
		return stats, nil
	}

	if err := checkAscending(recs); err != nil {
		return stats, err
	}

	src, err := textenc.NewReader(baseline, opts.InputEncoding)
	if err != nil {
		return stats, &types.Error{Kind: types.ErrKindFormat, Msg: "baseline encoding", Err: err}
	}

	m := &merger{
		in:   bufio.NewReader(src),
		out:  bufio.NewWriter(w),
		recs: recs,
		opts: opts,
		eol:  opts.LineEnding,
	}
	if err := m.run(); err != nil {
		return m.stats, err
	}
	return m.stats, nil
}

// InsertFile merges recs into the table at baselinePath and writes the result
// to outputPath. The output is written to a temporary file in the same
// directory, synced, and renamed into place, so outputPath is never left
// half-written. baselinePath and outputPath may be the same file.
func InsertFile(ctx context.Context, baselinePath, outputPath string, recs []pua.Record, opts Options) (Stats, error) {
	in, err := os.Open(baselinePath)
	if err != nil {
		return Stats{}, types.IOError("open baseline table", baselinePath, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return Stats{}, types.IOError("create output table", outputPath, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	logger.Debug("merging override table", "baseline", baselinePath, "output", outputPath, "records", len(recs))

	stats, err := Insert(ctx, tmp, in, recs, opts)
	if err != nil {
		var te *types.Error
		if errors.As(err, &te) && te.Path == "" {
			te.Path = baselinePath
		}
		return stats, err
	}
	if err := durable.Sync(tmp, opts.Flush); err != nil {
		return stats, types.IOError("sync output table", outputPath, err)
	}
	if err := tmp.Close(); err != nil {
		return stats, types.IOError("close output table", outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return stats, types.IOError("replace output table", outputPath, err)
	}
	committed = true
	return stats, nil
}

// checkAscending verifies recs is strictly ascending by codepoint.
func checkAscending(recs []pua.Record) error {
	for i := 1; i < len(recs); i++ {
		if recs[i].Code() <= recs[i-1].Code() {
			return types.FormatError("", 0, "custom records out of order: %s follows %s",
				recs[i].Code(), recs[i-1].Code())
		}
	}
	return nil
}

// merger carries the state of one forward pass.
type merger struct {
	in    *bufio.Reader
	out   *bufio.Writer
	recs  []pua.Record
	next  int // index of the next pending custom record
	opts  Options
	eol   string
	stats Stats

	lineNo  int
	openEnd bool // last byte written was not a line terminator
}

func (m *merger) run() error {
	// lastCode sits below every codepoint so U+0000 can be inserted.
	lastCode := int64(-1)

	for {
		raw, readErr := m.in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return types.IOError("read baseline table", "", readErr)
		}
		if raw == "" {
			break
		}
		m.lineNo++
		line := trimEOL(raw)
		if m.eol == "" {
			m.eol = detectEOL(raw)
		}

		if pua.Classify(line) == pua.LineStructural {
			m.stats.Structural++
			if err := m.writeRaw(raw); err != nil {
				return err
			}
			continue
		}

		fileCode, err := pua.LeadingCodepoint(line)
		if err != nil {
			return types.FormatError("", m.lineNo, "%v", err)
		}

		// Emit every pending record that belongs at or before this line.
		for m.next < len(m.recs) {
			rec := m.recs[m.next]
			newCode := int64(rec.Code())
			if newCode <= lastCode || rec.Code() > fileCode {
				break
			}
			action := ActionInserted
			if rec.Code() == fileCode {
				action = ActionReplaced
			}
			if err := m.emit(rec, action); err != nil {
				return err
			}
			lastCode = newCode
		}

		// Keep the baseline line unless it was just replaced.
		if int64(fileCode) != lastCode {
			m.stats.Kept++
			if err := m.writeRaw(raw); err != nil {
				return err
			}
		}
		lastCode = int64(fileCode)

		if errors.Is(readErr, io.EOF) {
			break
		}
	}

	// Records beyond the last baseline codepoint.
	for m.next < len(m.recs) {
		if err := m.emit(m.recs[m.next], ActionAppended); err != nil {
			return err
		}
	}

	if err := m.out.Flush(); err != nil {
		return types.IOError("write merged table", "", err)
	}
	return nil
}

func (m *merger) emit(rec pua.Record, action Action) error {
	if m.eol == "" {
		m.eol = format.LF
	}
	if m.openEnd {
		if err := m.writeRaw(m.eol); err != nil {
			return err
		}
	}
	logger.Debug("storing definition for Unicode character", "code", rec.Code().String(), "action", action.String())
	if err := m.writeRaw(rec.Tagged(m.opts.Comment) + m.eol); err != nil {
		return err
	}
	switch action {
	case ActionInserted:
		m.stats.Inserted++
	case ActionReplaced:
		m.stats.Replaced++
	case ActionAppended:
		m.stats.Appended++
	}
	if m.opts.OnRecord != nil {
		m.opts.OnRecord(rec, action)
	}
	m.next++
	return nil
}

func (m *merger) writeRaw(s string) error {
	if _, err := m.out.WriteString(s); err != nil {
		return types.IOError("write merged table", "", err)
	}
	m.openEnd = !strings.HasSuffix(s, format.LF)
	return nil
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, format.LF)
	return strings.TrimSuffix(s, "\r")
}

func detectEOL(raw string) string {
	switch {
	case strings.HasSuffix(raw, format.CRLF):
		return format.CRLF
	case strings.HasSuffix(raw, format.LF):
		return format.LF
	}
	return ""
}
