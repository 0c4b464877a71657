// Package chardefs reads user character definitions from the XML file the
// character editor saves. Each definition is a CharDef element:
//
//	<CharDef code="F170" data="COMBINING SNAKE BELOW;Mn;220;NSM;;;;;N;;;;;"/>
//
// Elements may appear anywhere in the document. Definitions without a code
// or data attribute, or whose code is not hexadecimal, are skipped.
package chardefs

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/textenc"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua"
)

const (
	elemCharDef = "CharDef"
	attrCode    = "code"
	attrData    = "data"
)

// Parse reads every CharDef element from r into a new batch. The first
// definition of a codepoint wins.
func Parse(r io.Reader) (*pua.Batch, error) {
	b := pua.NewBatch()
	if err := ParseInto(b, r); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseInto adds the definitions in r to b. Codepoints already in b are
// left alone.
func ParseInto(b *pua.Batch, r io.Reader) error {
	src, err := textenc.NewReader(r, textenc.UTF8)
	if err != nil {
		return err
	}
	dec := xml.NewDecoder(src)
	dec.CharsetReader = charsetReader

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return types.FormatError("", se.Line, "%s", se.Msg)
			}
			return &types.Error{Kind: types.ErrKindFormat, Msg: "read character definitions", Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elemCharDef {
			continue
		}
		code, data := attr(se, attrCode), attr(se, attrData)
		if code == "" || data == "" {
			continue
		}
		rec, err := pua.ParseRecord(code, data)
		if err != nil {
			logger.Warn("skipping character definition", "code", code, "err", err)
			continue
		}
		if !b.Add(rec) {
			logger.Debug("duplicate character definition ignored", "code", rec.Code().String())
		}
	}
}

// ParseFile parses the definitions file at path.
func ParseFile(path string) (*pua.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.IOError("open character definitions", path, err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		var te *types.Error
		if errors.As(err, &te) && te.Path == "" {
			te.Path = path
		}
		return nil, err
	}
	logger.Info("read character definitions", "path", path, "count", b.Len(), "duplicates", len(b.Duplicates()))
	return b, nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// charsetReader handles the encoding named in the XML declaration. Unicode
// input has already been converted to UTF-8 by the BOM-sniffing reader.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToUpper(strings.ReplaceAll(label, "_", "-")) {
	case "UTF-8", "UTF8", "UTF-16", "UTF-16LE", "UTF-16BE", "UNICODE", "US-ASCII", "ASCII":
		return input, nil
	}
	dec, err := textenc.Decoder(label)
	if err != nil {
		return nil, err
	}
	return dec.Reader(input), nil
}
