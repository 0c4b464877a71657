package chardefs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<PuaDefinitions>
  <CharDef code="F171" data="SECOND;Lo;0;L;;;;;N;;;;;"/>
  <Group>
    <CharDef code="f170" data="COMBINING SNAKE BELOW;Mn;220;NSM;;;;;N;;;;;"/>
  </Group>
  <CharDef code="F171" data="DUPLICATE;Lo;0;L;;;;;N;;;;;"/>
  <CharDef code="" data="EMPTY CODE;Lo"/>
  <CharDef code="F172"/>
  <CharDef code="ZZZZ" data="NOT HEX;Lo"/>
  <Other code="F173" data="WRONG ELEMENT;Lo"/>
</PuaDefinitions>
`

func TestParse(t *testing.T) {
	b, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []pua.Codepoint{0xF171}, b.Duplicates())

	recs := b.Sorted()
	assert.Equal(t, "F170;COMBINING SNAKE BELOW;Mn;220;NSM;;;;;N;;;;;", recs[0].String())
	assert.Equal(t, "SECOND", recs[1].Name(), "first definition wins")
}

func TestParseInto_KeepsExisting(t *testing.T) {
	b := pua.NewBatch()
	pre, err := pua.NewRecord(0xF170, "PRESET")
	require.NoError(t, err)
	b.Add(pre)

	require.NoError(t, ParseInto(b, strings.NewReader(sample)))
	assert.Equal(t, "PRESET", b.Sorted()[0].Name())
}

func TestParse_UTF16WithBOM(t *testing.T) {
	doc := strings.Replace(sample, "utf-8", "utf-16", 1)
	units := utf16.Encode([]rune(doc))

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE})
	for _, u := range units {
		buf.WriteByte(byte(u))
		buf.WriteByte(byte(u >> 8))
	}

	b, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestParse_NoDefinitions(t *testing.T) {
	b, err := Parse(strings.NewReader(`<root/>`))
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("<root>\n<CharDef code=\"E000\" data=\"X\">\n</root>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFormat)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CustomChars.xml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	b, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	_, err = ParseFile(filepath.Join(dir, "missing.xml"))
	assert.ErrorIs(t, err, types.ErrIO)

	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<a><b></a>"), 0o644))
	_, err = ParseFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}
