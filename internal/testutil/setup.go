package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
)

// TestICUVersion is the version used for fixture trees.
const TestICUVersion = "70"

// BaselineTable is the pristine override table installed by SetupICUTree.
const BaselineTable = "Code;Name;Category;Combining;Bidi;Decomposition;Decimal;Digit;Numeric;Mirrored;Unicode1;Comment;Upper;Lower;Title\n" +
	"0041;LATIN CAPITAL LETTER A;Lu;0;L;;;;;N;;;;0061;\n" +
	"F170;OLD PUA MARK;Mn;230;NSM;;;;;N;;;;;\n" +
	"F175;PUA COMPAT;Lo;0;L;<compat> 0041;;;;N;;;;;\n"

// Original contents of the compiled artifacts in a fixture tree.
const (
	OriginalNFCArtifact  = "original nfc_fw\n"
	OriginalNFKCArtifact = "original nfkc_fw\n"
)

// ICUTree is a throwaway ICU data directory.
//
//	Dir/
//	  data/UnicodeDataOverrides.txt, nfc.txt, nfcHebrew.txt, nfkc.txt
//	  icudt70l/nfc_fw.nrm, nfkc_fw.nrm
type ICUTree struct {
	Dir       string
	DataDir   string
	BinaryDir string
	Version   string
}

// SetupICUTree creates a complete ICU tree in a temporary directory.
//
// Example:
//
//	tree := testutil.SetupICUTree(t)
//	layout, err := install.ResolveLayout(tree.Dir, tree.Version)
func SetupICUTree(t *testing.T) *ICUTree {
	t.Helper()

	dir := t.TempDir()
	tree := &ICUTree{
		Dir:       dir,
		DataDir:   filepath.Join(dir, format.DataDirName),
		BinaryDir: filepath.Join(dir, fmt.Sprintf(format.BinaryDirFormat, TestICUVersion)),
		Version:   TestICUVersion,
	}

	WriteFile(t, filepath.Join(tree.DataDir, format.OverridesFile), BaselineTable)
	WriteFile(t, filepath.Join(tree.DataDir, format.NFCFile), "# nfc.txt\n00C0=0041 0300\n")
	WriteFile(t, filepath.Join(tree.DataDir, format.NFCHebrewFile), "# nfcHebrew.txt\n")
	WriteFile(t, filepath.Join(tree.DataDir, format.NFKCFile), "# nfkc.txt\n00A0>0020\n")
	WriteFile(t, filepath.Join(tree.BinaryDir, format.NFCBinaryFile), OriginalNFCArtifact)
	WriteFile(t, filepath.Join(tree.BinaryDir, format.NFKCBinaryFile), OriginalNFKCArtifact)
	return tree
}

// Path joins elem onto the tree root.
func (tr *ICUTree) Path(elem ...string) string {
	return filepath.Join(append([]string{tr.Dir}, elem...)...)
}

// Snapshot returns every regular file under the tree, keyed by slash-separated
// relative path.
func (tr *ICUTree) Snapshot(t *testing.T) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.WalkDir(tr.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(tr.Dir, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot ICU tree: %v", err)
	}
	return files
}

// WriteFile writes content to path, creating parent directories.
// Calls t.Fatal on failure.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content of path. Calls t.Fatal on failure.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(b)
}
