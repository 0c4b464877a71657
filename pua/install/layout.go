package install

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/gennorm"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/tx"
)

// Layout locates every file an install reads or writes.
type Layout struct {
	Dir       string // ICU directory: live table, fragments
	DataDir   string // Dir/data: pristine table and gennorm2 inputs
	BinaryDir string // Dir/icudt<version>l: compiled artifacts
	Version   string
}

// ResolveLayout validates an ICU directory. icuDir may name the ICU
// directory itself, its data child, or its icudt<version>l child. An empty
// version is detected from the single icudt<version>l directory present.
// The returned paths are absolute, as gennorm2 runs from its own directory.
func ResolveLayout(icuDir, version string) (Layout, error) {
	if icuDir == "" {
		return Layout{}, &types.Error{Kind: types.ErrKindDirectoryNotFound, Msg: "ICU directory not configured"}
	}

	dir, err := filepath.Abs(icuDir)
	if err != nil {
		return Layout{}, &types.Error{Kind: types.ErrKindDirectoryNotFound, Msg: "resolve ICU directory", Path: icuDir, Err: err}
	}
	if !isDir(dir) {
		return Layout{}, &types.Error{Kind: types.ErrKindDirectoryNotFound, Msg: "ICU directory does not exist", Path: dir}
	}
	if isChildDir(filepath.Base(dir)) && !isDir(filepath.Join(dir, format.DataDirName)) {
		dir = filepath.Dir(dir)
	}
	data := filepath.Join(dir, format.DataDirName)
	if !isDir(data) {
		return Layout{}, &types.Error{Kind: types.ErrKindDirectoryNotFound, Msg: "ICU data directory does not exist", Path: data}
	}

	if version == "" {
		v, err := detectVersion(dir)
		if err != nil {
			return Layout{}, err
		}
		version = v
	}

	bin := filepath.Join(dir, fmt.Sprintf(format.BinaryDirFormat, version))
	if !isDir(bin) {
		return Layout{}, &types.Error{Kind: types.ErrKindDirectoryNotFound, Msg: "ICU binary data directory does not exist", Path: bin}
	}

	return Layout{
		Dir:       dir,
		DataDir:   data,
		BinaryDir: bin,
		Version:   version,
	}, nil
}

// isChildDir reports whether name is one of the directories ResolveLayout
// accepts in place of the ICU directory.
func isChildDir(name string) bool {
	if name == format.DataDirName {
		return true
	}
	prefix, suffix, _ := strings.Cut(format.BinaryDirFormat, "%s")
	return len(name) > len(prefix)+len(suffix) && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
}

func detectVersion(dir string) (string, error) {
	prefix, suffix, _ := strings.Cut(format.BinaryDirFormat, "%s")
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"+suffix))
	if err != nil {
		return "", err
	}
	var found []string
	for _, m := range matches {
		if isDir(m) {
			name := filepath.Base(m)
			found = append(found, strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		}
	}
	if len(found) != 1 {
		return "", &types.Error{
			Kind: types.ErrKindDirectoryNotFound,
			Msg:  fmt.Sprintf("cannot determine ICU version: found %d versioned data directories", len(found)),
			Path: dir,
		}
	}
	return found[0], nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// OutputTable is the live override table the install rewrites.
func (l Layout) OutputTable() string { return filepath.Join(l.Dir, format.OverridesFile) }

// BaselineTable is the pristine table every install merges into.
func (l Layout) BaselineTable() string { return filepath.Join(l.DataDir, format.OverridesFile) }

// OriginalTable is the one-time copy of the live table taken before the
// first install.
func (l Layout) OriginalTable() string {
	return tx.SuffixedPath(l.OutputTable(), format.OriginalSuffix)
}

// NFCFragment is the generated combining-class fragment.
func (l Layout) NFCFragment() string { return filepath.Join(l.Dir, format.NFCOverridesFile) }

// NFKCFragment is the generated decomposition fragment.
func (l Layout) NFKCFragment() string { return filepath.Join(l.Dir, format.NFKCOverridesFile) }

// CanonicalArtifact is the compiled canonical normalization data.
func (l Layout) CanonicalArtifact() string { return filepath.Join(l.BinaryDir, format.NFCBinaryFile) }

// CompatibilityArtifact is the compiled compatibility normalization data.
func (l Layout) CompatibilityArtifact() string {
	return filepath.Join(l.BinaryDir, format.NFKCBinaryFile)
}

// Sources returns the gennorm2 inputs of this layout.
func (l Layout) Sources() gennorm.Sources {
	return gennorm.Sources{
		NFC:           filepath.Join(l.DataDir, format.NFCFile),
		NFCHebrew:     filepath.Join(l.DataDir, format.NFCHebrewFile),
		NFKC:          filepath.Join(l.DataDir, format.NFKCFile),
		NFCOverrides:  l.NFCFragment(),
		NFKCOverrides: l.NFKCFragment(),
	}
}

// GuardedFiles lists the files an install may modify, in backup order.
func (l Layout) GuardedFiles() []string {
	return []string{
		l.OutputTable(),
		l.NFCFragment(),
		l.NFKCFragment(),
		l.CanonicalArtifact(),
		l.CompatibilityArtifact(),
	}
}
