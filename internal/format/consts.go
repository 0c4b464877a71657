// Package format holds the wire-format constants shared by the override table,
// the normalization fragments, and the gennorm2 invocation.
package format

const (
	// ============================================================================
	// Override Table Tokens
	// ============================================================================

	// HeaderCode marks a column-header line ("Code;Name;...").
	HeaderCode = "Code"

	// HeaderBlock marks a block directive line.
	HeaderBlock = "block"

	// CommentPrefix marks a comment-only line.
	CommentPrefix = "#"

	// FieldSeparator separates UnicodeData fields.
	FieldSeparator = ";"

	// FieldSeparatorByte is FieldSeparator as a byte.
	FieldSeparatorByte = ';'

	// TrailerSeparator precedes the comment appended to a synthesized line.
	TrailerSeparator = " #"

	// ============================================================================
	// UnicodeData Field Positions (0-based, codepoint is field 0)
	// ============================================================================

	FieldCode           = 0
	FieldName           = 1
	FieldCategory       = 2
	FieldCombiningClass = 3
	FieldBidiClass      = 4
	FieldDecomposition  = 5
	FieldDecimalDigit   = 6
	FieldDigit          = 7
	FieldNumeric        = 8
	FieldMirrored       = 9
	FieldLegacyName     = 10
	FieldISOComment     = 11
	FieldUppercase      = 12
	FieldLowercase      = 13
	FieldTitlecase      = 14

	// FieldCount is the number of fields in a full UnicodeData line.
	FieldCount = 15

	// PropertyCount is the number of fields following the codepoint.
	PropertyCount = FieldCount - 1

	// MinExtractFields is the number of ';'-separated parts a data line needs
	// before its combining class and decomposition can be read.
	MinExtractFields = FieldDecomposition + 2

	// ============================================================================
	// Codepoints
	// ============================================================================

	// MaxCodepoint is the largest valid Unicode scalar value.
	MaxCodepoint = 0x10FFFF

	// MaxCodepointDigits is the longest hex spelling accepted for a codepoint.
	MaxCodepointDigits = 6

	// CodepointFormat renders a codepoint the way UnicodeData.txt does.
	CodepointFormat = "%04X"

	// ============================================================================
	// Normalization Fragments
	// ============================================================================

	// CombiningSeparator joins codepoint and class in nfcOverrides.txt.
	CombiningSeparator = ":"

	// DecompositionSeparator joins codepoint and mapping in nfkcOverrides.txt.
	DecompositionSeparator = ">"

	// TagOpen and TagClose delimit a compatibility tag such as <compat>.
	TagOpen  = "<"
	TagClose = ">"

	// ZeroClass is the combining class written as "not combining".
	ZeroClass = "0"

	// ============================================================================
	// Line Endings
	// ============================================================================

	// LF is the Unix line ending.
	LF = "\n"

	// CRLF is the Windows line ending.
	CRLF = "\r\n"
)

const (
	// ============================================================================
	// ICU Directory Layout
	// ============================================================================

	// DataDirName is the child of the ICU directory holding pristine inputs.
	DataDirName = "data"

	// OverridesFile is the override table, both pristine (data dir) and live (ICU dir).
	OverridesFile = "UnicodeDataOverrides.txt"

	// NFCOverridesFile and NFKCOverridesFile are the generated fragments.
	NFCOverridesFile  = "nfcOverrides.txt"
	NFKCOverridesFile = "nfkcOverrides.txt"

	// Baseline gennorm2 inputs shipped in the data dir.
	NFCFile       = "nfc.txt"
	NFCHebrewFile = "nfcHebrew.txt"
	NFKCFile      = "nfkc.txt"

	// Binary artifacts produced by gennorm2.
	NFCBinaryFile  = "nfc_fw.nrm"
	NFKCBinaryFile = "nfkc_fw.nrm"

	// BinaryDirFormat names the versioned ICU data directory (icudt70l).
	BinaryDirFormat = "icudt%sl"

	// DeferredDeleteLedger lists renamed artifacts awaiting deletion.
	DeferredDeleteLedger = "TempFilesToDelete"

	// BackupSuffix is spliced before the extension of a transaction backup.
	BackupSuffix = "_BAK"

	// OriginalSuffix is spliced before the extension of the one-time pristine copy.
	OriginalSuffix = "_ORIGINAL"

	// ============================================================================
	// gennorm2
	// ============================================================================

	// GennormTool is the default compiler executable name.
	GennormTool = "gennorm2"

	// GennormOutputFlag declares the output artifact.
	GennormOutputFlag = "-o"

	// GennormFileAccessError is the exit status gennorm2 uses when it cannot
	// open its output (U_FILE_ACCESS_ERROR).
	GennormFileAccessError = 4
)
