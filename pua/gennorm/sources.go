package gennorm

// Sources names the gennorm2 text inputs of one ICU installation.
type Sources struct {
	NFC           string // baseline canonical data (nfc.txt)
	NFCHebrew     string // baseline canonical exceptions (nfcHebrew.txt)
	NFKC          string // baseline compatibility data (nfkc.txt)
	NFCOverrides  string // generated combining-class fragment
	NFKCOverrides string // generated decomposition fragment
}

// Canonical returns the inputs of the canonical-only artifact, in the order
// gennorm2 must read them.
func (s Sources) Canonical() []string {
	return []string{s.NFC, s.NFCHebrew, s.NFCOverrides}
}

// Compatibility returns the inputs of the compatibility artifact, in the
// order gennorm2 must read them.
func (s Sources) Compatibility() []string {
	return []string{s.NFC, s.NFKC, s.NFCHebrew, s.NFCOverrides, s.NFKCOverrides}
}
