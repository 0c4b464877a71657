// Package types defines the error taxonomy shared by the installer packages.
//
// Every failure surfaced to callers is a *Error with a stable Kind, so callers
// branch on intent rather than message text:
//
//	if errors.Is(err, types.ErrLocked) {
//	    // ask the user to close programs holding the ICU data, then retry
//	}
//
// This package has no dependencies beyond the standard library.
package types
