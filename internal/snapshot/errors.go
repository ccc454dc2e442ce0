// Package snapshot materializes a set of posts and all their related media
// into a self-contained, serializable Snapshot. This file defines the
// package's error values.
package snapshot

import (
	"errors"
	"fmt"
)

// ErrSnapshotCorrupt indicates a malformed or incomplete cache payload:
// a required key is missing, or a per-post set references an id that is
// absent from its entity map. Callers must discard the snapshot and fall
// back to the live query path; a corrupt payload usually means writer and
// reader run different schema versions.
var ErrSnapshotCorrupt = errors.New("snapshot corrupt")

// corruptf wraps ErrSnapshotCorrupt with detail, matchable via errors.Is.
func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSnapshotCorrupt}, args...)...)
}
