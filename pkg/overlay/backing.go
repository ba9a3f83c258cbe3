// Package overlay implements the persisted-overlay pattern used by the
// catalog engine: small in-memory structures layered on top of the primary
// entity source (imported entities, hidden names, feature flags), each
// backed by a single JSON snapshot file.
//
// The contract, shared by every store in this package:
//   - every externally visible read reloads the snapshot from disk first
//   - every externally visible write mutates memory and immediately
//     re-serializes the whole structure to disk
//   - a missing snapshot file means "empty"; a corrupted one means "empty"
//     with a logged warning — persistence problems never propagate to
//     callers
//
// There is no cross-process locking: concurrent writers race on the final
// file write and the last one wins. This is acceptable under the intended
// single-process, low-concurrency deployment.
package overlay

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Backing persists a store's snapshot. It is a narrow seam so tests (or a
// future transactional store) can substitute the disk-backed default
// without changing store call sites.
type Backing interface {
	// Load reads the snapshot into v. found is false when no usable
	// snapshot exists (missing or corrupt); that is not an error.
	Load(v any) (found bool)
	// Save writes v as the new snapshot. Failures are logged, not returned.
	Save(v any)
}

// FileBacking is the default Backing: one pretty-printed JSON file,
// parent directory created on demand.
type FileBacking struct {
	path   string
	logger *log.Logger
}

// NewFileBacking creates a file backing at path.
// Pass nil for logger to use log.Default().
func NewFileBacking(path string, logger *log.Logger) *FileBacking {
	if logger == nil {
		logger = log.Default()
	}
	return &FileBacking{path: path, logger: logger}
}

// Path returns the snapshot file path.
func (b *FileBacking) Path() string { return b.path }

// Load reads and unmarshals the snapshot file into v.
func (b *FileBacking) Load(v any) bool {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		b.logger.Warn("failed to load snapshot", "path", b.path, "err", err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		b.logger.Warn("ignoring corrupted snapshot", "path", b.path, "err", err)
		return false
	}
	return true
}

// Save marshals v and rewrites the snapshot file.
func (b *FileBacking) Save(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.logger.Warn("failed to marshal snapshot", "path", b.path, "err", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		b.logger.Warn("failed to create snapshot directory", "path", b.path, "err", err)
		return
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		b.logger.Warn("failed to save snapshot", "path", b.path, "err", err)
	}
}

var _ Backing = (*FileBacking)(nil)
