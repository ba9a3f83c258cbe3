package overlay

import (
	"sort"
	"time"

	"github.com/iandesj/aperture/pkg/catalog"
)

// hiddenSnapshot is the on-disk shape of the hidden-names overlay.
type hiddenSnapshot struct {
	HiddenComponents []string  `json:"hiddenComponents"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// HiddenStore persists the set of component names excluded from the
// default catalog view. Names are stored as given; hiding a name that
// doesn't exist in the catalog is allowed and simply has no visible
// effect until a component with that name appears.
type HiddenStore struct {
	backing Backing
	names   map[string]bool
}

// NewHiddenStore creates a hidden store over backing.
func NewHiddenStore(backing Backing) *HiddenStore {
	return &HiddenStore{backing: backing, names: make(map[string]bool)}
}

func (s *HiddenStore) reload() {
	s.names = make(map[string]bool)
	var snap hiddenSnapshot
	if !s.backing.Load(&snap) {
		return
	}
	for _, name := range snap.HiddenComponents {
		s.names[name] = true
	}
}

func (s *HiddenStore) persist() {
	snap := hiddenSnapshot{
		HiddenComponents: s.sortedNames(),
		LastUpdated:      time.Now().UTC(),
	}
	s.backing.Save(snap)
}

func (s *HiddenStore) sortedNames() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hide adds name to the hidden set. Returns false when it was already hidden.
func (s *HiddenStore) Hide(name string) bool {
	s.reload()
	if s.names[name] {
		return false
	}
	s.names[name] = true
	s.persist()
	return true
}

// Unhide removes name from the hidden set. Returns false when it wasn't hidden.
func (s *HiddenStore) Unhide(name string) bool {
	s.reload()
	if !s.names[name] {
		return false
	}
	delete(s.names, name)
	s.persist()
	return true
}

// IsHidden reports whether name is in the hidden set.
// It satisfies half of [catalog.HiddenSet].
func (s *HiddenStore) IsHidden(name string) bool {
	s.reload()
	return s.names[name]
}

// Names returns the hidden names sorted.
func (s *HiddenStore) Names() []string {
	s.reload()
	return s.sortedNames()
}

// Count returns the number of hidden names.
func (s *HiddenStore) Count() int {
	s.reload()
	return len(s.names)
}

var _ catalog.HiddenSet = (*HiddenStore)(nil)
