package overlay

import (
	"sort"
	"time"

	"github.com/iandesj/aperture/pkg/catalog"
)

// importedSnapshot is the on-disk shape of the imported-entities overlay.
type importedSnapshot struct {
	Components  []catalog.ImportedComponent `json:"components"`
	LastUpdated time.Time                   `json:"lastUpdated"`
}

// ImportStoreStats summarizes the overlay per provider and repository.
type ImportStoreStats struct {
	Total        int            `json:"total"`
	ByProvider   map[string]int `json:"byProvider"`
	ByRepository map[string]int `json:"byRepository"`
}

// ImportStore persists components brought in from external providers.
//
// Entries are keyed by "provider:repository:name", so re-importing a
// repository upserts its components in place while imports from other
// repositories are untouched. Listing is sorted by that composite key,
// giving the aggregator a deterministic merge order.
type ImportStore struct {
	backing    Backing
	components map[string]catalog.ImportedComponent
}

// NewImportStore creates an import store over backing.
func NewImportStore(backing Backing) *ImportStore {
	return &ImportStore{
		backing:    backing,
		components: make(map[string]catalog.ImportedComponent),
	}
}

func (s *ImportStore) reload() {
	s.components = make(map[string]catalog.ImportedComponent)
	var snap importedSnapshot
	if !s.backing.Load(&snap) {
		return
	}
	for _, ic := range snap.Components {
		s.components[ic.Key()] = ic
	}
}

func (s *ImportStore) persist() {
	snap := importedSnapshot{
		Components:  s.list(),
		LastUpdated: time.Now().UTC(),
	}
	s.backing.Save(snap)
}

func (s *ImportStore) list() []catalog.ImportedComponent {
	keys := make([]string, 0, len(s.components))
	for k := range s.components {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]catalog.ImportedComponent, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.components[k])
	}
	return out
}

// Components returns all imported components sorted by composite key.
// It satisfies [catalog.ImportReader].
func (s *ImportStore) Components() ([]catalog.ImportedComponent, error) {
	s.reload()
	return s.list(), nil
}

// Add upserts one imported component and persists the overlay.
func (s *ImportStore) Add(ic catalog.ImportedComponent) {
	s.reload()
	ic.LastSynced = time.Now().UTC()
	s.components[ic.Key()] = ic
	s.persist()
}

// Find looks up an imported component by name, first match in key order.
// Returns nil when the name was never imported.
func (s *ImportStore) Find(name string) *catalog.ImportedComponent {
	s.reload()
	for _, ic := range s.list() {
		if ic.Component.Name() == name {
			found := ic
			return &found
		}
	}
	return nil
}

// Stats summarizes the overlay contents.
func (s *ImportStore) Stats() ImportStoreStats {
	s.reload()
	stats := ImportStoreStats{
		Total:        len(s.components),
		ByProvider:   make(map[string]int),
		ByRepository: make(map[string]int),
	}
	for _, ic := range s.components {
		stats.ByProvider[string(ic.Source.Type)]++
		stats.ByRepository[ic.Source.Repository]++
	}
	return stats
}

// ClearRepository removes every component imported from one repository of
// one provider. Returns the number of entries removed.
func (s *ImportStore) ClearRepository(provider catalog.SourceKind, repository string) int {
	s.reload()
	removed := 0
	for key, ic := range s.components {
		if ic.Source.Type == provider && ic.Source.Repository == repository {
			delete(s.components, key)
			removed++
		}
	}
	if removed > 0 {
		s.persist()
	}
	return removed
}

// Clear removes every imported component. Returns the number removed.
func (s *ImportStore) Clear() int {
	s.reload()
	removed := len(s.components)
	s.components = make(map[string]catalog.ImportedComponent)
	s.persist()
	return removed
}

var _ catalog.ImportReader = (*ImportStore)(nil)
