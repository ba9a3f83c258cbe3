package overlay

import "time"

// Feature flags understood by the engine. Unknown names are rejected by
// the store so a typo can't silently create a dead flag.
const (
	FeatureScoring  = "scoring_enabled"
	FeatureActivity = "activity_enabled"
)

var featureDefaults = map[string]bool{
	FeatureScoring:  true,
	FeatureActivity: true,
}

// featuresSnapshot is the on-disk shape of the feature-flags overlay.
// Only flags that were explicitly set appear in the file; everything else
// falls back to its default.
type featuresSnapshot struct {
	Flags       map[string]bool `json:"flags"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// FeatureStore persists runtime feature toggles. All flags default to on;
// the snapshot records only explicit overrides.
type FeatureStore struct {
	backing Backing
	flags   map[string]bool
}

// NewFeatureStore creates a feature store over backing.
func NewFeatureStore(backing Backing) *FeatureStore {
	return &FeatureStore{backing: backing, flags: make(map[string]bool)}
}

func (s *FeatureStore) reload() {
	s.flags = make(map[string]bool)
	var snap featuresSnapshot
	if !s.backing.Load(&snap) {
		return
	}
	for name, enabled := range snap.Flags {
		if _, known := featureDefaults[name]; known {
			s.flags[name] = enabled
		}
	}
}

func (s *FeatureStore) persist() {
	s.backing.Save(featuresSnapshot{
		Flags:       s.flags,
		LastUpdated: time.Now().UTC(),
	})
}

// Known reports whether name is a recognized feature flag.
func (s *FeatureStore) Known(name string) bool {
	_, ok := featureDefaults[name]
	return ok
}

// Enabled reports the effective state of a flag. Unknown flags read as
// disabled.
func (s *FeatureStore) Enabled(name string) bool {
	s.reload()
	if enabled, ok := s.flags[name]; ok {
		return enabled
	}
	return featureDefaults[name]
}

// Set records an explicit override for a known flag and persists it.
// Returns false for unknown flags.
func (s *FeatureStore) Set(name string, enabled bool) bool {
	if !s.Known(name) {
		return false
	}
	s.reload()
	s.flags[name] = enabled
	s.persist()
	return true
}

// All returns the effective state of every known flag.
func (s *FeatureStore) All() map[string]bool {
	s.reload()
	out := make(map[string]bool, len(featureDefaults))
	for name, def := range featureDefaults {
		if enabled, ok := s.flags[name]; ok {
			out[name] = enabled
		} else {
			out[name] = def
		}
	}
	return out
}
