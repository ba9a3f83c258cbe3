package catalog

import (
	"sort"
)

// UncategorizedSystem is the implicit bucket for components without a system.
const UncategorizedSystem = "uncategorized"

// DefaultRecentLimit is the number of components Recent returns when the
// caller doesn't ask for a specific count.
const DefaultRecentLimit = 6

// ImportReader is the read side of the imported-entities overlay consumed
// by the aggregator.
type ImportReader interface {
	// Components returns all imported components in a deterministic order.
	Components() ([]ImportedComponent, error)
}

// HiddenSet is the read side of the hidden-names overlay.
type HiddenSet interface {
	IsHidden(name string) bool
	Names() []string
}

// SourceFilter restricts which sources List draws from.
type SourceFilter string

const (
	// FilterAll merges local and imported entities (local precedence).
	FilterAll SourceFilter = ""
	// FilterLocal restricts the view to entities from the catalog directory.
	FilterLocal SourceFilter = "local"
)

// ListOptions controls List behavior.
type ListOptions struct {
	Source        SourceFilter
	IncludeHidden bool
}

// Stats summarizes the visible catalog grouped by type and lifecycle.
type Stats struct {
	Total       int            `json:"total"`
	ByType      map[string]int `json:"byType"`
	ByLifecycle map[string]int `json:"byLifecycle"`
}

// SystemStats summarizes one system bucket of the visible catalog.
type SystemStats struct {
	System string         `json:"system"`
	Total  int            `json:"total"`
	ByType map[string]int `json:"byType"`
}

// Aggregator merges the local entity store with the imported-entities
// overlay and subtracts the hidden set, exposing the canonical read API
// over the resulting catalog view.
//
// The canonical view is a set keyed by component name: when a local entity
// and an imported entity share a name, the local entity strictly wins and
// the imported one is dropped from the view (it stays in the overlay for
// provenance lookups).
type Aggregator struct {
	entities *EntityStore
	imports  ImportReader
	hidden   HiddenSet
}

// NewAggregator wires an aggregator over its three sources.
func NewAggregator(entities *EntityStore, imports ImportReader, hidden HiddenSet) *Aggregator {
	return &Aggregator{entities: entities, imports: imports, hidden: hidden}
}

// List returns the visible catalog as an ordered sequence.
//
// The order is the construction order of the merged view: imported entities
// first (in the overlay's key order), then local entities appended, with
// name collisions overwritten in place. This order is documented but
// arbitrary; it is stable across calls, which is all Recent relies on.
func (a *Aggregator) List(opts ListOptions) ([]Component, error) {
	var components []Component
	var err error
	if opts.Source == FilterLocal {
		components, err = a.entities.Components()
	} else {
		components, err = a.union()
	}
	if err != nil {
		return nil, err
	}

	if opts.IncludeHidden {
		return components, nil
	}
	visible := components[:0:0]
	for _, c := range components {
		if !a.hidden.IsHidden(c.Name()) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Get resolves a component by name, respecting the hidden filter unless
// includeHidden is set. Returns (nil, nil) when no such component is
// visible; absence is a value, not an error.
func (a *Aggregator) Get(name string, includeHidden bool) (*Component, error) {
	components, err := a.List(ListOptions{IncludeHidden: includeHidden})
	if err != nil {
		return nil, err
	}
	for i := range components {
		if components[i].Name() == name {
			return &components[i], nil
		}
	}
	return nil, nil
}

// Source reports the provenance of the named component: SourceLocal for
// entities from the catalog directory, or the provider kind of the first
// matching imported entity. ok is false when the name is unknown.
func (a *Aggregator) Source(name string) (kind SourceKind, ok bool, err error) {
	locals, err := a.entities.Components()
	if err != nil {
		return "", false, err
	}
	for _, c := range locals {
		if c.Name() == name {
			return SourceLocal, true, nil
		}
	}

	imported, err := a.imports.Components()
	if err != nil {
		return "", false, err
	}
	for _, ic := range imported {
		if ic.Component.Name() == name {
			return ic.Source.Type, true, nil
		}
	}
	return "", false, nil
}

// Recent returns up to limit components in catalog order.
// A non-positive limit means DefaultRecentLimit.
func (a *Aggregator) Recent(limit int) ([]Component, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	components, err := a.List(ListOptions{})
	if err != nil {
		return nil, err
	}
	if len(components) > limit {
		components = components[:limit]
	}
	return components, nil
}

// Stats computes counts grouped by type and lifecycle over the visible set.
func (a *Aggregator) Stats() (*Stats, error) {
	components, err := a.List(ListOptions{})
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Total:       len(components),
		ByType:      make(map[string]int),
		ByLifecycle: make(map[string]int),
	}
	for _, c := range components {
		stats.ByType[c.Spec.Type]++
		stats.ByLifecycle[c.Spec.Lifecycle]++
	}
	return stats, nil
}

// Systems returns the sorted unique system names across the visible set.
// Components without a system do not contribute a name here; they appear
// only in the UncategorizedSystem bucket of SystemStats.
func (a *Aggregator) Systems() ([]string, error) {
	components, err := a.List(ListOptions{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var systems []string
	for _, c := range components {
		if c.Spec.System != "" && !seen[c.Spec.System] {
			seen[c.Spec.System] = true
			systems = append(systems, c.Spec.System)
		}
	}
	sort.Strings(systems)
	return systems, nil
}

// BySystem returns the visible components belonging to the named system.
// The UncategorizedSystem name selects components without a system.
func (a *Aggregator) BySystem(system string) ([]Component, error) {
	components, err := a.List(ListOptions{})
	if err != nil {
		return nil, err
	}
	var out []Component
	for _, c := range components {
		if bucketFor(c) == system {
			out = append(out, c)
		}
	}
	return out, nil
}

// SystemStats groups the visible catalog by system, with the implicit
// uncategorized bucket last. Buckets are otherwise sorted by name.
func (a *Aggregator) SystemStats() ([]SystemStats, error) {
	components, err := a.List(ListOptions{})
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*SystemStats)
	for _, c := range components {
		name := bucketFor(c)
		b, ok := buckets[name]
		if !ok {
			b = &SystemStats{System: name, ByType: make(map[string]int)}
			buckets[name] = b
		}
		b.Total++
		b.ByType[c.Spec.Type]++
	}

	out := make([]SystemStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].System == UncategorizedSystem) != (out[j].System == UncategorizedSystem) {
			return out[j].System == UncategorizedSystem
		}
		return out[i].System < out[j].System
	})
	return out, nil
}

// HiddenWithData resolves the hidden names against the unfiltered union
// and returns the components that still exist. Stale hidden entries are
// silently dropped from the result (not purged from the store).
func (a *Aggregator) HiddenWithData() ([]Component, error) {
	all, err := a.union()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Component, len(all))
	for _, c := range all {
		byName[c.Name()] = c
	}

	var out []Component
	for _, name := range a.hidden.Names() {
		if c, ok := byName[name]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// union builds the merged catalog: imported entities seed the sequence,
// local entities overwrite collisions in place or append.
func (a *Aggregator) union() ([]Component, error) {
	imported, err := a.imports.Components()
	if err != nil {
		return nil, err
	}
	locals, err := a.entities.Components()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(imported)+len(locals))
	merged := make([]Component, 0, len(imported)+len(locals))

	add := func(c Component) {
		if i, ok := index[c.Name()]; ok {
			merged[i] = c
			return
		}
		index[c.Name()] = len(merged)
		merged = append(merged, c)
	}
	for _, ic := range imported {
		add(ic.Component)
	}
	for _, c := range locals {
		add(c)
	}
	return merged, nil
}

func bucketFor(c Component) string {
	if c.Spec.System == "" {
		return UncategorizedSystem
	}
	return c.Spec.System
}
