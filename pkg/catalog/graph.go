package catalog

// Graph holds the dependency neighborhood of one component: its direct
// dependencies and dependents, plus the one-hop-indirect relations when
// resolved with depth 1. Slices are ordered by discovery; no sorting is
// applied.
type Graph struct {
	Center               *Component  `json:"center,omitempty"`
	Dependencies         []Component `json:"dependencies"`
	Dependents           []Component `json:"dependents"`
	IndirectDependencies []Component `json:"indirectDependencies"`
	IndirectDependents   []Component `json:"indirectDependents"`
}

// DependencyGraph resolves the dependency neighborhood of the named
// component over the visible catalog.
//
// depth 0 resolves only direct relations; depth 1 additionally expands one
// hop of indirect dependencies and dependents. The resolver never traverses
// further: indirect expansion excludes the center and everything already in
// the direct sets, so a two-node mutual dependency settles with each node
// in the other's direct set and nothing in the indirect ones. There is no
// explicit cycle detection because the exclusions make growth impossible.
//
// A dependsOn entry naming a component that doesn't resolve is dropped
// silently (dangling-reference tolerance). An unknown center name yields an
// empty graph rather than an error; callers use the nil Center as the
// "no such component" signal.
func (a *Aggregator) DependencyGraph(name string, depth int) (*Graph, error) {
	visible, err := a.List(ListOptions{})
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Dependencies:         []Component{},
		Dependents:           []Component{},
		IndirectDependencies: []Component{},
		IndirectDependents:   []Component{},
	}

	byName := make(map[string]Component, len(visible))
	for _, c := range visible {
		byName[c.Name()] = c
	}
	center, ok := byName[name]
	if !ok {
		return g, nil
	}
	g.Center = &center

	inDeps := map[string]bool{}
	for _, dep := range center.Spec.DependsOn {
		if c, ok := byName[dep]; ok && !inDeps[dep] {
			inDeps[dep] = true
			g.Dependencies = append(g.Dependencies, c)
		}
	}

	inDependents := map[string]bool{}
	for _, c := range visible {
		if c.DependsOn(name) && !inDependents[c.Name()] {
			inDependents[c.Name()] = true
			g.Dependents = append(g.Dependents, c)
		}
	}

	if depth <= 0 {
		return g, nil
	}

	seenIndirect := map[string]bool{}
	for _, dep := range g.Dependencies {
		for _, next := range dep.Spec.DependsOn {
			if next == name || inDeps[next] || seenIndirect[next] {
				continue
			}
			if c, ok := byName[next]; ok {
				seenIndirect[next] = true
				g.IndirectDependencies = append(g.IndirectDependencies, c)
			}
		}
	}

	seenIndirect = map[string]bool{}
	for _, dependent := range g.Dependents {
		for _, c := range visible {
			if !c.DependsOn(dependent.Name()) {
				continue
			}
			if c.Name() == name || inDependents[c.Name()] || seenIndirect[c.Name()] {
				continue
			}
			seenIndirect[c.Name()] = true
			g.IndirectDependents = append(g.IndirectDependents, c)
		}
	}

	return g, nil
}
