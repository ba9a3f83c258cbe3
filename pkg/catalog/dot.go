package catalog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a resolved dependency graph to Graphviz DOT format.
// Dependencies point at the center, the center points at its dependents,
// and indirect relations are rendered with dashed edges through their
// direct hop. The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	if g.Center == nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	center := g.Center.Name()

	fmt.Fprintf(&buf, "  %q [fillcolor=\"#b3d4fc\", penwidth=2];\n", center)
	for _, c := range g.Dependencies {
		fmt.Fprintf(&buf, "  %q;\n", c.Name())
	}
	for _, c := range g.Dependents {
		fmt.Fprintf(&buf, "  %q;\n", c.Name())
	}
	for _, c := range g.IndirectDependencies {
		fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=\"#f0f0f0\"];\n", c.Name())
	}
	for _, c := range g.IndirectDependents {
		fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=\"#f0f0f0\"];\n", c.Name())
	}

	buf.WriteString("\n")
	for _, dep := range g.Dependencies {
		fmt.Fprintf(&buf, "  %q -> %q;\n", center, dep.Name())
		for _, indirect := range g.IndirectDependencies {
			if dep.DependsOn(indirect.Name()) {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", dep.Name(), indirect.Name())
			}
		}
	}
	for _, dependent := range g.Dependents {
		fmt.Fprintf(&buf, "  %q -> %q;\n", dependent.Name(), center)
		for _, indirect := range g.IndirectDependents {
			if indirect.DependsOn(dependent.Name()) {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", indirect.Name(), dependent.Name())
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT string to SVG bytes using graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse dot: %w", err)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}
