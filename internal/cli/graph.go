package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
)

// graphCommand creates the graph command resolving a component's
// dependency neighborhood.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		depth  int
		asJSON bool
		dotOut bool
		svgOut string
	)

	cmd := &cobra.Command{
		Use:   "graph <name>",
		Short: "Show a component's dependency neighborhood",
		Long: `Resolve the dependencies and dependents of a component over the
visible catalog.

Depth 0 resolves only direct relations; depth 1 additionally expands one
hop of indirect relations. References to unknown components are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			g, err := c.Catalog.DependencyGraph(name, depth)
			if err != nil {
				return err
			}
			if g.Center == nil {
				return errors.New(errors.ErrCodeComponentNotFound, "component %q not found", name)
			}

			switch {
			case asJSON:
				return printJSON(g)
			case dotOut:
				fmt.Print(catalog.ToDOT(g))
				return nil
			case svgOut != "":
				svg, err := catalog.RenderSVG(cmd.Context(), catalog.ToDOT(g))
				if err != nil {
					return err
				}
				if err := os.WriteFile(svgOut, svg, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", svgOut, err)
				}
				printSuccess("wrote %s", svgOut)
				return nil
			}

			printGraph(g)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 1, "indirect expansion depth (0 or 1)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&dotOut, "dot", false, "output Graphviz DOT")
	cmd.Flags().StringVar(&svgOut, "svg", "", "render an SVG to the given path")

	return cmd
}

// printGraph renders the neighborhood as indented sections.
func printGraph(g *catalog.Graph) {
	fmt.Println(StyleTitle.Render(g.Center.Name()))

	printGraphSection("depends on", g.Dependencies)
	printGraphSection("depended on by", g.Dependents)
	printGraphSection("indirect dependencies", g.IndirectDependencies)
	printGraphSection("indirect dependents", g.IndirectDependents)
}

func printGraphSection(label string, components []catalog.Component) {
	if len(components) == 0 {
		return
	}
	printNewline()
	printInfo("%s", label)
	for _, comp := range components {
		printDetail("%s %s", iconArrow, comp.Name())
	}
}
