package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/scoring"
)

// listCommand creates the list command showing the visible catalog.
func (c *CLI) listCommand() *cobra.Command {
	var (
		localOnly  bool
		showHidden bool
		recent     int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog components",
		Long: `List the components of the merged catalog.

The merged catalog combines the local catalog directory with imported
components; a local component shadows an imported one with the same name.
Hidden components are excluded unless --hidden is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var components []catalog.Component
			var err error
			if recent > 0 {
				components, err = c.Catalog.Recent(recent)
			} else {
				opts := catalog.ListOptions{IncludeHidden: showHidden}
				if localOnly {
					opts.Source = catalog.FilterLocal
				}
				components, err = c.Catalog.List(opts)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(components)
			}
			if len(components) == 0 {
				printInfo("catalog is empty")
				return nil
			}
			for _, comp := range components {
				printComponentLine(c, comp)
			}
			printNewline()
			printDetail("%d component(s)", len(components))
			return nil
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local", false, "only components from the catalog directory")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden components")
	cmd.Flags().IntVar(&recent, "recent", 0, "show only the first N components")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// showCommand creates the show command for one component.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one component in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			comp, err := c.Catalog.Get(name, true)
			if err != nil {
				return err
			}
			if comp == nil {
				return errors.New(errors.ErrCodeComponentNotFound, "component %q not found", name)
			}

			if asJSON {
				return printJSON(comp)
			}

			title := comp.Name()
			if c.Hidden.IsHidden(name) {
				title += " " + StyleDim.Render(iconHidden+" hidden")
			}
			fmt.Println(StyleTitle.Render(title))
			printKeyValue("type", comp.Spec.Type)
			printKeyValue("lifecycle", comp.Spec.Lifecycle)
			printKeyValue("owner", c.ownerLabel(comp.Spec.Owner))
			if comp.Spec.System != "" {
				printKeyValue("system", comp.Spec.System)
			}
			if comp.Metadata.Description != "" {
				printKeyValue("description", comp.Metadata.Description)
			}
			if len(comp.Metadata.Tags) > 0 {
				printKeyValue("tags", strings.Join(comp.Metadata.Tags, ", "))
			}
			for _, link := range comp.Metadata.Links {
				printKeyValue("link", StyleLink.Render(link.URL))
			}
			if len(comp.Spec.DependsOn) > 0 {
				printKeyValue("depends on", strings.Join(comp.Spec.DependsOn, ", "))
			}

			kind, ok, err := c.Catalog.Source(name)
			if err != nil {
				return err
			}
			if ok {
				printKeyValue("source", sourceLabel(c, name, kind))
			}

			score := scoring.Score(*comp, c.metricsFor(cmd.Context(), name), time.Now().UTC(), c.scoringOptions())
			printKeyValue("score", fmt.Sprintf("%s %s", StyleNumber.Render(fmt.Sprintf("%d", score.Total)), tierBadge(score.Tier)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// printComponentLine prints one catalog row for the list view.
func printComponentLine(c *CLI, comp catalog.Component) {
	name := StyleHighlight.Render(fmt.Sprintf("%-24s", comp.Name()))
	meta := fmt.Sprintf("%-10s %-14s %s", comp.Spec.Type, comp.Spec.Lifecycle, comp.Spec.Owner)
	line := name + " " + StyleValue.Render(meta)
	if comp.Spec.System != "" {
		line += " " + StyleDim.Render("("+comp.Spec.System+")")
	}
	if c.Hidden.IsHidden(comp.Name()) {
		line += " " + StyleDim.Render(iconHidden)
	}
	fmt.Println(line)
}

// ownerLabel resolves an owner reference against the local groups and
// appends the group's display name when it has one.
func (c *CLI) ownerLabel(owner string) string {
	group, err := c.Entities.GroupByRef(owner)
	if err != nil || group == nil {
		return owner
	}
	if name := group.Spec.Profile.DisplayName; name != "" {
		return owner + " " + StyleDim.Render("("+name+")")
	}
	return owner
}

// sourceLabel formats a component's provenance for display, including the
// repository path for imported components.
func sourceLabel(c *CLI, name string, kind catalog.SourceKind) string {
	if kind == catalog.SourceLocal {
		return "local (" + c.Entities.Dir() + ")"
	}
	if ic := c.Imports.Find(name); ic != nil {
		return string(kind) + " (" + ic.Source.Repository + ")"
	}
	return string(kind)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
