package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// statsCommand creates the stats command summarizing the visible catalog.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog by type and lifecycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.Catalog.Stats()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(stats)
			}

			printKeyValue("components", fmt.Sprintf("%d", stats.Total))
			importStats := c.Imports.Stats()
			printKeyValue("imported", fmt.Sprintf("%d", importStats.Total))
			printKeyValue("hidden", fmt.Sprintf("%d", c.Hidden.Count()))

			printCountSection("by type", stats.ByType)
			printCountSection("by lifecycle", stats.ByLifecycle)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// systemsCommand creates the systems command. Without arguments it lists
// system buckets; with a name it lists that system's components.
func (c *CLI) systemsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "systems [name]",
		Short: "Group the catalog by system",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				components, err := c.Catalog.BySystem(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(components)
				}
				if len(components) == 0 {
					printInfo("no components in system %q", args[0])
					return nil
				}
				for _, comp := range components {
					printComponentLine(c, comp)
				}
				return nil
			}

			buckets, err := c.Catalog.SystemStats()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(buckets)
			}
			for _, b := range buckets {
				name := StyleHighlight.Render(fmt.Sprintf("%-24s", b.System))
				fmt.Println(name + " " + StyleNumber.Render(fmt.Sprintf("%d", b.Total)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// printCountSection prints a labeled map of counts with stable key order.
func printCountSection(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	printNewline()
	printInfo("%s", label)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printDetail("%-14s %d", k, counts[k])
	}
}
