package cli

import (
	"github.com/spf13/cobra"
)

// hideCommand creates the hide command excluding a component from the
// default catalog view.
func (c *CLI) hideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <name>",
		Short: "Hide a component from the catalog view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			comp, err := c.Catalog.Get(name, true)
			if err != nil {
				return err
			}
			if comp == nil {
				// Names that don't resolve may still be hidden; they simply
				// never show up until a matching component appears.
				printWarning("no component named %q in the catalog", name)
			}
			if !c.Hidden.Hide(name) {
				printInfo("%s is already hidden", name)
				return nil
			}
			printSuccess("hid %s", name)
			return nil
		},
	}
}

// unhideCommand creates the unhide command restoring a hidden component.
func (c *CLI) unhideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unhide <name>",
		Short: "Restore a hidden component to the catalog view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !c.Hidden.Unhide(name) {
				printInfo("%s is not hidden", name)
				return nil
			}
			printSuccess("unhid %s", name)
			return nil
		},
	}
}

// hiddenCommand creates the hidden command listing hidden components that
// still resolve in the catalog.
func (c *CLI) hiddenCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "hidden",
		Short: "List hidden components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := c.Catalog.HiddenWithData()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(components)
			}
			if len(components) == 0 {
				printInfo("no hidden components")
				return nil
			}
			for _, comp := range components {
				printComponentLine(c, comp)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
