package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/pkg/errors"
)

// featuresCommand creates the features command group managing the
// persisted feature flags.
func (c *CLI) featuresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Manage feature flags",
		Long: `Manage the persisted feature flags.

Known flags:
  scoring_enabled    derive quality scores for components
  activity_enabled   fetch repository activity from providers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := c.Features.All()
			names := make([]string, 0, len(flags))
			for name := range flags {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				state := StyleDim.Render("off")
				if flags[name] {
					state = StyleSuccess.Render("on")
				}
				fmt.Println(StyleHighlight.Render(fmt.Sprintf("%-20s", name)) + " " + state)
			}
			return nil
		},
	}

	cmd.AddCommand(c.featureSetCommand("enable", true))
	cmd.AddCommand(c.featureSetCommand("disable", false))

	return cmd
}

func (c *CLI) featureSetCommand(verb string, enabled bool) *cobra.Command {
	short := "Enable a feature flag"
	if !enabled {
		short = "Disable a feature flag"
	}
	return &cobra.Command{
		Use:   verb + " <flag>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !c.Features.Set(name, enabled) {
				return errors.New(errors.ErrCodeInvalidInput, "unknown feature flag %q", name)
			}
			printSuccess("%sd %s", verb, name)
			return nil
		},
	}
}
