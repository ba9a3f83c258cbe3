package cli

import (
	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
)

// forgetCommand creates the forget command removing imported components
// from the overlay. Local catalog files are never touched.
func (c *CLI) forgetCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "forget [provider owner/repo]",
		Short: "Remove imported components",
		Long: `Remove imported components from the overlay, either everything that
was imported from one repository or, with --all, the whole overlay.

Forgetting does not touch the local catalog directory; re-running import
brings the components back.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				removed := c.Imports.Clear()
				printSuccess("removed %d imported component(s)", removed)
				return nil
			}
			if len(args) != 2 {
				return errors.New(errors.ErrCodeInvalidInput, "expected a provider and a repository, or --all")
			}

			provider := catalog.SourceKind(args[0])
			if provider != catalog.SourceGitHub && provider != catalog.SourceGitLab {
				return errors.New(errors.ErrCodeUnsupported, "unknown provider %q", args[0])
			}
			removed := c.Imports.ClearRepository(provider, args[1])
			if removed == 0 {
				printInfo("nothing imported from %s %s", provider, args[1])
				return nil
			}
			printSuccess("removed %d component(s) imported from %s", removed, args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every imported component")

	return cmd
}
