package cli

import (
	"github.com/spf13/cobra"
)

// cacheCommand creates the cache command group managing the activity
// metrics cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the activity metrics cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear all cached activity metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed := c.Cache.Clear()
			printSuccess("cleared %d cached entries", removed)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo("%s", c.Config.ActivityCachePath())
			return nil
		},
	})

	return cmd
}
