package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/internal/config"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/importer"
)

// importCommand creates the import command synchronizing descriptors from
// the configured providers into the imported-entities overlay.
func (c *CLI) importCommand() *cobra.Command {
	var (
		provider string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import catalog descriptors from GitHub and GitLab",
		Long: `Import catalog-info.yaml descriptors from the configured providers.

Targets come from the provider sections of the configuration: "owner/repo"
imports a single repository, "owner/*" expands to every repository of the
owner or group. Repositories without a descriptor are skipped; a rate-limit
rejection halts the rest of that provider's run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := map[string]config.ProviderConfig{
				"github": c.Config.GitHub,
				"gitlab": c.Config.GitLab,
			}

			names := []string{"github", "gitlab"}
			if provider != "" {
				if _, ok := sections[provider]; !ok {
					return errors.New(errors.ErrCodeUnsupported, "unknown provider %q", provider)
				}
				names = []string{provider}
			}

			var results []*importer.Result
			for _, name := range names {
				result, err := c.runImport(cmd.Context(), name, sections[name])
				if err != nil {
					// The run-everything default skips providers that are
					// deliberately disabled; everything else (missing token,
					// no targets) is misconfiguration and blocks the run.
					if provider == "" && errors.Is(err, errors.ErrCodeProviderDisabled) {
						printDetail("%s: %s", name, errors.UserMessage(err))
						continue
					}
					return err
				}
				results = append(results, result)
			}
			if len(results) == 0 {
				return errors.New(errors.ErrCodeProviderDisabled, "no providers available; enable github or gitlab in %s", configFileHint())
			}

			combined := importer.Combine(results...)
			if asJSON {
				return printJSON(combined)
			}
			printResult(combined)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "import from one provider only (github or gitlab)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// runImport executes one provider's import run.
func (c *CLI) runImport(ctx context.Context, name string, pc config.ProviderConfig) (*importer.Result, error) {
	src, err := importSource(name, pc)
	if err != nil {
		return nil, err
	}

	printInfo("importing from %s (%d target(s))", name, len(pc.Targets))
	pipeline := importer.NewPipeline(c.Imports, loggerFromContext(ctx))
	return pipeline.Run(ctx, src, pc.Targets)
}

// printResult renders an import run summary.
func printResult(r *importer.Result) {
	printNewline()
	printSuccess("imported %d component(s)", r.Success)
	printDetail("%d skipped, %d failed, %d repositories total", r.Skipped, r.Failed, r.Total)

	for _, runErr := range r.Errors {
		if runErr.Repository == "all" {
			printWarning("run halted: %s", runErr.Message)
			continue
		}
		printDetail("%s %s: %s", iconError, runErr.Repository, runErr.Message)
	}
}
