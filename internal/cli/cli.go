// Package cli implements the aperture command-line interface.
//
// Commands are thin adapters: they wire the catalog stores, the aggregator,
// and the provider clients from configuration, then delegate to the library
// packages. All commands support --verbose (-v) for debug-level logging;
// loggers travel through context.Context.
package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/internal/config"
	"github.com/iandesj/aperture/pkg/activity"
	"github.com/iandesj/aperture/pkg/buildinfo"
	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/importer"
	"github.com/iandesj/aperture/pkg/integrations/github"
	"github.com/iandesj/aperture/pkg/integrations/gitlab"
	"github.com/iandesj/aperture/pkg/overlay"
	"github.com/iandesj/aperture/pkg/scoring"
)

// appName is the application name used for display and the config file hint.
const appName = "aperture"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds the shared state for all commands: configuration, the overlay
// stores, and the services built on top of them.
type CLI struct {
	Config *config.Config
	Logger *log.Logger

	Entities *catalog.EntityStore
	Imports  *overlay.ImportStore
	Hidden   *overlay.HiddenStore
	Features *overlay.FeatureStore
	Cache    *activity.Cache

	Catalog  *catalog.Aggregator
	Activity *activity.Service
}

// New wires a CLI instance from configuration. The overlay stores are
// file-backed inside cfg's data directory; activity providers are built
// from the enabled provider sections.
func New(cfg *config.Config, logger *log.Logger) *CLI {
	if logger == nil {
		logger = log.Default()
	}

	c := &CLI{
		Config:   cfg,
		Logger:   logger,
		Entities: catalog.NewEntityStore(cfg.CatalogDir, logger),
		Imports:  overlay.NewImportStore(overlay.NewFileBacking(cfg.ImportedPath(), logger)),
		Hidden:   overlay.NewHiddenStore(overlay.NewFileBacking(cfg.HiddenPath(), logger)),
		Features: overlay.NewFeatureStore(overlay.NewFileBacking(cfg.FeaturesPath(), logger)),
		Cache:    activity.NewCache(overlay.NewFileBacking(cfg.ActivityCachePath(), logger)),
	}
	c.Catalog = catalog.NewAggregator(c.Entities, c.Imports, c.Hidden)
	c.Activity = activity.NewService(c.Imports, c.Cache, c.activityProviders(), logger)
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Aperture aggregates software catalogs from local and remote sources",
		Long:         `Aperture merges entity descriptors from a local catalog directory with components imported from GitHub and GitLab, and exposes the combined catalog: listing, dependency graphs, quality scores, and repository activity.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.systemsCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.forgetCommand())
	root.AddCommand(c.hideCommand())
	root.AddCommand(c.unhideCommand())
	root.AddCommand(c.hiddenCommand())
	root.AddCommand(c.featuresCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// activityProviders builds the metrics providers for provider sections
// that are enabled and carry a token. A section missing either is treated
// as unconfigured: no provider is registered, so metrics for its
// components resolve to nil without any network call.
func (c *CLI) activityProviders() []activity.Provider {
	var providers []activity.Provider
	if pc := c.Config.GitHub; pc.Enabled && pc.Token != "" {
		providers = append(providers, github.NewClient(pc.Token))
	}
	if pc := c.Config.GitLab; pc.Enabled && pc.Token != "" {
		providers = append(providers, gitlab.NewClient(pc.Token))
	}
	return providers
}

// importSource builds the import adapter for one provider section.
// Import runs require the section to be enabled and carry a token.
func importSource(name string, pc config.ProviderConfig) (importer.Source, error) {
	if !pc.Enabled {
		return nil, errors.New(errors.ErrCodeProviderDisabled, "%s import is disabled; set %s.enabled in %s", name, name, configFileHint())
	}
	if pc.Token == "" {
		return nil, errors.New(errors.ErrCodeMissingCredential, "%s import needs a token; set %s.token or APERTURE_%s__TOKEN", name, name, envName(name))
	}
	switch name {
	case "github":
		return github.NewClient(pc.Token), nil
	case "gitlab":
		return gitlab.NewClient(pc.Token), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown provider %q", name)
}

func configFileHint() string {
	if path := os.Getenv("APERTURE_CONFIG"); path != "" {
		return path
	}
	return "aperture.yaml"
}

func envName(provider string) string {
	switch provider {
	case "gitlab":
		return "GITLAB"
	default:
		return "GITHUB"
	}
}

// scoringOptions reads the feature flags into scoring options.
func (c *CLI) scoringOptions() scoring.Options {
	return scoring.Options{
		ScoringEnabled:  c.Features.Enabled(overlay.FeatureScoring),
		ActivityEnabled: c.Features.Enabled(overlay.FeatureActivity),
	}
}

// metricsFor fetches activity metrics for a component, or nil when the
// activity feature is off. Failures degrade to nil inside the service.
func (c *CLI) metricsFor(ctx context.Context, name string) *activity.Metrics {
	if !c.Features.Enabled(overlay.FeatureActivity) {
		return nil
	}
	return c.Activity.ComponentMetrics(ctx, name)
}
