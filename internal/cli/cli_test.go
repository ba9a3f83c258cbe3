package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/iandesj/aperture/internal/config"
	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/overlay"
)

const webComponent = `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: web
spec:
  type: service
  lifecycle: production
  owner: team-platform
`

// newTestCLI builds a CLI over a temporary catalog containing one local
// component and an empty data directory.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()

	catalogDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(catalogDir, "web.yaml"), []byte(webComponent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.CatalogDir = catalogDir
	cfg.DataDir = filepath.Join(t.TempDir(), ".aperture")

	return New(cfg, NewLogger(io.Discard, log.ErrorLevel))
}

// execute runs the root command with args, discarding cobra's own output.
func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI(t).RootCommand()

	want := []string{
		"list", "show", "score", "graph", "stats", "systems",
		"import", "forget", "hide", "unhide", "hidden",
		"features", "cache", "completion",
	}
	have := make(map[string]bool)
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestHideAndUnhide(t *testing.T) {
	c := newTestCLI(t)

	if err := execute(t, c, "hide", "web"); err != nil {
		t.Fatal(err)
	}
	if !c.Hidden.IsHidden("web") {
		t.Fatal("web should be hidden")
	}

	if err := execute(t, c, "unhide", "web"); err != nil {
		t.Fatal(err)
	}
	if c.Hidden.IsHidden("web") {
		t.Fatal("web should be visible again")
	}
}

func TestHideUnknownNameIsAccepted(t *testing.T) {
	c := newTestCLI(t)

	if err := execute(t, c, "hide", "ghost"); err != nil {
		t.Fatalf("hiding an unknown name must not error: %v", err)
	}
	if !c.Hidden.IsHidden("ghost") {
		t.Fatal("the name should still be recorded")
	}

	components, err := c.Catalog.HiddenWithData()
	if err != nil {
		t.Fatal(err)
	}
	if len(components) != 0 {
		t.Fatalf("a stale hidden name must not resolve to data: %v", components)
	}
}

func TestShowUnknownComponentFails(t *testing.T) {
	err := execute(t, newTestCLI(t), "show", "ghost")
	if !errors.Is(err, errors.ErrCodeComponentNotFound) {
		t.Fatalf("expected COMPONENT_NOT_FOUND, got %v", err)
	}
}

func TestFeatureToggleCommands(t *testing.T) {
	c := newTestCLI(t)

	if err := execute(t, c, "features", "disable", overlay.FeatureScoring); err != nil {
		t.Fatal(err)
	}
	if c.Features.Enabled(overlay.FeatureScoring) {
		t.Fatal("scoring should be off")
	}
	if opts := c.scoringOptions(); opts.ScoringEnabled || !opts.ActivityEnabled {
		t.Fatalf("unexpected scoring options: %+v", opts)
	}

	if err := execute(t, c, "features", "enable", overlay.FeatureScoring); err != nil {
		t.Fatal(err)
	}
	if !c.Features.Enabled(overlay.FeatureScoring) {
		t.Fatal("scoring should be back on")
	}
}

func TestFeatureToggleUnknownFlagFails(t *testing.T) {
	err := execute(t, newTestCLI(t), "features", "enable", "telemetry")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestForgetRepository(t *testing.T) {
	c := newTestCLI(t)
	c.Imports.Add(catalog.ImportedComponent{
		Component: catalog.Component{
			APIVersion: "backstage.io/v1alpha1",
			Kind:       catalog.KindComponent,
			Metadata:   catalog.Metadata{Name: "api"},
			Spec:       catalog.ComponentSpec{Type: "service", Lifecycle: "production", Owner: "team-api"},
		},
		Source: catalog.ImportSource{Type: catalog.SourceGitHub, Repository: "acme/api"},
	})

	if err := execute(t, c, "forget", "github", "acme/api"); err != nil {
		t.Fatal(err)
	}
	stats := c.Imports.Stats()
	if stats.Total != 0 {
		t.Fatalf("expected empty overlay, got %d", stats.Total)
	}
}

func TestForgetUnknownProviderFails(t *testing.T) {
	err := execute(t, newTestCLI(t), "forget", "bitbucket", "acme/api")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("expected UNSUPPORTED, got %v", err)
	}
}

func TestForgetWithoutArgsFails(t *testing.T) {
	err := execute(t, newTestCLI(t), "forget")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestImportSourceConfiguration(t *testing.T) {
	_, err := importSource("github", config.ProviderConfig{})
	if !errors.Is(err, errors.ErrCodeProviderDisabled) {
		t.Fatalf("disabled provider: got %v", err)
	}

	_, err = importSource("github", config.ProviderConfig{Enabled: true})
	if !errors.Is(err, errors.ErrCodeMissingCredential) {
		t.Fatalf("missing token: got %v", err)
	}

	src, err := importSource("gitlab", config.ProviderConfig{Enabled: true, Token: "glpat-x"})
	if err != nil {
		t.Fatal(err)
	}
	if src.Kind() != catalog.SourceGitLab {
		t.Fatalf("unexpected source kind %q", src.Kind())
	}
}

func TestImportWithNoProvidersFails(t *testing.T) {
	err := execute(t, newTestCLI(t), "import")
	if !errors.Is(err, errors.ErrCodeProviderDisabled) {
		t.Fatalf("expected CONFIG_PROVIDER_DISABLED, got %v", err)
	}
}

func TestImportMissingTokenFails(t *testing.T) {
	c := newTestCLI(t)
	c.Config.GitHub.Enabled = true // token left unset

	// An enabled provider without a credential is misconfigured, not
	// skippable, even when no provider was named explicitly.
	err := execute(t, c, "import")
	if !errors.Is(err, errors.ErrCodeMissingCredential) {
		t.Fatalf("expected CONFIG_MISSING_CREDENTIAL, got %v", err)
	}
}

func TestActivityProvidersRequireEnabledAndToken(t *testing.T) {
	c := newTestCLI(t)
	if got := c.activityProviders(); len(got) != 0 {
		t.Fatalf("no providers should be configured, got %d", len(got))
	}

	// Enabled without a credential behaves as unconfigured.
	c.Config.GitHub.Enabled = true
	c.Config.GitLab.Enabled = true
	if got := c.activityProviders(); len(got) != 0 {
		t.Fatalf("token-less sections must not yield providers, got %d", len(got))
	}

	c.Config.GitHub.Token = "ghp_test"
	c.Config.GitLab.Token = "glpat-test"
	providers := c.activityProviders()
	if len(providers) != 2 {
		t.Fatalf("expected both providers, got %d", len(providers))
	}
	kinds := map[catalog.SourceKind]bool{}
	for _, p := range providers {
		kinds[p.Kind()] = true
	}
	if !kinds[catalog.SourceGitHub] || !kinds[catalog.SourceGitLab] {
		t.Fatalf("unexpected provider kinds: %v", kinds)
	}
}

func TestMetricsWithoutCredentialResolveNil(t *testing.T) {
	catalogDir := t.TempDir()
	cfg := config.New()
	cfg.CatalogDir = catalogDir
	cfg.DataDir = filepath.Join(t.TempDir(), ".aperture")
	cfg.GitHub.Enabled = true // no token configured

	c := New(cfg, NewLogger(io.Discard, log.ErrorLevel))
	c.Imports.Add(catalog.ImportedComponent{
		Component: catalog.Component{
			APIVersion: "backstage.io/v1alpha1",
			Kind:       catalog.KindComponent,
			Metadata:   catalog.Metadata{Name: "api"},
			Spec:       catalog.ComponentSpec{Type: "service", Lifecycle: "production", Owner: "team-api"},
		},
		Source: catalog.ImportSource{Type: catalog.SourceGitHub, Repository: "acme/api"},
	})

	// No provider is registered for github, so the service returns nil
	// without attempting a fetch.
	if got := c.metricsFor(context.Background(), "api"); got != nil {
		t.Fatalf("expected no metrics without a credential, got %+v", got)
	}
	if c.Cache.Len() != 0 {
		t.Fatal("nothing should have been cached")
	}
}

func TestLevelFromName(t *testing.T) {
	tests := []struct {
		name string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
		{"bogus", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := LevelFromName(tt.name); got != tt.want {
			t.Errorf("LevelFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	logger := NewLogger(io.Discard, log.DebugLevel)
	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Fatal("logger should round-trip through context")
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Fatal("missing logger should fall back to the default")
	}
}
