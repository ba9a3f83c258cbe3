// Package importer implements the synchronization pipeline that pulls
// catalog descriptors from remote source-control providers into the
// imported-entities overlay.
//
// A run takes a provider adapter and a list of target patterns
// ("owner/repo" or "owner/*"), expands wildcards into concrete
// repositories, probes each repository for a catalog descriptor, and
// upserts every valid Component found. Most repositories will not carry a
// descriptor; those count as skipped, not failed.
package importer

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
)

// Source is a provider adapter the pipeline can import from.
// Implemented by the github and gitlab clients.
type Source interface {
	Kind() catalog.SourceKind
	// ListRepositories expands an owner/group into full repository paths.
	ListRepositories(ctx context.Context, owner string) ([]string, error)
	// HasDescriptor reports whether the repository carries a catalog
	// descriptor at its default branch.
	HasDescriptor(ctx context.Context, repository string) (bool, error)
	// FetchDescriptor downloads and parses the descriptor; (nil, nil)
	// means the file is absent or not a Component.
	FetchDescriptor(ctx context.Context, repository string) (*catalog.Component, error)
	// DescriptorURL returns the browsable URL of the descriptor.
	DescriptorURL(repository string) string
}

// Writer is the write side of the imported-entities overlay.
// Implemented by the overlay import store.
type Writer interface {
	Add(catalog.ImportedComponent)
}

// RunError is one failure recorded during a run. The "all" repository
// marks a run-wide halt (rate limit exhaustion).
type RunError struct {
	Repository string `json:"repository"`
	Message    string `json:"message"`
}

// Result aggregates the outcome of one import run.
//
// Total counts resolved repositories, so success+failed+skipped == total
// unless a rate limit halted the run early. Wildcard expansion errors are
// recorded in Errors but do not contribute to any counter.
type Result struct {
	RunID    string             `json:"runId"`
	Provider catalog.SourceKind `json:"provider"`
	Success  int                `json:"success"`
	Failed   int                `json:"failed"`
	Skipped  int                `json:"skipped"`
	Total    int                `json:"total"`
	Errors   []RunError         `json:"errors"`
}

// Pipeline synchronizes descriptors from provider adapters into the
// imported-entities overlay.
type Pipeline struct {
	store  Writer
	logger *log.Logger
}

// NewPipeline creates a pipeline writing to store.
// Pass nil for logger to use log.Default().
func NewPipeline(store Writer, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{store: store, logger: logger}
}

// Run imports all targets from one provider. It returns an error only
// when there is nothing to do; per-repository failures are recorded in
// the result and never abort the run, except a rate-limit rejection,
// which halts the remainder of this provider's run.
func (p *Pipeline) Run(ctx context.Context, src Source, targets []string) (*Result, error) {
	if len(targets) == 0 {
		return nil, errors.New(errors.ErrCodeNoTargets, "no import targets configured for %s", src.Kind())
	}

	result := &Result{
		RunID:    uuid.NewString(),
		Provider: src.Kind(),
	}

	repos := p.expand(ctx, src, targets, result)
	result.Total = len(repos)

	for _, repo := range repos {
		if err := p.importOne(ctx, src, repo, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RunError{Repository: repo, Message: errors.UserMessage(err)})
			if errors.IsRateLimited(err) {
				result.Errors = append(result.Errors, RunError{Repository: "all", Message: err.Error()})
				p.logger.Warn("rate limit exhausted; halting import run", "provider", src.Kind())
				break
			}
		}
	}

	p.logger.Info("import run finished",
		"run", result.RunID,
		"provider", result.Provider,
		"success", result.Success,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"total", result.Total)
	return result, nil
}

// expand resolves wildcard patterns into concrete repositories.
// Expansion failures are recorded per pattern and do not abort the run.
func (p *Pipeline) expand(ctx context.Context, src Source, targets []string, result *Result) []string {
	var repos []string
	for _, target := range targets {
		owner, isWildcard := strings.CutSuffix(target, "/*")
		if !isWildcard {
			repos = append(repos, target)
			continue
		}
		expanded, err := src.ListRepositories(ctx, owner)
		if err != nil {
			p.logger.Warn("wildcard expansion failed", "pattern", target, "err", err)
			result.Errors = append(result.Errors, RunError{Repository: target, Message: errors.UserMessage(err)})
			continue
		}
		repos = append(repos, expanded...)
	}
	return repos
}

// importOne processes a single repository, updating the success/skipped
// counters directly; a returned error means the repository failed.
func (p *Pipeline) importOne(ctx context.Context, src Source, repo string, result *Result) error {
	exists, err := src.HasDescriptor(ctx, repo)
	if err != nil {
		return err
	}
	if !exists {
		result.Skipped++
		return nil
	}

	component, err := src.FetchDescriptor(ctx, repo)
	if err != nil {
		return err
	}
	if component == nil {
		result.Skipped++
		return nil
	}

	p.store.Add(catalog.ImportedComponent{
		Component: *component,
		Source: catalog.ImportSource{
			Type:       src.Kind(),
			Repository: repo,
			URL:        src.DescriptorURL(repo),
		},
	})
	result.Success++
	p.logger.Debug("imported component", "component", component.Name(), "repository", repo)
	return nil
}

// Combine sums several runs (one per provider) into one aggregate result.
// The combined result has its own run ID and no provider.
func Combine(results ...*Result) *Result {
	combined := &Result{RunID: uuid.NewString()}
	for _, r := range results {
		if r == nil {
			continue
		}
		combined.Success += r.Success
		combined.Failed += r.Failed
		combined.Skipped += r.Skipped
		combined.Total += r.Total
		combined.Errors = append(combined.Errors, r.Errors...)
	}
	return combined
}
