// Package gitlab implements the GitLab provider adapter: project listing
// for wildcard import targets, catalog descriptor lookup, and repository
// activity metrics.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iandesj/aperture/pkg/activity"
	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/integrations"
)

const perPage = 100

// Client provides access to the GitLab API for catalog imports and
// activity metrics. Projects are addressed by their full
// "group/subgroup/project" path.
type Client struct {
	api     *integrations.Client
	baseURL string
}

// NewClient creates a GitLab API client authenticated with a private
// token. Pass an empty string for token to use unauthenticated requests.
func NewClient(token string) *Client {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": token}
	}
	return &Client{
		api:     integrations.NewClient(headers),
		baseURL: "https://gitlab.com/api/v4",
	}
}

// Kind identifies the provider for import provenance.
func (c *Client) Kind() catalog.SourceKind { return catalog.SourceGitLab }

// ListRepositories lists all projects under a group (including subgroups)
// as full namespace paths. When the path is not a group it falls back to
// user projects, preferring the membership endpoint (which includes
// private projects) when the token belongs to that user.
func (c *Client) ListRepositories(ctx context.Context, owner string) ([]string, error) {
	groupURL := func(page int) string {
		return fmt.Sprintf("%s/groups/%s/projects?include_subgroups=true&per_page=%d&page=%d",
			c.baseURL, integrations.URLEncode(owner), perPage, page)
	}
	projects, groupErr := c.paginateProjects(ctx, groupURL)
	if groupErr == nil {
		return projects, nil
	}
	if !errors.Is(groupErr, errors.ErrCodeNotFound) {
		return nil, groupErr
	}

	// Not a group. Resolve the authenticated user to decide between the
	// membership endpoint and the public per-user one.
	var user struct {
		Username string `json:"username"`
	}
	if err := c.api.GetJSON(ctx, c.baseURL+"/user", &user); err != nil {
		return nil, groupErr
	}
	if user.Username == owner {
		return c.paginateProjects(ctx, func(page int) string {
			return fmt.Sprintf("%s/projects?membership=true&per_page=%d&page=%d", c.baseURL, perPage, page)
		})
	}
	return c.paginateProjects(ctx, func(page int) string {
		return fmt.Sprintf("%s/users/%s/projects?per_page=%d&page=%d",
			c.baseURL, integrations.URLEncode(owner), perPage, page)
	})
}

func (c *Client) paginateProjects(ctx context.Context, urlFor func(page int) string) ([]string, error) {
	var projects []string
	for page := 1; ; page++ {
		var batch []struct {
			PathWithNamespace string `json:"path_with_namespace"`
		}
		if err := c.api.GetJSON(ctx, urlFor(page), &batch); err != nil {
			return nil, err
		}
		for _, p := range batch {
			projects = append(projects, p.PathWithNamespace)
		}
		if len(batch) < perPage {
			break
		}
	}
	return projects, nil
}

// HasDescriptor reports whether the project carries a catalog descriptor
// file at the default branch.
func (c *Client) HasDescriptor(ctx context.Context, repository string) (bool, error) {
	resp, err := c.api.Do(ctx, c.fileURL(repository, false), nil)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}

// FetchDescriptor downloads and parses the project's catalog descriptor.
// Returns (nil, nil) when the file is absent or doesn't describe a
// Component.
func (c *Client) FetchDescriptor(ctx context.Context, repository string) (*catalog.Component, error) {
	content, err := c.api.GetText(ctx, c.fileURL(repository, true))
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return catalog.ParseComponent([]byte(content))
}

// DescriptorURL returns the browsable URL of the project's descriptor.
func (c *Client) DescriptorURL(repository string) string {
	return fmt.Sprintf("https://gitlab.com/%s/-/blob/%s/%s",
		repository, integrations.DefaultBranch, integrations.DescriptorFileName)
}

func (c *Client) fileURL(repository string, raw bool) string {
	url := fmt.Sprintf("%s/projects/%s/repository/files/%s",
		c.baseURL, integrations.URLEncode(repository), integrations.URLEncode(integrations.DescriptorFileName))
	if raw {
		url += "/raw"
	}
	return url + "?ref=" + integrations.DefaultBranch
}

// RepositoryActivity fetches the newest commit timestamp and open
// issue/merge-request counts for a project. Counts come from the X-Total
// pagination header of a single-item page rather than from fetching every
// page. Individual endpoint failures degrade to zero values; rate-limit
// rejections propagate.
func (c *Client) RepositoryActivity(ctx context.Context, repository string) (*activity.Metrics, error) {
	metrics := &activity.Metrics{Source: catalog.SourceGitLab}
	encoded := integrations.URLEncode(repository)

	var commits []struct {
		CreatedAt time.Time `json:"created_at"`
	}
	url := fmt.Sprintf("%s/projects/%s/repository/commits?per_page=1", c.baseURL, encoded)
	if err := c.api.GetJSON(ctx, url, &commits); err != nil {
		if errors.IsRateLimited(err) {
			return nil, err
		}
	} else if len(commits) > 0 {
		t := commits[0].CreatedAt
		metrics.LastCommitDate = &t
	}

	issues, err := c.collectionTotal(ctx,
		fmt.Sprintf("%s/projects/%s/issues?state=opened&per_page=1", c.baseURL, encoded))
	if err != nil {
		if errors.IsRateLimited(err) {
			return nil, err
		}
	} else {
		metrics.OpenIssuesCount = issues
	}

	mrs, err := c.collectionTotal(ctx,
		fmt.Sprintf("%s/projects/%s/merge_requests?state=opened&per_page=1", c.baseURL, encoded))
	if err != nil {
		if errors.IsRateLimited(err) {
			return nil, err
		}
	} else {
		metrics.OpenPullRequestsCount = mrs
	}

	return metrics, nil
}

// collectionTotal reads the X-Total header of a paginated collection.
func (c *Client) collectionTotal(ctx context.Context, url string) (int, error) {
	resp, err := c.api.Do(ctx, url, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return totalHeader(resp), nil
}

func totalHeader(resp *http.Response) int {
	total, err := strconv.Atoi(resp.Header.Get("X-Total"))
	if err != nil {
		return 0
	}
	return total
}
