// Package github implements the GitHub provider adapter: repository
// listing for wildcard import targets, catalog descriptor lookup, and
// repository activity metrics.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iandesj/aperture/pkg/activity"
	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/integrations"
)

const perPage = 100

// linkPagePattern extracts the page number from a Link-header URL.
var linkPagePattern = regexp.MustCompile(`[?&]page=(\d+)`)

// Client provides access to the GitHub API for catalog imports and
// activity metrics. Unauthenticated use works but hits much lower rate
// limits and sees only public repositories.
type Client struct {
	api     *integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client.
// Pass an empty string for token to use unauthenticated requests.
func NewClient(token string) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		api:     integrations.NewClient(headers),
		baseURL: "https://api.github.com",
	}
}

// Kind identifies the provider for import provenance.
func (c *Client) Kind() catalog.SourceKind { return catalog.SourceGitHub }

// ListRepositories lists all repositories under an owner as "owner/repo"
// full names. Organizations are tried first; on 404 the owner is treated
// as a user, preferring the authenticated-user endpoint (which includes
// private repositories) when the token belongs to that user.
func (c *Client) ListRepositories(ctx context.Context, owner string) ([]string, error) {
	endpoint, query, err := c.repoEndpoint(ctx, owner)
	if err != nil {
		return nil, err
	}

	var repos []string
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s%s?%s&per_page=%d&page=%d", c.baseURL, endpoint, query, perPage, page)
		var batch []struct {
			FullName string `json:"full_name"`
		}
		if err := c.api.GetJSON(ctx, url, &batch); err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return nil, errors.Wrap(errors.ErrCodeNotFound, err, "owner %q not found or not accessible", owner)
			}
			return nil, err
		}
		for _, r := range batch {
			repos = append(repos, r.FullName)
		}
		if len(batch) < perPage {
			break
		}
	}
	return repos, nil
}

// repoEndpoint probes whether owner is an organization and picks the
// listing endpoint accordingly.
func (c *Client) repoEndpoint(ctx context.Context, owner string) (endpoint, query string, err error) {
	probe := fmt.Sprintf("%s/orgs/%s/repos?per_page=1&type=all", c.baseURL, owner)
	resp, probeErr := c.api.Do(ctx, probe, nil)
	if probeErr == nil {
		resp.Body.Close()
		return "/orgs/" + owner + "/repos", "type=all", nil
	}
	if !errors.Is(probeErr, errors.ErrCodeNotFound) {
		return "", "", probeErr
	}

	// Not an organization. If the token belongs to this user, the
	// authenticated endpoint also returns their private repositories.
	var user struct {
		Login string `json:"login"`
	}
	if err := c.api.GetJSON(ctx, c.baseURL+"/user", &user); err == nil &&
		strings.EqualFold(user.Login, owner) {
		return "/user/repos", "visibility=all&affiliation=owner", nil
	}
	return "/users/" + owner + "/repos", "type=all", nil
}

// HasDescriptor reports whether the repository carries a catalog
// descriptor file at its default branch.
func (c *Client) HasDescriptor(ctx context.Context, repository string) (bool, error) {
	resp, err := c.api.Do(ctx, c.contentsURL(repository), nil)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}

// FetchDescriptor downloads and parses the repository's catalog
// descriptor. Returns (nil, nil) when the file is absent or doesn't
// describe a Component.
func (c *Client) FetchDescriptor(ctx context.Context, repository string) (*catalog.Component, error) {
	var file struct {
		Type        string `json:"type"`
		DownloadURL string `json:"download_url"`
	}
	if err := c.api.GetJSON(ctx, c.contentsURL(repository), &file); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if file.Type != "file" || file.DownloadURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidEntity, "descriptor in %s is not a regular file", repository)
	}

	content, err := c.api.GetText(ctx, file.DownloadURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "failed to download descriptor from %s", repository)
	}
	return catalog.ParseComponent([]byte(content))
}

// DescriptorURL returns the browsable URL of the repository's descriptor.
func (c *Client) DescriptorURL(repository string) string {
	return fmt.Sprintf("https://github.com/%s/blob/%s/%s",
		repository, integrations.DefaultBranch, integrations.DescriptorFileName)
}

func (c *Client) contentsURL(repository string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, repository, integrations.DescriptorFileName)
}

// RepositoryActivity fetches the newest commit timestamp and open
// issue/pull-request counts for a repository. Counts above one page are
// estimated from the pagination Link header rather than fetched
// exhaustively. Individual endpoint failures degrade to zero values;
// rate-limit rejections propagate.
func (c *Client) RepositoryActivity(ctx context.Context, repository string) (*activity.Metrics, error) {
	metrics := &activity.Metrics{Source: catalog.SourceGitHub}

	var commits []struct {
		Commit struct {
			Author struct {
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	url := fmt.Sprintf("%s/repos/%s/commits?per_page=1", c.baseURL, repository)
	if err := c.api.GetJSON(ctx, url, &commits); err != nil {
		if errors.IsRateLimited(err) {
			return nil, err
		}
	} else if len(commits) > 0 {
		if t, err := parseCommitDate(commits[0].Commit.Author.Date); err == nil {
			metrics.LastCommitDate = t
		}
	}

	issues, err := c.openIssueCount(ctx, repository)
	if err != nil {
		if errors.IsRateLimited(err) {
			return nil, err
		}
	} else {
		metrics.OpenIssuesCount = issues
	}

	pulls, err := c.openPullCount(ctx, repository)
	if err != nil {
		if errors.IsRateLimited(err) {
			return nil, err
		}
	} else {
		metrics.OpenPullRequestsCount = pulls
	}

	return metrics, nil
}

// openIssueCount counts open issues, excluding pull requests (the GitHub
// issues endpoint returns both; pull requests carry a pull_request key).
// A full first page switches to the Link-header estimate.
func (c *Client) openIssueCount(ctx context.Context, repository string) (int, error) {
	url := fmt.Sprintf("%s/repos/%s/issues?state=open&per_page=%d", c.baseURL, repository, perPage)
	resp, err := c.api.Do(ctx, url, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var issues []struct {
		PullRequest *struct{} `json:"pull_request"`
	}
	if err := decodeJSON(resp, &issues); err != nil {
		return 0, err
	}
	count := 0
	for _, issue := range issues {
		if issue.PullRequest == nil {
			count++
		}
	}
	if link := resp.Header.Get("Link"); link != "" && len(issues) == perPage {
		return countFromLinkHeader(link, count), nil
	}
	return count, nil
}

// openPullCount estimates the open pull-request count from the Link
// header of a single-item page.
func (c *Client) openPullCount(ctx context.Context, repository string) (int, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls?state=open&per_page=1", c.baseURL, repository)
	resp, err := c.api.Do(ctx, url, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var pulls []struct{}
	if err := decodeJSON(resp, &pulls); err != nil {
		return 0, err
	}
	if link := resp.Header.Get("Link"); link != "" {
		return countFromLinkHeader(link, len(pulls)), nil
	}
	return len(pulls), nil
}

func decodeJSON(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func parseCommitDate(raw string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// countFromLinkHeader estimates a collection total from the rel="last"
// page number, assuming the API default of 30 items per page, capped at
// 1000. Falls back to fallback when the header has no last page.
func countFromLinkHeader(link string, fallback int) int {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="last"`) {
			continue
		}
		m := linkPagePattern.FindStringSubmatch(part)
		if m == nil {
			break
		}
		lastPage, err := strconv.Atoi(m[1])
		if err != nil {
			break
		}
		return min(lastPage*30, 1000)
	}
	return fallback
}
