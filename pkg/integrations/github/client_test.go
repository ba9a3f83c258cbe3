package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/integrations"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		api:     integrations.NewClient(map[string]string{"Accept": "application/vnd.github.v3+json"}),
		baseURL: srv.URL,
	}
}

const componentYAML = `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: api
spec:
  type: service
  lifecycle: production
  owner: team-platform
`

func TestListRepositoriesOrg(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") == "1" {
			fmt.Fprint(w, `[{"full_name":"acme/api"}]`)
			return
		}
		fmt.Fprint(w, `[{"full_name":"acme/api"},{"full_name":"acme/web"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repos, err := testClient(srv).ListRepositories(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 2 || repos[0] != "acme/api" || repos[1] != "acme/web" {
		t.Fatalf("unexpected repos: %v", repos)
	}
}

func TestListRepositoriesAuthenticatedUserFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/jdoe/repos", http.NotFound)
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"JDoe"}`)
	})
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("affiliation") != "owner" {
			t.Errorf("expected affiliation=owner, got query %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, `[{"full_name":"jdoe/dotfiles"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repos, err := testClient(srv).ListRepositories(context.Background(), "jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0] != "jdoe/dotfiles" {
		t.Fatalf("unexpected repos: %v", repos)
	}
}

func TestListRepositoriesOtherUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/someone/repos", http.NotFound)
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"jdoe"}`)
	})
	mux.HandleFunc("/users/someone/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"full_name":"someone/tool"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repos, err := testClient(srv).ListRepositories(context.Background(), "someone")
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0] != "someone/tool" {
		t.Fatalf("unexpected repos: %v", repos)
	}
}

func TestHasDescriptor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/contents/catalog-info.yaml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"file"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	ok, err := c.HasDescriptor(context.Background(), "acme/api")
	if err != nil || !ok {
		t.Fatalf("expected descriptor present, got ok=%v err=%v", ok, err)
	}
	ok, err = c.HasDescriptor(context.Background(), "acme/no-descriptor")
	if err != nil || ok {
		t.Fatalf("expected descriptor absent without error, got ok=%v err=%v", ok, err)
	}
}

func TestFetchDescriptor(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/repos/acme/api/contents/catalog-info.yaml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type":"file","download_url":"%s/raw/acme/api"}`, srv.URL)
	})
	mux.HandleFunc("/raw/acme/api", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, componentYAML)
	})

	component, err := testClient(srv).FetchDescriptor(context.Background(), "acme/api")
	if err != nil {
		t.Fatal(err)
	}
	if component == nil || component.Name() != "api" || component.Spec.Owner != "team-platform" {
		t.Fatalf("unexpected component: %+v", component)
	}
}

func TestFetchDescriptorMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	component, err := testClient(srv).FetchDescriptor(context.Background(), "acme/api")
	if err != nil || component != nil {
		t.Fatalf("expected (nil, nil) for missing descriptor, got %+v, %v", component, err)
	}
}

func TestFetchDescriptorRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-remaining", "0")
		w.Header().Set("x-ratelimit-reset", "1750000000")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchDescriptor(context.Background(), "acme/api")
	if !errors.IsRateLimited(err) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
}

func TestRepositoryActivity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"commit":{"author":{"date":"2025-06-10T08:00:00Z"}}}]`)
	})
	mux.HandleFunc("/repos/acme/api/issues", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"title":"bug"},{"title":"pr","pull_request":{}},{"title":"feature"}]`)
	})
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<https://api.github.com/repos/acme/api/pulls?state=open&page=3>; rel="last"`)
		fmt.Fprint(w, `[{}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	metrics, err := testClient(srv).RepositoryActivity(context.Background(), "acme/api")
	if err != nil {
		t.Fatal(err)
	}
	if metrics.LastCommitDate == nil || metrics.LastCommitDate.Day() != 10 {
		t.Fatalf("unexpected commit date: %v", metrics.LastCommitDate)
	}
	if metrics.OpenIssuesCount != 2 {
		t.Fatalf("pull requests must not count as issues, got %d", metrics.OpenIssuesCount)
	}
	if metrics.OpenPullRequestsCount != 90 {
		t.Fatalf("expected Link-header estimate 90, got %d", metrics.OpenPullRequestsCount)
	}
}

func TestRepositoryActivityEmptyRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	metrics, err := testClient(srv).RepositoryActivity(context.Background(), "acme/empty")
	if err != nil {
		t.Fatal(err)
	}
	if metrics.LastCommitDate != nil || metrics.OpenIssuesCount != 0 || metrics.OpenPullRequestsCount != 0 {
		t.Fatalf("expected zero metrics, got %+v", metrics)
	}
}

func TestCountFromLinkHeader(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		fallback int
		want     int
	}{
		{"no last rel", `<https://x/?page=2>; rel="next"`, 7, 7},
		{"last page small", `<https://x/?page=3>; rel="last"`, 0, 90},
		{"capped at 1000", `<https://x/?page=400>; rel="last"`, 0, 1000},
		{"no page param", `<https://x/>; rel="last"`, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countFromLinkHeader(tt.link, tt.fallback); got != tt.want {
				t.Fatalf("countFromLinkHeader = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescriptorURL(t *testing.T) {
	c := NewClient("")
	want := "https://github.com/acme/api/blob/main/catalog-info.yaml"
	if got := c.DescriptorURL("acme/api"); got != want {
		t.Fatalf("DescriptorURL = %q, want %q", got, want)
	}
}
