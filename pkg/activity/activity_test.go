package activity

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/overlay"
)

// memBacking is an in-memory overlay backing for tests.
type memBacking struct {
	data  []byte
	saves int
}

func (b *memBacking) Load(v any) bool {
	if b.data == nil {
		return false
	}
	return json.Unmarshal(b.data, v) == nil
}

func (b *memBacking) Save(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	b.data = data
	b.saves++
}

func ts(t time.Time) *time.Time { return &t }

func TestDaysSinceLastCommit(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var nilMetrics *Metrics
	if nilMetrics.DaysSinceLastCommit(now) != nil {
		t.Fatal("nil metrics should have nil days")
	}

	m := &Metrics{LastCommitDate: ts(now.Add(-10 * 24 * time.Hour))}
	if days := m.DaysSinceLastCommit(now); days == nil || *days != 10 {
		t.Fatalf("expected 10 days, got %v", days)
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		metrics *Metrics
		want    bool
	}{
		{"nil metrics", nil, true},
		{"no commit date", &Metrics{}, true},
		{"recent", &Metrics{LastCommitDate: ts(now.Add(-5 * 24 * time.Hour))}, false},
		{"at threshold", &Metrics{LastCommitDate: ts(now.Add(-90 * 24 * time.Hour))}, false},
		{"beyond threshold", &Metrics{LastCommitDate: ts(now.Add(-91 * 24 * time.Hour))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metrics.IsStale(now); got != tt.want {
				t.Fatalf("IsStale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheHitAndExpiry(t *testing.T) {
	backing := &memBacking{}
	cache := NewCache(backing)

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	now := base
	cache.now = func() time.Time { return now }

	cache.Put("github:acme/api:api", Metrics{OpenIssuesCount: 3})

	if got := cache.Get("github:acme/api:api"); got == nil || got.OpenIssuesCount != 3 {
		t.Fatalf("expected cache hit, got %+v", got)
	}

	now = base.Add(59 * time.Minute)
	if cache.Get("github:acme/api:api") == nil {
		t.Fatal("entry should still be fresh before the TTL")
	}

	now = base.Add(61 * time.Minute)
	if cache.Get("github:acme/api:api") != nil {
		t.Fatal("entry should have expired after the TTL")
	}
}

func TestCachePrunePersists(t *testing.T) {
	backing := &memBacking{}
	cache := NewCache(backing)

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	now := base
	cache.now = func() time.Time { return now }

	cache.Put("a", Metrics{})
	now = base.Add(30 * time.Minute)
	cache.Put("b", Metrics{})

	// Expire "a" only; reading must prune it and rewrite the snapshot.
	now = base.Add(70 * time.Minute)
	savesBefore := backing.saves
	if cache.Get("b") == nil {
		t.Fatal("b should still be fresh")
	}
	if backing.saves != savesBefore+1 {
		t.Fatal("expected prune to re-persist the snapshot")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 fresh entry, got %d", cache.Len())
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(&memBacking{})
	cache.Put("a", Metrics{})
	cache.Put("b", Metrics{})

	if removed := cache.Clear(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if cache.Len() != 0 {
		t.Fatal("cache should be empty after Clear")
	}
}

func TestCacheFileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.json")

	first := NewCache(overlay.NewFileBacking(path, nil))
	first.Put("github:acme/api:api", Metrics{OpenPullRequestsCount: 2, Source: catalog.SourceGitHub})

	second := NewCache(overlay.NewFileBacking(path, nil))
	got := second.Get("github:acme/api:api")
	if got == nil || got.OpenPullRequestsCount != 2 || got.Source != catalog.SourceGitHub {
		t.Fatalf("expected persisted entry, got %+v", got)
	}
}

// fakeIndex maps component names to import provenance.
type fakeIndex map[string]catalog.ImportedComponent

func (f fakeIndex) Find(name string) *catalog.ImportedComponent {
	if ic, ok := f[name]; ok {
		return &ic
	}
	return nil
}

// fakeProvider returns canned metrics and counts calls.
type fakeProvider struct {
	kind    catalog.SourceKind
	metrics *Metrics
	err     error
	calls   int
}

func (p *fakeProvider) Kind() catalog.SourceKind { return p.kind }

func (p *fakeProvider) RepositoryActivity(_ context.Context, _ string) (*Metrics, error) {
	p.calls++
	return p.metrics, p.err
}

func importedAPI() fakeIndex {
	return fakeIndex{
		"api": {
			Component: catalog.Component{Metadata: catalog.Metadata{Name: "api"}},
			Source:    catalog.ImportSource{Type: catalog.SourceGitHub, Repository: "acme/api"},
		},
	}
}

func TestServiceLocalComponent(t *testing.T) {
	svc := NewService(fakeIndex{}, NewCache(&memBacking{}), nil, nil)
	if got := svc.ComponentMetrics(context.Background(), "local-only"); got != nil {
		t.Fatalf("local component should have nil metrics, got %+v", got)
	}
}

func TestServiceFetchesAndCaches(t *testing.T) {
	provider := &fakeProvider{
		kind:    catalog.SourceGitHub,
		metrics: &Metrics{OpenIssuesCount: 4},
	}
	svc := NewService(importedAPI(), NewCache(&memBacking{}), []Provider{provider}, nil)

	got := svc.ComponentMetrics(context.Background(), "api")
	if got == nil || got.OpenIssuesCount != 4 {
		t.Fatalf("expected fetched metrics, got %+v", got)
	}
	if got.Source != catalog.SourceGitHub {
		t.Fatalf("service should stamp the source, got %q", got.Source)
	}

	svc.ComponentMetrics(context.Background(), "api")
	if provider.calls != 1 {
		t.Fatalf("second call should hit the cache, provider called %d times", provider.calls)
	}
}

func TestServiceProviderFailure(t *testing.T) {
	provider := &fakeProvider{kind: catalog.SourceGitHub, err: errors.New("boom")}
	svc := NewService(importedAPI(), NewCache(&memBacking{}), []Provider{provider}, nil)

	if got := svc.ComponentMetrics(context.Background(), "api"); got != nil {
		t.Fatalf("provider failure should yield nil metrics, got %+v", got)
	}
}

func TestServiceMissingProvider(t *testing.T) {
	svc := NewService(importedAPI(), NewCache(&memBacking{}), nil, nil)
	if got := svc.ComponentMetrics(context.Background(), "api"); got != nil {
		t.Fatalf("unconfigured provider should yield nil metrics, got %+v", got)
	}
}
