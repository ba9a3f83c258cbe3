package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/iandesj/aperture/pkg/activity"
	"github.com/iandesj/aperture/pkg/catalog"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func enabled() Options {
	return Options{ScoringEnabled: true, ActivityEnabled: true}
}

func fullComponent() catalog.Component {
	return catalog.Component{
		Metadata: catalog.Metadata{
			Name:        "api",
			Description: "The public API",
			Tags:        []string{"go", "http", "public"},
			Links:       []catalog.Link{{URL: "https://docs.example.com"}},
		},
		Spec: catalog.ComponentSpec{
			Type:      "service",
			Lifecycle: "production",
			Owner:     "team-platform",
			System:    "payments",
			DependsOn: []string{"db"},
		},
	}
}

func daysAgo(n int) *time.Time {
	t := testNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestScoreFullyDocumentedComponent(t *testing.T) {
	score := Score(fullComponent(), nil, testNow, enabled())

	if score.Total != 100 {
		t.Fatalf("expected total 100, got %d", score.Total)
	}
	if score.Breakdown.Metadata != 40 || score.Breakdown.Architecture != 30 || score.Breakdown.Lifecycle != 30 {
		t.Fatalf("unexpected breakdown: %+v", score.Breakdown)
	}
	if score.Tier != TierGold {
		t.Fatalf("expected gold, got %s", score.Tier)
	}
	if len(Suggestions(score)) != 0 {
		t.Fatalf("fully documented component should have no suggestions, got %v", Suggestions(score))
	}
}

func TestScoreBareComponent(t *testing.T) {
	c := catalog.Component{
		Metadata: catalog.Metadata{Name: "legacy"},
		Spec: catalog.ComponentSpec{
			Type:      "service",
			Lifecycle: "deprecated",
			Owner:     "team-legacy",
		},
	}
	score := Score(c, nil, testNow, enabled())

	if score.Total != 10 {
		t.Fatalf("expected total 10 (owner only), got %d", score.Total)
	}
	if score.Tier != TierNeedsImprovement {
		t.Fatalf("expected needs-improvement, got %s", score.Tier)
	}
}

func TestTierThresholds(t *testing.T) {
	tests := []struct {
		total int
		want  Tier
	}{
		{100, TierGold},
		{80, TierGold},
		{79, TierSilver},
		{60, TierSilver},
		{59, TierBronze},
		{40, TierBronze},
		{39, TierNeedsImprovement},
		{0, TierNeedsImprovement},
	}
	for _, tt := range tests {
		if got := tierFor(tt.total); got != tt.want {
			t.Errorf("tierFor(%d) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestActivityScoreBands(t *testing.T) {
	tests := []struct {
		name    string
		metrics activity.Metrics
		want    int
	}{
		{"recent commit", activity.Metrics{LastCommitDate: daysAgo(10)}, 25},
		{"aging commit", activity.Metrics{LastCommitDate: daysAgo(60)}, 15},
		{"stale commit", activity.Metrics{LastCommitDate: daysAgo(200)}, 0},
		{"no commit date", activity.Metrics{}, 0},
		{"recent with backlog", activity.Metrics{LastCommitDate: daysAgo(10), OpenIssuesCount: 8, OpenPullRequestsCount: 7}, 20},
		{"stale with backlog floors at zero", activity.Metrics{LastCommitDate: daysAgo(200), OpenIssuesCount: 15}, 0},
		{"backlog at threshold is not penalized", activity.Metrics{LastCommitDate: daysAgo(10), OpenIssuesCount: 5, OpenPullRequestsCount: 5}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.metrics
			score := Score(fullComponent(), &m, testNow, enabled())
			if score.Breakdown.Activity != tt.want {
				t.Fatalf("activity sub-score = %d, want %d", score.Breakdown.Activity, tt.want)
			}
		})
	}
}

func TestActivityBonusExceedsBaseCeiling(t *testing.T) {
	m := activity.Metrics{LastCommitDate: daysAgo(10)}
	score := Score(fullComponent(), &m, testNow, enabled())

	// The documentation axes max out at 100; activity stacks on top.
	if score.Total != 125 {
		t.Fatalf("expected total 125, got %d", score.Total)
	}
	if score.Breakdown.Activity != 25 {
		t.Fatalf("expected activity bonus 25, got %d", score.Breakdown.Activity)
	}
	if score.Tier != TierGold {
		t.Fatalf("expected gold, got %s", score.Tier)
	}
}

func TestActivityDetailsPopulated(t *testing.T) {
	m := activity.Metrics{LastCommitDate: daysAgo(200), OpenIssuesCount: 3, OpenPullRequestsCount: 1}
	score := Score(fullComponent(), &m, testNow, enabled())

	a := score.Details.Activity
	if a == nil {
		t.Fatal("expected activity details")
	}
	if a.DaysSinceLastCommit == nil || *a.DaysSinceLastCommit != 200 {
		t.Fatalf("unexpected days since last commit: %v", a.DaysSinceLastCommit)
	}
	if !a.IsStale {
		t.Fatal("200-day-old commit should be stale")
	}
	if a.OpenIssues != 3 || a.OpenPullRequests != 1 {
		t.Fatalf("unexpected open items: %+v", a)
	}
}

func TestActivityDisabled(t *testing.T) {
	m := activity.Metrics{LastCommitDate: daysAgo(10)}
	score := Score(fullComponent(), &m, testNow, Options{ScoringEnabled: true})

	if score.Breakdown.Activity != 0 {
		t.Fatalf("activity disabled should contribute 0, got %d", score.Breakdown.Activity)
	}
	if score.Details.Activity != nil {
		t.Fatal("activity details should be omitted when the axis is disabled")
	}
	if score.Total != 100 {
		t.Fatalf("expected total 100 without activity, got %d", score.Total)
	}
}

func TestScoringDisabledStillPopulatesDetails(t *testing.T) {
	score := Score(fullComponent(), nil, testNow, Options{ActivityEnabled: true})

	if score.Total != 0 {
		t.Fatalf("expected zero total with scoring disabled, got %d", score.Total)
	}
	if score.Tier != TierNeedsImprovement {
		t.Fatalf("expected needs-improvement tier, got %s", score.Tier)
	}
	if !score.Details.HasDescription || !score.Details.HasOwner || !score.Details.IsPartOfSystem {
		t.Fatalf("details should be populated regardless: %+v", score.Details)
	}
}

func TestSuggestionsChecklistOrder(t *testing.T) {
	c := catalog.Component{
		Metadata: catalog.Metadata{Name: "bare"},
		Spec:     catalog.ComponentSpec{Type: "service", Lifecycle: "experimental", Owner: "team-x"},
	}
	m := activity.Metrics{LastCommitDate: daysAgo(200), OpenIssuesCount: 20}
	score := Score(c, &m, testNow, enabled())

	got := Suggestions(score)
	wantSubstrings := []string{
		"description",
		"3 tags",
		"documentation link",
		"system",
		"dependencies",
		"production lifecycle",
		"no commits",
		"backlog",
	}
	if len(got) != len(wantSubstrings) {
		t.Fatalf("expected %d suggestions, got %d: %v", len(wantSubstrings), len(got), got)
	}
	for i, want := range wantSubstrings {
		if !strings.Contains(got[i], want) {
			t.Fatalf("suggestion %d = %q, want it to mention %q", i, got[i], want)
		}
	}
}

func TestTierLabels(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierGold, "Gold"},
		{TierSilver, "Silver"},
		{TierBronze, "Bronze"},
		{TierNeedsImprovement, "Needs Improvement"},
	}
	for _, tt := range tests {
		if got := tt.tier.Label(); got != tt.want {
			t.Errorf("Label(%s) = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
