// Package scoring derives a quality score for catalog components from
// their metadata completeness, architectural context, lifecycle stage, and
// optional repository activity. Scoring is a pure function: no IO, no
// clock reads beyond the caller-supplied reference time.
package scoring

import (
	"time"

	"github.com/iandesj/aperture/pkg/activity"
	"github.com/iandesj/aperture/pkg/catalog"
)

// Tier is a quality band derived from the total score.
type Tier string

const (
	TierGold             Tier = "gold"
	TierSilver           Tier = "silver"
	TierBronze           Tier = "bronze"
	TierNeedsImprovement Tier = "needs-improvement"
)

// Tier thresholds (inclusive lower bounds on the total).
const (
	goldThreshold   = 80
	silverThreshold = 60
	bronzeThreshold = 40
)

// Point values per axis. Metadata checks are worth 10 each (max 40),
// architecture checks 15 each (max 30), lifecycle is a single 0/15/30
// value, and activity is a 0–25 bonus only available to imported
// components with metrics — so 100 is the ceiling without activity and
// active, healthy repositories can exceed it. The open-items penalty is
// flat and floors the activity axis at 0.
const (
	metadataPointsPerCheck      = 10
	architecturePointsPerCheck  = 15
	lifecycleProductionPoints   = 30
	lifecycleExperimentalPoints = 15
	activityRecentPoints        = 25
	activityAgingPoints         = 15
	activityRecentDays          = 30
	activityAgingDays           = 90
	openItemsPenaltyThreshold   = 10
	openItemsPenalty            = 5
)

// Options gates which axes of the score are computed.
type Options struct {
	// ScoringEnabled false yields a zero score with details still
	// populated, so raw facts can be displayed with scoring off.
	ScoringEnabled bool
	// ActivityEnabled gates the activity bonus axis.
	ActivityEnabled bool
}

// Breakdown holds the per-axis sub-scores.
type Breakdown struct {
	Metadata     int `json:"metadata"`
	Architecture int `json:"architecture"`
	Lifecycle    int `json:"lifecycle"`
	Activity     int `json:"activity"`
}

// ActivityDetails exposes the raw activity facts behind the activity
// sub-score.
type ActivityDetails struct {
	DaysSinceLastCommit *int `json:"daysSinceLastCommit"`
	IsStale             bool `json:"isStale"`
	OpenIssues          int  `json:"openIssues"`
	OpenPullRequests    int  `json:"openPullRequests"`
}

// Details holds the boolean satisfaction flags behind the score.
type Details struct {
	HasDescription       bool             `json:"hasDescription"`
	HasThreePlusTags     bool             `json:"hasThreePlusTags"`
	HasDocumentationLink bool             `json:"hasDocumentationLink"`
	HasOwner             bool             `json:"hasOwner"`
	IsPartOfSystem       bool             `json:"isPartOfSystem"`
	HasDependencies      bool             `json:"hasDependencies"`
	Lifecycle            string           `json:"lifecycle"`
	Activity             *ActivityDetails `json:"activity,omitempty"`
}

// ComponentScore is the derived score for one component. Never persisted.
type ComponentScore struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
	Tier      Tier      `json:"tier"`
	Details   Details   `json:"details"`
}

// Score computes the component's score. metrics may be nil (local
// component, provider failure, or activity disabled upstream); the
// activity axis then contributes nothing.
func Score(c catalog.Component, metrics *activity.Metrics, now time.Time, opts Options) ComponentScore {
	details := Details{
		HasDescription:       c.Metadata.Description != "",
		HasThreePlusTags:     len(c.Metadata.Tags) >= 3,
		HasDocumentationLink: len(c.Metadata.Links) > 0,
		HasOwner:             c.Spec.Owner != "",
		IsPartOfSystem:       c.Spec.System != "",
		HasDependencies:      len(c.Spec.DependsOn) > 0,
		Lifecycle:            c.Spec.Lifecycle,
	}
	if opts.ActivityEnabled && metrics != nil {
		details.Activity = &ActivityDetails{
			DaysSinceLastCommit: metrics.DaysSinceLastCommit(now),
			IsStale:             metrics.IsStale(now),
			OpenIssues:          metrics.OpenIssuesCount,
			OpenPullRequests:    metrics.OpenPullRequestsCount,
		}
	}

	if !opts.ScoringEnabled {
		return ComponentScore{Tier: tierFor(0), Details: details}
	}

	var b Breakdown
	for _, ok := range []bool{
		details.HasDescription,
		details.HasThreePlusTags,
		details.HasDocumentationLink,
		details.HasOwner,
	} {
		if ok {
			b.Metadata += metadataPointsPerCheck
		}
	}
	if details.IsPartOfSystem {
		b.Architecture += architecturePointsPerCheck
	}
	if details.HasDependencies {
		b.Architecture += architecturePointsPerCheck
	}
	switch c.Spec.Lifecycle {
	case "production":
		b.Lifecycle = lifecycleProductionPoints
	case "experimental":
		b.Lifecycle = lifecycleExperimentalPoints
	}
	b.Activity = activityScore(details.Activity)

	total := b.Metadata + b.Architecture + b.Lifecycle + b.Activity
	return ComponentScore{
		Total:     total,
		Breakdown: b,
		Tier:      tierFor(total),
		Details:   details,
	}
}

func activityScore(a *ActivityDetails) int {
	if a == nil {
		return 0
	}
	score := 0
	if days := a.DaysSinceLastCommit; days != nil {
		switch {
		case *days < activityRecentDays:
			score = activityRecentPoints
		case *days < activityAgingDays:
			score = activityAgingPoints
		}
	}
	if a.OpenIssues+a.OpenPullRequests > openItemsPenaltyThreshold {
		score -= openItemsPenalty
		if score < 0 {
			score = 0
		}
	}
	return score
}

func tierFor(total int) Tier {
	switch {
	case total >= goldThreshold:
		return TierGold
	case total >= silverThreshold:
		return TierSilver
	case total >= bronzeThreshold:
		return TierBronze
	default:
		return TierNeedsImprovement
	}
}

// Label returns the display name for a tier.
func (t Tier) Label() string {
	switch t {
	case TierGold:
		return "Gold"
	case TierSilver:
		return "Silver"
	case TierBronze:
		return "Bronze"
	default:
		return "Needs Improvement"
	}
}

// Suggestions returns one human-readable improvement per unmet criterion,
// in checklist order (not priority order).
func Suggestions(score ComponentScore) []string {
	var out []string
	d := score.Details
	if !d.HasDescription {
		out = append(out, "Add a description to explain what this component does")
	}
	if !d.HasThreePlusTags {
		out = append(out, "Add at least 3 tags to improve discoverability")
	}
	if !d.HasDocumentationLink {
		out = append(out, "Add a documentation link for reference")
	}
	if !d.HasOwner {
		out = append(out, "Specify an owner or team responsible for this component")
	}
	if !d.IsPartOfSystem {
		out = append(out, "Associate this component with a system")
	}
	if !d.HasDependencies {
		out = append(out, "Document dependencies if this component depends on others")
	}
	if d.Lifecycle != "production" {
		out = append(out, "Move to production lifecycle when ready")
	}
	if a := d.Activity; a != nil {
		if a.IsStale {
			out = append(out, "Repository has had no commits in over 90 days; confirm it is still maintained")
		}
		if a.OpenIssues+a.OpenPullRequests > openItemsPenaltyThreshold {
			out = append(out, "Reduce the backlog of open issues and pull requests")
		}
	}
	return out
}
