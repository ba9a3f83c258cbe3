// Package activity collects repository activity signals (last commit,
// open issues, open pull requests) for imported components and caches them
// on disk. Everything here is best-effort: a provider failure or a missing
// repository degrades to "no metrics" rather than an error, because
// activity only feeds scoring and display.
package activity

import (
	"time"

	"github.com/iandesj/aperture/pkg/catalog"
)

// StaleAfterDays is the age of the newest commit beyond which a repository
// counts as stale.
const StaleAfterDays = 90

// Metrics holds the activity signals for one repository.
type Metrics struct {
	LastCommitDate        *time.Time         `json:"lastCommitDate,omitempty"`
	OpenIssuesCount       int                `json:"openIssuesCount"`
	OpenPullRequestsCount int                `json:"openPullRequestsCount"`
	Source                catalog.SourceKind `json:"source"`
}

// DaysSinceLastCommit returns whole days since the newest commit, or nil
// when the commit date is unknown.
func (m *Metrics) DaysSinceLastCommit(now time.Time) *int {
	if m == nil || m.LastCommitDate == nil {
		return nil
	}
	days := int(now.Sub(*m.LastCommitDate).Hours() / 24)
	return &days
}

// IsStale reports whether the newest commit is older than StaleAfterDays.
// An unknown commit date counts as stale.
func (m *Metrics) IsStale(now time.Time) bool {
	days := m.DaysSinceLastCommit(now)
	if days == nil {
		return true
	}
	return *days > StaleAfterDays
}
