package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iandesj/aperture/pkg/catalog"
	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/overlay"
	"github.com/iandesj/aperture/pkg/scoring"
)

// scoreCommand creates the score command. Without arguments it scores the
// whole visible catalog; with a name it prints the full breakdown.
func (c *CLI) scoreCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score [name]",
		Short: "Score catalog components by metadata quality and activity",
		Long: `Score components on metadata completeness, architectural context,
lifecycle stage, and repository activity.

Scores are derived on demand and never persisted. The documentation axes
(metadata, architecture, lifecycle) add up to at most 100; repository
activity is a bonus on top, so actively maintained components can score
above 100. The activity bonus only applies to imported components whose
provider is configured and whose activity feature flag is on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.Features.Enabled(overlay.FeatureScoring) {
				printWarning("scoring is disabled; enable it with: %s features enable %s", appName, overlay.FeatureScoring)
			}
			if len(args) == 1 {
				return c.scoreOne(cmd, args[0], asJSON)
			}
			return c.scoreAll(cmd, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// scoredComponent pairs a component name with its derived score for the
// catalog-wide view.
type scoredComponent struct {
	Name  string                 `json:"name"`
	Score scoring.ComponentScore `json:"score"`
}

func (c *CLI) scoreAll(cmd *cobra.Command, asJSON bool) error {
	components, err := c.Catalog.List(catalog.ListOptions{})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	opts := c.scoringOptions()
	scored := make([]scoredComponent, 0, len(components))
	for _, comp := range components {
		metrics := c.metricsFor(cmd.Context(), comp.Name())
		scored = append(scored, scoredComponent{
			Name:  comp.Name(),
			Score: scoring.Score(comp, metrics, now, opts),
		})
	}

	if asJSON {
		return printJSON(scored)
	}
	if len(scored) == 0 {
		printInfo("catalog is empty")
		return nil
	}
	for _, sc := range scored {
		name := StyleHighlight.Render(fmt.Sprintf("%-24s", sc.Name))
		total := StyleNumber.Render(fmt.Sprintf("%3d", sc.Score.Total))
		fmt.Println(name + " " + total + "  " + tierBadge(sc.Score.Tier))
	}
	return nil
}

func (c *CLI) scoreOne(cmd *cobra.Command, name string, asJSON bool) error {
	comp, err := c.Catalog.Get(name, true)
	if err != nil {
		return err
	}
	if comp == nil {
		return errors.New(errors.ErrCodeComponentNotFound, "component %q not found", name)
	}

	score := scoring.Score(*comp, c.metricsFor(cmd.Context(), name), time.Now().UTC(), c.scoringOptions())
	if asJSON {
		return printJSON(scoredComponent{Name: name, Score: score})
	}

	fmt.Println(StyleTitle.Render(name) + "  " + StyleNumber.Render(fmt.Sprintf("%d", score.Total)) + "  " + tierBadge(score.Tier))
	printNewline()

	b := score.Breakdown
	printKeyValue("metadata", fmt.Sprintf("%d", b.Metadata))
	printKeyValue("architecture", fmt.Sprintf("%d", b.Architecture))
	printKeyValue("lifecycle", fmt.Sprintf("%d (%s)", b.Lifecycle, score.Details.Lifecycle))
	printKeyValue("activity", fmt.Sprintf("%d", b.Activity))
	printNewline()

	d := score.Details
	fmt.Println(checkMark(d.HasDescription) + " description")
	fmt.Println(checkMark(d.HasThreePlusTags) + " 3+ tags")
	fmt.Println(checkMark(d.HasDocumentationLink) + " documentation link")
	fmt.Println(checkMark(d.HasOwner) + " owner")
	fmt.Println(checkMark(d.IsPartOfSystem) + " system")
	fmt.Println(checkMark(d.HasDependencies) + " dependencies")

	if a := d.Activity; a != nil {
		printNewline()
		if a.DaysSinceLastCommit != nil {
			printKeyValue("last commit", fmt.Sprintf("%d day(s) ago", *a.DaysSinceLastCommit))
		} else {
			printKeyValue("last commit", "unknown")
		}
		printKeyValue("open issues", fmt.Sprintf("%d", a.OpenIssues))
		printKeyValue("open PRs", fmt.Sprintf("%d", a.OpenPullRequests))
		if a.IsStale {
			printWarning("repository looks stale")
		}
	}

	if suggestions := scoring.Suggestions(score); len(suggestions) > 0 {
		printNewline()
		printInfo("suggestions")
		for _, s := range suggestions {
			printDetail("%s %s", iconArrow, s)
		}
	}
	return nil
}
