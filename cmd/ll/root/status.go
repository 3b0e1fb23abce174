package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show profile, area levels and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st := svc.State()
			out := cmd.OutOrStdout()
			p := st.Profile

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, p.Name))
			fmt.Fprintln(out, ui.LabelValue("Overall level", engine.OverallLevel(st)))
			fmt.Fprintln(out, ui.LabelValue("Total XP", engine.TotalExperience(st)))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d days", ui.IconFire, p.Streak)))
			if p.EnneagramType > 0 {
				if t, err := svc.Catalog().EnneagramType(p.EnneagramType); err == nil {
					fmt.Fprintln(out, ui.LabelValue("Enneagram", fmt.Sprintf("%d %s", t.ID, t.Name)))
				}
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("📊 Areas"))
			for _, area := range svc.Catalog().Areas() {
				i := st.ProgressFor(area.ID)
				if i < 0 {
					continue
				}
				pr := st.Progress[i]
				into, span := engine.LevelProgress(area, pr)
				next := ui.Muted.Render(fmt.Sprintf("%d/%d", pr.Experience, pr.ExperienceToNextLevel))
				if engine.IsMaxLevel(area, pr) {
					next = ui.Gold.Render("max level")
				}
				fmt.Fprintf(out, "- %s %-14s L%d %s %s %s\n",
					area.Icon, area.Name, pr.CurrentLevel, ui.ProgressBar(into, span, 20), next,
					ui.Muted.Render(fmt.Sprintf("(%d spendable, %dd streak)", pr.SpendableExperience, pr.StreakDays)))
			}
			fmt.Fprintln(out, "")

			attention := engine.AreasNeedingAttention(st)
			if len(attention) > 3 {
				attention = attention[:3]
			}
			if len(attention) > 0 {
				fmt.Fprintln(out, ui.H2.Render("🎯 Needs attention"))
				for _, pr := range attention {
					name := pr.AreaID
					if area, err := svc.Catalog().Area(pr.AreaID); err == nil {
						name = area.Icon + " " + area.Name
					}
					fmt.Fprintf(out, "- %s\n", name)
				}
			}
			return nil
		},
	}

	return cmd
}
