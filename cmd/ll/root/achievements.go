package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newAchievementsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List earned achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			st := svc.State()
			out := cmd.OutOrStdout()
			loc := svc.Location()
			for _, ach := range st.Achievements {
				fmt.Fprintf(out, "%s %s %s %s\n", ach.Icon, ui.Gold.Render(ach.Name), ach.Description,
					ui.Muted.Render(ach.DateEarned.In(loc).Format("2006-01-02")))
			}
			if len(st.Achievements) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none yet)"))
			}
			if !all {
				return nil
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render(ui.IconLock+" Still to earn"))
			for _, m := range engine.Milestones(svc.Catalog()) {
				if st.HasAchievement(m.ID) {
					continue
				}
				fmt.Fprintf(out, "%s %s %s\n", m.Icon, m.Name, ui.Muted.Render(m.Description))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also list milestones not yet earned")
	return cmd
}
