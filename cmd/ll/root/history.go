package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newHistoryCmd(a *app) *cobra.Command {
	var area string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if area != "" {
				ar, err := svc.Catalog().Area(area)
				if err != nil {
					return err
				}
				area = ar.ID
			}

			out := cmd.OutOrStdout()
			list := engine.History(svc.State(), area, limit)
			if len(list) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no completions yet)"))
				return nil
			}
			loc := svc.Location()
			for _, c := range list {
				name := c.ActivityID
				if act, err := svc.Catalog().Activity(c.ActivityID); err == nil {
					name = act.Name
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.Muted.Render(c.Date.In(loc).Format("2006-01-02 15:04")), name,
					ui.Muted.Render(fmt.Sprintf("(+%d XP)", c.ExperienceGained)))
				if c.Reflection != "" {
					fmt.Fprintf(out, "  %s\n", ui.Muted.Render("“"+c.Reflection+"”"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&area, "area", "a", "", "Only show one area")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries (0 for all)")
	return cmd
}
