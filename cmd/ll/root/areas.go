package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/catalog"
	"lifelevel/internal/ui"
)

func newAreasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "List life areas and their level titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			st := svc.State()
			out := cmd.OutOrStdout()
			for _, area := range svc.Catalog().Areas() {
				level := 1
				if i := st.ProgressFor(area.ID); i >= 0 {
					level = st.Progress[i].CurrentLevel
				}
				title := ""
				if info, ok := area.LevelInfo(level); ok {
					title = info.Title
				}
				fmt.Fprintf(out, "%s %s %s %s\n", area.Icon, ui.Key.Render(area.ID), area.Name,
					ui.Muted.Render(fmt.Sprintf("L%d %s", level, title)))
			}
			return nil
		},
	}

	return cmd
}

func newActivitiesCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "activities <area>",
		Short: "List activities in an area",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("area is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ParseActivityFilter(filter)
			if err != nil {
				return err
			}
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			area, err := svc.Catalog().Area(args[0])
			if err != nil {
				return err
			}
			st := svc.State()
			level := 1
			if i := st.ProgressFor(area.ID); i >= 0 {
				level = st.Progress[i].CurrentLevel
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(area.Icon, fmt.Sprintf("%s (level %d)", area.Name, level)))
			list := catalog.Filter(svc.Catalog().ActivitiesByArea(area.ID), level, f)
			if len(list) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no activities)"))
				return nil
			}
			for _, act := range list {
				marks := ""
				if act.RequiresReflection {
					marks += " ✍️"
				}
				if act.RequiresProof {
					marks += " 📎"
				}
				fmt.Fprintf(out, "- %s %s %s%s\n", ui.Key.Render(act.ID), act.Name,
					ui.Muted.Render(fmt.Sprintf("(+%d XP, %s, L%d)", act.XPReward, act.Frequency, act.Level)), marks)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "available", "Filter (all|available|next-level|daily|weekly|monthly)")
	return cmd
}
