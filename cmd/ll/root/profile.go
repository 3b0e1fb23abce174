package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			st := svc.State()
			p := st.Profile
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconStar, p.Name))
			if p.Email != "" {
				fmt.Fprintln(out, ui.LabelValue("Email", p.Email))
			}
			fmt.Fprintln(out, ui.LabelValue("Joined", p.JoinDate.In(svc.Location()).Format("2006-01-02")))
			enneagram := ui.Muted.Render("not set")
			if t, err := svc.Catalog().EnneagramType(p.EnneagramType); err == nil {
				enneagram = fmt.Sprintf("%d %s", t.ID, t.Name)
			}
			fmt.Fprintln(out, ui.LabelValue("Enneagram", enneagram))
			if len(st.Settings.PriorityAreas) > 0 {
				fmt.Fprintln(out, ui.LabelValue("Priority areas", st.Settings.PriorityAreas))
			}
			fmt.Fprintln(out, ui.LabelValue("Reminder time", st.Settings.ReminderTime))
			return nil
		},
	}

	cmd.AddCommand(newEnneagramCmd(a), newPrioritiesCmd(a))
	return cmd
}

func newEnneagramCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enneagram [type]",
		Short: "List enneagram types, or set yours (1-9)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				current := svc.State().Profile.EnneagramType
				for _, t := range svc.Catalog().EnneagramTypes() {
					cursor := "  "
					if t.ID == current {
						cursor = "> "
					}
					fmt.Fprintf(out, "%s%d %s\n", cursor, t.ID, t.Name)
				}
				return nil
			}

			n, err := engine.ParseEnneagramType(args[0])
			if err != nil {
				return err
			}
			if err := svc.SetEnneagramType(ctx, n); err != nil {
				return err
			}
			t, _ := svc.Catalog().EnneagramType(n)
			fmt.Fprintf(out, "%s %d %s\n", ui.Good.Render("Enneagram set:"), t.ID, t.Name)
			return nil
		},
	}

	return cmd
}

func newPrioritiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priorities <area>...",
		Short: "Choose the areas to focus on",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one area is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.SetPriorityAreas(ctx, args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Priority areas", svc.State().Settings.PriorityAreas))
			return nil
		},
	}

	return cmd
}
