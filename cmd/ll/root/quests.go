package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newQuestsCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "List quests and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			var want string
			if status != "" {
				st, err := engine.ParseQuestStatus(status)
				if err != nil {
					return err
				}
				want = string(st)
			}
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			shown := 0
			for _, v := range engine.QuestViews(svc.State(), svc.Catalog()) {
				if want != "" && string(v.Status) != want {
					continue
				}
				shown++
				fmt.Fprintf(out, "- %s %s %s %s %s\n", ui.Key.Render(v.ID), v.Title, ui.QuestStatusText(v.Status),
					ui.Percent(v.Progress), ui.Muted.Render(fmt.Sprintf("(+%d XP)", v.Reward.XP)))
			}
			if shown == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no quests)"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (available|active|completed)")
	cmd.AddCommand(newQuestAcceptCmd(a), newQuestAbandonCmd(a))
	return cmd
}

func newQuestAcceptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept <quest_id>",
		Short: "Accept an available quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest_id is required")
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

			if err := svc.AcceptQuest(ctx, args[0]); err != nil {
				return err
			}
			q, _ := svc.Catalog().Quest(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconScroll+" Accepted"), q.Title)
			for _, r := range q.Requirements {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", ui.Muted.Render(r.Description()))
			}
			return nil
		},
	}

	return cmd
}

func newQuestAbandonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abandon <quest_id>",
		Short: "Return an active quest to the available list",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest_id is required")
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

			if err := svc.AbandonQuest(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Abandoned"), args[0])
			return nil
		},
	}

	return cmd
}
