package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newDoCmd(a *app) *cobra.Command {
	var reflection string
	var proof string

	cmd := &cobra.Command{
		Use:   "do <activity_id>",
		Short: "Complete an activity",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("activity_id is required")
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

			t, err := svc.CompleteActivity(ctx, args[0], engine.CompletionInput{Reflection: reflection, Proof: proof})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			act, _ := svc.Catalog().Activity(args[0])
			fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Completed"), act.Name,
				ui.Muted.Render(fmt.Sprintf("(+%d XP)", t.Completion.ExperienceGained)))
			if t.LevelUp != nil {
				fmt.Fprintf(out, "%s %s %s reached level %d: %s\n", ui.BadgeLevelUp, t.LevelUp.AreaIcon,
					t.LevelUp.AreaName, t.LevelUp.NewLevel, ui.Gold.Render(t.LevelUp.Title))
			}
			for _, q := range t.CompletedQuests {
				fmt.Fprintf(out, "%s %s\n", ui.Good.Render(ui.IconScroll+" Quest complete:"), q.Title)
			}
			for _, ach := range t.NewAchievements {
				fmt.Fprintf(out, "%s %s %s\n", ui.Gold.Render(ui.IconTrophy+" Achievement:"), ach.Icon, ach.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reflection, "reflection", "r", "", "Reflection on the activity")
	cmd.Flags().StringVarP(&proof, "proof", "p", "", "Proof of completion (link or note)")
	return cmd
}
