package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/ui"
)

func newSkillsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills <area>",
		Short: "Show an area's skill tree",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("area is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			tree, err := svc.Catalog().SkillTree(args[0])
			if err != nil {
				return err
			}
			st := svc.State()
			out := cmd.OutOrStdout()
			if i := st.ProgressFor(tree.AreaID); i >= 0 {
				fmt.Fprintln(out, ui.LabelValue("Spendable XP", st.Progress[i].SpendableExperience))
			}
			for _, v := range engine.SkillViews(st, tree) {
				line := fmt.Sprintf("- %s %s %s", ui.Key.Render(v.ID), v.Name, ui.Locked(v.Unlocked))
				if !v.Unlocked {
					line += ui.Muted.Render(fmt.Sprintf(" (cost %d", v.XPCost))
					switch {
					case !v.Available:
						line += ui.Muted.Render(", needs predecessors)")
					case !v.Affordable:
						line += ui.Muted.Render(", not enough XP)")
					default:
						line += ui.Muted.Render(")")
					}
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.AddCommand(newSkillUnlockCmd(a))
	return cmd
}

func newSkillUnlockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlock <area> <skill_id>",
		Short: "Spend XP to unlock a skill",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("area and skill_id are required")
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

			u, err := svc.UnlockSkill(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconUnlock+" Unlocked"), u.SkillID,
				ui.Muted.Render(fmt.Sprintf("(-%d XP)", u.XPSpent)))
			return nil
		},
	}

	return cmd
}
