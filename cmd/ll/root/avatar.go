package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifelevel/internal/models"
	"lifelevel/internal/ui"
)

func newAvatarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Show the avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			av, err := svc.Avatar(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if av == nil {
				fmt.Fprintln(out, ui.Muted.Render("No avatar yet. Create one with `ll avatar set --skin ... --hair ...`."))
				return nil
			}
			printAvatar(cmd, *av)
			return nil
		},
	}

	cmd.AddCommand(newAvatarSetCmd(a))
	return cmd
}

func newAvatarSetCmd(a *app) *cobra.Command {
	var av models.AvatarSettings

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.SaveAvatar(ctx, av); err != nil {
				return err
			}
			printAvatar(cmd, av)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&av.SkinColor, "skin", "", "Skin color")
	f.StringVar(&av.HairStyle, "hair", "", "Hair style")
	f.StringVar(&av.HairColor, "hair-color", "", "Hair color")
	f.StringVar(&av.EyeColor, "eyes", "", "Eye color")
	f.StringVar(&av.Accessory, "accessory", "", "Accessory")
	f.BoolVar(&av.Hat, "hat", false, "Wear a hat")
	f.BoolVar(&av.FaceHair, "face-hair", false, "Show facial hair")
	return cmd
}

func printAvatar(cmd *cobra.Command, av models.AvatarSettings) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Heading("🧑", "Avatar"))
	fmt.Fprintln(out, ui.LabelValue("Skin", av.SkinColor))
	fmt.Fprintln(out, ui.LabelValue("Hair", fmt.Sprintf("%s %s", av.HairStyle, av.HairColor)))
	if av.EyeColor != "" {
		fmt.Fprintln(out, ui.LabelValue("Eyes", av.EyeColor))
	}
	if av.Accessory != "" {
		fmt.Fprintln(out, ui.LabelValue("Accessory", av.Accessory))
	}
	fmt.Fprintln(out, ui.LabelValue("Hat", av.Hat))
	fmt.Fprintln(out, ui.LabelValue("Facial hair", av.FaceHair))
}
