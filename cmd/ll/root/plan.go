package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifelevel/internal/engine"
	"lifelevel/internal/models"
	"lifelevel/internal/ui"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List planned activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			plans := svc.State().PlannedActivities
			if len(plans) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing planned)"))
				return nil
			}
			loc := svc.Location()
			for _, p := range plans {
				name := p.ActivityID
				if act, err := svc.Catalog().Activity(p.ActivityID); err == nil {
					name = act.Name
				}
				when := p.TargetDate.In(loc).Format("2006-01-02")
				if p.Recurring {
					when += " " + string(p.Frequency)
				}
				if p.Reminder {
					when += " " + ui.IconBell + " " + p.ReminderTime
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.Muted.Render(p.ID), name, ui.Muted.Render(when))
			}
			return nil
		},
	}

	cmd.AddCommand(newPlanAddCmd(a), newPlanRemoveCmd(a))
	return cmd
}

func newPlanAddCmd(a *app) *cobra.Command {
	var date string
	var recurring bool
	var frequency string
	var remind bool
	var at string

	cmd := &cobra.Command{
		Use:   "add <activity_id>",
		Short: "Plan an activity, optionally recurring with a reminder",
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

			in := engine.PlanInput{
				ActivityID:   args[0],
				Recurring:    recurring,
				Reminder:     remind || at != "",
				ReminderTime: at,
			}
			if frequency != "" {
				f, err := engine.ParseFrequency(frequency)
				if err != nil {
					return err
				}
				in.Frequency = f
			}
			if date != "" {
				t, err := time.ParseInLocation(time.DateOnly, date, svc.Location())
				if err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
				}
				in.TargetDate = t
			}

			p, err := svc.PlanActivity(ctx, in)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s %s on %s", ui.Good.Render(ui.IconCal+" Planned"), p.ActivityID,
				p.TargetDate.In(svc.Location()).Format("2006-01-02"))
			if p.Frequency != models.FrequencyOnce {
				line += " " + ui.Muted.Render("("+string(p.Frequency)+")")
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", p.ID))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&date, "date", "d", "", "Target date YYYY-MM-DD (default today)")
	f.BoolVar(&recurring, "recurring", false, "Repeat on a schedule")
	f.StringVar(&frequency, "frequency", "", "once|daily|weekly|monthly (default: activity's own when recurring)")
	f.BoolVar(&remind, "remind", false, "Send a reminder")
	f.StringVar(&at, "at", "", "Reminder time HH:MM (implies --remind)")
	return cmd
}

func newPlanRemoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <plan_id>",
		Short: "Remove a planned activity",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("plan_id is required")
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

			if err := svc.RemovePlan(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Removed"), args[0])
			return nil
		},
	}

	return cmd
}

func newRemindCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Fire any reminders that are due now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			notices, err := svc.CheckReminders(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(notices) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No reminders due."))
				return nil
			}
			for _, n := range notices {
				fmt.Fprintf(out, "%s %s %s\n", ui.Warn.Render(ui.IconBell+" Reminder:"), n.Activity.Name,
					ui.Muted.Render("("+n.Activity.ID+")"))
			}
			return nil
		},
	}

	return cmd
}
