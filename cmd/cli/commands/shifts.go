package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/services"
)

// ShiftsCmd creates the shifts command group
func ShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "List, create, assign and track shifts",
	}
	cmd.AddCommand(
		listShiftsCmd(app),
		createShiftCmd(app),
		scheduleShiftsCmd(app),
		assignShiftCmd(app),
		shiftStatusCmd(app, "check-in", model.ShiftCheckedIn),
		shiftStatusCmd(app, "check-out", model.ShiftCheckedOut),
		shiftStatusCmd(app, "cancel", model.ShiftCancelled),
	)
	return cmd
}

func listShiftsCmd(app *AppContext) *cobra.Command {
	var status, from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shifts with their assignees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := services.ShiftFilter{Status: model.ShiftStatus(status)}
			if status != "" && !filter.Status.IsValid() {
				return fmt.Errorf("unknown status %q", status)
			}
			var err error
			if filter.From, err = parseDate(from); err != nil {
				return err
			}
			if filter.To, err = parseDate(to); err != nil {
				return err
			}

			shifts, err := services.ListShifts(app.Ctx, app.Env(), filter)
			if err != nil {
				return err
			}

			app.Logger.Debug("Shifts listed", zap.Int("count", len(shifts)))
			printShiftTable(app.Out, shifts, app.Color)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only shifts in this status (scheduled, checked_in, checked_out, cancelled)")
	cmd.Flags().StringVar(&from, "from", "", "Only shifts starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only shifts starting before this date (YYYY-MM-DD)")
	return cmd
}

func createShiftCmd(app *AppContext) *cobra.Command {
	var booking, user, worker, notes string
	cmd := &cobra.Command{
		Use:   "create <start> <end>",
		Short: "Create a single shift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime(args[0])
			if err != nil {
				return err
			}
			end, err := parseTime(args[1])
			if err != nil {
				return err
			}

			shift, err := services.CreateShift(app.Ctx, app.Env(), app.Database, services.ShiftInput{
				BookingID:       booking,
				UserID:          user,
				WorkerProfileID: worker,
				ScheduledStart:  start,
				ScheduledEnd:    end,
				Notes:           notes,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Shift ID: %s\n", shift.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&booking, "booking", "", "Booking the shift belongs to")
	cmd.Flags().StringVar(&user, "user", "", "Assign to a team member (user id)")
	cmd.Flags().StringVar(&worker, "worker", "", "Assign to a worker profile")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}

func scheduleShiftsCmd(app *AppContext) *cobra.Command {
	var rule, preset, booking, user, worker, notes string
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "schedule <first_start>",
		Short: "Create a recurring series of shifts from an RRULE or a configured preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime(args[0])
			if err != nil {
				return err
			}

			if preset != "" {
				p, ok := app.Cfg.Preset(preset)
				if !ok {
					return fmt.Errorf("no recurring shift preset named %q", preset)
				}
				if rule == "" {
					rule = p.RRule
				}
				if duration == 0 {
					duration = p.Duration()
				}
			}

			shifts, err := services.ScheduleRecurringShifts(app.Ctx, app.Env(), app.Database, services.RecurringShiftInput{
				RRule:           rule,
				Start:           start,
				Duration:        duration,
				BookingID:       booking,
				UserID:          user,
				WorkerProfileID: worker,
				Notes:           notes,
			})
			if err != nil {
				return err
			}

			for i, s := range shifts {
				fmt.Fprintf(app.Out, "  %3d. %s  %s\n", i+1, s.ScheduledStart.In(time.Local).Format("2006-01-02 (Monday) 15:04"), s.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rule, "rrule", "", "Recurrence rule, e.g. FREQ=WEEKLY;BYDAY=SA;COUNT=8")
	cmd.Flags().StringVar(&preset, "preset", "", "Name of a recurringShifts preset from the config")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Length of each shift, e.g. 4h30m")
	cmd.Flags().StringVar(&booking, "booking", "", "Booking the shifts belong to")
	cmd.Flags().StringVar(&user, "user", "", "Assign every shift to a team member (user id)")
	cmd.Flags().StringVar(&worker, "worker", "", "Assign every shift to a worker profile")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}

func assignShiftCmd(app *AppContext) *cobra.Command {
	var user, worker string
	cmd := &cobra.Command{
		Use:   "assign <shift_id>",
		Short: "Assign a shift to a team member or worker; with neither flag the shift is unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := assigneeFromFlags(user, worker)
			if err != nil {
				return err
			}
			return services.AssignShift(app.Ctx, app.Env(), app.Database, args[0], to)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Team member user id")
	cmd.Flags().StringVar(&worker, "worker", "", "Worker profile id")
	return cmd
}

func shiftStatusCmd(app *AppContext, use string, status model.ShiftStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <shift_id>",
		Short: fmt.Sprintf("Mark a shift as %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return services.UpdateShiftStatus(app.Ctx, app.Env(), app.Database, args[0], status)
		},
	}
}
