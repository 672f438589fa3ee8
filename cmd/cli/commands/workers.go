package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/services"
)

// WorkersCmd creates the workers command group
func WorkersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Manage worker profiles (staff without login access)",
	}
	cmd.AddCommand(
		listWorkersCmd(app),
		addWorkerCmd(app),
		updateWorkerCmd(app),
		&cobra.Command{
			Use:   "remove <worker_id>",
			Short: "Remove a worker; their shifts become unassigned",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.RemoveWorker(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
		&cobra.Command{
			Use:   "team <worker_id> [team_id]",
			Short: "Move a worker into a team; omit team_id to clear it",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var teamID string
				if len(args) > 1 {
					teamID = args[1]
				}
				return services.AssignWorkerTeam(app.Ctx, app.Env(), app.Database, args[0], teamID)
			},
		},
		&cobra.Command{
			Use:   "teams",
			Short: "List worker teams",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				teams, err := services.ListTeams(app.Ctx, app.Env(), app.Database)
				if err != nil {
					return err
				}
				for _, t := range teams {
					fmt.Fprintf(app.Out, "- %s (%s)\n", t.Name, t.ID)
				}
				return nil
			},
		},
	)
	return cmd
}

func listWorkersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worker profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, err := services.ListWorkers(app.Ctx, app.Env())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPHONE\tSKILLS\tSTATUS\tID")
			for _, w := range workers {
				status := string(w.Status)
				if w.Status == model.WorkerInactive {
					status = colorize(app.Color, colorDim, status)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", w.Name, w.Phone, strings.Join(w.Skills, ", "), status, w.ID)
			}
			return tw.Flush()
		},
	}
}

func workerFlags(flags *pflag.FlagSet, input *services.WorkerInput) {
	flags.StringVar(&input.Phone, "phone", "", "Contact phone number")
	flags.StringVar(&input.Email, "email", "", "Contact email")
	flags.StringVar(&input.TeamID, "team", "", "Team id")
	flags.StringSliceVar(&input.Skills, "skills", nil, "Comma separated skills, e.g. grill,plating")
}

func addWorkerCmd(app *AppContext) *cobra.Command {
	var input services.WorkerInput
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a worker profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = args[0]
			worker, err := services.AddWorker(app.Ctx, app.Env(), app.Database, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Worker ID: %s\n", worker.ID)
			return nil
		},
	}
	workerFlags(cmd.Flags(), &input)
	return cmd
}

func updateWorkerCmd(app *AppContext) *cobra.Command {
	var input services.WorkerInput
	var inactive bool
	cmd := &cobra.Command{
		Use:   "update <worker_id> <name>",
		Short: "Replace a worker's details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = args[1]
			status := model.WorkerActive
			if inactive {
				status = model.WorkerInactive
			}
			return services.UpdateWorker(app.Ctx, app.Env(), app.Database, args[0], input, status)
		},
	}
	workerFlags(cmd.Flags(), &input)
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Mark the worker inactive")
	return cmd
}
