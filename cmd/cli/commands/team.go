package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/services"
)

// TeamCmd creates the team command group
func TeamCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage team members with login access",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List team members",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				members, err := services.ListTeamMembers(app.Ctx, app.Env())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tEMAIL\tROLE\tSTATUS\tID")
				for _, m := range members {
					status := string(m.Status)
					if m.Status == model.MemberSuspended {
						status = colorize(app.Color, colorRed, status)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.FullName, m.Email, m.Role, status, m.ID)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "suspend <member_id>",
			Short: "Suspend a team member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.SuspendMember(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
		&cobra.Command{
			Use:   "activate <member_id>",
			Short: "Re-activate a suspended team member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.ActivateMember(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
		&cobra.Command{
			Use:   "role <member_id> <role>",
			Short: "Change a team member's role (admin, manager, staff, viewer)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.UpdateMemberRole(app.Ctx, app.Env(), app.Database, args[0], model.Role(args[1]))
			},
		},
		&cobra.Command{
			Use:   "remove <member_id>",
			Short: "Remove a team member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.RemoveMember(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
	)
	return cmd
}
