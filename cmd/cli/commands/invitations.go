package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/services"
)

// InvitationsCmd creates the invitations command group
func InvitationsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invitations",
		Short: "Invite people to the team",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List pending invitations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				invitations, err := services.ListInvitations(app.Ctx, app.Env())
				if err != nil {
					return err
				}
				if len(invitations) == 0 {
					fmt.Fprintln(app.Out, "No pending invitations.")
					return nil
				}

				tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "EMAIL\tROLE\tEXPIRES\tID")
				for _, inv := range invitations {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inv.Email, inv.Role, inv.ExpiresAt.Format("2006-01-02"), inv.ID)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "send <email> <role>",
			Short: "Invite someone as admin, manager, staff or viewer",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				inv, err := services.InviteMember(app.Ctx, app.Env(), app.Database, app.Mailer, services.InviteInput{
					Email: args[0],
					Role:  model.Role(args[1]),
				})
				if err != nil {
					return err
				}
				if app.Mailer == nil {
					fmt.Fprintf(app.Out, "Invitation %s created; emails are disabled, share it manually.\n", inv.ID)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "cancel <invitation_id>",
			Short: "Cancel a pending invitation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.CancelInvitation(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
	)
	return cmd
}
