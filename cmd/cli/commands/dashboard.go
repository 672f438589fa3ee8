package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/catering-ops/pkg/core/services"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show revenue, booking, staff and expense metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r db.DateRange
			var err error
			if r.From, err = parseDate(from); err != nil {
				return err
			}
			if r.To, err = parseDate(to); err != nil {
				return err
			}

			metrics, err := services.GetDashboardMetrics(app.Ctx, app.Database, app.Logger, app.Session, r)
			if err != nil {
				return err
			}
			printDashboard(app.Out, metrics)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	return cmd
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Apply pending database migrations",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipMailerAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrator.RunMigrations(app.Ctx)
		},
	}
}
