package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jakechorley/catering-ops/pkg/core/services"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// LocationsCmd creates the locations command group
func LocationsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage the service area",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List service locations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				locations, err := services.ListLocations(app.Ctx, app.Env())
				if err != nil {
					return err
				}
				if len(locations) == 0 {
					fmt.Fprintln(app.Out, "No service locations yet.")
				}
				for _, l := range locations {
					marker := " "
					if l.IsPrimary {
						marker = colorize(app.Color, colorGreen, "★")
					}
					fmt.Fprintf(app.Out, "%s %s  (%.0f km)  %s\n", marker, formatAddress(l), l.ServiceRadiusKm, colorize(app.Color, colorDim, l.ID))
				}
				return nil
			},
		},
		locationInputCmd(app, "add", "Add a service location; the first one becomes primary", func(args []string, input services.LocationInput) error {
			location, err := services.CreateLocation(app.Ctx, app.Env(), app.Database, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Location ID: %s\n", location.ID)
			return nil
		}),
		locationInputCmd(app, "update <location_id>", "Replace a location's address and radius", func(args []string, input services.LocationInput) error {
			return services.UpdateLocation(app.Ctx, app.Env(), app.Database, args[0], input)
		}),
		&cobra.Command{
			Use:   "delete <location_id>",
			Short: "Delete a service location",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.DeleteLocation(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
		&cobra.Command{
			Use:   "primary <location_id>",
			Short: "Make a location the primary one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return services.SetPrimaryLocation(app.Ctx, app.Env(), app.Database, args[0])
			},
		},
	)
	return cmd
}

func locationInputCmd(app *AppContext, use, short string, run func(args []string, input services.LocationInput) error) *cobra.Command {
	var input services.LocationInput
	nargs := strings.Count(use, "<")
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, input)
		},
	}
	locationFlags(cmd.Flags(), &input)
	return cmd
}

func locationFlags(flags *pflag.FlagSet, input *services.LocationInput) {
	flags.StringVar(&input.Province, "province", "", "Province (required)")
	flags.StringVar(&input.City, "city", "", "City or municipality (required)")
	flags.StringVar(&input.Barangay, "barangay", "", "Barangay (required)")
	flags.StringVar(&input.Street, "street", "", "Street address")
	flags.StringVar(&input.PostalCode, "postal-code", "", "4 digit postal code")
	flags.StringVar(&input.Landmark, "landmark", "", "Nearby landmark")
	flags.Float64Var(&input.ServiceRadiusKm, "radius", 10, "Service radius in km")
}

func formatAddress(l db.ServiceLocation) string {
	parts := []string{}
	if l.Street != "" {
		parts = append(parts, l.Street)
	}
	parts = append(parts, "Brgy. "+l.Barangay, l.City, l.Province)
	address := strings.Join(parts, ", ")
	if l.PostalCode != "" {
		address += " " + l.PostalCode
	}
	if l.Landmark != "" {
		address += " (near " + l.Landmark + ")"
	}
	return address
}
