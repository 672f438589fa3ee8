package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// LocationInput describes a service location to create or update
type LocationInput struct {
	Province        string  `validate:"required"`
	City            string  `validate:"required"`
	Barangay        string  `validate:"required"`
	Street          string  `validate:"max=200"`
	PostalCode      string  `validate:"omitempty,numeric,len=4"`
	Landmark        string  `validate:"max=200"`
	ServiceRadiusKm float64 `validate:"gt=0,lte=500"`
}

// SetPrimary returns a copy of locations where only id is primary
func SetPrimary(locations []db.ServiceLocation, id string) []db.ServiceLocation {
	out := make([]db.ServiceLocation, len(locations))
	for i, l := range locations {
		l.IsPrimary = l.ID == id
		out[i] = l
	}
	return out
}

// ListLocations returns the provider's service locations
func ListLocations(ctx context.Context, env Env) ([]db.ServiceLocation, error) {
	if err := env.Session.RequireProvider(); err != nil {
		return nil, err
	}
	locations, err := fetchList[db.ServiceLocation](ctx, env.Cache, env.key(cache.EntityLocations))
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// CreateLocation adds a service location. The provider's first location is primary.
func CreateLocation(ctx context.Context, env Env, store db.LocationStore, input LocationInput) (*db.ServiceLocation, error) {
	if err := env.Session.RequireUser(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := ListLocations(ctx, env)
	if err != nil {
		return nil, err
	}

	location := db.ServiceLocation{
		ID:         uuid.New().String(),
		ProviderID: env.Session.ProviderID,
		IsPrimary:  len(existing) == 0,
	}
	applyLocationInput(&location, input)
	predicted := location
	predicted.ID = model.NewPlaceholderID()

	err = optimistic.Apply(ctx, env.Controller, optimistic.Command[db.ServiceLocation]{
		Name: "create_location",
		Key:  env.key(cache.EntityLocations),
		Predict: func(items []db.ServiceLocation) []db.ServiceLocation {
			return append(items, predicted)
		},
		Execute: func(ctx context.Context) error {
			return store.InsertLocation(ctx, &location)
		},
		SuccessMessage: fmt.Sprintf("Location in %s added", input.City),
	})
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// UpdateLocation replaces a location's address and radius. Primary status is
// changed only through SetPrimaryLocation.
func UpdateLocation(ctx context.Context, env Env, store db.LocationStore, locationID string, input LocationInput) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}
	if err := validateInput(input); err != nil {
		return err
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.ServiceLocation]{
		Name: "update_location",
		Key:  env.key(cache.EntityLocations),
		Predict: replaceWhere(
			func(l db.ServiceLocation) bool { return l.ID == locationID },
			func(l *db.ServiceLocation) { applyLocationInput(l, input) }),
		Execute: func(ctx context.Context) error {
			location := db.ServiceLocation{ID: locationID, ProviderID: env.Session.ProviderID}
			applyLocationInput(&location, input)
			return store.UpdateLocation(ctx, &location)
		},
		SuccessMessage: "Location updated",
	})
}

// DeleteLocation removes a location. The primary location can only be
// deleted once it is the last one.
func DeleteLocation(ctx context.Context, env Env, store db.LocationStore, locationID string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}

	locations, err := ListLocations(ctx, env)
	if err != nil {
		return err
	}
	target, ok := findByID(locations, locationID, func(l db.ServiceLocation) string { return l.ID })
	if !ok {
		return fmt.Errorf("location %s: %w", locationID, db.ErrNotFound)
	}
	if target.IsPrimary && len(locations) > 1 {
		return ErrPrimaryLocation
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.ServiceLocation]{
		Name:    "delete_location",
		Key:     env.key(cache.EntityLocations),
		Predict: removeWhere(func(l db.ServiceLocation) bool { return l.ID == locationID }),
		Execute: func(ctx context.Context) error {
			return store.DeleteLocation(ctx, env.Session.ProviderID, locationID)
		},
		SuccessMessage: "Location deleted",
	})
}

// SetPrimaryLocation makes locationID the provider's only primary location
func SetPrimaryLocation(ctx context.Context, env Env, store db.LocationStore, locationID string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.ServiceLocation]{
		Name: "set_primary_location",
		Key:  env.key(cache.EntityLocations),
		Predict: func(items []db.ServiceLocation) []db.ServiceLocation {
			return SetPrimary(items, locationID)
		},
		Execute: func(ctx context.Context) error {
			return store.SetPrimaryLocation(ctx, env.Session.ProviderID, locationID)
		},
		SuccessMessage: "Primary location updated",
	})
}

func applyLocationInput(l *db.ServiceLocation, input LocationInput) {
	l.Province = input.Province
	l.City = input.City
	l.Barangay = input.Barangay
	l.Street = input.Street
	l.PostalCode = input.PostalCode
	l.Landmark = input.Landmark
	l.ServiceRadiusKm = input.ServiceRadiusKm
}
