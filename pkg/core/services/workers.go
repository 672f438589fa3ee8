package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// WorkerInput describes a worker profile to add or update
type WorkerInput struct {
	Name   string   `validate:"required,max=200"`
	Phone  string   `validate:"omitempty,max=32"`
	Email  string   `validate:"omitempty,email"`
	TeamID string   `validate:"omitempty,uuid"`
	Skills []string `validate:"dive,required"`
}

// ListWorkers returns the provider's worker profiles
func ListWorkers(ctx context.Context, env Env) ([]db.WorkerProfile, error) {
	if err := env.Session.RequireProvider(); err != nil {
		return nil, err
	}
	workers, err := fetchList[db.WorkerProfile](ctx, env.Cache, env.key(cache.EntityWorkers))
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

// AddWorker creates an active worker profile
func AddWorker(ctx context.Context, env Env, store db.WorkerStore, input WorkerInput) (*db.WorkerProfile, error) {
	if err := env.Session.RequireUser(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	worker := db.WorkerProfile{
		ID:         uuid.New().String(),
		ProviderID: env.Session.ProviderID,
		Name:       input.Name,
		Phone:      input.Phone,
		Email:      input.Email,
		TeamID:     input.TeamID,
		Skills:     input.Skills,
		Status:     model.WorkerActive,
		CreatedAt:  now(),
	}
	predicted := worker
	predicted.ID = model.NewPlaceholderID()

	err := optimistic.Apply(ctx, env.Controller, optimistic.Command[db.WorkerProfile]{
		Name: "add_worker",
		Key:  env.key(cache.EntityWorkers),
		Predict: func(items []db.WorkerProfile) []db.WorkerProfile {
			return append(items, predicted)
		},
		Execute: func(ctx context.Context) error {
			return store.InsertWorkerProfile(ctx, &worker)
		},
		SuccessMessage: fmt.Sprintf("Worker %s added", input.Name),
	})
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

// UpdateWorker replaces a worker's editable fields
func UpdateWorker(ctx context.Context, env Env, store db.WorkerStore, workerID string, input WorkerInput, status model.WorkerStatus) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}
	if err := validateInput(input); err != nil {
		return err
	}
	if status != model.WorkerActive && status != model.WorkerInactive {
		return fmt.Errorf("invalid worker status %q", status)
	}

	apply := func(w *db.WorkerProfile) {
		w.Name = input.Name
		w.Phone = input.Phone
		w.Email = input.Email
		w.TeamID = input.TeamID
		w.Skills = input.Skills
		w.Status = status
	}
	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.WorkerProfile]{
		Name:    "update_worker",
		Key:     env.key(cache.EntityWorkers),
		Predict: replaceWhere(func(w db.WorkerProfile) bool { return w.ID == workerID }, apply),
		Execute: func(ctx context.Context) error {
			worker := db.WorkerProfile{ID: workerID, ProviderID: env.Session.ProviderID}
			apply(&worker)
			return store.UpdateWorkerProfile(ctx, &worker)
		},
		SuccessMessage: "Worker updated",
	})
}

// RemoveWorker deletes a worker profile. Shifts assigned to it become unassigned.
func RemoveWorker(ctx context.Context, env Env, store db.WorkerStore, workerID string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}

	err := optimistic.Apply(ctx, env.Controller, optimistic.Command[db.WorkerProfile]{
		Name:    "remove_worker",
		Key:     env.key(cache.EntityWorkers),
		Predict: removeWhere(func(w db.WorkerProfile) bool { return w.ID == workerID }),
		Execute: func(ctx context.Context) error {
			return store.DeleteWorkerProfile(ctx, env.Session.ProviderID, workerID)
		},
		SuccessMessage: "Worker removed",
	})
	if err != nil {
		return err
	}
	// assignments changed server side
	invalidateQuietly(ctx, env, cache.EntityShifts)
	return nil
}

// AssignWorkerTeam moves a worker into a team; an empty teamID removes it from its team
func AssignWorkerTeam(ctx context.Context, env Env, store db.WorkerStore, workerID, teamID string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}
	if teamID != "" {
		if err := validate.Var(teamID, "uuid"); err != nil {
			return fmt.Errorf("invalid team id: %w", err)
		}
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.WorkerProfile]{
		Name: "assign_worker_team",
		Key:  env.key(cache.EntityWorkers),
		Predict: replaceWhere(
			func(w db.WorkerProfile) bool { return w.ID == workerID },
			func(w *db.WorkerProfile) { w.TeamID = teamID }),
		Execute: func(ctx context.Context) error {
			return store.UpdateWorkerTeam(ctx, env.Session.ProviderID, workerID, teamID)
		},
		SuccessMessage: "Worker team updated",
	})
}

// ListTeams returns the provider's worker teams
func ListTeams(ctx context.Context, env Env, store db.WorkerStore) ([]db.Team, error) {
	if err := env.Session.RequireProvider(); err != nil {
		return nil, err
	}
	teams, err := store.GetTeams(ctx, env.Session.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func invalidateQuietly(ctx context.Context, env Env, entity cache.Entity) {
	if err := env.Cache.Invalidate(ctx, env.key(entity)); err != nil {
		env.Logger.Warn("Failed to refresh dependent collection", zap.String("entity", string(entity)), zap.Error(err))
	}
}
