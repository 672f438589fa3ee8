package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/assignee"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// RegisterFetchers wires every cached collection to its authoritative read.
// Predicted (placeholder) records are dropped from every result, and shifts
// go through the assignee resolver before they are cached.
func RegisterFetchers(qc *cache.QueryCache, database db.Database, resolver *assignee.Resolver, logger *zap.Logger) {
	qc.Register(cache.EntityShifts, func(ctx context.Context, key cache.Key) (any, error) {
		shifts, err := database.GetShifts(ctx, key.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch shifts: %w", err)
		}
		shifts = model.DropPlaceholders(shifts, func(s db.Shift) string { return s.ID })
		logger.Debug("Fetched shifts", zap.String("provider_id", key.ProviderID), zap.Int("count", len(shifts)))
		return resolver.ResolveAssignees(ctx, shifts), nil
	})

	qc.Register(cache.EntityMembers, func(ctx context.Context, key cache.Key) (any, error) {
		members, err := database.GetTeamMembers(ctx, key.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch team members: %w", err)
		}
		return model.DropPlaceholders(members, func(m db.TeamMember) string { return m.ID }), nil
	})

	qc.Register(cache.EntityInvitations, func(ctx context.Context, key cache.Key) (any, error) {
		invitations, err := database.GetInvitations(ctx, key.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch invitations: %w", err)
		}
		return model.DropPlaceholders(invitations, func(i db.Invitation) string { return i.ID }), nil
	})

	qc.Register(cache.EntityWorkers, func(ctx context.Context, key cache.Key) (any, error) {
		workers, err := database.GetWorkerProfiles(ctx, key.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch worker profiles: %w", err)
		}
		return model.DropPlaceholders(workers, func(w db.WorkerProfile) string { return w.ID }), nil
	})

	qc.Register(cache.EntityLocations, func(ctx context.Context, key cache.Key) (any, error) {
		locations, err := database.GetLocations(ctx, key.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch locations: %w", err)
		}
		return model.DropPlaceholders(locations, func(l db.ServiceLocation) string { return l.ID }), nil
	})
}
