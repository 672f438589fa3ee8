// Package assignee turns raw shift rows into display-ready shifts by looking
// up who each shift is assigned to.
package assignee

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// DefaultMaxConcurrentLookups bounds the lookup fan-out when no limit is configured
const DefaultMaxConcurrentLookups = 10

// EnrichedShift is a shift with its assignee resolved for display
type EnrichedShift struct {
	db.Shift
	Assignee model.ResolvedAssignee
}

// Resolver resolves shift assignees through an AssigneeLookup
type Resolver struct {
	lookup         db.AssigneeLookup
	logger         *zap.Logger
	maxConcurrency int
}

// NewResolver creates a resolver running at most maxConcurrency lookups at once
func NewResolver(lookup db.AssigneeLookup, logger *zap.Logger, maxConcurrency int) *Resolver {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrentLookups
	}
	return &Resolver{
		lookup:         lookup,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// ResolveAssignees returns one enriched shift per input shift, in input order.
// Lookup failures degrade to placeholder names and are never returned.
func (r *Resolver) ResolveAssignees(ctx context.Context, shifts []db.Shift) []EnrichedShift {
	enriched := make([]EnrichedShift, len(shifts))

	var g errgroup.Group
	g.SetLimit(r.maxConcurrency)
	for i, shift := range shifts {
		i, shift := i, shift
		g.Go(func() error {
			enriched[i] = EnrichedShift{
				Shift:    shift,
				Assignee: r.resolve(ctx, shift),
			}
			return nil
		})
	}
	// lookups never fail the group
	_ = g.Wait()

	r.logger.Debug("Resolved shift assignees", zap.Int("count", len(enriched)))
	return enriched
}

func (r *Resolver) resolve(ctx context.Context, shift db.Shift) model.ResolvedAssignee {
	switch a := shift.Assignee().(type) {
	case model.TeamMemberAssignee:
		return r.resolveTeamMember(ctx, shift.ID, a.UserID)
	case model.WorkerAssignee:
		return r.resolveWorker(ctx, shift.ID, a.WorkerProfileID)
	default:
		return model.ResolvedAssignee{
			Name: model.UnassignedName,
			Type: model.AssigneeUnassigned,
		}
	}
}

func (r *Resolver) resolveTeamMember(ctx context.Context, shiftID, userID string) model.ResolvedAssignee {
	meta, err := r.lookup.GetUserMetadata(ctx, userID)
	if err != nil || meta == nil {
		r.logger.Warn("Failed to look up team member for shift",
			zap.String("shift_id", shiftID),
			zap.String("user_id", userID),
			zap.Error(err))
		recordLookup("team_member", false)
		empty := ""
		return model.ResolvedAssignee{
			Name:    model.UnknownUserName,
			Contact: &empty,
			Type:    model.AssigneeTeamMember,
		}
	}
	recordLookup("team_member", true)

	email := meta.Email
	return model.ResolvedAssignee{
		Name:    displayName(meta),
		Contact: &email,
		Avatar:  optional(meta.AvatarURL),
		Type:    model.AssigneeTeamMember,
	}
}

func (r *Resolver) resolveWorker(ctx context.Context, shiftID, workerProfileID string) model.ResolvedAssignee {
	profile, err := r.lookup.GetWorkerProfile(ctx, workerProfileID)
	if err != nil || profile == nil {
		r.logger.Warn("Failed to look up worker profile for shift",
			zap.String("shift_id", shiftID),
			zap.String("worker_profile_id", workerProfileID),
			zap.Error(err))
		recordLookup("worker_profile", false)
		return model.ResolvedAssignee{
			Name: model.UnknownWorkerName,
			Type: model.AssigneeWorker,
		}
	}
	recordLookup("worker_profile", true)

	return model.ResolvedAssignee{
		Name:    profile.Name,
		Contact: optional(profile.Phone),
		Type:    model.AssigneeWorker,
	}
}

// displayName prefers the full name, then the local part of the email
func displayName(meta *db.UserMetadata) string {
	if meta.FullName != "" {
		return meta.FullName
	}
	if local, _, _ := strings.Cut(meta.Email, "@"); local != "" {
		return local
	}
	return model.UnknownUserName
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
