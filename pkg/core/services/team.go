package services

import (
	"context"
	"fmt"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// ListTeamMembers returns the provider's team members
func ListTeamMembers(ctx context.Context, env Env) ([]db.TeamMember, error) {
	if err := env.Session.RequireProvider(); err != nil {
		return nil, err
	}
	members, err := fetchList[db.TeamMember](ctx, env.Cache, env.key(cache.EntityMembers))
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// SuspendMember blocks a member from signing in
func SuspendMember(ctx context.Context, env Env, store db.TeamStore, memberID string) error {
	return setMemberStatus(ctx, env, store, memberID, model.MemberSuspended, "Member suspended")
}

// ActivateMember restores a suspended member
func ActivateMember(ctx context.Context, env Env, store db.TeamStore, memberID string) error {
	return setMemberStatus(ctx, env, store, memberID, model.MemberActive, "Member activated")
}

func setMemberStatus(ctx context.Context, env Env, store db.TeamStore, memberID string, status model.MemberStatus, message string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}
	if err := requireMutableMember(ctx, env, memberID); err != nil {
		return err
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.TeamMember]{
		Name: "set_member_status",
		Key:  env.key(cache.EntityMembers),
		Predict: replaceWhere(
			func(m db.TeamMember) bool { return m.ID == memberID },
			func(m *db.TeamMember) { m.Status = status }),
		Execute: func(ctx context.Context) error {
			return store.UpdateTeamMemberStatus(ctx, env.Session.ProviderID, memberID, status)
		},
		SuccessMessage: message,
	})
}

// UpdateMemberRole changes a member's role. Nobody can be promoted to owner.
func UpdateMemberRole(ctx context.Context, env Env, store db.TeamStore, memberID string, role model.Role) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if role == model.RoleOwner {
		return ErrOwnerImmutable
	}
	if err := requireMutableMember(ctx, env, memberID); err != nil {
		return err
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.TeamMember]{
		Name: "update_member_role",
		Key:  env.key(cache.EntityMembers),
		Predict: replaceWhere(
			func(m db.TeamMember) bool { return m.ID == memberID },
			func(m *db.TeamMember) { m.Role = role }),
		Execute: func(ctx context.Context) error {
			return store.UpdateTeamMemberRole(ctx, env.Session.ProviderID, memberID, role)
		},
		SuccessMessage: fmt.Sprintf("Role updated to %s", role),
	})
}

// RemoveMember deletes a member from the provider team
func RemoveMember(ctx context.Context, env Env, store db.TeamStore, memberID string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}
	if err := requireMutableMember(ctx, env, memberID); err != nil {
		return err
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.TeamMember]{
		Name:    "remove_member",
		Key:     env.key(cache.EntityMembers),
		Predict: removeWhere(func(m db.TeamMember) bool { return m.ID == memberID }),
		Execute: func(ctx context.Context) error {
			return store.DeleteTeamMember(ctx, env.Session.ProviderID, memberID)
		},
		SuccessMessage: "Member removed",
	})
}

// requireMutableMember rejects unknown members and owners
func requireMutableMember(ctx context.Context, env Env, memberID string) error {
	members, err := ListTeamMembers(ctx, env)
	if err != nil {
		return err
	}
	member, ok := findByID(members, memberID, func(m db.TeamMember) string { return m.ID })
	if !ok {
		return fmt.Errorf("team member %s: %w", memberID, db.ErrNotFound)
	}
	if member.Role == model.RoleOwner {
		return ErrOwnerImmutable
	}
	return nil
}
