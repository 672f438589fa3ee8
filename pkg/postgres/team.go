package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// GetTeamMembers retrieves a provider's team members joined with their user records
func (d *DB) GetTeamMembers(ctx context.Context, providerID string) ([]db.TeamMember, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT tm.id, tm.provider_id, tm.user_id, tm.role, tm.status, u.email, u.full_name, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.provider_id = $1
		ORDER BY tm.joined_at, tm.id
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []db.TeamMember
	for rows.Next() {
		var m db.TeamMember
		var role, status string
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.UserID, &role, &status, &m.Email, &m.FullName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		m.Role = model.Role(role)
		m.Status = model.MemberStatus(status)
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team members: %w", err)
	}

	return members, nil
}

// UpdateTeamMemberStatus suspends or reactivates a non-owner member
func (d *DB) UpdateTeamMemberStatus(ctx context.Context, providerID, memberID string, status model.MemberStatus) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE team_members SET status = $3
		WHERE provider_id = $1 AND id = $2 AND role <> 'owner'
	`, providerID, memberID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update team member status: %w", err)
	}
	return requireAffected(tag, "team member", memberID)
}

// UpdateTeamMemberRole changes the role of a non-owner member
func (d *DB) UpdateTeamMemberRole(ctx context.Context, providerID, memberID string, role model.Role) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE team_members SET role = $3
		WHERE provider_id = $1 AND id = $2 AND role <> 'owner'
	`, providerID, memberID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update team member role: %w", err)
	}
	return requireAffected(tag, "team member", memberID)
}

// DeleteTeamMember removes a non-owner member from the provider
func (d *DB) DeleteTeamMember(ctx context.Context, providerID, memberID string) error {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM team_members
		WHERE provider_id = $1 AND id = $2 AND role <> 'owner'
	`, providerID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}
	return requireAffected(tag, "team member", memberID)
}
