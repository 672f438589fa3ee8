package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// GetInvitations retrieves a provider's invitations, newest first
func (d *DB) GetInvitations(ctx context.Context, providerID string) ([]db.Invitation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, provider_id, email, role, status, invited_by, created_at, expires_at
		FROM invitations
		WHERE provider_id = $1
		ORDER BY created_at DESC, id
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []db.Invitation
	for rows.Next() {
		var inv db.Invitation
		var role, status string
		var invitedBy *string
		if err := rows.Scan(&inv.ID, &inv.ProviderID, &inv.Email, &role, &status, &invitedBy, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.Role = model.Role(role)
		inv.Status = model.InvitationStatus(status)
		inv.InvitedBy = deref(invitedBy)
		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}

	return invitations, nil
}

// InsertInvitation inserts a new invitation record
func (d *DB) InsertInvitation(ctx context.Context, invitation *db.Invitation) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO invitations (id, provider_id, email, role, status, invited_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, invitation.ID, invitation.ProviderID, invitation.Email, string(invitation.Role), string(invitation.Status),
		nullable(invitation.InvitedBy), invitation.CreatedAt.UTC(), invitation.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// UpdateInvitationStatus moves an invitation out of pending
func (d *DB) UpdateInvitationStatus(ctx context.Context, providerID, invitationID string, status model.InvitationStatus) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE invitations SET status = $3
		WHERE provider_id = $1 AND id = $2
	`, providerID, invitationID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	return requireAffected(tag, "invitation", invitationID)
}
