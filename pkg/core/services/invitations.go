package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// InvitationTTL is how long an invitation can be accepted for
const InvitationTTL = 7 * 24 * time.Hour

// Mailer sends invitation emails
type Mailer interface {
	SendInvitation(ctx context.Context, invitation db.Invitation) error
}

// InviteInput describes a new team invitation
type InviteInput struct {
	Email string     `validate:"required,email"`
	Role  model.Role `validate:"required,oneof=admin manager staff viewer"`
}

// ListInvitations returns the provider's invitations
func ListInvitations(ctx context.Context, env Env) ([]db.Invitation, error) {
	if err := env.Session.RequireProvider(); err != nil {
		return nil, err
	}
	invitations, err := fetchList[db.Invitation](ctx, env.Cache, env.key(cache.EntityInvitations))
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// InviteMember records an invitation and, when mailer is not nil, emails it.
// A failed email is logged; the invitation stays valid.
func InviteMember(ctx context.Context, env Env, store db.InvitationStore, mailer Mailer, input InviteInput) (*db.Invitation, error) {
	if err := env.Session.RequireUser(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	created := now()
	invitation := db.Invitation{
		ID:         uuid.New().String(),
		ProviderID: env.Session.ProviderID,
		Email:      input.Email,
		Role:       input.Role,
		Status:     model.InvitationPending,
		InvitedBy:  env.Session.UserID,
		CreatedAt:  created,
		ExpiresAt:  created.Add(InvitationTTL),
	}
	predicted := invitation
	predicted.ID = model.NewPlaceholderID()

	err := optimistic.Apply(ctx, env.Controller, optimistic.Command[db.Invitation]{
		Name: "invite_member",
		Key:  env.key(cache.EntityInvitations),
		Predict: func(items []db.Invitation) []db.Invitation {
			return append(items, predicted)
		},
		Execute: func(ctx context.Context) error {
			return store.InsertInvitation(ctx, &invitation)
		},
		SuccessMessage: fmt.Sprintf("Invitation sent to %s", input.Email),
	})
	if err != nil {
		return nil, err
	}

	if mailer != nil {
		if err := mailer.SendInvitation(ctx, invitation); err != nil {
			env.Logger.Warn("Failed to email invitation",
				zap.String("invitation_id", invitation.ID),
				zap.String("email", invitation.Email),
				zap.Error(err))
		} else {
			env.Logger.Info("Invitation emailed", zap.String("email", invitation.Email))
		}
	}
	return &invitation, nil
}

// CancelInvitation withdraws a pending invitation
func CancelInvitation(ctx context.Context, env Env, store db.InvitationStore, invitationID string) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[db.Invitation]{
		Name: "cancel_invitation",
		Key:  env.key(cache.EntityInvitations),
		Predict: replaceWhere(
			func(i db.Invitation) bool { return i.ID == invitationID },
			func(i *db.Invitation) { i.Status = model.InvitationCancelled }),
		Execute: func(ctx context.Context) error {
			return store.UpdateInvitationStatus(ctx, env.Session.ProviderID, invitationID, model.InvitationCancelled)
		},
		SuccessMessage: "Invitation cancelled",
	})
}
