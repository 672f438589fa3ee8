package model

import "errors"

// ShiftStatus is the lifecycle state of a shift
type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "scheduled"
	ShiftCheckedIn  ShiftStatus = "checked_in"
	ShiftCheckedOut ShiftStatus = "checked_out"
	ShiftCancelled  ShiftStatus = "cancelled"
)

// ErrInvalidTransition is returned when a shift status change is not allowed
var ErrInvalidTransition = errors.New("invalid shift status transition")

var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftScheduled: {ShiftCheckedIn, ShiftCancelled},
	ShiftCheckedIn: {ShiftCheckedOut, ShiftCancelled},
}

func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftScheduled, ShiftCheckedIn, ShiftCheckedOut, ShiftCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a shift in status s may move to next
func (s ShiftStatus) CanTransitionTo(next ShiftStatus) bool {
	for _, allowed := range shiftTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Role is a team member's permission level within a provider
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleViewer  Role = "viewer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleStaff, RoleViewer:
		return true
	}
	return false
}

// MemberStatus is whether a team member may currently sign in
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberSuspended MemberStatus = "suspended"
)

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
)

type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "active"
	WorkerInactive WorkerStatus = "inactive"
)

var (
	ErrMissingProvider  = errors.New("no provider selected")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Session identifies the provider (tenant) and signed-in user an operation runs for
type Session struct {
	ProviderID string
	UserID     string
}

// RequireProvider fails fast when no provider has been selected
func (s Session) RequireProvider() error {
	if s.ProviderID == "" {
		return ErrMissingProvider
	}
	return nil
}

// RequireUser fails fast when there is no provider or no signed-in user
func (s Session) RequireUser() error {
	if err := s.RequireProvider(); err != nil {
		return err
	}
	if s.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}
