package db

import (
	"context"
	"errors"
	"time"

	"github.com/jakechorley/catering-ops/pkg/core/model"
)

// ErrNotFound is returned when a row does not exist or is not visible to the provider
var ErrNotFound = errors.New("record not found")

// ShiftStore defines the interface for shift database operations
type ShiftStore interface {
	GetShifts(ctx context.Context, providerID string) ([]Shift, error)
	InsertShifts(ctx context.Context, shifts []Shift) error
	UpdateShiftAssignee(ctx context.Context, providerID, shiftID, userID, workerProfileID string) error
	UpdateShiftStatus(ctx context.Context, providerID, shiftID string, status model.ShiftStatus, actualStart, actualEnd *time.Time) error
}

// AssigneeLookup defines the reads used to resolve who works a shift
type AssigneeLookup interface {
	GetUserMetadata(ctx context.Context, userID string) (*UserMetadata, error)
	GetWorkerProfile(ctx context.Context, workerProfileID string) (*WorkerProfile, error)
}

// TeamStore defines the interface for team member database operations
type TeamStore interface {
	GetTeamMembers(ctx context.Context, providerID string) ([]TeamMember, error)
	UpdateTeamMemberStatus(ctx context.Context, providerID, memberID string, status model.MemberStatus) error
	UpdateTeamMemberRole(ctx context.Context, providerID, memberID string, role model.Role) error
	DeleteTeamMember(ctx context.Context, providerID, memberID string) error
}

// InvitationStore defines the interface for invitation database operations
type InvitationStore interface {
	GetInvitations(ctx context.Context, providerID string) ([]Invitation, error)
	InsertInvitation(ctx context.Context, invitation *Invitation) error
	UpdateInvitationStatus(ctx context.Context, providerID, invitationID string, status model.InvitationStatus) error
}

// WorkerStore defines the interface for worker profile database operations
type WorkerStore interface {
	GetWorkerProfiles(ctx context.Context, providerID string) ([]WorkerProfile, error)
	GetTeams(ctx context.Context, providerID string) ([]Team, error)
	InsertWorkerProfile(ctx context.Context, worker *WorkerProfile) error
	UpdateWorkerProfile(ctx context.Context, worker *WorkerProfile) error
	DeleteWorkerProfile(ctx context.Context, providerID, workerID string) error
	UpdateWorkerTeam(ctx context.Context, providerID, workerID, teamID string) error
}

// LocationStore defines the interface for service location database operations
type LocationStore interface {
	GetLocations(ctx context.Context, providerID string) ([]ServiceLocation, error)
	InsertLocation(ctx context.Context, location *ServiceLocation) error
	UpdateLocation(ctx context.Context, location *ServiceLocation) error
	DeleteLocation(ctx context.Context, providerID, locationID string) error
	SetPrimaryLocation(ctx context.Context, providerID, locationID string) error
}

// AnalyticsStore defines the aggregate procedures behind the dashboard
type AnalyticsStore interface {
	GetRevenueMetrics(ctx context.Context, providerID string, r DateRange) (*RevenueMetrics, error)
	GetBookingStatistics(ctx context.Context, providerID string, r DateRange) (*BookingStatistics, error)
	GetStaffUtilization(ctx context.Context, providerID string, r DateRange) (*StaffUtilization, error)
	GetExpenseSummary(ctx context.Context, providerID string, r DateRange) (*ExpenseSummary, error)
	GetMonthlyTrendData(ctx context.Context, providerID string, r DateRange) ([]MonthlyTrendPoint, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	ShiftStore
	AssigneeLookup
	TeamStore
	InvitationStore
	WorkerStore
	LocationStore
	AnalyticsStore
}
