package db

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/catering-ops/pkg/core/model"
)

// Shift represents a database shift record.
// At most one of UserID and WorkerProfileID is set; empty strings are NULL.
type Shift struct {
	ID              string
	ProviderID      string
	BookingID       string
	UserID          string
	WorkerProfileID string
	ScheduledStart  time.Time
	ScheduledEnd    time.Time
	ActualStart     *time.Time
	ActualEnd       *time.Time
	Status          model.ShiftStatus
	Notes           string
}

// Assignee returns the shift's assignee reference
func (s Shift) Assignee() model.Assignee {
	return model.NewAssignee(s.UserID, s.WorkerProfileID)
}

// Validate checks the invariants the shift table also enforces
func (s Shift) Validate() error {
	if s.UserID != "" && s.WorkerProfileID != "" {
		return fmt.Errorf("shift %s has both a team member and a worker assigned", s.ID)
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("shift %s has unknown status %q", s.ID, s.Status)
	}
	if !s.ScheduledEnd.After(s.ScheduledStart) {
		return fmt.Errorf("shift %s must end after it starts", s.ID)
	}
	return nil
}

// TeamMember represents a provider staff user with login access
type TeamMember struct {
	ID         string
	ProviderID string
	UserID     string
	Role       model.Role
	Status     model.MemberStatus
	Email      string // joined from the user record
	FullName   string // joined from the user record
	JoinedAt   time.Time
}

// Invitation represents a pending request for someone to join a provider team
type Invitation struct {
	ID         string
	ProviderID string
	Email      string
	Role       model.Role
	Status     model.InvitationStatus
	InvitedBy  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// WorkerProfile represents a non-login staff record assignable to shifts
type WorkerProfile struct {
	ID         string
	ProviderID string
	Name       string
	Phone      string
	Email      string
	TeamID     string
	Skills     []string
	Status     model.WorkerStatus
	CreatedAt  time.Time
}

// Team groups worker profiles under a provider
type Team struct {
	ID         string
	ProviderID string
	Name       string
}

// ServiceLocation represents a point of a provider's coverage area
type ServiceLocation struct {
	ID              string
	ProviderID      string
	Province        string
	City            string
	Barangay        string
	Street          string
	PostalCode      string
	Landmark        string
	ServiceRadiusKm float64
	IsPrimary       bool
}

// UserMetadata is returned by the get_user_metadata procedure
type UserMetadata struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// DateRange bounds an aggregate query; nil ends are open
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// RevenueMetrics is returned by get_revenue_metrics
type RevenueMetrics struct {
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	CompletedBookings   int             `json:"completed_bookings"`
	AverageBookingValue decimal.Decimal `json:"average_booking_value"`
}

// BookingStatistics is returned by get_booking_statistics
type BookingStatistics struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// StaffUtilization is returned by get_staff_utilization
type StaffUtilization struct {
	TotalShifts     int     `json:"total_shifts"`
	CompletedShifts int     `json:"completed_shifts"`
	ScheduledHours  float64 `json:"scheduled_hours"`
	WorkedHours     float64 `json:"worked_hours"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// ExpenseSummary is returned by get_expense_summary
type ExpenseSummary struct {
	TotalExpenses decimal.Decimal            `json:"total_expenses"`
	ByCategory    map[string]decimal.Decimal `json:"by_category"`
}

// MonthlyTrendPoint is one row of get_monthly_trend_data
type MonthlyTrendPoint struct {
	Month    string          `json:"month"` // YYYY-MM
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Bookings int             `json:"bookings"`
}
