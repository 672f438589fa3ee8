package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/assignee"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// mockDatabase is an in-memory db.Database. Setting failWith makes every write fail.
type mockDatabase struct {
	mu          sync.Mutex
	shifts      []db.Shift
	members     []db.TeamMember
	invitations []db.Invitation
	workers     []db.WorkerProfile
	teams       []db.Team
	locations   []db.ServiceLocation
	users       map[string]*db.UserMetadata

	failWith error
	writes   int

	revenue  *db.RevenueMetrics
	trendErr error
}

func newMockDatabase() *mockDatabase {
	return &mockDatabase{users: map[string]*db.UserMetadata{}}
}

func (m *mockDatabase) write() error {
	m.writes++
	return m.failWith
}

func (m *mockDatabase) GetShifts(ctx context.Context, providerID string) ([]db.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.shifts), nil
}

func (m *mockDatabase) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.shifts = append(m.shifts, shifts...)
	return nil
}

func (m *mockDatabase) UpdateShiftAssignee(ctx context.Context, providerID, shiftID, userID, workerProfileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.shifts {
		if m.shifts[i].ID == shiftID {
			m.shifts[i].UserID = userID
			m.shifts[i].WorkerProfileID = workerProfileID
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockDatabase) UpdateShiftStatus(ctx context.Context, providerID, shiftID string, status model.ShiftStatus, actualStart, actualEnd *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.shifts {
		if m.shifts[i].ID == shiftID {
			m.shifts[i].Status = status
			if actualStart != nil {
				m.shifts[i].ActualStart = actualStart
			}
			if actualEnd != nil {
				m.shifts[i].ActualEnd = actualEnd
			}
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockDatabase) GetUserMetadata(ctx context.Context, userID string) (*db.UserMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meta, ok := m.users[userID]; ok {
		return meta, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockDatabase) GetWorkerProfile(ctx context.Context, workerProfileID string) (*db.WorkerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.ID == workerProfileID {
			return &w, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockDatabase) GetTeamMembers(ctx context.Context, providerID string) ([]db.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.members), nil
}

func (m *mockDatabase) UpdateTeamMemberStatus(ctx context.Context, providerID, memberID string, status model.MemberStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.members {
		if m.members[i].ID == memberID {
			m.members[i].Status = status
		}
	}
	return nil
}

func (m *mockDatabase) UpdateTeamMemberRole(ctx context.Context, providerID, memberID string, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.members {
		if m.members[i].ID == memberID {
			m.members[i].Role = role
		}
	}
	return nil
}

func (m *mockDatabase) DeleteTeamMember(ctx context.Context, providerID, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.members = slices.DeleteFunc(m.members, func(tm db.TeamMember) bool { return tm.ID == memberID })
	return nil
}

func (m *mockDatabase) GetInvitations(ctx context.Context, providerID string) ([]db.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.invitations), nil
}

func (m *mockDatabase) InsertInvitation(ctx context.Context, invitation *db.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.invitations = append(m.invitations, *invitation)
	return nil
}

func (m *mockDatabase) UpdateInvitationStatus(ctx context.Context, providerID, invitationID string, status model.InvitationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.invitations {
		if m.invitations[i].ID == invitationID {
			m.invitations[i].Status = status
		}
	}
	return nil
}

func (m *mockDatabase) GetWorkerProfiles(ctx context.Context, providerID string) ([]db.WorkerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.workers), nil
}

func (m *mockDatabase) GetTeams(ctx context.Context, providerID string) ([]db.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.teams), nil
}

func (m *mockDatabase) InsertWorkerProfile(ctx context.Context, worker *db.WorkerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.workers = append(m.workers, *worker)
	return nil
}

func (m *mockDatabase) UpdateWorkerProfile(ctx context.Context, worker *db.WorkerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.workers {
		if m.workers[i].ID == worker.ID {
			createdAt := m.workers[i].CreatedAt
			m.workers[i] = *worker
			m.workers[i].CreatedAt = createdAt
		}
	}
	return nil
}

func (m *mockDatabase) DeleteWorkerProfile(ctx context.Context, providerID, workerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.workers = slices.DeleteFunc(m.workers, func(w db.WorkerProfile) bool { return w.ID == workerID })
	for i := range m.shifts {
		if m.shifts[i].WorkerProfileID == workerID {
			m.shifts[i].WorkerProfileID = ""
		}
	}
	return nil
}

func (m *mockDatabase) UpdateWorkerTeam(ctx context.Context, providerID, workerID, teamID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.workers {
		if m.workers[i].ID == workerID {
			m.workers[i].TeamID = teamID
		}
	}
	return nil
}

func (m *mockDatabase) GetLocations(ctx context.Context, providerID string) ([]db.ServiceLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.locations), nil
}

func (m *mockDatabase) InsertLocation(ctx context.Context, location *db.ServiceLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.locations = append(m.locations, *location)
	return nil
}

func (m *mockDatabase) UpdateLocation(ctx context.Context, location *db.ServiceLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.locations {
		if m.locations[i].ID == location.ID {
			primary := m.locations[i].IsPrimary
			m.locations[i] = *location
			m.locations[i].IsPrimary = primary
		}
	}
	return nil
}

func (m *mockDatabase) DeleteLocation(ctx context.Context, providerID, locationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.locations = slices.DeleteFunc(m.locations, func(l db.ServiceLocation) bool { return l.ID == locationID })
	return nil
}

func (m *mockDatabase) SetPrimaryLocation(ctx context.Context, providerID, locationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.locations = SetPrimary(m.locations, locationID)
	return nil
}

func (m *mockDatabase) GetRevenueMetrics(ctx context.Context, providerID string, r db.DateRange) (*db.RevenueMetrics, error) {
	return m.revenue, nil
}

func (m *mockDatabase) GetBookingStatistics(ctx context.Context, providerID string, r db.DateRange) (*db.BookingStatistics, error) {
	return &db.BookingStatistics{Total: 3, Completed: 2, Cancelled: 1}, nil
}

func (m *mockDatabase) GetStaffUtilization(ctx context.Context, providerID string, r db.DateRange) (*db.StaffUtilization, error) {
	return &db.StaffUtilization{TotalShifts: 4, CompletedShifts: 3}, nil
}

func (m *mockDatabase) GetExpenseSummary(ctx context.Context, providerID string, r db.DateRange) (*db.ExpenseSummary, error) {
	return &db.ExpenseSummary{
		TotalExpenses: decimal.NewFromInt(1200),
		ByCategory:    map[string]decimal.Decimal{"ingredients": decimal.NewFromInt(1200)},
	}, nil
}

func (m *mockDatabase) GetMonthlyTrendData(ctx context.Context, providerID string, r db.DateRange) ([]db.MonthlyTrendPoint, error) {
	if m.trendErr != nil {
		return nil, m.trendErr
	}
	return []db.MonthlyTrendPoint{{Month: "2025-01", Revenue: decimal.NewFromInt(5000), Bookings: 2}}, nil
}

// mockNotifier records every notification
type mockNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (m *mockNotifier) Success(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes = append(m.successes, message)
}

func (m *mockNotifier) Error(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
}

// mockMailer records sent invitations
type mockMailer struct {
	sent []db.Invitation
	err  error
}

func (m *mockMailer) SendInvitation(ctx context.Context, invitation db.Invitation) error {
	m.sent = append(m.sent, invitation)
	return m.err
}

const (
	testProvider = "p1"
	testUser     = "11111111-1111-1111-1111-111111111111"
)

func newTestEnv(database *mockDatabase) (Env, *mockNotifier) {
	logger := zap.NewNop()
	qc := cache.NewQueryCache(time.Minute, logger)
	RegisterFetchers(qc, database, assignee.NewResolver(database, logger, 4), logger)
	notifier := &mockNotifier{}
	return Env{
		Cache:      qc,
		Controller: optimistic.NewController(qc, notifier, logger),
		Logger:     logger,
		Session:    model.Session{ProviderID: testProvider, UserID: testUser},
	}, notifier
}

func errFailed(what string) error {
	return fmt.Errorf("%s failed", what)
}
