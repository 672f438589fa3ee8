package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/assignee"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// ShiftFilter narrows ListShifts results. Zero fields match everything.
type ShiftFilter struct {
	Status model.ShiftStatus
	From   *time.Time // shifts starting at or after
	To     *time.Time // shifts starting before
}

func (f ShiftFilter) matches(s db.Shift) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.From != nil && s.ScheduledStart.Before(*f.From) {
		return false
	}
	if f.To != nil && !s.ScheduledStart.Before(*f.To) {
		return false
	}
	return true
}

// ShiftInput describes a new shift
type ShiftInput struct {
	BookingID       string    `validate:"omitempty,uuid"`
	UserID          string    `validate:"omitempty,uuid,excluded_with=WorkerProfileID"`
	WorkerProfileID string    `validate:"omitempty,uuid"`
	ScheduledStart  time.Time `validate:"required"`
	ScheduledEnd    time.Time `validate:"required,gtfield=ScheduledStart"`
	Notes           string    `validate:"max=1000"`
}

// ListShifts returns the provider's shifts with resolved assignees
func ListShifts(ctx context.Context, env Env, filter ShiftFilter) ([]assignee.EnrichedShift, error) {
	if err := env.Session.RequireProvider(); err != nil {
		return nil, err
	}

	shifts, err := fetchList[assignee.EnrichedShift](ctx, env.Cache, env.key(cache.EntityShifts))
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	filtered := make([]assignee.EnrichedShift, 0, len(shifts))
	for _, s := range shifts {
		if filter.matches(s.Shift) {
			filtered = append(filtered, s)
		}
	}
	env.Logger.Debug("Listed shifts",
		zap.Int("total", len(shifts)),
		zap.Int("matched", len(filtered)))
	return filtered, nil
}

// CreateShift inserts one shift and refreshes the shift collection
func CreateShift(ctx context.Context, env Env, store db.ShiftStore, input ShiftInput) (*db.Shift, error) {
	if err := env.Session.RequireUser(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	shift := newShift(env.Session.ProviderID, input, input.ScheduledStart, input.ScheduledEnd)
	predicted := shift
	predicted.ID = model.NewPlaceholderID()

	err := optimistic.Apply(ctx, env.Controller, optimistic.Command[assignee.EnrichedShift]{
		Name: "create_shift",
		Key:  env.key(cache.EntityShifts),
		Predict: func(items []assignee.EnrichedShift) []assignee.EnrichedShift {
			return append(items, assignee.EnrichedShift{
				Shift:    predicted,
				Assignee: provisionalAssignee(env, shift.UserID, shift.WorkerProfileID),
			})
		},
		Execute: func(ctx context.Context) error {
			return store.InsertShifts(ctx, []db.Shift{shift})
		},
		SuccessMessage: "Shift created",
	})
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// AssignShift points a shift at a team member, a worker, or nobody.
// Pass empty ids to clear the assignment.
func AssignShift(ctx context.Context, env Env, store db.ShiftStore, shiftID string, to model.Assignee) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}

	var userID, workerProfileID string
	switch a := to.(type) {
	case model.TeamMemberAssignee:
		userID = a.UserID
	case model.WorkerAssignee:
		workerProfileID = a.WorkerProfileID
	case model.Unassigned, nil:
	default:
		return fmt.Errorf("unsupported assignee %T", to)
	}

	resolved := provisionalAssignee(env, userID, workerProfileID)
	return optimistic.Apply(ctx, env.Controller, optimistic.Command[assignee.EnrichedShift]{
		Name: "assign_shift",
		Key:  env.key(cache.EntityShifts),
		Predict: replaceWhere(
			func(s assignee.EnrichedShift) bool { return s.ID == shiftID },
			func(s *assignee.EnrichedShift) {
				s.UserID = userID
				s.WorkerProfileID = workerProfileID
				s.Assignee = resolved
			}),
		Execute: func(ctx context.Context) error {
			return store.UpdateShiftAssignee(ctx, env.Session.ProviderID, shiftID, userID, workerProfileID)
		},
		SuccessMessage: "Shift assignment updated",
	})
}

// UpdateShiftStatus moves a shift through its lifecycle. Checking in stamps
// the actual start and checking out stamps the actual end.
func UpdateShiftStatus(ctx context.Context, env Env, store db.ShiftStore, shiftID string, status model.ShiftStatus) error {
	if err := env.Session.RequireUser(); err != nil {
		return err
	}

	shifts, err := fetchList[assignee.EnrichedShift](ctx, env.Cache, env.key(cache.EntityShifts))
	if err != nil {
		return fmt.Errorf("failed to load shift: %w", err)
	}
	current, ok := findByID(shifts, shiftID, func(s assignee.EnrichedShift) string { return s.ID })
	if !ok {
		return fmt.Errorf("shift %s: %w", shiftID, db.ErrNotFound)
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, current.Status, status)
	}

	stamp := now()
	var actualStart, actualEnd *time.Time
	switch status {
	case model.ShiftCheckedIn:
		actualStart = &stamp
	case model.ShiftCheckedOut:
		actualEnd = &stamp
	}

	return optimistic.Apply(ctx, env.Controller, optimistic.Command[assignee.EnrichedShift]{
		Name: "update_shift_status",
		Key:  env.key(cache.EntityShifts),
		Predict: replaceWhere(
			func(s assignee.EnrichedShift) bool { return s.ID == shiftID },
			func(s *assignee.EnrichedShift) {
				s.Status = status
				if actualStart != nil {
					s.ActualStart = actualStart
				}
				if actualEnd != nil {
					s.ActualEnd = actualEnd
				}
			}),
		Execute: func(ctx context.Context) error {
			return store.UpdateShiftStatus(ctx, env.Session.ProviderID, shiftID, status, actualStart, actualEnd)
		},
		SuccessMessage: fmt.Sprintf("Shift marked %s", status),
	})
}

func newShift(providerID string, input ShiftInput, start, end time.Time) db.Shift {
	return db.Shift{
		ID:              uuid.New().String(),
		ProviderID:      providerID,
		BookingID:       input.BookingID,
		UserID:          input.UserID,
		WorkerProfileID: input.WorkerProfileID,
		ScheduledStart:  start,
		ScheduledEnd:    end,
		Status:          model.ShiftScheduled,
		Notes:           input.Notes,
	}
}

// provisionalAssignee guesses the resolved assignee from the cached team and
// worker collections until the refetch resolves it properly
func provisionalAssignee(env Env, userID, workerProfileID string) model.ResolvedAssignee {
	switch {
	case userID != "":
		for _, m := range cachedList[db.TeamMember](env.Cache, env.key(cache.EntityMembers)) {
			if m.UserID == userID {
				email := m.Email
				name := m.FullName
				if name == "" {
					name = model.UnknownUserName
				}
				return model.ResolvedAssignee{Name: name, Contact: &email, Type: model.AssigneeTeamMember}
			}
		}
		empty := ""
		return model.ResolvedAssignee{Name: model.UnknownUserName, Contact: &empty, Type: model.AssigneeTeamMember}
	case workerProfileID != "":
		for _, w := range cachedList[db.WorkerProfile](env.Cache, env.key(cache.EntityWorkers)) {
			if w.ID == workerProfileID {
				var contact *string
				if w.Phone != "" {
					phone := w.Phone
					contact = &phone
				}
				return model.ResolvedAssignee{Name: w.Name, Contact: contact, Type: model.AssigneeWorker}
			}
		}
		return model.ResolvedAssignee{Name: model.UnknownWorkerName, Type: model.AssigneeWorker}
	default:
		return model.ResolvedAssignee{Name: model.UnassignedName, Type: model.AssigneeUnassigned}
	}
}

func findByID[E any](items []E, id string, idOf func(E) string) (E, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}
