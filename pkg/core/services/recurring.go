package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/assignee"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// MaxRecurringOccurrences caps how many shifts one recurrence rule may create
const MaxRecurringOccurrences = 100

// RecurringShiftInput describes a series of shifts generated from an RRULE
type RecurringShiftInput struct {
	RRule           string        `validate:"required"`
	Start           time.Time     `validate:"required"` // DTSTART of the series
	Duration        time.Duration `validate:"required,gt=0"`
	BookingID       string        `validate:"omitempty,uuid"`
	UserID          string        `validate:"omitempty,uuid,excluded_with=WorkerProfileID"`
	WorkerProfileID string        `validate:"omitempty,uuid"`
	Notes           string        `validate:"max=1000"`
}

// Occurrences expands rule from start, stopping after limit occurrences so
// rules without COUNT or UNTIL terminate
func Occurrences(rule string, start time.Time, limit int) ([]time.Time, bool, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse rrule: %w", err)
	}
	r.DTStart(start)

	var times []time.Time
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok {
			return times, false, nil
		}
		if len(times) == limit {
			return times, true, nil
		}
		times = append(times, t)
	}
}

// ScheduleRecurringShifts creates one shift per occurrence of the input rule
func ScheduleRecurringShifts(ctx context.Context, env Env, store db.ShiftStore, input RecurringShiftInput) ([]db.Shift, error) {
	if err := env.Session.RequireUser(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	starts, truncated, err := Occurrences(input.RRule, input.Start, MaxRecurringOccurrences)
	if err != nil {
		return nil, err
	}
	if truncated {
		env.Logger.Warn("Recurrence truncated",
			zap.String("rrule", input.RRule),
			zap.Int("max", MaxRecurringOccurrences))
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("rrule %q produces no occurrences", input.RRule)
	}

	base := ShiftInput{
		BookingID:       input.BookingID,
		UserID:          input.UserID,
		WorkerProfileID: input.WorkerProfileID,
		Notes:           input.Notes,
	}
	shifts := make([]db.Shift, len(starts))
	for i, start := range starts {
		shifts[i] = newShift(env.Session.ProviderID, base, start, start.Add(input.Duration))
	}
	env.Logger.Debug("Expanded recurring shifts", zap.Int("count", len(shifts)))

	err = optimistic.Apply(ctx, env.Controller, optimistic.Command[assignee.EnrichedShift]{
		Name: "schedule_recurring_shifts",
		Key:  env.key(cache.EntityShifts),
		Predict: func(items []assignee.EnrichedShift) []assignee.EnrichedShift {
			resolved := provisionalAssignee(env, input.UserID, input.WorkerProfileID)
			for _, s := range shifts {
				s.ID = model.NewPlaceholderID()
				items = append(items, assignee.EnrichedShift{Shift: s, Assignee: resolved})
			}
			return items
		},
		Execute: func(ctx context.Context) error {
			return store.InsertShifts(ctx, shifts)
		},
		SuccessMessage: fmt.Sprintf("%d shifts scheduled", len(shifts)),
	})
	if err != nil {
		return nil, err
	}
	return shifts, nil
}
