package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// GetShifts retrieves every shift of a provider ordered by scheduled start
func (d *DB) GetShifts(ctx context.Context, providerID string) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, provider_id, booking_id, user_id, worker_profile_id,
		       scheduled_start, scheduled_end, actual_start, actual_end, status, notes
		FROM shifts
		WHERE provider_id = $1
		ORDER BY scheduled_start, id
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		var s db.Shift
		var bookingID, userID, workerProfileID *string
		var status string
		if err := rows.Scan(&s.ID, &s.ProviderID, &bookingID, &userID, &workerProfileID,
			&s.ScheduledStart, &s.ScheduledEnd, &s.ActualStart, &s.ActualEnd, &status, &s.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		s.BookingID = deref(bookingID)
		s.UserID = deref(userID)
		s.WorkerProfileID = deref(workerProfileID)
		s.Status = model.ShiftStatus(status)
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// InsertShifts inserts shifts in a single batch
func (d *DB) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	for _, s := range shifts {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	batch := &pgx.Batch{}
	for _, s := range shifts {
		batch.Queue(`
			INSERT INTO shifts (id, provider_id, booking_id, user_id, worker_profile_id,
			                    scheduled_start, scheduled_end, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, s.ID, s.ProviderID, nullable(s.BookingID), nullable(s.UserID), nullable(s.WorkerProfileID),
			s.ScheduledStart.UTC(), s.ScheduledEnd.UTC(), string(s.Status), s.Notes)
	}

	return d.withTx(ctx, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert shifts: %w", err)
		}
		return nil
	})
}

// UpdateShiftAssignee sets at most one of the two assignee references
func (d *DB) UpdateShiftAssignee(ctx context.Context, providerID, shiftID, userID, workerProfileID string) error {
	if userID != "" && workerProfileID != "" {
		return fmt.Errorf("shift %s cannot be assigned to a team member and a worker", shiftID)
	}
	tag, err := d.pool.Exec(ctx, `
		UPDATE shifts SET user_id = $3, worker_profile_id = $4
		WHERE provider_id = $1 AND id = $2
	`, providerID, shiftID, nullable(userID), nullable(workerProfileID))
	if err != nil {
		return fmt.Errorf("failed to update shift assignee: %w", err)
	}
	return requireAffected(tag, "shift", shiftID)
}

// UpdateShiftStatus sets the status and, when given, the actual start or end
func (d *DB) UpdateShiftStatus(ctx context.Context, providerID, shiftID string, status model.ShiftStatus, actualStart, actualEnd *time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shifts
		SET status = $3,
		    actual_start = COALESCE($4, actual_start),
		    actual_end = COALESCE($5, actual_end)
		WHERE provider_id = $1 AND id = $2
	`, providerID, shiftID, string(status), utcPtr(actualStart), utcPtr(actualEnd))
	if err != nil {
		return fmt.Errorf("failed to update shift status: %w", err)
	}
	return requireAffected(tag, "shift", shiftID)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
