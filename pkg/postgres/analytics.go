package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jakechorley/catering-ops/pkg/db"
)

// callJSON runs a procedure returning jsonb and decodes it into dest
func (d *DB) callJSON(ctx context.Context, dest any, query string, args ...any) error {
	var raw []byte
	if err := d.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return err
	}
	if raw == nil {
		return db.ErrNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode procedure result: %w", err)
	}
	return nil
}

// GetUserMetadata calls get_user_metadata for one user
func (d *DB) GetUserMetadata(ctx context.Context, userID string) (*db.UserMetadata, error) {
	var meta db.UserMetadata
	err := d.callJSON(ctx, &meta, `SELECT get_user_metadata($1)`, userID)
	if err != nil {
		if isNoRows(err) {
			err = db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user metadata for %s: %w", userID, err)
	}
	return &meta, nil
}

func dateArgs(r db.DateRange) (*time.Time, *time.Time) {
	return utcPtr(r.From), utcPtr(r.To)
}

// GetRevenueMetrics calls get_revenue_metrics
func (d *DB) GetRevenueMetrics(ctx context.Context, providerID string, r db.DateRange) (*db.RevenueMetrics, error) {
	from, to := dateArgs(r)
	var out db.RevenueMetrics
	if err := d.callJSON(ctx, &out, `SELECT get_revenue_metrics($1, $2::date, $3::date)`, providerID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get revenue metrics: %w", err)
	}
	return &out, nil
}

// GetBookingStatistics calls get_booking_statistics
func (d *DB) GetBookingStatistics(ctx context.Context, providerID string, r db.DateRange) (*db.BookingStatistics, error) {
	from, to := dateArgs(r)
	var out db.BookingStatistics
	if err := d.callJSON(ctx, &out, `SELECT get_booking_statistics($1, $2::date, $3::date)`, providerID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get booking statistics: %w", err)
	}
	return &out, nil
}

// GetStaffUtilization calls get_staff_utilization
func (d *DB) GetStaffUtilization(ctx context.Context, providerID string, r db.DateRange) (*db.StaffUtilization, error) {
	from, to := dateArgs(r)
	var out db.StaffUtilization
	if err := d.callJSON(ctx, &out, `SELECT get_staff_utilization($1, $2::date, $3::date)`, providerID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get staff utilization: %w", err)
	}
	return &out, nil
}

// GetExpenseSummary calls get_expense_summary
func (d *DB) GetExpenseSummary(ctx context.Context, providerID string, r db.DateRange) (*db.ExpenseSummary, error) {
	from, to := dateArgs(r)
	var out db.ExpenseSummary
	if err := d.callJSON(ctx, &out, `SELECT get_expense_summary($1, $2::date, $3::date)`, providerID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get expense summary: %w", err)
	}
	return &out, nil
}

// GetMonthlyTrendData calls get_monthly_trend_data
func (d *DB) GetMonthlyTrendData(ctx context.Context, providerID string, r db.DateRange) ([]db.MonthlyTrendPoint, error) {
	from, to := dateArgs(r)
	var out []db.MonthlyTrendPoint
	if err := d.callJSON(ctx, &out, `SELECT get_monthly_trend_data($1, $2::date, $3::date)`, providerID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get monthly trend data: %w", err)
	}
	return out, nil
}
