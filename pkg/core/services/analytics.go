package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// DashboardMetrics bundles every aggregate shown on the provider dashboard
type DashboardMetrics struct {
	Revenue      *db.RevenueMetrics
	Bookings     *db.BookingStatistics
	Staff        *db.StaffUtilization
	Expenses     *db.ExpenseSummary
	MonthlyTrend []db.MonthlyTrendPoint
}

// GetDashboardMetrics runs the aggregate procedures concurrently.
// Any single failure fails the whole call.
func GetDashboardMetrics(ctx context.Context, store db.AnalyticsStore, logger *zap.Logger, session model.Session, r db.DateRange) (*DashboardMetrics, error) {
	if err := session.RequireProvider(); err != nil {
		return nil, err
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return nil, fmt.Errorf("date range ends before it starts")
	}
	providerID := session.ProviderID

	var metrics DashboardMetrics
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		revenue, err := store.GetRevenueMetrics(ctx, providerID, r)
		if err != nil {
			return fmt.Errorf("failed to get revenue metrics: %w", err)
		}
		metrics.Revenue = revenue
		return nil
	})
	g.Go(func() error {
		bookings, err := store.GetBookingStatistics(ctx, providerID, r)
		if err != nil {
			return fmt.Errorf("failed to get booking statistics: %w", err)
		}
		metrics.Bookings = bookings
		return nil
	})
	g.Go(func() error {
		staff, err := store.GetStaffUtilization(ctx, providerID, r)
		if err != nil {
			return fmt.Errorf("failed to get staff utilization: %w", err)
		}
		metrics.Staff = staff
		return nil
	})
	g.Go(func() error {
		expenses, err := store.GetExpenseSummary(ctx, providerID, r)
		if err != nil {
			return fmt.Errorf("failed to get expense summary: %w", err)
		}
		metrics.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		trend, err := store.GetMonthlyTrendData(ctx, providerID, r)
		if err != nil {
			return fmt.Errorf("failed to get monthly trend data: %w", err)
		}
		metrics.MonthlyTrend = trend
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Loaded dashboard metrics",
		zap.String("provider_id", providerID),
		zap.Int("trend_points", len(metrics.MonthlyTrend)))
	return &metrics, nil
}
