package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/catering-ops/pkg/core/assignee"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTime accepts RFC 3339 or a local "2006-01-02 15:04" timestamp
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected YYYY-MM-DD HH:MM or RFC 3339", s)
}

// parseDate parses an optional YYYY-MM-DD flag value; empty means unbounded
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// assigneeFromFlags picks the shift assignee from --user/--worker; neither means unassigned
func assigneeFromFlags(userID, workerID string) (model.Assignee, error) {
	if userID != "" && workerID != "" {
		return nil, fmt.Errorf("--user and --worker cannot be used together")
	}
	return model.NewAssignee(userID, workerID), nil
}

func colorize(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

func statusColor(status model.ShiftStatus) string {
	switch status {
	case model.ShiftCheckedIn:
		return colorYellow
	case model.ShiftCheckedOut:
		return colorGreen
	case model.ShiftCancelled:
		return colorRed
	}
	return ""
}

func assigneeLabel(a model.ResolvedAssignee) string {
	label := a.Name
	if a.Contact != nil && *a.Contact != "" {
		label += " <" + *a.Contact + ">"
	}
	if a.Type == model.AssigneeWorker {
		label += " (worker)"
	}
	return label
}

// printShiftTable writes shifts grouped by day, ordered by start time
func printShiftTable(w io.Writer, shifts []assignee.EnrichedShift, color bool) {
	if len(shifts) == 0 {
		fmt.Fprintln(w, "No shifts found.")
		return
	}

	sorted := make([]assignee.EnrichedShift, len(shifts))
	copy(sorted, shifts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledStart.Before(sorted[j].ScheduledStart)
	})

	var day string
	for _, s := range sorted {
		start := s.ScheduledStart.In(time.Local)
		if d := start.Format("Monday 2 Jan 2006"); d != day {
			day = d
			fmt.Fprintf(w, "\n%s\n%s\n", day, strings.Repeat("-", len(day)))
		}

		status := fmt.Sprintf("%-12s", s.Status)
		if c := statusColor(s.Status); c != "" {
			status = colorize(color, c, status)
		}

		who := assigneeLabel(s.Assignee)
		if s.Assignee.Type == model.AssigneeUnassigned {
			who = colorize(color, colorDim, who)
		}

		fmt.Fprintf(w, "  %s-%s  %s  %s  %s\n",
			start.Format("15:04"),
			s.ScheduledEnd.In(time.Local).Format("15:04"),
			status,
			who,
			colorize(color, colorDim, s.ID),
		)
	}
	fmt.Fprintln(w)
}

func formatMoney(v decimal.Decimal) string {
	return "₱" + v.StringFixed(2)
}

// printDashboard writes the dashboard aggregates
func printDashboard(w io.Writer, m *services.DashboardMetrics) {
	fmt.Fprintf(w, "\nRevenue\n")
	fmt.Fprintf(w, "  Total:            %s\n", formatMoney(m.Revenue.TotalRevenue))
	fmt.Fprintf(w, "  Completed:        %d bookings\n", m.Revenue.CompletedBookings)
	fmt.Fprintf(w, "  Average booking:  %s\n", formatMoney(m.Revenue.AverageBookingValue))

	fmt.Fprintf(w, "\nBookings\n")
	fmt.Fprintf(w, "  Total %d  pending %d  confirmed %d  completed %d  cancelled %d\n",
		m.Bookings.Total, m.Bookings.Pending, m.Bookings.Confirmed, m.Bookings.Completed, m.Bookings.Cancelled)

	fmt.Fprintf(w, "\nStaff\n")
	fmt.Fprintf(w, "  Shifts:       %d (%d completed)\n", m.Staff.TotalShifts, m.Staff.CompletedShifts)
	fmt.Fprintf(w, "  Hours:        %.1f worked of %.1f scheduled\n", m.Staff.WorkedHours, m.Staff.ScheduledHours)
	fmt.Fprintf(w, "  Utilization:  %.0f%%\n", m.Staff.UtilizationRate*100)

	fmt.Fprintf(w, "\nExpenses\n")
	fmt.Fprintf(w, "  Total:  %s\n", formatMoney(m.Expenses.TotalExpenses))
	categories := make([]string, 0, len(m.Expenses.ByCategory))
	for c := range m.Expenses.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "    %-16s %s\n", c, formatMoney(m.Expenses.ByCategory[c]))
	}

	if len(m.MonthlyTrend) > 0 {
		fmt.Fprintf(w, "\nMonthly trend\n")
		fmt.Fprintf(w, "  %-8s %12s %12s %9s\n", "Month", "Revenue", "Expenses", "Bookings")
		for _, p := range m.MonthlyTrend {
			fmt.Fprintf(w, "  %-8s %12s %12s %9d\n", p.Month, formatMoney(p.Revenue), formatMoney(p.Expenses), p.Bookings)
		}
	}
	fmt.Fprintln(w)
}
