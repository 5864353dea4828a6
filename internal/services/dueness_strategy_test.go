package services

import (
	"testing"
	"time"

	"divebooks/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestDailyChecker(t *testing.T) {
	c := DailyChecker{}
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"never generated", time.Time{}, date(2026, 5, 10), true},
		{"same day", date(2026, 5, 10), date(2026, 5, 10), false},
		{"next day", date(2026, 5, 10), date(2026, 5, 11), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.last, tt.now, time.Time{}); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker(t *testing.T) {
	c := WeeklyChecker{}
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"never generated", time.Time{}, date(2026, 5, 10), true},
		{"six days", date(2026, 5, 10), date(2026, 5, 16), false},
		{"seven days", date(2026, 5, 10), date(2026, 5, 17), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.last, tt.now, time.Time{}); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker(t *testing.T) {
	c := MonthlyChecker{}
	template := date(2026, 1, 15)
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"never generated", time.Time{}, date(2026, 5, 1), true},
		{"same month", date(2026, 5, 15), date(2026, 5, 20), false},
		{"new month before target day", date(2026, 4, 15), date(2026, 5, 10), false},
		{"new month on target day", date(2026, 4, 15), date(2026, 5, 15), true},
		{"new month after target day", date(2026, 4, 15), date(2026, 5, 20), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.last, tt.now, template); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyCheckerClampsShortMonths(t *testing.T) {
	c := MonthlyChecker{}
	// Template on the 31st, February only has 28 days in 2026.
	template := date(2026, 1, 31)
	if !c.IsDue(date(2026, 1, 31), date(2026, 2, 28), template) {
		t.Error("Feb 28 must be due for a day-31 template")
	}
	if c.IsDue(date(2026, 1, 31), date(2026, 2, 27), template) {
		t.Error("Feb 27 must not be due for a day-31 template")
	}
}

func TestYearlyChecker(t *testing.T) {
	c := YearlyChecker{}
	template := date(2025, 6, 15)
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"never generated", time.Time{}, date(2026, 1, 1), true},
		{"same year", date(2026, 6, 15), date(2026, 8, 1), false},
		{"new year before anniversary", date(2025, 6, 15), date(2026, 5, 1), false},
		{"new year on anniversary", date(2025, 6, 15), date(2026, 6, 15), true},
		{"new year past anniversary month", date(2025, 6, 15), date(2026, 7, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.last, tt.now, template); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckerFor(t *testing.T) {
	for _, p := range []core.RecurrencePeriod{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := CheckerFor(p); err != nil {
			t.Errorf("CheckerFor(%s): %v", p, err)
		}
	}
	if _, err := CheckerFor("hourly"); err == nil {
		t.Error("unknown period must error")
	}
}
