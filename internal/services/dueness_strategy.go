package services

import (
	"fmt"
	"time"

	"divebooks/internal/core"
)

// DuenessChecker decides whether a recurring template should produce a new
// occurrence. Each period has its own strategy.
type DuenessChecker interface {
	// IsDue reports whether a new occurrence is owed given when the last one
	// was generated (zero if never) and the template's original date.
	IsDue(lastGenerated, now time.Time, templateDate time.Time) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastGenerated, now time.Time, _ time.Time) bool {
	if lastGenerated.IsZero() {
		return true
	}
	return lastGenerated.Format("2006-01-02") != now.Format("2006-01-02")
}

// WeeklyChecker fires when 7 or more days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastGenerated, now time.Time, _ time.Time) bool {
	if lastGenerated.IsZero() {
		return true
	}
	return now.Sub(lastGenerated).Hours()/24 >= 7
}

// MonthlyChecker fires in a new month once the template's day of month is
// reached, clamped to short months.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastGenerated, now time.Time, templateDate time.Time) bool {
	if lastGenerated.IsZero() {
		return true
	}
	if lastGenerated.Year() == now.Year() && lastGenerated.Month() == now.Month() {
		return false
	}
	targetDay := templateDate.Day()
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}
	return now.Day() >= targetDay
}

// YearlyChecker fires in a new year once the template's month and day are
// reached.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastGenerated, now time.Time, templateDate time.Time) bool {
	if lastGenerated.IsZero() {
		return true
	}
	if lastGenerated.Year() == now.Year() {
		return false
	}
	if now.Month() != templateDate.Month() {
		return now.Month() > templateDate.Month()
	}
	return now.Day() >= templateDate.Day()
}

// CheckerFor returns the strategy for a recurrence period.
func CheckerFor(period core.RecurrencePeriod) (DuenessChecker, error) {
	switch period {
	case core.Daily:
		return DailyChecker{}, nil
	case core.Weekly:
		return WeeklyChecker{}, nil
	case core.Monthly:
		return MonthlyChecker{}, nil
	case core.Yearly:
		return YearlyChecker{}, nil
	default:
		return nil, fmt.Errorf("no dueness checker for period %q", period)
	}
}
