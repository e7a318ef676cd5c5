// Package schedule computes the next occurrence date for recurring
// transactions.
//
// Each frequency has its own advancer strategy. Month and year advancement
// clamp the day-of-month to the last valid day of the target month instead
// of letting native date arithmetic roll a Jan 31 target into March.
package schedule

import (
	"fmt"
	"time"

	"budget/internal/core"
)

// Advancer is the strategy interface for computing the next occurrence of
// a recurring transaction from a given date.
type Advancer interface {
	// Next returns the next occurrence strictly after from.
	Next(from core.Date) core.Date
}

// WeeklyAdvancer implements Advancer for weekly recurrences.
type WeeklyAdvancer struct{}

// Next returns from plus seven days.
func (WeeklyAdvancer) Next(from core.Date) core.Date {
	return core.Date{Time: from.AddDate(0, 0, 7)}
}

// MonthlyAdvancer implements Advancer for monthly recurrences.
type MonthlyAdvancer struct{}

// Next advances one calendar month, preserving the day-of-month where it
// exists and clamping to the last day of the target month otherwise
// (Jan 31 -> Feb 28/29, never Mar 2/3).
func (MonthlyAdvancer) Next(from core.Date) core.Date {
	year, month := from.Year(), from.Month()+1
	if month > 12 {
		month = 1
		year++
	}
	return core.NewDate(year, month, clampDay(year, month, from.Day()))
}

// YearlyAdvancer implements Advancer for yearly recurrences.
type YearlyAdvancer struct{}

// Next advances one calendar year, clamping Feb 29 to Feb 28 on non-leap
// years.
func (YearlyAdvancer) Next(from core.Date) core.Date {
	year := from.Year() + 1
	return core.NewDate(year, from.Month(), clampDay(year, from.Month(), from.Day()))
}

// clampDay limits day to the last valid day of year/month.
func clampDay(year, month, day int) int {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// advancers maps frequencies to their corresponding strategies.
var advancers = map[core.Frequency]Advancer{
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// NextDate computes the next occurrence for frequency starting at from.
// It is called once when a recurring transaction is created or updated to
// seed its NextDate field; elapsed dates are not advanced automatically.
func NextDate(frequency core.Frequency, from core.Date) (core.Date, error) {
	adv, ok := advancers[frequency]
	if !ok {
		return core.Date{}, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return adv.Next(from), nil
}

// RegisterAdvancer allows registering custom advancers for new frequency
// types without modifying this package.
func RegisterAdvancer(frequency core.Frequency, adv Advancer) {
	advancers[frequency] = adv
}
