// internal/core/domain/fine.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FineCalculator computes overdue fines. It is a pure function of the
// due date, the actual return instant and the configured daily rate.
type FineCalculator struct {
	PerDayRate decimal.Decimal
}

// NewFineCalculator creates a calculator with the given per-day rate
func NewFineCalculator(perDayRate decimal.Decimal) FineCalculator {
	return FineCalculator{PerDayRate: perDayRate}
}

// Calculate returns daysOverdue * PerDayRate, computed against the
// actual return instant so a delayed confirmation cannot shrink the
// fine. Partial days count as a full day; on-time returns owe nothing.
func (f FineCalculator) Calculate(dueDate, returnedAt time.Time) decimal.Decimal {
	if !returnedAt.After(dueDate) {
		return decimal.Zero
	}
	return f.PerDayRate.Mul(decimal.NewFromInt(DaysOverdue(dueDate, returnedAt)))
}

// DaysOverdue returns the number of chargeable overdue days, zero when
// returnedAt is at or before dueDate.
func DaysOverdue(dueDate, returnedAt time.Time) int64 {
	overdue := returnedAt.Sub(dueDate)
	if overdue <= 0 {
		return 0
	}
	days := int64(overdue / (24 * time.Hour))
	if overdue%(24*time.Hour) != 0 {
		days++
	}
	return days
}
