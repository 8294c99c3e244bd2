package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
)

// MinPeriodYear is the first year the kernel accepts.
const MinPeriodYear = 2020

// Period is a calendar month. Periods are ordered by (year, month).
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewPeriod validates month and year.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range 1..12", apperrors.ErrValidation, month)
	}
	if year < MinPeriodYear {
		return Period{}, fmt.Errorf("%w: year %d before %d", apperrors.ErrValidation, year, MinPeriodYear)
	}
	return Period{Month: month, Year: year}, nil
}

// ParsePeriod reads the "YYYY-MM" form.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 7 || s[4] != '-' {
		return Period{}, fmt.Errorf("%w: period %q must be YYYY-MM", apperrors.ErrValidation, s)
	}
	year, yErr := strconv.Atoi(s[:4])
	month, mErr := strconv.Atoi(s[5:])
	if yErr != nil || mErr != nil {
		return Period{}, fmt.Errorf("%w: period %q must be YYYY-MM", apperrors.ErrValidation, s)
	}
	return NewPeriod(month, year)
}

// PeriodOf returns the period containing t in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Next returns the following month, rolling the year after December.
func (p Period) Next() Period {
	next := Period{Month: p.Month%12 + 1, Year: p.Year}
	if p.Month == 12 {
		next.Year++
	}
	return next
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Compare returns -1, 0 or 1.
func (p Period) Compare(o Period) int {
	switch {
	case p.Year < o.Year:
		return -1
	case p.Year > o.Year:
		return 1
	case p.Month < o.Month:
		return -1
	case p.Month > o.Month:
		return 1
	}
	return 0
}

// Before reports whether p precedes o.
func (p Period) Before(o Period) bool {
	return p.Compare(o) < 0
}

// String renders "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Start is the first instant of the period in loc.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, loc)
}

// End is the first instant of the following period in loc (exclusive bound).
func (p Period) End(loc *time.Location) time.Time {
	return p.Next().Start(loc)
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return PeriodOf(t) == p
}

// LastDay returns the number of days in the month, leap years included.
func (p Period) LastDay() int {
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLastDay reports whether t is the last calendar day of p.
func (p Period) IsLastDay(t time.Time) bool {
	return p.Contains(t) && t.Day() == p.LastDay()
}
