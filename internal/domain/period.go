package domain

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "setiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}

// MonthName returns the Spanish name of m, or "" when m is out of range.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// Period is the calendar month a set of maps describes.
type Period struct {
	Year  int
	Month time.Month
}

// Yesterday returns the calendar day before ref, keeping ref's location.
func Yesterday(ref time.Time) time.Time {
	return ref.AddDate(0, 0, -1)
}

// PeriodFor returns the month containing the day before ref.
func PeriodFor(ref time.Time) Period {
	y := Yesterday(ref)
	return Period{Year: y.Year(), Month: y.Month()}
}

// MonthName returns the Spanish month name of the period.
func (p Period) MonthName() string { return MonthName(p.Month) }

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}
