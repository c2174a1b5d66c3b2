package honorarium

import (
	"fmt"
	"sort"
	"time"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// Status of an honorarium period
type Status string

const (
	StatusPending Status = "pendiente"
	StatusPaid    Status = "pagado"
)

// PayoutFraction share of the list price paid when a course has no explicit payout.
const PayoutFraction = 0.60

// YearMonthLayout period key layout
const YearMonthLayout = "2006-01"

// LineItem one course contributing to a period
type LineItem struct {
	CourseID   int64
	CourseName string
	STPSCode   string
	Company    string
	Date       time.Time
	Hours      float64
	Payout     float64
}

// Period payouts of one instructor in one month.
// Built fresh on every load, never mutated in place by callers.
type Period struct {
	InstructorID    int64
	InstructorName  string
	YearMonth       string
	Cursos          int
	HorasImpartidas float64
	Total           float64
	Items           []LineItem
	Status          Status
	PaidAt          *time.Time
}

// Key identifies a period
type Key struct {
	InstructorID int64
	YearMonth    string
}

// Key of p
func (p *Period) Key() Key { return Key{InstructorID: p.InstructorID, YearMonth: p.YearMonth} }

// AggregationError a record that could not take part in the aggregation.
// The record is skipped; the rest of the report is still produced.
type AggregationError struct {
	CourseID int64
	Reason   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("curso %d excluido del reporte: %s", e.CourseID, e.Reason)
}

// Payout resolves the honorarium of one course: the explicit payout when
// positive, otherwise PayoutFraction of the list price, otherwise 0.
func Payout(c *model.Course) float64 {
	if c.InstructorPayout > 0 {
		return c.InstructorPayout
	}
	if c.Price > 0 {
		return c.Price * PayoutFraction
	}
	return 0
}

// StartOfDay midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay last nanosecond of t's calendar day in loc
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Aggregate groups the courses dated within [periodStart, periodEnd]
// (inclusive, whole days in loc) by instructor and month.
//
// Courses without a date or without an instructor are skipped and reported as
// AggregationError. Periods come out in first-seen order; callers wanting a
// temporal order use Sort.
func Aggregate(courses []model.Course, periodStart, periodEnd time.Time, loc *time.Location) ([]Period, []*AggregationError) {
	if loc == nil {
		loc = time.UTC
	}
	from := StartOfDay(periodStart, loc)
	to := EndOfDay(periodEnd, loc)

	var warnings []*AggregationError
	index := make(map[Key]int)
	var periods []Period

	for i := range courses {
		c := &courses[i]
		if c.Date.IsZero() {
			warnings = append(warnings, &AggregationError{CourseID: c.CourseID, Reason: "fecha inválida o ausente"})
			continue
		}
		// course dates are calendar days; read them in loc without shifting the day
		day := time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, loc)
		if day.Before(from) || day.After(to) {
			continue
		}
		if c.InstructorID == nil || *c.InstructorID <= 0 {
			warnings = append(warnings, &AggregationError{CourseID: c.CourseID, Reason: "sin instructor asignado"})
			continue
		}

		key := Key{InstructorID: *c.InstructorID, YearMonth: day.Format(YearMonthLayout)}
		pos, ok := index[key]
		if !ok {
			name := ""
			if c.Instructor != nil {
				name = c.Instructor.Name
			}
			periods = append(periods, Period{
				InstructorID:   key.InstructorID,
				InstructorName: name,
				YearMonth:      key.YearMonth,
				Status:         StatusPending,
			})
			pos = len(periods) - 1
			index[key] = pos
		}

		item := LineItem{
			CourseID:   c.CourseID,
			CourseName: c.Name,
			STPSCode:   c.STPSCode,
			Company:    c.Company,
			Date:       day,
			Hours:      c.Hours,
			Payout:     Payout(c),
		}
		p := &periods[pos]
		p.Items = append(p.Items, item)
		p.Cursos++
		p.HorasImpartidas += item.Hours
		p.Total += item.Payout
	}

	return periods, warnings
}

// ApplyPayments marks the periods that have a recorded payment as paid.
func ApplyPayments(periods []Period, payments []model.HonorariumPayment) {
	paid := make(map[Key]time.Time, len(payments))
	for _, pay := range payments {
		paid[Key{InstructorID: pay.InstructorID, YearMonth: pay.YearMonth}] = pay.PaidAt
	}
	for i := range periods {
		if at, ok := paid[periods[i].Key()]; ok {
			at := at
			periods[i].Status = StatusPaid
			periods[i].PaidAt = &at
		}
	}
}

// Sort orders periods by month, then instructor.
func Sort(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		if periods[i].YearMonth != periods[j].YearMonth {
			return periods[i].YearMonth < periods[j].YearMonth
		}
		return periods[i].InstructorID < periods[j].InstructorID
	})
}

// Totals sums a set of periods.
func Totals(periods []Period) (cursos int, horas, total float64) {
	for _, p := range periods {
		cursos += p.Cursos
		horas += p.HorasImpartidas
		total += p.Total
	}
	return cursos, horas, total
}
