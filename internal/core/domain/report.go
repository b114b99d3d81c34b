package domain

import (
	"sort"
	"time"
)

// AnalystCount is the number of tickets an analyst closed in a period.
type AnalystCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CategoryResolution is the mean open-to-close time of a category.
type CategoryResolution struct {
	Category string  `json:"category"`
	AvgHours float64 `json:"avgHours"`
}

// MonthCount is the number of tickets opened in a month (1 = January).
type MonthCount struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// ReportPeriod is a calendar month.
type ReportPeriod struct {
	Year  int
	Month int
}

// Bounds returns the half-open interval covering the period.
func (p ReportPeriod) Bounds(loc *time.Location) (time.Time, time.Time) {
	from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// YearBounds returns the half-open interval covering a calendar year.
func YearBounds(year int, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0)
}

// CountByAnalyst groups closed tickets by technician name. Rows are
// ordered by count, then name.
func CountByAnalyst(tickets []*Ticket) []AnalystCount {
	counts := make(map[string]int64)
	for _, t := range tickets {
		if t.Technician == nil || t.ClosedAt == nil {
			continue
		}
		counts[t.Technician.Name]++
	}

	rows := make([]AnalystCount, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, AnalystCount{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// AverageResolutionByCategory averages close minus open time, in hours,
// per category name. Tickets without a category or close time are skipped.
func AverageResolutionByCategory(tickets []*Ticket) []CategoryResolution {
	type acc struct {
		total time.Duration
		n     int64
	}
	sums := make(map[string]*acc)
	for _, t := range tickets {
		if t.Category == nil || t.ClosedAt == nil {
			continue
		}
		a, ok := sums[t.Category.Name]
		if !ok {
			a = &acc{}
			sums[t.Category.Name] = a
		}
		a.total += t.ClosedAt.Sub(t.OpenedAt)
		a.n++
	}

	rows := make([]CategoryResolution, 0, len(sums))
	for name, a := range sums {
		rows = append(rows, CategoryResolution{
			Category: name,
			AvgHours: a.total.Hours() / float64(a.n),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows
}

// CountByMonth buckets tickets by the month they were opened. The result
// always has twelve entries, January first.
func CountByMonth(tickets []*Ticket, year int, loc *time.Location) []MonthCount {
	rows := make([]MonthCount, 12)
	for i := range rows {
		rows[i].Month = i + 1
	}
	for _, t := range tickets {
		opened := t.OpenedAt.In(loc)
		if opened.Year() != year {
			continue
		}
		rows[opened.Month()-1].Count++
	}
	return rows
}
