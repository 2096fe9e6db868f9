// Package summary turns ticket sets into the derived views the dashboard
// renders: grouped counts, monthly and yearly trends, response-time buckets,
// domain shares, and top-customer tables. Everything here is a pure function
// over an in-memory ticket slice; nothing is cached or persisted.
package summary

import (
	"fmt"
	"sort"
	"time"

	"github.com/odhsupport/rtboard/pkg/rt"
)

// Count is one row of a grouped count, e.g. {"open", 42}.
type Count struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Extractor picks the grouping key out of a ticket.
type Extractor func(rt.Ticket) string

// ByStatus, ByQueue and ByOwner group by the corresponding ticket field.
func ByStatus(t rt.Ticket) string { return t.Status }
func ByQueue(t rt.Ticket) string  { return t.Queue }
func ByOwner(t rt.Ticket) string  { return t.Owner }

// ByCustomField groups by a named RT custom field ("CF.{Company type}").
func ByCustomField(name string) Extractor {
	return func(t rt.Ticket) string { return t.CustomField(name) }
}

// CountBy groups tickets by the extracted key and counts each group. Rows
// come back sorted by descending count, ties broken alphabetically, so the
// output is deterministic for a given input. The counts always sum to
// len(tickets); an empty key still counts as its own group.
func CountBy(tickets []rt.Ticket, key Extractor) []Count {
	byLabel := map[string]int{}
	for _, t := range tickets {
		byLabel[key(t)]++
	}
	counts := make([]Count, 0, len(byLabel))
	for label, n := range byLabel {
		counts = append(counts, Count{Label: label, Value: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Value != counts[j].Value {
			return counts[i].Value > counts[j].Value
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

// MonthCount is the number of tickets created in one calendar month.
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// MonthlyCounts buckets tickets by creation month, sorted chronologically.
// Tickets without a Created timestamp are skipped.
func MonthlyCounts(tickets []rt.Ticket) []MonthCount {
	type ym struct{ year, month int }
	byMonth := map[ym]int{}
	for _, t := range tickets {
		if t.Created.IsZero() {
			continue
		}
		byMonth[ym{t.Created.Year(), int(t.Created.Month())}]++
	}
	counts := make([]MonthCount, 0, len(byMonth))
	for k, n := range byMonth {
		counts = append(counts, MonthCount{Year: k.year, Month: k.month, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Year != counts[j].Year {
			return counts[i].Year < counts[j].Year
		}
		return counts[i].Month < counts[j].Month
	})
	return counts
}

// YearCount is the number of tickets created in one calendar year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// YearlyCounts buckets tickets by creation year, sorted chronologically.
func YearlyCounts(tickets []rt.Ticket) []YearCount {
	byYear := map[int]int{}
	for _, t := range tickets {
		if t.Created.IsZero() {
			continue
		}
		byYear[t.Created.Year()]++
	}
	counts := make([]YearCount, 0, len(byYear))
	for year, n := range byYear {
		counts = append(counts, YearCount{Year: year, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Year < counts[j].Year })
	return counts
}

// FilterYear keeps only tickets created in the given calendar year.
func FilterYear(tickets []rt.Ticket, year int) []rt.Ticket {
	var out []rt.Ticket
	for _, t := range tickets {
		if !t.Created.IsZero() && t.Created.Year() == year {
			out = append(out, t)
		}
	}
	return out
}

// FilterQuarter keeps only tickets created in the given quarter (1..4) of
// the given year.
func FilterQuarter(tickets []rt.Ticket, year, quarter int) []rt.Ticket {
	var out []rt.Ticket
	for _, t := range tickets {
		if t.Created.IsZero() || t.Created.Year() != year {
			continue
		}
		if quarterOf(t.Created) == quarter {
			out = append(out, t)
		}
	}
	return out
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterLabel renders a quarter as it appears in the UI, e.g. "Q3 2024".
func QuarterLabel(year, quarter int) string {
	return fmt.Sprintf("Q%d %d", quarter, year)
}
