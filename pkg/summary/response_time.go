package summary

import (
	"time"

	"github.com/odhsupport/rtboard/pkg/rt"
)

// Response-time buckets, in display order. A ticket lands in the first
// bucket whose upper bound its Started−Created delta does not exceed;
// tickets that were never started land in "Not set".
var ResponseCategories = []string{
	"Within first hour",
	"Within first day",
	"Within first 2 days",
	"Within first week",
	"More than a week",
	"Not set",
}

// ResponseTimes buckets every ticket by how long it took to get a first
// response. The result has one Count per category in ResponseCategories
// order, zero-count buckets included, so charts keep a stable shape.
func ResponseTimes(tickets []rt.Ticket) []Count {
	byCategory := map[string]int{}
	for _, t := range tickets {
		byCategory[responseCategory(t)]++
	}
	counts := make([]Count, 0, len(ResponseCategories))
	for _, category := range ResponseCategories {
		counts = append(counts, Count{Label: category, Value: byCategory[category]})
	}
	return counts
}

func responseCategory(t rt.Ticket) string {
	if t.Started.IsZero() || t.Created.IsZero() {
		return "Not set"
	}
	elapsed := t.Started.Sub(t.Created)
	switch {
	case elapsed <= time.Hour:
		return "Within first hour"
	case elapsed <= 24*time.Hour:
		return "Within first day"
	case elapsed <= 48*time.Hour:
		return "Within first 2 days"
	case elapsed <= 7*24*time.Hour:
		return "Within first week"
	default:
		return "More than a week"
	}
}
