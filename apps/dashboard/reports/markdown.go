package reports

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/odhsupport/rtboard/pkg/rt"
	"github.com/odhsupport/rtboard/pkg/summary"
)

// HandleOverviewReport renders the help queue overview as a downloadable
// markdown report: per-year totals and per-month ticket ID lists.
func (h *Handler) HandleOverviewReport(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	tickets, err := h.fetchYears(c.Request().Context(), "help_overview", years)
	if err != nil {
		return h.upstreamError(c, err)
	}

	report := overviewMarkdown(tickets, years, time.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="help-queue-overview.md"`)
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(report))
}

func overviewMarkdown(tickets []rt.Ticket, years []int, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Help Queue Overview Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04"))

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	for _, year := range sorted {
		yearTickets := summary.FilterYear(tickets, year)
		fmt.Fprintf(&b, "## %d\n\n", year)
		if len(yearTickets) == 0 {
			b.WriteString("No tickets for this period.\n\n")
			continue
		}
		fmt.Fprintf(&b, "**Total Tickets:** %d\n\n", len(yearTickets))

		for month := time.January; month <= time.December; month++ {
			var ids []int
			for _, t := range yearTickets {
				if t.Created.Month() == month {
					ids = append(ids, t.ID)
				}
			}
			if len(ids) == 0 {
				continue
			}
			sort.Ints(ids)
			fmt.Fprintf(&b, "### %s (%d tickets)\n\n", month.String()[:3], len(ids))
			for _, id := range ids {
				fmt.Fprintf(&b, "- %d\n", id)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
