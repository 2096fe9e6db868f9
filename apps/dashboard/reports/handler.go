// Package reports serves the dashboard's report sections as JSON. Each
// handler runs the section's configured RT search for the requested years,
// aggregates the tickets with pkg/summary, and returns the shaped result.
// Nothing is cached: every request is a fresh fetch, and a failed fetch
// fails the whole refresh.
package reports

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/odhsupport/rtboard/pkg/config"
	"github.com/odhsupport/rtboard/pkg/rt"
	"github.com/odhsupport/rtboard/pkg/summary"
)

// Custom field names used by the report sections.
const (
	cfRequestorType = "CF.{Type of requestor}"
	cfUseCase       = "CF.{Requestor use case}"
	cfCompanyType   = "CF.{Company type}"
	cfCompanyName   = "CF.{Company name}"
	cfDomain        = "CF.{Domain}"
)

const defaultTopCompanies = 10

// Searcher is the slice of the RT client the handlers need.
type Searcher interface {
	Search(ctx context.Context, q rt.Query) ([]rt.Ticket, error)
}

type Handler struct {
	Client Searcher
	Cfg    *config.Config
	Log    *logrus.Entry
}

// Register wires the report routes onto a (usually auth-protected) group.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/reports/overview", h.HandleOverview)
	g.GET("/reports/overview.md", h.HandleOverviewReport)
	g.GET("/reports/owners", h.HandleOwners)
	g.GET("/reports/response-times", h.HandleResponseTimes)
	g.GET("/reports/domains", h.HandleDomains)
	g.GET("/reports/requestors", h.HandleRequestors)
	g.GET("/reports/customers", h.HandleCustomers)
}

// HandleOverview returns yearly and monthly ticket counts for the help
// queue, optionally narrowed to quarters.
func (h *Handler) HandleOverview(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	tickets, err := h.fetchYears(c.Request().Context(), "help_overview", years)
	if err != nil {
		return h.upstreamError(c, err)
	}

	if quarters := c.QueryParam("quarters"); quarters != "" {
		return h.overviewByQuarter(c, tickets, quarters)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"total":   len(tickets),
		"yearly":  summary.YearlyCounts(tickets),
		"monthly": summary.MonthlyCounts(tickets),
	})
}

func (h *Handler) overviewByQuarter(c echo.Context, tickets []rt.Ticket, param string) error {
	type quarterView struct {
		Label   string               `json:"label"`
		Total   int                  `json:"total"`
		Monthly []summary.MonthCount `json:"monthly"`
	}
	var views []quarterView
	for _, raw := range strings.Split(param, ",") {
		year, quarter, err := parseQuarter(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		subset := summary.FilterQuarter(tickets, year, quarter)
		views = append(views, quarterView{
			Label:   summary.QuarterLabel(year, quarter),
			Total:   len(subset),
			Monthly: summary.MonthlyCounts(subset),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"quarters": views})
}

// HandleOwners returns the owner distribution for the IDM queue.
func (h *Handler) HandleOwners(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	tickets, err := h.fetchYears(c.Request().Context(), "idm_tickets", years)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":   len(tickets),
		"owners":  summary.CountBy(tickets, summary.ByOwner),
		"status":  summary.CountBy(tickets, summary.ByStatus),
		"monthly": summary.MonthlyCounts(tickets),
	})
}

// HandleResponseTimes buckets first-response delays per year.
func (h *Handler) HandleResponseTimes(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	tickets, err := h.fetchYears(c.Request().Context(), "response_time", years)
	if err != nil {
		return h.upstreamError(c, err)
	}

	perYear := map[string][]summary.Count{}
	for _, year := range years {
		perYear[strconv.Itoa(year)] = summary.ResponseTimes(summary.FilterYear(tickets, year))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"combined": summary.ResponseTimes(tickets),
		"by_year":  perYear,
	})
}

// HandleDomains returns per-domain ticket counts and percentages.
func (h *Handler) HandleDomains(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	tickets, err := h.fetchYears(c.Request().Context(), "domains", years)
	if err != nil {
		return h.upstreamError(c, err)
	}

	perYear := map[string][]summary.DomainShare{}
	for _, year := range years {
		perYear[strconv.Itoa(year)] = summary.DomainShares(summary.FilterYear(tickets, year), cfDomain)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"combined": summary.DomainShares(tickets, cfDomain),
		"by_year":  perYear,
	})
}

// HandleRequestors breaks tickets down by the three requestor custom fields.
func (h *Handler) HandleRequestors(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	tickets, err := h.fetchYears(c.Request().Context(), "requestors", years)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":          len(tickets),
		"requestor_type": summary.CountBy(tickets, summary.ByCustomField(cfRequestorType)),
		"use_case":       summary.CountBy(tickets, summary.ByCustomField(cfUseCase)),
		"company_type":   summary.CountBy(tickets, summary.ByCustomField(cfCompanyType)),
	})
}

// HandleCustomers returns the top companies by ticket count, per year.
func (h *Handler) HandleCustomers(c echo.Context) error {
	years, err := parseYears(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	top := defaultTopCompanies
	if raw := c.QueryParam("top"); raw != "" {
		top, err = strconv.Atoi(raw)
		if err != nil || top < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "top must be a positive integer"})
		}
	}
	tickets, err := h.fetchYears(c.Request().Context(), "customer_overview", years)
	if err != nil {
		return h.upstreamError(c, err)
	}

	perYear := map[string][]summary.Count{}
	for _, year := range years {
		perYear[strconv.Itoa(year)] = summary.TopCompanies(summary.FilterYear(tickets, year), cfCompanyName, top)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"combined": summary.TopCompanies(tickets, cfCompanyName, top),
		"by_year":  perYear,
	})
}

// fetchYears runs a report section's search once per requested year and
// concatenates the results.
func (h *Handler) fetchYears(ctx context.Context, section string, years []int) ([]rt.Ticket, error) {
	report, err := h.Cfg.Report(section)
	if err != nil {
		return nil, err
	}
	var all []rt.Ticket
	for _, year := range years {
		tickets, err := h.Client.Search(ctx, rt.Query{Query: report.Query, Fields: report.Fields, Year: year})
		if err != nil {
			return nil, err
		}
		all = append(all, tickets...)
	}
	return all, nil
}

// upstreamError maps RT client failures onto the JSON error payload the
// frontend renders as a banner. The kind field tells the user whether to
// blame credentials, the network, or the RT response format.
func (h *Handler) upstreamError(c echo.Context, err error) error {
	kind := "internal"
	status := http.StatusInternalServerError

	var authErr *rt.AuthError
	var reqErr *rt.RequestError
	var parseErr *rt.ParseError
	switch {
	case errors.As(err, &authErr):
		kind, status = "authentication", http.StatusBadGateway
	case errors.As(err, &reqErr):
		kind, status = "network", http.StatusBadGateway
	case errors.As(err, &parseErr):
		kind, status = "parse", http.StatusBadGateway
	}

	h.Log.WithFields(logrus.Fields{"kind": kind, "path": c.Path()}).WithError(err).Error("report fetch failed")
	return c.JSON(status, map[string]string{"error": err.Error(), "kind": kind})
}

func parseYears(c echo.Context) ([]int, error) {
	raw := c.QueryParam("years")
	if raw == "" {
		return []int{time.Now().Year()}, nil
	}
	var years []int
	for _, part := range strings.Split(raw, ",") {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || year < 2000 || year > 2100 {
			return nil, errors.New("years must be a comma-separated list of 4-digit years")
		}
		years = append(years, year)
	}
	return years, nil
}

// parseQuarter parses "2024Q3" into (2024, 3).
func parseQuarter(raw string) (year, quarter int, err error) {
	yearPart, quarterPart, ok := strings.Cut(strings.TrimSpace(raw), "Q")
	if !ok {
		return 0, 0, errors.New("quarters must look like 2024Q3")
	}
	year, err = strconv.Atoi(yearPart)
	if err != nil || year < 2000 || year > 2100 {
		return 0, 0, errors.New("quarters must look like 2024Q3")
	}
	quarter, err = strconv.Atoi(quarterPart)
	if err != nil || quarter < 1 || quarter > 4 {
		return 0, 0, errors.New("quarter must be between 1 and 4")
	}
	return year, quarter, nil
}
