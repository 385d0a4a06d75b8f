package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"spesa/internal/core"
)

// maxTrendMonths caps ?months on the trend report.
const maxTrendMonths = 120

type monthlyReport struct {
	Period core.Period `json:"period"`
	core.Summary
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriodParam(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.tracker.MonthlySummary(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if summary.Categories == nil {
		summary.Categories = []core.CategoryTotal{}
	}
	NewJSONResponse().Data(monthlyReport{Period: p, Summary: summary}).Write(w)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "categoryID")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	p, err := ParsePeriodParam(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.tracker.CategoryDetail(r.Context(), id, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if detail.Items == nil {
		detail.Items = []core.ItemTotal{}
	}
	NewJSONResponse().Data(detail).Write(w)
}

// handleTrendReport totals the trailing ?months (default from config),
// oldest first.
func (s *Server) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	n := s.trendMonths
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxTrendMonths {
			s.writeError(w, r, fmt.Errorf("%w: months must be between 1 and %d", core.ErrInvalidPeriod, maxTrendMonths))
			return
		}
		n = parsed
	}
	months, err := s.tracker.TrailingWindow(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"months": months}).Write(w)
}
