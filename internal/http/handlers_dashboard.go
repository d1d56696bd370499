package http

import (
	"encoding/json"
	"net/http"

	"networth/internal/core"
	"networth/internal/log"
)

type dashboardData struct {
	Period  int
	Periods []int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period := core.NormalizePeriod(queryInt(r, "period", 0))
	s.render(w, r, "dashboard.html", "Dashboard", dashboardData{
		Period:  period,
		Periods: core.Periods,
	})
}

// handleChartData feeds the dashboard charts: the net-worth series over
// the selected window plus the current allocation.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	period := core.NormalizePeriod(queryInt(r, "period", 0))

	series, err := s.reports.Series(r.Context(), user.ID, period)
	if err != nil {
		s.serverError(w, r, "series build failed", err)
		return
	}
	allocation, err := s.reports.Allocation(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, "allocation build failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(struct {
		Period     int                  `json:"period"`
		Series     []core.MonthlyPoint  `json:"series"`
		Allocation []core.CategoryTotal `json:"allocation"`
	}{period, series, allocation})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "chart data encode failed",
			log.FieldError, err, log.FieldUserID, user.ID)
	}
}
