// Package analytics implements the admin analytics HTTP handlers.
package analytics

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	v "github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/report"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// Reports is the report assembler consumed by the handlers.
type Reports interface {
	Overview(ctx context.Context, q report.Query) (*entity.OverviewReport, error)
	Advanced(ctx context.Context, q report.Query) (*entity.AdvancedReport, error)
	Dashboard(ctx context.Context, period string) (*entity.DashboardReport, error)
	Realtime(ctx context.Context) (*entity.RealtimeReport, error)
	BusinessIntelligence(ctx context.Context, q report.Query) (*entity.BusinessIntelligenceReport, error)
	Generate(ctx context.Context, typ entity.ReportType, q report.Query) (*entity.GeneratedReport, error)
}

// Server implements handlers for analytics.
type Server struct {
	reports Reports
}

// New creates a new server with analytics handlers.
func New(reports Reports) *Server {
	return &Server{
		reports: reports,
	}
}

// Routes mounts the analytics endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/overview", s.Overview)
		r.Get("/advanced", s.Advanced)
		r.Get("/realtime", s.Realtime)
		r.Get("/business-intelligence", s.BusinessIntelligence)
		r.Get("/reports/{type}", s.GenerateReport)
	})
	r.Get("/dashboard", s.Dashboard)
}

// queryValue returns a trimmed query value, or "" for anything that cannot be
// a period token or a date so the report falls back to its defaults.
func queryValue(r *http.Request, key string) string {
	s := v.Trim(r.URL.Query().Get(key), "")
	if s == "" {
		return ""
	}
	if !v.IsPrintableASCII(s) || !v.IsByteLength(s, 1, 64) {
		slog.Default().DebugContext(r.Context(), "ignoring malformed query value",
			slog.String("key", key),
		)
		return ""
	}
	return s
}

func periodQuery(r *http.Request) report.Query {
	return report.Query{
		Period: queryValue(r, "period"),
		From:   queryValue(r, "from"),
		To:     queryValue(r, "to"),
	}
}

func respond(w http.ResponseWriter, r *http.Request, name string, data any, err error) {
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't build report",
			slog.String("report", name),
			slog.String("err", err.Error()),
		)
		render.Render(w, r, ErrInternalServerError())
		return
	}
	render.Render(w, r, OK(data))
}

// Overview GET /analytics/overview?period&from&to
func (s *Server) Overview(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Overview(r.Context(), periodQuery(r))
	respond(w, r, "overview", dto.ConvertEntityOverviewToDTO(rep), err)
}

// Advanced GET /analytics/advanced?period
func (s *Server) Advanced(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Advanced(r.Context(), periodQuery(r))
	respond(w, r, "advanced", dto.ConvertEntityAdvancedToDTO(rep), err)
}

// Dashboard GET /dashboard?period=today|week|month|year
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Dashboard(r.Context(), queryValue(r, "period"))
	respond(w, r, "dashboard", dto.ConvertEntityDashboardToDTO(rep), err)
}

// Realtime GET /analytics/realtime
func (s *Server) Realtime(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Realtime(r.Context())
	respond(w, r, "realtime", dto.ConvertEntityRealtimeToDTO(rep), err)
}

// BusinessIntelligence GET /analytics/business-intelligence?period&from&to
func (s *Server) BusinessIntelligence(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.BusinessIntelligence(r.Context(), periodQuery(r))
	respond(w, r, "business intelligence", dto.ConvertEntityBusinessIntelligenceToDTO(rep), err)
}

var reportTypes = []string{
	string(entity.ReportTypeSales),
	string(entity.ReportTypeProducts),
	string(entity.ReportTypeCategories),
}

// GenerateReport GET /analytics/reports/{type}?period&from&to
// Unknown types produce a sales report.
func (s *Server) GenerateReport(w http.ResponseWriter, r *http.Request) {
	typ := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "type")))
	if !v.IsIn(typ, reportTypes...) {
		slog.Default().DebugContext(r.Context(), "unknown report type, using sales",
			slog.String("type", typ),
		)
		typ = string(entity.ReportTypeSales)
	}
	rep, err := s.reports.Generate(r.Context(), entity.ReportType(typ), periodQuery(r))
	respond(w, r, "generated", dto.ConvertEntityGeneratedReportToDTO(rep), err)
}
