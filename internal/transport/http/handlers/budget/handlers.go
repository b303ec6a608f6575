package budgethandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/attendance"
	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/budget"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	"sitecrew/internal/transport/http/middleware"
	"sitecrew/internal/transport/http/shared"
)

type Handler struct {
	Store   *budget.Store
	Service *budget.Service
	Perms   middleware.PermissionStore
}

func NewHandler(store *budget.Store, service *budget.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/budget", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBudgetRead, h.Perms)).Get("/wage-configs", h.handleListWageConfigs)
		r.With(middleware.RequirePermission(auth.PermBillingWrite, h.Perms)).Put("/wage-configs", h.handleUpsertWageConfig)
		r.With(middleware.RequirePermission(auth.PermBudgetRead, h.Perms)).Get("/member", h.handleMemberBudget)
		r.With(middleware.RequirePermission(auth.PermBudgetRead, h.Perms)).Get("/tasks/{taskID}", h.handleTaskBudget)
		r.With(middleware.RequirePermission(auth.PermBudgetRead, h.Perms)).Post("/preview", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermBudgetRead, h.Perms)).Get("/report/{projectID}", h.handleProjectReport)
	})
}

func (h *Handler) handleListWageConfigs(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "projectId is required", requestID)
		return
	}
	configs, err := h.Store.ListWageConfigs(r.Context(), projectID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "wage_config_list_failed", "failed to list wage configs", requestID)
		return
	}
	api.Success(w, configs, requestID)
}

func (h *Handler) handleUpsertWageConfig(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload budget.WageBasis
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("memberId", payload.MemberID, "memberId is required")
	v.Required("projectId", payload.ProjectID, "projectId is required")
	v.Enum("wageType", payload.WageType, []string{budget.WageTypeDaily, budget.WageTypeMonthly}, "wageType must be daily or monthly")
	v.Required("wageType", payload.WageType, "wageType is required")
	switch payload.WageType {
	case budget.WageTypeDaily:
		if payload.DailyRate.IsNegative() || payload.DailyRate.IsZero() {
			v.Add("dailyRate", "must be positive for daily wages")
		}
	case budget.WageTypeMonthly:
		if payload.MonthlySalary.IsNegative() || payload.MonthlySalary.IsZero() {
			v.Add("monthlySalary", "must be positive for monthly wages")
		}
	}
	if payload.WorkingDaysPerMonth < 0 || payload.WorkingDaysPerMonth > 31 {
		v.Add("workingDaysPerMonth", "must be between 0 and 31")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}
	if payload.WorkingDaysPerMonth == 0 {
		payload.WorkingDaysPerMonth = budget.DefaultWorkingDaysPerMonth
	}

	if err := h.Store.UpsertWageConfig(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "wage_config_save_failed", "failed to save wage config", requestID)
		return
	}
	api.Success(w, payload, requestID)
}

func (h *Handler) handleMemberBudget(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	query := r.URL.Query()
	memberID := query.Get("memberId")
	projectID := query.Get("projectId")
	attendanceType := query.Get("attendanceType")

	v := shared.NewValidator()
	v.Required("memberId", memberID, "memberId is required")
	v.Required("projectId", projectID, "projectId is required")
	if !attendance.ValidType(attendanceType) {
		v.Add("attendanceType", "unknown attendance type")
	}
	hours := 0.0
	if raw := query.Get("hours"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			v.Add("hours", "must be a non-negative number")
		} else {
			hours = parsed
		}
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	amount := h.Service.MemberBudget(r.Context(), memberID, projectID, attendanceType, hours)
	value, _ := amount.Value.Round(2).Float64()
	api.Success(w, map[string]any{
		"memberId":       memberID,
		"projectId":      projectID,
		"attendanceType": attendanceType,
		"hours":          hours,
		"amount":         value,
		"available":      amount.Available,
	}, requestID)
}

func (h *Handler) handleTaskBudget(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	taskID := chi.URLParam(r, "taskID")
	total, err := h.Service.TaskBudget(r.Context(), taskID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_budget_failed", "failed to compute task budget", requestID)
		return
	}
	api.Success(w, map[string]any{"taskId": taskID, "totalBudget": total}, requestID)
}

type previewRequest struct {
	ProjectID string `json:"projectId"`
	Lines     []struct {
		MemberID       string  `json:"memberId"`
		AttendanceType string  `json:"attendanceType"`
		Hours          float64 `json:"hours"`
	} `json:"lines"`
}

// handlePreview prices a hypothetical set of assignments without persisting
// anything. Backs the task-dialog budget preview.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload previewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("projectId", payload.ProjectID, "projectId is required")
	for _, line := range payload.Lines {
		if line.MemberID == "" {
			v.Add("lines", "every line needs a memberId")
			break
		}
		if !attendance.ValidType(line.AttendanceType) {
			v.Add("lines", "unknown attendance type: "+line.AttendanceType)
			break
		}
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	lines := make([]budget.LineInput, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, budget.LineInput{
			MemberID:       line.MemberID,
			AttendanceType: line.AttendanceType,
			Hours:          line.Hours,
		})
	}
	total := h.Service.TotalForLines(r.Context(), payload.ProjectID, lines)
	api.Success(w, map[string]any{"projectId": payload.ProjectID, "totalBudget": total}, requestID)
}

func (h *Handler) handleProjectReport(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	filter, v := ReportFilterFromRequest(r)
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	report, err := h.Service.ProjectReport(r.Context(), projectID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "budget_report_failed", "failed to build budget report", requestID)
		return
	}
	api.Success(w, report, requestID)
}

// ReportFilterFromRequest reads the report query parameters shared with the
// CSV export endpoint.
func ReportFilterFromRequest(r *http.Request) (budget.ReportFilter, *shared.Validator) {
	v := shared.NewValidator()
	query := r.URL.Query()

	filter := budget.ReportFilter{
		MemberID: query.Get("memberId"),
		WageType: query.Get("wageType"),
	}
	if filter.WageType != "" {
		v.Enum("wageType", filter.WageType, []string{budget.WageTypeDaily, budget.WageTypeMonthly}, "wageType must be daily or monthly")
	}
	var start, end time.Time
	if raw := query.Get("start"); raw != "" {
		if parsed, ok := v.Date("start", raw); ok {
			start = parsed
			filter.StartDate = &start
		}
	}
	if raw := query.Get("end"); raw != "" {
		if parsed, ok := v.Date("end", raw); ok {
			end = parsed
			filter.EndDate = &end
		}
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		v.DateOrder("start", *filter.StartDate, "end", *filter.EndDate)
	}
	return filter, v
}
