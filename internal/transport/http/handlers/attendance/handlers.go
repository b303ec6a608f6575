package attendancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/attendance"
	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/budget"
	"sitecrew/internal/domain/core"
	"sitecrew/internal/domain/notifications"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	"sitecrew/internal/transport/http/middleware"
	"sitecrew/internal/transport/http/shared"
)

type Handler struct {
	Store    *attendance.Store
	Budget   *budget.Service
	Members  *core.Store
	Perms    middleware.PermissionStore
	Notifier *notifications.Service
}

func NewHandler(store *attendance.Store, budgetSvc *budget.Service, members *core.Store, perms middleware.PermissionStore, notifier *notifications.Service) *Handler {
	return &Handler{Store: store, Budget: budgetSvc, Members: members, Perms: perms, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/pending", h.handlePending)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/", h.handleLog)
		r.Route("/{recordID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermAttendanceApprove, h.Perms)).Post("/approve", h.handleApprove)
			r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	memberID := r.URL.Query().Get("memberId")

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	// Workers only see their own records.
	if user.RoleName == auth.RoleWorker {
		if user.MemberID == "" {
			api.Fail(w, http.StatusForbidden, "forbidden", "no member profile linked", requestID)
			return
		}
		memberID = user.MemberID
	}
	if memberID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "memberId is required", requestID)
		return
	}

	v := shared.NewValidator()
	var start, end *time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		if parsed, ok := v.Date("start", raw); ok {
			start = &parsed
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if parsed, ok := v.Date("end", raw); ok {
			end = &parsed
		}
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	records, err := h.Store.ListForMember(r.Context(), memberID, start, end, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "projectId is required", requestID)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	records, err := h.Store.ListPending(r.Context(), projectID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list pending attendance", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload attendance.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	// Workers log for themselves; supervisors and admins may log for anyone.
	if user.RoleName == auth.RoleWorker {
		payload.MemberID = user.MemberID
	}

	v := shared.NewValidator()
	v.Required("taskId", payload.TaskID, "taskId is required")
	v.Required("memberId", payload.MemberID, "memberId is required")
	if !attendance.ValidType(payload.AttendanceType) {
		v.Add("attendanceType", "unknown attendance type")
	}
	if payload.AttendanceType == attendance.TypeHourBased {
		v.Positive("hours", payload.Hours, "must be positive for hour-based attendance")
	}
	if payload.AttendanceType == attendance.TypeLeave && payload.LeaveSubtype != "" && !attendance.ValidLeaveSubtype(payload.LeaveSubtype) {
		v.Add("leaveSubtype", "unknown leave subtype")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	id, err := h.Store.Upsert(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_log_failed", "failed to log attendance", requestID)
		return
	}
	payload.ID = id

	projectID, err := h.Budget.ProjectForTask(r.Context(), payload.TaskID)
	if err != nil {
		slog.Warn("project lookup for billing failed", "taskId", payload.TaskID, "err", err)
		api.Created(w, payload, requestID)
		return
	}

	amount := h.Budget.MemberBudget(r.Context(), payload.MemberID, projectID, payload.AttendanceType, payload.Hours)

	// Billing mirror is written after the response-bound computation and is
	// not atomic with the attendance upsert.
	billingCtx := context.WithoutCancel(r.Context())
	go h.Budget.WriteBilling(billingCtx, payload.MemberID, payload.TaskID, projectID, payload.AttendanceType, payload.Hours)

	value, _ := amount.Value.Round(2).Float64()
	api.Created(w, map[string]any{
		"record":          payload,
		"computedAmount":  value,
		"amountAvailable": amount.Available,
	}, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	recordID := chi.URLParam(r, "recordID")
	record, err := h.Store.Get(r.Context(), recordID)
	if errors.Is(err, attendance.ErrRecordNotFound) {
		api.Fail(w, http.StatusNotFound, "record_not_found", "attendance record not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_get_failed", "failed to load attendance record", requestID)
		return
	}

	if err := h.Store.Approve(r.Context(), recordID, user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_approve_failed", "failed to approve attendance", requestID)
		return
	}

	h.notifyApproval(r, record)
	api.Success(w, map[string]string{"id": recordID, "status": "approved"}, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	err := h.Store.Delete(r.Context(), chi.URLParam(r, "recordID"))
	if errors.Is(err, attendance.ErrRecordNotFound) {
		api.Fail(w, http.StatusNotFound, "record_not_found", "attendance record not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_delete_failed", "failed to delete attendance", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) notifyApproval(r *http.Request, record *attendance.Record) {
	if h.Notifier == nil {
		return
	}
	member, err := h.Members.GetMember(r.Context(), record.MemberID)
	if err != nil || member.UserID == "" {
		return
	}
	if err := h.Notifier.Create(r.Context(), member.UserID, notifications.TypeAttendanceApproved,
		"Attendance approved", "Your attendance entry was approved"); err != nil {
		slog.Warn("approval notification failed", "memberId", record.MemberID, "err", err)
	}
}
