package taskhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/attendance"
	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/core"
	"sitecrew/internal/domain/notifications"
	"sitecrew/internal/domain/task"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	"sitecrew/internal/transport/http/middleware"
	"sitecrew/internal/transport/http/shared"
)

type Handler struct {
	Store    *task.Store
	Members  *core.Store
	Perms    middleware.PermissionStore
	Notifier *notifications.Service
}

func NewHandler(store *task.Store, members *core.Store, perms middleware.PermissionStore, notifier *notifications.Service) *Handler {
	return &Handler{Store: store, Members: members, Perms: perms, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTasksWrite, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{taskID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermTasksWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermTasksWrite, h.Perms)).Put("/status", h.handleStatus)
			r.With(middleware.RequirePermission(auth.PermTasksRead, h.Perms)).Get("/assignments", h.handleAssignments)
			r.With(middleware.RequirePermission(auth.PermTasksWrite, h.Perms)).Post("/assignments", h.handleAssign)
			r.With(middleware.RequirePermission(auth.PermTasksWrite, h.Perms)).Delete("/assignments/{memberID}", h.handleUnassign)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "projectId is required", requestID)
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
	tasks, err := h.Store.ListForProject(r.Context(), projectID, start, end, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_list_failed", "failed to list tasks", requestID)
		return
	}
	api.Success(w, tasks, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	found, err := h.Store.Get(r.Context(), chi.URLParam(r, "taskID"))
	if errors.Is(err, task.ErrTaskNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_get_failed", "failed to load task", requestID)
		return
	}
	api.Success(w, found, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload task.Task
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("projectId", payload.ProjectID, "projectId is required")
	v.Required("name", payload.Name, "name is required")
	if payload.Status == "" {
		payload.Status = task.StatusTodo
	}
	v.Enum("status", payload.Status, task.Statuses, "unknown task status")
	if payload.Recurrence == "" {
		payload.Recurrence = task.RecurrenceNone
	}
	v.Enum("recurrence", payload.Recurrence, task.Recurrences, "unknown recurrence rule")
	if payload.Recurrence != task.RecurrenceNone && payload.WorkDate == nil {
		v.Add("workDate", "recurring tasks need a seed work date")
	}
	if payload.Progress < 0 || payload.Progress > 100 {
		v.Add("progress", "must be between 0 and 100")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	id, err := h.Store.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_create_failed", "failed to create task", requestID)
		return
	}
	payload.ID = id
	api.Created(w, payload, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload task.Task
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.ID = chi.URLParam(r, "taskID")

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("status", payload.Status, task.Statuses, "unknown task status")
	v.Enum("recurrence", payload.Recurrence, task.Recurrences, "unknown recurrence rule")
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	err := h.Store.Update(r.Context(), payload)
	if errors.Is(err, task.ErrTaskNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_update_failed", "failed to update task", requestID)
		return
	}
	api.Success(w, payload, requestID)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Enum("status", payload.Status, task.Statuses, "unknown task status")
	if payload.Progress < 0 || payload.Progress > 100 {
		v.Add("progress", "must be between 0 and 100")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}
	if payload.Status == task.StatusDone {
		payload.Progress = 100
	}

	taskID := chi.URLParam(r, "taskID")
	err := h.Store.UpdateStatus(r.Context(), taskID, payload.Status, payload.Progress)
	if errors.Is(err, task.ErrTaskNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_update_failed", "failed to update task status", requestID)
		return
	}
	api.Success(w, map[string]any{"id": taskID, "status": payload.Status, "progress": payload.Progress}, requestID)
}

func (h *Handler) handleAssignments(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	assignments, err := h.Store.ListAssignments(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_list_failed", "failed to list assignments", requestID)
		return
	}
	api.Success(w, assignments, requestID)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload task.Assignment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.TaskID = chi.URLParam(r, "taskID")

	v := shared.NewValidator()
	v.Required("memberId", payload.MemberID, "memberId is required")
	if payload.AttendanceType != "" && !attendance.ValidType(payload.AttendanceType) {
		v.Add("attendanceType", "unknown attendance type")
	}
	if payload.AttendanceType == attendance.TypeHourBased && payload.Hours <= 0 {
		v.Add("hours", "must be positive for hour-based assignments")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	id, err := h.Store.UpsertAssignment(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_failed", "failed to assign member", requestID)
		return
	}
	payload.ID = id

	h.notifyAssignment(r, payload)
	api.Created(w, payload, requestID)
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	err := h.Store.RemoveAssignment(r.Context(), chi.URLParam(r, "taskID"), chi.URLParam(r, "memberID"))
	if errors.Is(err, task.ErrAssignmentNotFound) {
		api.Fail(w, http.StatusNotFound, "assignment_not_found", "assignment not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_failed", "failed to remove assignment", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "removed"}, requestID)
}

func (h *Handler) notifyAssignment(r *http.Request, assignment task.Assignment) {
	if h.Notifier == nil {
		return
	}
	member, err := h.Members.GetMember(r.Context(), assignment.MemberID)
	if err != nil || member.UserID == "" {
		return
	}
	assigned, err := h.Store.Get(r.Context(), assignment.TaskID)
	if err != nil {
		return
	}
	if err := h.Notifier.Create(r.Context(), member.UserID, notifications.TypeTaskAssigned,
		"Task assigned: "+assigned.Name, "You have been assigned to task "+assigned.Name); err != nil {
		slog.Warn("assignment notification failed", "memberId", assignment.MemberID, "err", err)
	}
}
