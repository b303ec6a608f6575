package corehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/audit"
	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/core"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	"sitecrew/internal/transport/http/middleware"
	"sitecrew/internal/transport/http/shared"
)

type Handler struct {
	Store *core.Store
	Audit *audit.Service
}

func NewHandler(store *core.Store, auditor *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Store)).Get("/", h.handleListProjects)
		r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Store)).Post("/", h.handleCreateProject)
		r.Route("/{projectID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Store)).Get("/", h.handleGetProject)
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Store)).Put("/", h.handleUpdateProject)
			r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Store)).Get("/milestones", h.handleListMilestones)
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Store)).Post("/milestones", h.handleCreateMilestone)
		})
	})
	r.Route("/milestones/{milestoneID}", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Store)).Put("/status", h.handleMilestoneStatus)
	})
	r.Route("/members", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMembersRead, h.Store)).Get("/", h.handleListMembers)
		r.With(middleware.RequirePermission(auth.PermMembersWrite, h.Store)).Post("/", h.handleCreateMember)
		r.Route("/{memberID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermMembersRead, h.Store)).Get("/", h.handleGetMember)
			r.With(middleware.RequirePermission(auth.PermMembersWrite, h.Store)).Put("/", h.handleUpdateMember)
		})
	})
}

func (h *Handler) record(r *http.Request, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	actorID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = user.UserID
	}
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID,
		requestctx.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	projects, err := h.Store.ListProjects(r.Context(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_list_failed", "failed to list projects", requestID)
		return
	}
	api.Success(w, projects, requestID)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	project, err := h.Store.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if errors.Is(err, core.ErrProjectNotFound) {
		api.Fail(w, http.StatusNotFound, "project_not_found", "project not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_get_failed", "failed to load project", requestID)
		return
	}
	api.Success(w, project, requestID)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload core.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.Status == "" {
		payload.Status = core.ProjectStatusPlanning
	}
	v.Enum("status", payload.Status, core.ProjectStatuses, "unknown project status")
	if payload.BudgetAllocated < 0 {
		v.Add("budgetAllocated", "must not be negative")
	}
	if payload.StartDate != nil && payload.EndDate != nil {
		v.DateOrder("startDate", *payload.StartDate, "endDate", *payload.EndDate)
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}
	if payload.Currency == "" {
		payload.Currency = "USD"
	}

	id, err := h.Store.CreateProject(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_create_failed", "failed to create project", requestID)
		return
	}
	payload.ID = id
	h.record(r, "project.create", "project", id, nil, payload)
	api.Created(w, payload, requestID)
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	before, err := h.Store.GetProject(r.Context(), projectID)
	if errors.Is(err, core.ErrProjectNotFound) {
		api.Fail(w, http.StatusNotFound, "project_not_found", "project not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_get_failed", "failed to load project", requestID)
		return
	}

	var payload core.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.ID = projectID

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("status", payload.Status, core.ProjectStatuses, "unknown project status")
	if payload.BudgetAllocated < 0 {
		v.Add("budgetAllocated", "must not be negative")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	if err := h.Store.UpdateProject(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_update_failed", "failed to update project", requestID)
		return
	}
	h.record(r, "project.update", "project", projectID, before, payload)
	api.Success(w, payload, requestID)
}

func (h *Handler) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	milestones, err := h.Store.ListMilestones(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "milestone_list_failed", "failed to list milestones", requestID)
		return
	}
	api.Success(w, milestones, requestID)
}

func (h *Handler) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload core.Milestone
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.ProjectID = chi.URLParam(r, "projectID")

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.Status == "" {
		payload.Status = core.MilestoneStatusOpen
	}
	v.Enum("status", payload.Status, []string{core.MilestoneStatusOpen, core.MilestoneStatusClosed}, "unknown milestone status")
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	id, err := h.Store.CreateMilestone(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "milestone_create_failed", "failed to create milestone", requestID)
		return
	}
	payload.ID = id
	h.record(r, "milestone.create", "milestone", id, nil, payload)
	api.Created(w, payload, requestID)
}

func (h *Handler) handleMilestoneStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Enum("status", payload.Status, []string{core.MilestoneStatusOpen, core.MilestoneStatusClosed}, "unknown milestone status")
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	milestoneID := chi.URLParam(r, "milestoneID")
	err := h.Store.UpdateMilestoneStatus(r.Context(), milestoneID, payload.Status)
	if errors.Is(err, core.ErrMilestoneNotFound) {
		api.Fail(w, http.StatusNotFound, "milestone_not_found", "milestone not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "milestone_update_failed", "failed to update milestone", requestID)
		return
	}
	h.record(r, "milestone.status", "milestone", milestoneID, nil, payload)
	api.Success(w, map[string]string{"id": milestoneID, "status": payload.Status}, requestID)
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	members, err := h.Store.ListMembers(r.Context(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "member_list_failed", "failed to list members", requestID)
		return
	}
	api.Success(w, members, requestID)
}

func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	member, err := h.Store.GetMember(r.Context(), chi.URLParam(r, "memberID"))
	if errors.Is(err, core.ErrMemberNotFound) {
		api.Fail(w, http.StatusNotFound, "member_not_found", "member not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "member_get_failed", "failed to load member", requestID)
		return
	}
	api.Success(w, member, requestID)
}

func (h *Handler) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload core.Member
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "firstName is required")
	v.Required("lastName", payload.LastName, "lastName is required")
	v.Required("email", payload.Email, "email is required")
	if payload.Status == "" {
		payload.Status = core.MemberStatusActive
	}
	v.Enum("status", payload.Status, []string{core.MemberStatusActive, core.MemberStatusInactive}, "unknown member status")
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	id, err := h.Store.CreateMember(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "member_create_failed", "failed to create member", requestID)
		return
	}
	payload.ID = id
	h.record(r, "member.create", "member", id, nil, payload)
	api.Created(w, payload, requestID)
}

func (h *Handler) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	memberID := chi.URLParam(r, "memberID")

	before, err := h.Store.GetMember(r.Context(), memberID)
	if errors.Is(err, core.ErrMemberNotFound) {
		api.Fail(w, http.StatusNotFound, "member_not_found", "member not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "member_get_failed", "failed to load member", requestID)
		return
	}

	var payload core.Member
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.ID = memberID

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "firstName is required")
	v.Required("lastName", payload.LastName, "lastName is required")
	v.Required("email", payload.Email, "email is required")
	v.Enum("status", payload.Status, []string{core.MemberStatusActive, core.MemberStatusInactive}, "unknown member status")
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	if err := h.Store.UpdateMember(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "member_update_failed", "failed to update member", requestID)
		return
	}
	h.record(r, "member.update", "member", memberID, before, payload)
	api.Success(w, payload, requestID)
}
