package billinghandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/billing"
	"sitecrew/internal/domain/notifications"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	"sitecrew/internal/transport/http/middleware"
	"sitecrew/internal/transport/http/shared"
)

type Handler struct {
	Store    *billing.Store
	Service  *billing.Service
	Perms    middleware.PermissionStore
	Notifier *notifications.Service
}

func NewHandler(store *billing.Store, service *billing.Service, perms middleware.PermissionStore, notifier *notifications.Service) *Handler {
	return &Handler{Store: store, Service: service, Perms: perms, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/billing", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBillingRead, h.Perms)).Get("/records/{projectID}", h.handleListRecords)
		r.With(middleware.RequirePermission(auth.PermBillingRead, h.Perms)).Get("/invoices", h.handleListInvoices)
		r.With(middleware.RequirePermission(auth.PermBillingWrite, h.Perms)).Post("/invoices", h.handleGenerateInvoice)
		r.With(middleware.RequirePermission(auth.PermBillingRead, h.Perms)).Get("/invoices/{invoiceID}", h.handleGetInvoice)
		r.With(middleware.RequirePermission(auth.PermInvoiceIssue, h.Perms)).Post("/invoices/{invoiceID}/status", h.handleTransition)
		r.With(middleware.RequirePermission(auth.PermBillingWrite, h.Perms)).Post("/invoices/{invoiceID}/pdf", h.handleRenderPDF)
	})
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	v := shared.NewValidator()
	query := r.URL.Query()
	filter := billing.RecordFilter{MemberID: query.Get("memberId")}
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
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	records, err := h.Store.ListRecords(r.Context(), projectID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "billing_records_failed", "failed to list billing records", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	query := r.URL.Query()
	projectID := query.Get("projectId")
	status := query.Get("status")

	v := shared.NewValidator()
	v.Required("projectId", projectID, "projectId is required")
	if status != "" {
		v.Enum("status", status, []string{billing.InvoiceStatusDraft, billing.InvoiceStatusSent, billing.InvoiceStatusPaid}, "unknown invoice status")
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	invoices, err := h.Store.ListInvoices(r.Context(), projectID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invoice_list_failed", "failed to list invoices", requestID)
		return
	}
	api.Success(w, invoices, requestID)
}

type generateInvoiceRequest struct {
	ProjectID   string `json:"projectId"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

func (h *Handler) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload generateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("projectId", payload.ProjectID, "projectId is required")
	var start, end time.Time
	var startPtr, endPtr *time.Time
	if payload.PeriodStart != "" {
		if parsed, ok := v.Date("periodStart", payload.PeriodStart); ok {
			start = parsed
			startPtr = &start
		}
	}
	if payload.PeriodEnd != "" {
		if parsed, ok := v.Date("periodEnd", payload.PeriodEnd); ok {
			end = parsed
			endPtr = &end
		}
	}
	if startPtr != nil && endPtr != nil {
		v.DateOrder("periodStart", start, "periodEnd", end)
	}
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	invoice, err := h.Service.GenerateInvoice(r.Context(), payload.ProjectID, startPtr, endPtr)
	if err != nil {
		if errors.Is(err, billing.ErrDuplicateInvoice) {
			api.Fail(w, http.StatusConflict, "invoice_exists", "an invoice already exists for this period", requestID)
			return
		}
		if errors.Is(err, billing.ErrEmptyInvoice) {
			api.Fail(w, http.StatusUnprocessableEntity, "invoice_empty", "no billable activity in the selected period", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "invoice_generate_failed", "failed to generate invoice", requestID)
		return
	}
	api.Created(w, invoice, requestID)
}

func (h *Handler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	invoice, err := h.Store.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			api.Fail(w, http.StatusNotFound, "invoice_not_found", "invoice not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "invoice_get_failed", "failed to load invoice", requestID)
		return
	}
	api.Success(w, invoice, requestID)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	var payload transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("status", payload.Status, "status is required")
	v.Enum("status", payload.Status, []string{billing.InvoiceStatusSent, billing.InvoiceStatusPaid}, "status must be sent or paid")
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	invoice, err := h.Service.Transition(r.Context(), invoiceID, payload.Status)
	if err != nil {
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			api.Fail(w, http.StatusNotFound, "invoice_not_found", "invoice not found", requestID)
			return
		}
		if errors.Is(err, billing.ErrInvalidTransition) {
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "invoice_transition_failed", "failed to update invoice status", requestID)
		return
	}

	if invoice.Status == billing.InvoiceStatusSent {
		h.notifyIssued(r, invoice)
	}
	api.Success(w, invoice, requestID)
}

func (h *Handler) handleRenderPDF(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	filePath, err := h.Service.RenderPDF(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			api.Fail(w, http.StatusNotFound, "invoice_not_found", "invoice not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "invoice_pdf_failed", "failed to render invoice pdf", requestID)
		return
	}
	api.Success(w, map[string]any{"invoiceId": invoiceID, "fileUrl": filePath}, requestID)
}

func (h *Handler) notifyIssued(r *http.Request, invoice *billing.Invoice) {
	if h.Notifier == nil {
		return
	}
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return
	}
	body := fmt.Sprintf("Invoice %s for %.2f %s was issued.", invoice.InvoiceNumber, invoice.Total, invoice.Currency)
	if err := h.Notifier.Create(r.Context(), user.UserID, notifications.TypeInvoiceIssued, "Invoice issued", body); err != nil {
		slog.Warn("invoice issue notification failed", "invoiceId", invoice.ID, "err", err)
	}
}
