package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conductor-saas/conductor/domains/tenants/be/provisioning"
	"github.com/conductor-saas/conductor/domains/tenants/be/service"
	"github.com/conductor-saas/conductor/platform/go/logging"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

// Handler exposes the tenant registry and provisioning ops over HTTP.
// Authentication and tenant-context extraction happen upstream; this layer
// only translates service results and typed errors to status codes.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tenants service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the tenant ops endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/tenants", h.create)
	r.Get("/tenants", h.list)
	r.Get("/tenants/{tenantId}", h.get)
	r.Post("/tenants/{tenantId}/suspend", h.suspend)
	r.Post("/tenants/{tenantId}/provision", h.provision)
	r.Post("/tenants/{tenantId}/sync-columns", h.syncColumns)
	r.Get("/tenants/{tenantId}/validate", h.validate)
	r.Get("/tenants/{tenantId}/health", h.health)
}

type tenantResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName *string   `json:"displayName,omitempty"`
	Status      string    `json:"status"`
	Namespace   string    `json:"namespace"`
	CreatedAt   string    `json:"createdAt"`
}

func toResponse(t service.Tenant) tenantResponse {
	return tenantResponse{
		ID:          t.ID,
		DisplayName: t.DisplayName,
		Status:      string(t.Status),
		Namespace:   t.Namespace,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type createRequest struct {
	DisplayName *string `json:"displayName"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.New("invalid request body"), http.StatusBadRequest)
		return
	}

	t, err := h.svc.Create(r.Context(), service.CreateInput{DisplayName: req.DisplayName})
	if err != nil {
		h.translate(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/tenants/"+t.ID.String())
	h.writeJSON(w, r, http.StatusCreated, toResponse(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := service.StatusFromString(s)
		opts.Status = &status
	}
	opts.Page = queryInt(r, "page")
	opts.PageSize = queryInt(r, "pageSize")

	result, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.translate(w, r, err)
		return
	}

	items := make([]tenantResponse, 0, len(result.Tenants))
	for _, t := range result.Tenants {
		items = append(items, toResponse(t))
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"items":      items,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalItems": result.TotalItems,
		"totalPages": result.TotalPages,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.translate(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponse(t))
}

func (h *Handler) suspend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Suspend(r.Context(), id)
	if err != nil {
		h.translate(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponse(t))
}

func (h *Handler) provision(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Provision(r.Context(), id)
	if err != nil {
		h.translate(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"tenant":       toResponse(out.Tenant),
		"result":       out.Result,
		"storageReady": out.StorageReady,
	})
}

func (h *Handler) syncColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.SyncColumns(r.Context(), id)
	if err != nil {
		h.translate(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Validate(r.Context(), id)
	if err != nil {
		h.translate(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, report)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.ValidateHealth(r.Context(), id)
	if err != nil {
		h.translate(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, report)
}

func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantId"))
	if err != nil {
		h.writeError(w, r, tenant.ErrInvalidTenantID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// translate maps service and core errors to HTTP status codes per the error
// taxonomy. Unknown errors become 500 without leaking detail.
func (h *Handler) translate(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrInvalidTenantID):
		h.writeError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, tenant.ErrMissingTenantContext):
		h.writeError(w, r, errors.New("authentication required"), http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, r, err, http.StatusNotFound)
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrSuspended):
		h.writeError(w, r, err, http.StatusConflict)
	case errors.Is(err, provisioning.ErrNamespaceCreation):
		logging.FromRequest(r, h.logger).Error("namespace creation failed", zap.Error(err))
		h.writeError(w, r, errors.New("provisioning failed"), http.StatusInternalServerError)
	default:
		logging.FromRequest(r, h.logger).Error("tenants handler error", zap.Error(err))
		h.writeError(w, r, errors.New("internal error"), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromRequest(r, h.logger).Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	h.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
