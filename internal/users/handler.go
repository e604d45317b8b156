package users

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/menuforge/menuforge/internal/authz"
	"github.com/menuforge/menuforge/internal/platform/httpx"
	"github.com/menuforge/menuforge/internal/shared"
)

// Handler wires the operator HTTP endpoints under /admin.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *authz.Gate
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Patch("/users/{userID}/role", h.changeRole)
	r.Delete("/users/{userID}", h.delete)
	r.Get("/stats", h.stats)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceUser) != authz.Allow {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":      list,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if h.gate.Authorize(principal, authz.ActionUpdate, authz.ResourceUser) != authz.Allow {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	profile, err := h.service.ChangeRole(r.Context(), principal, id, req.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if h.gate.Authorize(principal, authz.ActionDelete, authz.ResourceUser) != authz.Allow {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	async := r.URL.Query().Get("async") == "true"
	report, err := h.service.Delete(r.Context(), principal, id, async)
	if err != nil {
		h.logger.Error("delete user", slog.String("user_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if report == nil {
		httpx.JSON(w, http.StatusAccepted, map[string]any{"profile_id": id})
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// stats is gated purely by role tier; resource-level ownership is
// meaningless for the platform dashboard.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.gate.RequireRole(principal, authz.RoleAdmin, authz.RoleSuperAdmin); err != nil {
		httpx.RespondError(w, err)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("collect stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
