package categories

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/menuforge/menuforge/internal/authz"
	"github.com/menuforge/menuforge/internal/platform/httpx"
	"github.com/menuforge/menuforge/internal/shared"
)

// BusinessOwnership resolves ownership of the parent business. Creating or
// reordering categories is gated on the business, not on any single category.
type BusinessOwnership interface {
	IsOwner(ctx context.Context, businessID, profileID uuid.UUID) (bool, error)
}

// Handler wires HTTP endpoints for categories.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	businesses BusinessOwnership
	gate       *authz.Gate
	validator  *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, businesses BusinessOwnership, gate *authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, businesses: businesses, gate: gate, validator: validator.New()}
}

// MountBusinessRoutes registers the routes scoped under a parent business.
func (h *Handler) MountBusinessRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/reorder", h.reorder)
}

// MountRoutes registers the routes addressing a category directly.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{categoryID}", h.get)
	r.Put("/{categoryID}", h.update)
	r.Delete("/{categoryID}", h.delete)
}

type createRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Position int    `json:"position" validate:"omitempty,min=0"`
}

type updateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Position *int    `json:"position" validate:"omitempty,min=1"`
}

type reorderRequest struct {
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"required,min=1"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	businessID, err := uuid.Parse(chi.URLParam(r, "businessID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionCreate, authz.ResourceCategory, h.businessOwnerCheck(businessID, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	category, err := h.service.Create(r.Context(), CreateParams{
		BusinessID: businessID,
		Name:       req.Name,
		Position:   req.Position,
	})
	if err != nil {
		h.logger.Error("create category", slog.String("business_id", businessID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	businessID, err := uuid.Parse(chi.URLParam(r, "businessID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceCategory) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	list, err := h.service.ListByBusiness(r.Context(), businessID)
	if err != nil {
		h.logger.Error("list categories", slog.String("business_id", businessID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": list})
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	businessID, err := uuid.Parse(chi.URLParam(r, "businessID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceCategory, h.businessOwnerCheck(businessID, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req reorderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	if err := h.service.Reorder(r.Context(), businessID, req.CategoryIDs); err != nil {
		h.logger.Error("reorder categories", slog.String("business_id", businessID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceCategory) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceCategory, h.ownerCheck(id, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	category, err := h.service.Update(r.Context(), id, UpdateParams{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionDelete, authz.ResourceCategory, h.ownerCheck(id, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete category", slog.String("category_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) ownerCheck(id uuid.UUID, principal *shared.Principal) authz.OwnershipCheck {
	return func(ctx context.Context) (bool, error) {
		return h.service.IsOwner(ctx, id, principal.ProfileID)
	}
}

func (h *Handler) businessOwnerCheck(businessID uuid.UUID, principal *shared.Principal) authz.OwnershipCheck {
	return func(ctx context.Context) (bool, error) {
		return h.businesses.IsOwner(ctx, businessID, principal.ProfileID)
	}
}
