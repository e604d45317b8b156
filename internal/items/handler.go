package items

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

// CategoryOwnership resolves ownership of the parent category. Creating or
// reordering items is gated on the category, not on any single item.
type CategoryOwnership interface {
	IsOwner(ctx context.Context, categoryID, profileID uuid.UUID) (bool, error)
}

// Handler wires HTTP endpoints for items.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories CategoryOwnership
	gate       *authz.Gate
	validator  *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, categories CategoryOwnership, gate *authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, categories: categories, gate: gate, validator: validator.New()}
}

// MountCategoryRoutes registers the routes scoped under a parent category.
func (h *Handler) MountCategoryRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/reorder", h.reorder)
}

// MountRoutes registers the routes addressing an item directly.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{itemID}", h.get)
	r.Put("/{itemID}", h.update)
	r.Patch("/{itemID}/availability", h.setAvailability)
	r.Delete("/{itemID}", h.delete)
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=160"`
	Description string `json:"description" validate:"max=1000"`
	PriceCents  int64  `json:"price_cents" validate:"min=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Position    int    `json:"position" validate:"omitempty,min=0"`
}

type updateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=160"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,min=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	Position    *int    `json:"position" validate:"omitempty,min=1"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

type reorderRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" validate:"required,min=1"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionCreate, authz.ResourceItem, h.categoryOwnerCheck(categoryID, principal)); err != nil {
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

	item, err := h.service.Create(r.Context(), CreateParams{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Position:    req.Position,
	})
	if err != nil {
		h.logger.Error("create item", slog.String("category_id", categoryID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceItem) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	list, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("list items", slog.String("category_id", categoryID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceItem, h.categoryOwnerCheck(categoryID, principal)); err != nil {
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

	if err := h.service.Reorder(r.Context(), categoryID, req.ItemIDs); err != nil {
		h.logger.Error("reorder items", slog.String("category_id", categoryID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceItem) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceItem, h.ownerCheck(id, principal)); err != nil {
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

	item, err := h.service.Update(r.Context(), id, UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Position:    req.Position,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceItem, h.ownerCheck(id, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req availabilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	item, err := h.service.SetAvailability(r.Context(), id, *req.IsAvailable)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionDelete, authz.ResourceItem, h.ownerCheck(id, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete item", slog.String("item_id", id.String()), slog.Any("error", err))
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

func (h *Handler) categoryOwnerCheck(categoryID uuid.UUID, principal *shared.Principal) authz.OwnershipCheck {
	return func(ctx context.Context) (bool, error) {
		return h.categories.IsOwner(ctx, categoryID, principal.ProfileID)
	}
}
