package businesses

import (
	"context"
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

// Handler wires HTTP endpoints for businesses.
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

// MountRoutes registers business routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.listOwn)
	r.Get("/directory", h.directory)
	r.Get("/{businessID}", h.get)
	r.Put("/{businessID}", h.update)
	r.Delete("/{businessID}", h.delete)
}

type createRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Slug    string `json:"slug" validate:"required,min=2,max=60"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
	Address string `json:"address" validate:"max=300"`
	Phone   string `json:"phone" validate:"max=40"`
}

type updateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=120"`
	Slug    *string `json:"slug" validate:"omitempty,min=2,max=60"`
	LogoURL *string `json:"logo_url" validate:"omitempty,url"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone" validate:"omitempty,max=40"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if h.gate.Authorize(principal, authz.ActionCreate, authz.ResourceBusiness) != authz.Allow {
		httpx.RespondError(w, shared.ErrPermissionDenied)
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

	business, err := h.service.Create(r.Context(), CreateParams{
		OwnerID: principal.ProfileID,
		Name:    req.Name,
		Slug:    req.Slug,
		LogoURL: req.LogoURL,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		h.logger.Error("create business", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, business)
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceBusiness) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	list, err := h.service.ListByOwner(r.Context(), principal.ProfileID)
	if err != nil {
		h.logger.Error("list businesses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"businesses": list})
}

// directory is the paged listing across all businesses, readable by any
// authenticated role.
func (h *Handler) directory(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceBusiness) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list directory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	total, err := h.service.Count(r.Context())
	if err != nil {
		h.logger.Error("count businesses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"businesses": list,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "businessID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if h.gate.Authorize(principal, authz.ActionRead, authz.ResourceBusiness) == authz.Deny {
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	business, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, business)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "businessID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceBusiness, h.ownerCheck(id, principal)); err != nil {
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

	business, err := h.service.Update(r.Context(), id, UpdateParams{
		Name:    req.Name,
		Slug:    req.Slug,
		LogoURL: req.LogoURL,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, business)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "businessID"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionDelete, authz.ResourceBusiness, h.ownerCheck(id, principal)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete business", slog.String("business_id", id.String()), slog.Any("error", err))
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
