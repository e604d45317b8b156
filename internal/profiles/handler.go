package profiles

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/menuforge/menuforge/internal/authz"
	"github.com/menuforge/menuforge/internal/platform/httpx"
	"github.com/menuforge/menuforge/internal/shared"
)

// Handler wires HTTP endpoints for the caller's own profile. There is no
// id in the route; the target is always the authenticated principal.
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

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Patch("/", h.update)
}

type updateRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=120"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionRead, authz.ResourceProfile, authz.SelfOwned); err != nil {
		httpx.RespondError(w, err)
		return
	}

	profile, err := h.service.Get(r.Context(), principal.ProfileID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.gate.AuthorizeOwned(r.Context(), principal, authz.ActionUpdate, authz.ResourceProfile, authz.SelfOwned); err != nil {
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

	profile, err := h.service.Update(r.Context(), principal.ProfileID, UpdateParams{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		h.logger.Error("update profile", slog.String("profile_id", principal.ProfileID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}
