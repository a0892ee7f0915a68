package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/platform/httpx"
	"github.com/velours-paris/api/internal/services"
)

// MeHandlers serves endpoints scoped to the authenticated shopper.
type MeHandlers struct {
	wishlist services.WishlistService
}

// NewMeHandlers constructs the shopper-scoped handlers.
func NewMeHandlers(wishlist services.WishlistService) *MeHandlers {
	return &MeHandlers{wishlist: wishlist}
}

// Routes registers the /me endpoints.
func (h *MeHandlers) Routes(r chi.Router) {
	r.Get("/profile", h.profile)
	r.Get("/wishlist", h.listWishlist)
	r.Get("/wishlist/{productID}", h.hasWishlisted)
	r.Post("/wishlist/{productID}/toggle", h.toggleWishlist)
}

func (h *MeHandlers) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"uid":      identity.UID,
		"email":    identity.Email,
		"is_admin": identity.IsAdmin(),
	})
}

func (h *MeHandlers) listWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	entries, err := h.wishlist.List(ctx, identity)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_error", "unable to load wishlist", http.StatusBadGateway))
		return
	}

	type entryPayload struct {
		ProductID string `json:"product_id"`
		AddedAt   string `json:"added_at"`
	}
	payload := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, entryPayload{
			ProductID: entry.ProductID,
			AddedAt:   entry.AddedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *MeHandlers) hasWishlisted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	has, err := h.wishlist.Has(ctx, identity, productID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product_id": productID, "wishlisted": has})
}

func (h *MeHandlers) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	performed, wishlisted, err := h.wishlist.Toggle(ctx, identity, productID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_error", "unable to update wishlist", http.StatusBadGateway))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"performed":  performed,
		"wishlisted": wishlisted,
	})
}
