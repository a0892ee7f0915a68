package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/editmode"
	"github.com/velours-paris/api/internal/i18n"
	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/platform/httpx"
	"github.com/velours-paris/api/internal/platform/textutil"
	"github.com/velours-paris/api/internal/render"
	"github.com/velours-paris/api/internal/services"
)

// PublicHandlers serves the anonymous storefront surface.
type PublicHandlers struct {
	catalog  services.CatalogService
	content  services.ContentService
	settings services.SettingsService
	features services.FeatureService
	wishlist services.WishlistService
	prices   domain.PriceFormatter
	bundle   *i18n.Bundle
	editMode *editmode.Manager
}

// PublicHandlersDeps bundles constructor inputs for the public handlers.
type PublicHandlersDeps struct {
	Catalog  services.CatalogService
	Content  services.ContentService
	Settings services.SettingsService
	Features services.FeatureService
	Wishlist services.WishlistService
	Prices   domain.PriceFormatter
	Bundle   *i18n.Bundle
	EditMode *editmode.Manager
}

// NewPublicHandlers constructs the public storefront handlers.
func NewPublicHandlers(deps PublicHandlersDeps) *PublicHandlers {
	return &PublicHandlers{
		catalog:  deps.Catalog,
		content:  deps.Content,
		settings: deps.Settings,
		features: deps.Features,
		wishlist: deps.Wishlist,
		prices:   deps.Prices,
		bundle:   deps.Bundle,
		editMode: deps.EditMode,
	}
}

// Routes registers the public endpoints.
func (h *PublicHandlers) Routes(r chi.Router) {
	r.Get("/navigation", h.navigation)
	r.Get("/content/{page}", h.pageContent)
	r.Get("/content/{page}/{slug}", h.contentBlock)
	r.Get("/features/{key}", h.feature)
	r.Get("/settings/font-scale", h.fontScale)
	r.Get("/prices/{amount}", h.price)
	r.Get("/swatch", h.swatch)
	r.Get("/i18n/{key}", h.translate)
	r.Get("/ui-state", h.uiState)
}

// language resolves the display language: explicit ?lang wins, then the
// Accept-Language header, then the French default.
func (h *PublicHandlers) language(r *http.Request) domain.Language {
	if raw := strings.TrimSpace(r.URL.Query().Get("lang")); raw != "" {
		return domain.ParseLanguage(raw)
	}
	if h.bundle != nil {
		return h.bundle.Resolve(r.Header.Get("Accept-Language"))
	}
	return domain.DefaultLanguage
}

type navigationGroupPayload struct {
	ID         string                   `json:"id"`
	Slug       string                   `json:"slug"`
	Name       string                   `json:"name"`
	Categories []navigationEntryPayload `json:"categories"`
}

type navigationEntryPayload struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func (h *PublicHandlers) navigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	tree, err := h.catalog.Navigation(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "unable to load navigation", http.StatusBadGateway))
		return
	}

	lang := h.language(r)
	payload := make([]navigationGroupPayload, 0, len(tree))
	for _, node := range tree {
		group := navigationGroupPayload{
			ID:         node.Group.ID,
			Slug:       node.Group.Slug,
			Name:       node.Group.Name(lang),
			Categories: make([]navigationEntryPayload, 0, len(node.Categories)),
		}
		for _, category := range node.Categories {
			group.Categories = append(group.Categories, navigationEntryPayload{
				ID:   category.ID,
				Slug: category.Slug,
				Name: category.Name(lang),
			})
		}
		payload = append(payload, group)
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *PublicHandlers) pageContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := strings.TrimSpace(chi.URLParam(r, "page"))

	blocks, err := h.content.PageBlocks(ctx, page, h.language(r))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("content_error", "unable to load page content", http.StatusBadGateway))
		return
	}
	writeJSONResponse(w, http.StatusOK, blocks)
}

func (h *PublicHandlers) contentBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := strings.TrimSpace(chi.URLParam(r, "page"))
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))

	block, err := h.content.Block(ctx, page, slug, h.language(r))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("content_not_found", "content block not found", http.StatusNotFound))
		return
	}
	writeJSONResponse(w, http.StatusOK, block)
}

func (h *PublicHandlers) feature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := strings.TrimSpace(chi.URLParam(r, "key"))

	feature, err := h.features.Get(ctx, key)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "feature key is required", http.StatusBadRequest))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"key":     feature.Key,
		"enabled": feature.Enabled,
		"config":  feature.Config,
	})
}

func (h *PublicHandlers) fontScale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.settings.FontScale(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("settings_error", "unable to load font scale", http.StatusBadGateway))
		return
	}
	writeJSONResponse(w, http.StatusOK, cfg)
}

// price formats a canonical EUR cent amount in the requested display currency.
func (h *PublicHandlers) price(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	amount, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "amount")), 10, 64)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "amount must be an integer number of cents", http.StatusBadRequest))
		return
	}
	currency := domain.ParseCurrency(r.URL.Query().Get("currency"))

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"amount_eur_cents": amount,
		"currency":         currency,
		"display":          h.prices.FormatPrice(amount, currency, nil),
	})
}

// swatch renders a product color swatch as inline SVG.
func (h *PublicHandlers) swatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var colors []string
	for _, raw := range strings.Split(r.URL.Query().Get("colors"), ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			colors = append(colors, trimmed)
		}
	}
	diameter, _ := strconv.Atoi(r.URL.Query().Get("size"))

	svg, err := render.SwatchSVG(colors, diameter)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

// translate resolves a translation key with optional query interpolation
// parameters, e.g. /i18n/cart.items?count=3.
func (h *PublicHandlers) translate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bundle == nil {
		httpx.WriteError(ctx, w, httpx.NewError("i18n_unavailable", "translations are unavailable", http.StatusServiceUnavailable))
		return
	}

	key := strings.TrimSpace(chi.URLParam(r, "key"))
	lang := h.language(r)

	params := make(map[string]string)
	for name, values := range r.URL.Query() {
		if name == "lang" || len(values) == 0 {
			continue
		}
		params[name] = values[0]
	}
	params = textutil.NormalizeStringMap(params)

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"key":   key,
		"lang":  lang,
		"value": h.bundle.T(lang, key, params),
	})
}

// uiState bundles the per-request display state the front end needs on boot:
// resolved language, edit-mode observation, and typography scale.
func (h *PublicHandlers) uiState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := auth.IdentityFromContext(ctx)

	editing := false
	if h.editMode != nil {
		editing = h.editMode.Enabled(identity)
	}

	factor := domain.DefaultFontScale
	if h.settings != nil {
		if cfg, err := h.settings.FontScale(ctx); err == nil {
			factor = cfg.Factor
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"lang":       h.language(r),
		"is_admin":   identity.IsAdmin(),
		"edit_mode":  editing,
		"font_scale": factor,
	})
}
