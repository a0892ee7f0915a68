package handlers

import (
	"net/http"
	"strings"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/i18n"
	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/services"
)

// ComingSoonGate blocks the public storefront while the launch gate is
// enabled. Admins pass through so they can preview the site; everyone else
// receives the localized launch payload. A settings failure leaves the gate
// open, so shoppers are never locked out by a backend outage.
func ComingSoonGate(settings services.SettingsService, bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if settings == nil {
				next.ServeHTTP(w, r)
				return
			}

			cfg, err := settings.ComingSoon(r.Context())
			if err != nil || !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			// Same resolution order as the public handlers: explicit
			// ?lang wins, then the Accept-Language header.
			lang := domain.DefaultLanguage
			if raw := strings.TrimSpace(r.URL.Query().Get("lang")); raw != "" {
				lang = domain.ParseLanguage(raw)
			} else if bundle != nil {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			payload := map[string]any{
				"status":  "coming_soon",
				"message": cfg.Message(lang),
			}
			if !cfg.CountdownDate.IsZero() {
				payload["countdown_date"] = cfg.CountdownDate
			}
			if len(cfg.YoutubeIDs) > 0 {
				payload["youtube_ids"] = cfg.YoutubeIDs
			}
			if len(cfg.Images) > 0 {
				payload["images"] = cfg.Images
			}

			writeJSONResponse(w, http.StatusServiceUnavailable, payload)
		})
	}
}
