package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/editmode"
	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/platform/httpx"
	"github.com/velours-paris/api/internal/platform/spreadsheet"
	"github.com/velours-paris/api/internal/services"
)

const maxImportSize = 8 << 20 // 8 MiB workbook cap

// AdminHandlers serves the back-office surface. The route group is mounted
// behind RequireFirebaseAuth(admin), so every request carries an admin identity.
type AdminHandlers struct {
	catalog  services.CatalogService
	content  services.ContentService
	features services.FeatureService
	settings services.SettingsService
	editMode *editmode.Manager
}

// AdminHandlersDeps bundles constructor inputs for the admin handlers.
type AdminHandlersDeps struct {
	Catalog  services.CatalogService
	Content  services.ContentService
	Features services.FeatureService
	Settings services.SettingsService
	EditMode *editmode.Manager
}

// NewAdminHandlers constructs the back-office handlers.
func NewAdminHandlers(deps AdminHandlersDeps) *AdminHandlers {
	return &AdminHandlers{
		catalog:  deps.Catalog,
		content:  deps.Content,
		features: deps.Features,
		settings: deps.Settings,
		editMode: deps.EditMode,
	}
}

// Routes registers the /admin endpoints.
func (h *AdminHandlers) Routes(r chi.Router) {
	r.Get("/edit-mode", h.editModeState)
	r.Post("/edit-mode/toggle", h.toggleEditMode)

	r.Put("/content", h.upsertContent)
	r.Delete("/content/{page}/{slug}", h.deleteContent)

	r.Put("/features/{key}", h.upsertFeature)

	r.Put("/settings/coming-soon", h.saveComingSoon)
	r.Put("/settings/font-scale", h.saveFontScale)

	r.Put("/catalog/groups", h.upsertGroup)
	r.Put("/catalog/categories", h.upsertCategory)
	r.Post("/catalog/import", h.importTaxonomy)
}

func (h *AdminHandlers) editModeState(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	writeJSONResponse(w, http.StatusOK, map[string]any{"enabled": h.editMode.Enabled(identity)})
}

func (h *AdminHandlers) toggleEditMode(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	writeJSONResponse(w, http.StatusOK, map[string]any{"enabled": h.editMode.Toggle(identity)})
}

type contentBlockRequest struct {
	Page   string `json:"page"`
	Slug   string `json:"slug"`
	BodyFR string `json:"body_fr"`
	BodyEN string `json:"body_en"`
	Format string `json:"format"`
}

func (h *AdminHandlers) upsertContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := auth.IdentityFromContext(ctx)

	var req contentBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed content payload", http.StatusBadRequest))
		return
	}

	err := h.content.Upsert(ctx, identity, domain.ContentBlock{
		Page:   req.Page,
		Slug:   req.Slug,
		BodyFR: req.BodyFR,
		BodyEN: req.BodyEN,
		Format: req.Format,
	})
	if err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) deleteContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := auth.IdentityFromContext(ctx)

	page := strings.TrimSpace(chi.URLParam(r, "page"))
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if err := h.content.Delete(ctx, identity, page, slug); err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type featureRequest struct {
	Enabled bool           `json:"enabled"`
	Config  map[string]any `json:"config"`
}

func (h *AdminHandlers) upsertFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := strings.TrimSpace(chi.URLParam(r, "key"))

	var req featureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed feature payload", http.StatusBadRequest))
		return
	}

	err := h.features.Upsert(ctx, domain.SiteFeature{Key: key, Enabled: req.Enabled, Config: req.Config})
	if err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) saveComingSoon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var override domain.ComingSoonOverride
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed coming-soon payload", http.StatusBadRequest))
		return
	}
	if err := h.settings.SaveComingSoonOverride(ctx, override); err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) saveFontScale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cfg domain.FontScaleConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed font scale payload", http.StatusBadRequest))
		return
	}
	if err := h.settings.SaveFontScale(ctx, cfg); err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupRequest struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	NameFR    string `json:"name_fr"`
	NameEN    string `json:"name_en"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

func (h *AdminHandlers) upsertGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed group payload", http.StatusBadRequest))
		return
	}

	err := h.catalog.UpsertGroup(ctx, domain.CategoryGroup{
		ID:        req.ID,
		Slug:      req.Slug,
		NameFR:    req.NameFR,
		NameEN:    req.NameEN,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	})
	if err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	Slug      string `json:"slug"`
	NameFR    string `json:"name_fr"`
	NameEN    string `json:"name_en"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

func (h *AdminHandlers) upsertCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed category payload", http.StatusBadRequest))
		return
	}

	err := h.catalog.UpsertCategory(ctx, domain.Category{
		ID:        req.ID,
		GroupID:   req.GroupID,
		Slug:      req.Slug,
		NameFR:    req.NameFR,
		NameEN:    req.NameEN,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	})
	if err != nil {
		writeAdminServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importTaxonomy accepts a multipart upload ("file" field) of an xlsx
// workbook. The target sheet defaults to "Taxonomie" and can be overridden
// with the "sheet" form field. Parse failures surface the operator-facing
// message from the spreadsheet parser verbatim.
func (h *AdminHandlers) importTaxonomy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "multipart upload required", http.StatusBadRequest))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "workbook file is required", http.StatusBadRequest))
		return
	}
	defer file.Close()

	workbook, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("upload_error", "unable to read workbook", http.StatusBadRequest))
		return
	}

	sheet := strings.TrimSpace(r.FormValue("sheet"))
	if sheet == "" {
		sheet = "Taxonomie"
	}

	result, err := h.catalog.ImportTaxonomy(ctx, workbook, sheet)
	if err != nil {
		var parseErr *spreadsheet.ParseError
		if errors.As(err, &parseErr) {
			httpx.WriteError(ctx, w, httpx.NewError("import_error", parseErr.Message, http.StatusUnprocessableEntity))
			return
		}
		writeAdminServiceError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"groups_upserted":     result.GroupsUpserted,
		"categories_upserted": result.CategoriesUpserted,
		"rows_skipped":        result.RowsSkipped,
	})
}

func writeAdminServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrContentForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "admin role required", http.StatusForbidden))
	case errors.Is(err, services.ErrCatalogInvalidInput),
		errors.Is(err, services.ErrContentInvalidInput),
		errors.Is(err, services.ErrSettingsInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "operation failed", http.StatusInternalServerError))
	}
}
