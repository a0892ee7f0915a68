package services

import (
	"context"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/platform/auth"
)

// CatalogService serves the storefront navigation taxonomy.
type CatalogService interface {
	Navigation(ctx context.Context) ([]domain.GroupWithCategories, error)
	UpsertGroup(ctx context.Context, group domain.CategoryGroup) error
	UpsertCategory(ctx context.Context, category domain.Category) error
	ImportTaxonomy(ctx context.Context, workbook []byte, sheetName string) (TaxonomyImportResult, error)
}

// TaxonomyImportResult summarises a spreadsheet import run.
type TaxonomyImportResult struct {
	GroupsUpserted     int
	CategoriesUpserted int
	RowsSkipped        int
}

// WishlistService owns per-user wishlist membership with toggle semantics.
type WishlistService interface {
	Has(ctx context.Context, identity *auth.Identity, productID string) (bool, error)
	List(ctx context.Context, identity *auth.Identity) ([]domain.WishlistEntry, error)
	Toggle(ctx context.Context, identity *auth.Identity, productID string) (performed bool, wishlisted bool, err error)
}

// FeatureService reads cached site feature flags.
type FeatureService interface {
	Get(ctx context.Context, key string) (domain.SiteFeature, error)
	IsEnabled(ctx context.Context, key string) bool
	Invalidate(key string)
	Upsert(ctx context.Context, feature domain.SiteFeature) error
}

// SettingsService serves merged storefront settings.
type SettingsService interface {
	ComingSoon(ctx context.Context) (domain.ComingSoonConfig, error)
	SaveComingSoonOverride(ctx context.Context, override domain.ComingSoonOverride) error
	FontScale(ctx context.Context) (domain.FontScaleConfig, error)
	SaveFontScale(ctx context.Context, cfg domain.FontScaleConfig) error
}

// RenderedBlock is a content block resolved to one language and sanitized HTML.
type RenderedBlock struct {
	Page string
	Slug string
	HTML string
}

// ContentService serves localized, sanitized marketing copy.
type ContentService interface {
	Block(ctx context.Context, page string, slug string, lang domain.Language) (RenderedBlock, error)
	PageBlocks(ctx context.Context, page string, lang domain.Language) ([]RenderedBlock, error)
	Upsert(ctx context.Context, identity *auth.Identity, block domain.ContentBlock) error
	Delete(ctx context.Context, identity *auth.Identity, page string, slug string) error
}
