package repositories

import (
	"context"
	"time"

	domain "github.com/velours-paris/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Catalog() CatalogRepository
	Wishlists() WishlistRepository
	SiteFeatures() SiteFeatureRepository
	SiteSettings() SiteSettingsRepository
	ContentBlocks() ContentBlockRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CatalogRepository reads the navigation taxonomy.
type CatalogRepository interface {
	ListGroups(ctx context.Context) ([]domain.CategoryGroup, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpsertGroup(ctx context.Context, group domain.CategoryGroup) error
	UpsertCategory(ctx context.Context, category domain.Category) error
}

// WishlistRepository persists per-user wishlist membership. Document
// existence is membership; there is no separate flag to keep in sync.
type WishlistRepository interface {
	Has(ctx context.Context, userID string, productID string) (bool, error)
	List(ctx context.Context, userID string) ([]domain.WishlistEntry, error)
	Put(ctx context.Context, userID string, productID string, addedAt time.Time) error
	Delete(ctx context.Context, userID string, productID string) error
}

// SiteFeatureRepository reads and writes keyed feature flags.
type SiteFeatureRepository interface {
	Get(ctx context.Context, key string) (domain.SiteFeature, error)
	List(ctx context.Context) ([]domain.SiteFeature, error)
	Upsert(ctx context.Context, feature domain.SiteFeature) error
}

// SiteSettingsRepository persists singleton storefront settings documents.
type SiteSettingsRepository interface {
	GetComingSoonOverride(ctx context.Context) (domain.ComingSoonOverride, error)
	SaveComingSoonOverride(ctx context.Context, override domain.ComingSoonOverride) error
	GetFontScale(ctx context.Context) (domain.FontScaleConfig, error)
	SaveFontScale(ctx context.Context, cfg domain.FontScaleConfig) error
}

// ContentBlockRepository persists admin-authored marketing copy.
type ContentBlockRepository interface {
	Get(ctx context.Context, page string, slug string) (domain.ContentBlock, error)
	ListByPage(ctx context.Context, page string) ([]domain.ContentBlock, error)
	Upsert(ctx context.Context, block domain.ContentBlock) error
	Delete(ctx context.Context, page string, slug string) error
}

// HealthRepository verifies downstream connectivity for readiness probes.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
