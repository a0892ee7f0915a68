package firestore

import (
	"context"
	"errors"

	"google.golang.org/api/iterator"

	pfirestore "github.com/velours-paris/api/internal/platform/firestore"
	"github.com/velours-paris/api/internal/repositories"
)

// Registry bundles all Firestore-backed repositories behind the repositories.Registry contract.
type Registry struct {
	provider *pfirestore.Provider

	catalog      *CatalogRepository
	wishlists    *WishlistRepository
	siteFeatures *SiteFeatureRepository
	siteSettings *SiteSettingsRepository
	content      *ContentBlockRepository
}

// NewRegistry constructs every repository against the shared provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("repository registry requires firestore provider")
	}

	catalog, err := NewCatalogRepository(provider)
	if err != nil {
		return nil, err
	}
	wishlists, err := NewWishlistRepository(provider)
	if err != nil {
		return nil, err
	}
	features, err := NewSiteFeatureRepository(provider)
	if err != nil {
		return nil, err
	}
	settings, err := NewSiteSettingsRepository(provider)
	if err != nil {
		return nil, err
	}
	content, err := NewContentBlockRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:     provider,
		catalog:      catalog,
		wishlists:    wishlists,
		siteFeatures: features,
		siteSettings: settings,
		content:      content,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Catalog returns the taxonomy repository.
func (r *Registry) Catalog() repositories.CatalogRepository { return r.catalog }

// Wishlists returns the wishlist repository.
func (r *Registry) Wishlists() repositories.WishlistRepository { return r.wishlists }

// SiteFeatures returns the feature-flag repository.
func (r *Registry) SiteFeatures() repositories.SiteFeatureRepository { return r.siteFeatures }

// SiteSettings returns the settings repository.
func (r *Registry) SiteSettings() repositories.SiteSettingsRepository { return r.siteSettings }

// ContentBlocks returns the content repository.
func (r *Registry) ContentBlocks() repositories.ContentBlockRepository { return r.content }

// Health returns a probe that verifies Firestore reachability.
func (r *Registry) Health() repositories.HealthRepository {
	return &healthRepository{provider: r.provider}
}

type healthRepository struct {
	provider *pfirestore.Provider
}

// Ping performs a minimal read against the settings collection.
func (h *healthRepository) Ping(ctx context.Context) error {
	if h == nil || h.provider == nil {
		return errors.New("health repository not initialised")
	}
	client, err := h.provider.Client(ctx)
	if err != nil {
		return err
	}
	iter := client.Collection(settingsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return pfirestore.WrapError("health.ping", err)
	}
	return nil
}

// Ensure interface compliance.
var _ repositories.Registry = (*Registry)(nil)
