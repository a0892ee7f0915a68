package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/platform/requestctx"
	"github.com/velours-paris/api/internal/repositories"
)

const defaultFeatureTTL = 60 * time.Second

// FeatureServiceDeps bundles constructor inputs for the feature service.
type FeatureServiceDeps struct {
	Features repositories.SiteFeatureRepository
	TTL      time.Duration
	Clock    func() time.Time
}

type featureService struct {
	repo  repositories.SiteFeatureRepository
	ttl   time.Duration
	clock func() time.Time

	// mu guards the maps only; backend reads happen outside it, behind a
	// per-key refresh lock so one slow flag cannot stall the others.
	mu      sync.Mutex
	cache   map[string]featureCacheEntry
	refresh map[string]*sync.Mutex
}

type featureCacheEntry struct {
	feature   domain.SiteFeature
	fetchedAt time.Time
}

// ErrFeatureRepositoryMissing indicates the repository dependency is absent.
var ErrFeatureRepositoryMissing = errors.New("feature service: repository is not configured")

// NewFeatureService constructs the feature service with a read-through cache.
func NewFeatureService(deps FeatureServiceDeps) (FeatureService, error) {
	if deps.Features == nil {
		return nil, fmt.Errorf("feature service: feature repository is required")
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = defaultFeatureTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &featureService{
		repo:    deps.Features,
		ttl:     ttl,
		clock:   clock,
		cache:   map[string]featureCacheEntry{},
		refresh: map[string]*sync.Mutex{},
	}, nil
}

// Get returns the flag for key, served from cache while fresh. Refreshes are
// serialised per key so a cold key triggers exactly one backend read however
// many requests race on it, while other keys keep reading from their own
// cache. A missing row degrades to a disabled feature; a backend failure
// degrades to the stale entry when one exists, disabled otherwise.
func (s *featureService) Get(ctx context.Context, key string) (domain.SiteFeature, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.SiteFeature{}, errors.New("feature service: key is required")
	}

	if feature, ok := s.fresh(key); ok {
		return feature, nil
	}

	lock := s.refreshLock(key)
	lock.Lock()
	defer lock.Unlock()

	// A racing request may have refreshed the key while we waited.
	if feature, ok := s.fresh(key); ok {
		return feature, nil
	}

	feature, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrFeatureUnknown) {
			feature = domain.DisabledFeature(key)
			s.store(key, feature)
			return feature, nil
		}
		if stale, ok := s.stale(key); ok {
			requestctx.Logger(ctx).Warn("feature refresh failed, serving stale flag",
				zap.String("feature", key), zap.Error(err))
			return stale, nil
		}
		requestctx.Logger(ctx).Warn("feature fetch failed, degrading to disabled",
			zap.String("feature", key), zap.Error(err))
		return domain.DisabledFeature(key), nil
	}

	s.store(key, feature)
	return feature, nil
}

// fresh returns the cached flag when its entry is within the TTL.
func (s *featureService) fresh(key string) (domain.SiteFeature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok || s.clock().Sub(entry.fetchedAt) >= s.ttl {
		return domain.SiteFeature{}, false
	}
	return entry.feature, true
}

// stale returns the cached flag regardless of age.
func (s *featureService) stale(key string) (domain.SiteFeature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	return entry.feature, ok
}

func (s *featureService) store(key string, feature domain.SiteFeature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = featureCacheEntry{feature: feature, fetchedAt: s.clock()}
}

func (s *featureService) refreshLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.refresh[key]
	if !ok {
		lock = &sync.Mutex{}
		s.refresh[key] = lock
	}
	return lock
}

// IsEnabled is the boolean convenience over Get; any failure reads as off.
func (s *featureService) IsEnabled(ctx context.Context, key string) bool {
	feature, err := s.Get(ctx, key)
	if err != nil {
		return false
	}
	return feature.Enabled
}

// Invalidate drops the cached entry so the next read hits the backend.
func (s *featureService) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, strings.TrimSpace(key))
}

// Upsert writes the flag through to the backend and refreshes the cache.
func (s *featureService) Upsert(ctx context.Context, feature domain.SiteFeature) error {
	feature.Key = strings.TrimSpace(feature.Key)
	if feature.Key == "" {
		return errors.New("feature service: key is required")
	}
	if feature.Config == nil {
		feature.Config = map[string]any{}
	}
	if err := s.repo.Upsert(ctx, feature); err != nil {
		return err
	}

	s.store(feature.Key, feature)
	return nil
}
