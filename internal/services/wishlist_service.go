package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/repositories"
)

// WishlistServiceDeps bundles constructor inputs for the wishlist service.
type WishlistServiceDeps struct {
	Wishlists repositories.WishlistRepository
	Clock     func() time.Time
}

type wishlistService struct {
	repo  repositories.WishlistRepository
	clock func() time.Time

	// inFlight guards each user/product pair so a double-tap cannot
	// interleave two toggles of the same entry.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

var (
	// ErrWishlistRepositoryMissing indicates the repository dependency is absent.
	ErrWishlistRepositoryMissing = errors.New("wishlist service: repository is not configured")
	// ErrWishlistInvalidProduct indicates an empty or malformed product id.
	ErrWishlistInvalidProduct = errors.New("wishlist service: product id is required")
)

// NewWishlistService constructs the wishlist service with the supplied dependencies.
func NewWishlistService(deps WishlistServiceDeps) (WishlistService, error) {
	if deps.Wishlists == nil {
		return nil, fmt.Errorf("wishlist service: wishlist repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &wishlistService{
		repo:     deps.Wishlists,
		clock:    func() time.Time { return clock().UTC() },
		inFlight: map[string]struct{}{},
	}, nil
}

// Has reports membership. Anonymous visitors always see false without a backend read.
func (s *wishlistService) Has(ctx context.Context, identity *auth.Identity, productID string) (bool, error) {
	if identity == nil || identity.UID == "" {
		return false, nil
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, ErrWishlistInvalidProduct
	}
	return s.repo.Has(ctx, identity.UID, productID)
}

// List returns the caller's wishlist. Anonymous visitors get an empty list.
func (s *wishlistService) List(ctx context.Context, identity *auth.Identity) ([]domain.WishlistEntry, error) {
	if identity == nil || identity.UID == "" {
		return nil, nil
	}
	return s.repo.List(ctx, identity.UID)
}

// Toggle flips membership. It reports whether the flip was performed and the
// resulting state. An anonymous caller is a no-op. A toggle arriving while
// another toggle for the same user/product pair is still in flight is also a
// no-op: performed comes back false with the current state, never a racing
// double flip dressed up as a fresh write.
func (s *wishlistService) Toggle(ctx context.Context, identity *auth.Identity, productID string) (bool, bool, error) {
	if identity == nil || identity.UID == "" {
		return false, false, nil
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, false, ErrWishlistInvalidProduct
	}

	key := identity.UID + "/" + productID
	if !s.acquire(key) {
		current, err := s.repo.Has(ctx, identity.UID, productID)
		if err != nil {
			return false, false, err
		}
		return false, current, nil
	}
	defer s.release(key)

	has, err := s.repo.Has(ctx, identity.UID, productID)
	if err != nil {
		return false, false, err
	}

	if has {
		if err := s.repo.Delete(ctx, identity.UID, productID); err != nil {
			return false, true, err
		}
		return true, false, nil
	}
	if err := s.repo.Put(ctx, identity.UID, productID, s.clock()); err != nil {
		return false, false, err
	}
	return true, true, nil
}

func (s *wishlistService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *wishlistService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}
