package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/repositories"
)

type stubFeatureRepo struct {
	features map[string]domain.SiteFeature
	err      error
	getCalls int
}

func (s *stubFeatureRepo) Get(ctx context.Context, key string) (domain.SiteFeature, error) {
	s.getCalls++
	if s.err != nil {
		return domain.SiteFeature{}, s.err
	}
	feature, ok := s.features[key]
	if !ok {
		return domain.SiteFeature{}, repositories.ErrFeatureUnknown
	}
	return feature, nil
}

func (s *stubFeatureRepo) List(ctx context.Context) ([]domain.SiteFeature, error) {
	var out []domain.SiteFeature
	for _, f := range s.features {
		out = append(out, f)
	}
	return out, nil
}

func (s *stubFeatureRepo) Upsert(ctx context.Context, feature domain.SiteFeature) error {
	if s.err != nil {
		return s.err
	}
	if s.features == nil {
		s.features = map[string]domain.SiteFeature{}
	}
	s.features[feature.Key] = feature
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestFeatureService(t *testing.T, repo *stubFeatureRepo, clock *fakeClock) FeatureService {
	t.Helper()
	svc, err := NewFeatureService(FeatureServiceDeps{
		Features: repo,
		TTL:      60 * time.Second,
		Clock:    clock.Now,
	})
	if err != nil {
		t.Fatalf("NewFeatureService: %v", err)
	}
	return svc
}

func TestGet_CachesForTTL(t *testing.T) {
	repo := &stubFeatureRepo{features: map[string]domain.SiteFeature{
		"wishlist": {Key: "wishlist", Enabled: true},
	}}
	clock := &fakeClock{now: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)}
	svc := newTestFeatureService(t, repo, clock)

	for i := 0; i < 5; i++ {
		feature, err := svc.Get(context.Background(), "wishlist")
		if err != nil || !feature.Enabled {
			t.Fatalf("Get: %+v, %v", feature, err)
		}
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected a single backend read within the TTL, got %d", repo.getCalls)
	}

	clock.Advance(61 * time.Second)
	if _, err := svc.Get(context.Background(), "wishlist"); err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if repo.getCalls != 2 {
		t.Fatalf("expected refresh after expiry, got %d calls", repo.getCalls)
	}
}

func TestGet_MissingRowDegradesToDisabled(t *testing.T) {
	repo := &stubFeatureRepo{}
	clock := &fakeClock{now: time.Now()}
	svc := newTestFeatureService(t, repo, clock)

	feature, err := svc.Get(context.Background(), "gift-wrap")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if feature.Enabled || feature.Key != "gift-wrap" {
		t.Fatalf("expected disabled default, got %+v", feature)
	}
	if svc.IsEnabled(context.Background(), "gift-wrap") {
		t.Fatal("missing feature must read as off")
	}
}

func TestGet_BackendFailureServesStale(t *testing.T) {
	repo := &stubFeatureRepo{features: map[string]domain.SiteFeature{
		"wishlist": {Key: "wishlist", Enabled: true},
	}}
	clock := &fakeClock{now: time.Now()}
	svc := newTestFeatureService(t, repo, clock)

	if !svc.IsEnabled(context.Background(), "wishlist") {
		t.Fatal("warm-up read failed")
	}

	repo.err = errors.New("backend down")
	clock.Advance(2 * time.Minute)

	feature, err := svc.Get(context.Background(), "wishlist")
	if err != nil {
		t.Fatalf("Get should serve stale, got %v", err)
	}
	if !feature.Enabled {
		t.Fatal("stale enabled flag should survive a failed refresh")
	}
}

func TestGet_BackendFailureWithoutCacheReadsOff(t *testing.T) {
	repo := &stubFeatureRepo{err: errors.New("backend down")}
	clock := &fakeClock{now: time.Now()}
	svc := newTestFeatureService(t, repo, clock)

	feature, err := svc.Get(context.Background(), "wishlist")
	if err != nil {
		t.Fatalf("Get should degrade, got %v", err)
	}
	if feature.Enabled {
		t.Fatal("cold failure must read as disabled")
	}
}

// blockingFeatureRepo holds the fetch of one key open so a test can observe
// what other keys do in the meantime.
type blockingFeatureRepo struct {
	stubFeatureRepo
	slowKey      string
	fetchStarted chan struct{}
	release      chan struct{}
}

func (b *blockingFeatureRepo) Get(ctx context.Context, key string) (domain.SiteFeature, error) {
	if key == b.slowKey {
		b.fetchStarted <- struct{}{}
		<-b.release
	}
	return b.stubFeatureRepo.Get(ctx, key)
}

func TestGet_SlowRefreshDoesNotBlockOtherKeys(t *testing.T) {
	repo := &blockingFeatureRepo{
		stubFeatureRepo: stubFeatureRepo{features: map[string]domain.SiteFeature{
			"search":   {Key: "search", Enabled: true},
			"wishlist": {Key: "wishlist", Enabled: true},
		}},
		slowKey:      "search",
		fetchStarted: make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	clock := &fakeClock{now: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)}
	svc, err := NewFeatureService(FeatureServiceDeps{Features: repo, TTL: 60 * time.Second, Clock: clock.Now})
	if err != nil {
		t.Fatalf("NewFeatureService: %v", err)
	}

	slowDone := make(chan struct{})
	go func() {
		_, _ = svc.Get(context.Background(), "search")
		close(slowDone)
	}()

	select {
	case <-repo.fetchStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("slow fetch never reached the repository")
	}

	fastDone := make(chan domain.SiteFeature, 1)
	go func() {
		feature, _ := svc.Get(context.Background(), "wishlist")
		fastDone <- feature
	}()
	select {
	case feature := <-fastDone:
		if !feature.Enabled {
			t.Fatalf("unexpected flag %+v", feature)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("a slow refresh of one flag must not block reads of another")
	}

	close(repo.release)
	<-slowDone
}

func TestUpsert_RefreshesCache(t *testing.T) {
	repo := &stubFeatureRepo{}
	clock := &fakeClock{now: time.Now()}
	svc := newTestFeatureService(t, repo, clock)

	if err := svc.Upsert(context.Background(), domain.SiteFeature{Key: "wishlist", Enabled: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	calls := repo.getCalls
	if !svc.IsEnabled(context.Background(), "wishlist") {
		t.Fatal("upserted flag should be enabled")
	}
	if repo.getCalls != calls {
		t.Fatal("read after upsert should come from cache")
	}

	svc.Invalidate("wishlist")
	_ = svc.IsEnabled(context.Background(), "wishlist")
	if repo.getCalls != calls+1 {
		t.Fatal("invalidate should force a backend read")
	}
}
