package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/velours-paris/api/internal/domain"
	pfirestore "github.com/velours-paris/api/internal/platform/firestore"
	"github.com/velours-paris/api/internal/repositories"
)

const featureCollection = "siteFeatures"

// SiteFeatureRepository reads and writes keyed feature flags in Firestore.
type SiteFeatureRepository struct {
	provider *pfirestore.Provider
}

// NewSiteFeatureRepository constructs a Firestore-backed feature repository.
func NewSiteFeatureRepository(provider *pfirestore.Provider) (*SiteFeatureRepository, error) {
	if provider == nil {
		return nil, errors.New("site feature repository requires firestore provider")
	}
	return &SiteFeatureRepository{provider: provider}, nil
}

// Get returns the stored flag for key. A missing row maps to ErrFeatureUnknown.
func (r *SiteFeatureRepository) Get(ctx context.Context, key string) (domain.SiteFeature, error) {
	client, err := r.client(ctx)
	if err != nil {
		return domain.SiteFeature{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.SiteFeature{}, errors.New("site feature repository: key is required")
	}

	snap, err := client.Collection(featureCollection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.SiteFeature{}, repositories.ErrFeatureUnknown
		}
		return domain.SiteFeature{}, pfirestore.WrapError("features.get", err)
	}
	return decodeFeature(snap)
}

// List returns every stored feature flag.
func (r *SiteFeatureRepository) List(ctx context.Context) ([]domain.SiteFeature, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	iter := client.Collection(featureCollection).Documents(ctx)
	defer iter.Stop()

	var features []domain.SiteFeature
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("features.list", err)
		}
		feature, err := decodeFeature(snap)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}
	return features, nil
}

// Upsert stores the flag keyed by its feature key.
func (r *SiteFeatureRepository) Upsert(ctx context.Context, feature domain.SiteFeature) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	key := strings.TrimSpace(feature.Key)
	if key == "" {
		return errors.New("site feature repository: key is required")
	}
	doc := featureDocument{
		Enabled: feature.Enabled,
		Config:  feature.Config,
	}
	if _, err := client.Collection(featureCollection).Doc(key).Set(ctx, doc); err != nil {
		return pfirestore.WrapError("features.upsert", err)
	}
	return nil
}

func (r *SiteFeatureRepository) client(ctx context.Context) (*firestore.Client, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("site feature repository not initialised")
	}
	return r.provider.Client(ctx)
}

func decodeFeature(snap *firestore.DocumentSnapshot) (domain.SiteFeature, error) {
	var doc featureDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.SiteFeature{}, fmt.Errorf("decode site feature %s: %w", snap.Ref.ID, err)
	}
	if doc.Config == nil {
		doc.Config = map[string]any{}
	}
	return domain.SiteFeature{
		Key:     snap.Ref.ID,
		Enabled: doc.Enabled,
		Config:  doc.Config,
	}, nil
}

type featureDocument struct {
	Enabled bool           `firestore:"enabled"`
	Config  map[string]any `firestore:"config"`
}

// Ensure interface compliance.
var _ repositories.SiteFeatureRepository = (*SiteFeatureRepository)(nil)
