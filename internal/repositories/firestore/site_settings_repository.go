package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/velours-paris/api/internal/domain"
	pfirestore "github.com/velours-paris/api/internal/platform/firestore"
	"github.com/velours-paris/api/internal/repositories"
)

const (
	settingsCollection = "siteSettings"
	comingSoonDoc      = "comingSoon"
	fontScaleDoc       = "fontScale"
)

// SiteSettingsRepository persists singleton storefront settings documents.
type SiteSettingsRepository struct {
	provider *pfirestore.Provider
}

// NewSiteSettingsRepository constructs a Firestore-backed settings repository.
func NewSiteSettingsRepository(provider *pfirestore.Provider) (*SiteSettingsRepository, error) {
	if provider == nil {
		return nil, errors.New("site settings repository requires firestore provider")
	}
	return &SiteSettingsRepository{provider: provider}, nil
}

// GetComingSoonOverride returns the persisted coming-soon override. An absent
// document is an empty override, which keeps every default.
func (r *SiteSettingsRepository) GetComingSoonOverride(ctx context.Context) (domain.ComingSoonOverride, error) {
	client, err := r.client(ctx)
	if err != nil {
		return domain.ComingSoonOverride{}, err
	}

	snap, err := client.Collection(settingsCollection).Doc(comingSoonDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ComingSoonOverride{}, nil
		}
		return domain.ComingSoonOverride{}, pfirestore.WrapError("settings.getComingSoon", err)
	}

	var doc comingSoonDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.ComingSoonOverride{}, fmt.Errorf("decode coming-soon settings: %w", err)
	}
	return doc.toDomain(), nil
}

// SaveComingSoonOverride replaces the persisted override document.
func (r *SiteSettingsRepository) SaveComingSoonOverride(ctx context.Context, override domain.ComingSoonOverride) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	doc := comingSoonDocument{
		Enabled:       override.Enabled,
		CountdownDate: override.CountdownDate,
		MessageFR:     override.MessageFR,
		MessageEN:     override.MessageEN,
		YoutubeIDs:    override.YoutubeIDs,
		Images:        override.Images,
	}
	if _, err := client.Collection(settingsCollection).Doc(comingSoonDoc).Set(ctx, doc); err != nil {
		return pfirestore.WrapError("settings.saveComingSoon", err)
	}
	return nil
}

// GetFontScale returns the persisted font scale. An absent document yields
// the zero config, which normalizes to the default factor.
func (r *SiteSettingsRepository) GetFontScale(ctx context.Context) (domain.FontScaleConfig, error) {
	client, err := r.client(ctx)
	if err != nil {
		return domain.FontScaleConfig{}, err
	}

	snap, err := client.Collection(settingsCollection).Doc(fontScaleDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.FontScaleConfig{}, nil
		}
		return domain.FontScaleConfig{}, pfirestore.WrapError("settings.getFontScale", err)
	}

	var doc fontScaleDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.FontScaleConfig{}, fmt.Errorf("decode font scale settings: %w", err)
	}
	return domain.FontScaleConfig{Factor: doc.Factor}, nil
}

// SaveFontScale replaces the persisted font scale document.
func (r *SiteSettingsRepository) SaveFontScale(ctx context.Context, cfg domain.FontScaleConfig) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Collection(settingsCollection).Doc(fontScaleDoc).Set(ctx, fontScaleDocument{Factor: cfg.Factor}); err != nil {
		return pfirestore.WrapError("settings.saveFontScale", err)
	}
	return nil
}

func (r *SiteSettingsRepository) client(ctx context.Context) (*firestore.Client, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("site settings repository not initialised")
	}
	return r.provider.Client(ctx)
}

type comingSoonDocument struct {
	Enabled       *bool      `firestore:"enabled"`
	CountdownDate *time.Time `firestore:"countdownDate"`
	MessageFR     *string    `firestore:"messageFr"`
	MessageEN     *string    `firestore:"messageEn"`
	YoutubeIDs    []string   `firestore:"youtubeIds"`
	Images        []string   `firestore:"images"`
}

func (d comingSoonDocument) toDomain() domain.ComingSoonOverride {
	return domain.ComingSoonOverride{
		Enabled:       d.Enabled,
		CountdownDate: d.CountdownDate,
		MessageFR:     d.MessageFR,
		MessageEN:     d.MessageEN,
		YoutubeIDs:    d.YoutubeIDs,
		Images:        d.Images,
	}
}

type fontScaleDocument struct {
	Factor float64 `firestore:"factor"`
}

// Ensure interface compliance.
var _ repositories.SiteSettingsRepository = (*SiteSettingsRepository)(nil)
