package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/platform/requestctx"
	"github.com/velours-paris/api/internal/repositories"
)

// SettingsServiceDeps bundles constructor inputs for the settings service.
type SettingsServiceDeps struct {
	Settings repositories.SiteSettingsRepository

	// ComingSoonDefaults is the compiled-in baseline; persisted overrides
	// are merged over it field by field.
	ComingSoonDefaults domain.ComingSoonConfig
}

type settingsService struct {
	repo     repositories.SiteSettingsRepository
	defaults domain.ComingSoonConfig
}

var (
	// ErrSettingsRepositoryMissing indicates the repository dependency is absent.
	ErrSettingsRepositoryMissing = errors.New("settings service: repository is not configured")
	// ErrSettingsInvalidInput indicates an invalid settings submission.
	ErrSettingsInvalidInput = errors.New("settings service: invalid input")
)

// NewSettingsService constructs the settings service with the supplied dependencies.
func NewSettingsService(deps SettingsServiceDeps) (SettingsService, error) {
	if deps.Settings == nil {
		return nil, fmt.Errorf("settings service: settings repository is required")
	}
	return &settingsService{
		repo:     deps.Settings,
		defaults: deps.ComingSoonDefaults,
	}, nil
}

// ComingSoon returns the effective launch-gate configuration: persisted
// override fields win, absent fields keep the compiled-in defaults. A failed
// read degrades to the defaults with the gate forced off so a backend outage
// can never lock shoppers out.
func (s *settingsService) ComingSoon(ctx context.Context) (domain.ComingSoonConfig, error) {
	override, err := s.repo.GetComingSoonOverride(ctx)
	if err != nil {
		requestctx.Logger(ctx).Warn("coming-soon settings fetch failed, gate stays open", zap.Error(err))
		open := s.defaults
		open.Enabled = false
		return open, nil
	}
	return domain.MergeComingSoon(s.defaults, override), nil
}

// SaveComingSoonOverride persists the admin-edited override document.
func (s *settingsService) SaveComingSoonOverride(ctx context.Context, override domain.ComingSoonOverride) error {
	if override.MessageFR != nil && strings.TrimSpace(*override.MessageFR) == "" {
		return fmt.Errorf("%w: French launch message cannot be blank", ErrSettingsInvalidInput)
	}
	return s.repo.SaveComingSoonOverride(ctx, override)
}

// FontScale returns the normalized typography factor. A failed read or an
// out-of-range stored value degrades to the default factor.
func (s *settingsService) FontScale(ctx context.Context) (domain.FontScaleConfig, error) {
	cfg, err := s.repo.GetFontScale(ctx)
	if err != nil {
		requestctx.Logger(ctx).Warn("font scale fetch failed, using default", zap.Error(err))
		return domain.FontScaleConfig{Factor: domain.DefaultFontScale}, nil
	}
	return cfg.Normalize(), nil
}

// SaveFontScale persists a validated factor.
func (s *settingsService) SaveFontScale(ctx context.Context, cfg domain.FontScaleConfig) error {
	if cfg.Factor <= 0 || cfg.Factor > 3 {
		return fmt.Errorf("%w: font scale factor %v out of range (0, 3]", ErrSettingsInvalidInput, cfg.Factor)
	}
	return s.repo.SaveFontScale(ctx, cfg)
}
