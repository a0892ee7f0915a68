package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/velours-paris/api/internal/domain"
)

type stubSettingsRepo struct {
	override    domain.ComingSoonOverride
	overrideErr error
	fontScale   domain.FontScaleConfig
	fontErr     error

	savedOverride *domain.ComingSoonOverride
	savedFont     *domain.FontScaleConfig
}

func (s *stubSettingsRepo) GetComingSoonOverride(ctx context.Context) (domain.ComingSoonOverride, error) {
	return s.override, s.overrideErr
}

func (s *stubSettingsRepo) SaveComingSoonOverride(ctx context.Context, override domain.ComingSoonOverride) error {
	s.savedOverride = &override
	return nil
}

func (s *stubSettingsRepo) GetFontScale(ctx context.Context) (domain.FontScaleConfig, error) {
	return s.fontScale, s.fontErr
}

func (s *stubSettingsRepo) SaveFontScale(ctx context.Context, cfg domain.FontScaleConfig) error {
	s.savedFont = &cfg
	return nil
}

func launchDefaults() domain.ComingSoonConfig {
	return domain.ComingSoonConfig{
		Enabled:       true,
		CountdownDate: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		MessageFR:     "Bientôt disponible",
		MessageEN:     "Coming soon",
		YoutubeIDs:    []string{"teaser-1"},
	}
}

func newTestSettingsService(t *testing.T, repo *stubSettingsRepo) SettingsService {
	t.Helper()
	svc, err := NewSettingsService(SettingsServiceDeps{
		Settings:           repo,
		ComingSoonDefaults: launchDefaults(),
	})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}
	return svc
}

func TestComingSoon_MergesOverride(t *testing.T) {
	message := "Ouverture le 1er mars"
	disabled := false
	repo := &stubSettingsRepo{override: domain.ComingSoonOverride{
		MessageFR: &message,
		Enabled:   &disabled,
	}}
	svc := newTestSettingsService(t, repo)

	cfg, err := svc.ComingSoon(context.Background())
	if err != nil {
		t.Fatalf("ComingSoon: %v", err)
	}
	if cfg.Enabled {
		t.Fatal("persisted enabled=false must win")
	}
	if cfg.MessageFR != message {
		t.Fatalf("persisted message must win, got %q", cfg.MessageFR)
	}
	// Fields without an override keep the defaults.
	if cfg.MessageEN != "Coming soon" || len(cfg.YoutubeIDs) != 1 {
		t.Fatalf("defaults lost in merge: %+v", cfg)
	}
}

func TestComingSoon_FetchFailureOpensGate(t *testing.T) {
	repo := &stubSettingsRepo{overrideErr: errors.New("backend down")}
	svc := newTestSettingsService(t, repo)

	cfg, err := svc.ComingSoon(context.Background())
	if err != nil {
		t.Fatalf("ComingSoon should degrade, got %v", err)
	}
	if cfg.Enabled {
		t.Fatal("a failed settings read must never lock shoppers out")
	}
}

func TestSaveComingSoonOverride_RejectsBlankFrenchMessage(t *testing.T) {
	repo := &stubSettingsRepo{}
	svc := newTestSettingsService(t, repo)

	blank := "   "
	if err := svc.SaveComingSoonOverride(context.Background(), domain.ComingSoonOverride{MessageFR: &blank}); err == nil {
		t.Fatal("expected error for blank French message")
	}
	if repo.savedOverride != nil {
		t.Fatal("invalid override must not be persisted")
	}
}

func TestFontScale_NormalizesAndDegrades(t *testing.T) {
	repo := &stubSettingsRepo{fontScale: domain.FontScaleConfig{Factor: 1.2}}
	svc := newTestSettingsService(t, repo)

	cfg, err := svc.FontScale(context.Background())
	if err != nil || cfg.Factor != 1.2 {
		t.Fatalf("FontScale = %+v, %v", cfg, err)
	}

	repo.fontScale = domain.FontScaleConfig{Factor: -2}
	cfg, _ = svc.FontScale(context.Background())
	if cfg.Factor != domain.DefaultFontScale {
		t.Fatalf("invalid stored factor should normalize, got %v", cfg.Factor)
	}

	repo.fontErr = errors.New("backend down")
	cfg, err = svc.FontScale(context.Background())
	if err != nil || cfg.Factor != domain.DefaultFontScale {
		t.Fatalf("failed read should degrade to default, got %+v, %v", cfg, err)
	}
}

func TestSaveFontScale_Range(t *testing.T) {
	repo := &stubSettingsRepo{}
	svc := newTestSettingsService(t, repo)

	if err := svc.SaveFontScale(context.Background(), domain.FontScaleConfig{Factor: 5}); err == nil {
		t.Fatal("expected range error")
	}
	if err := svc.SaveFontScale(context.Background(), domain.FontScaleConfig{Factor: 1.1}); err != nil {
		t.Fatalf("SaveFontScale: %v", err)
	}
	if repo.savedFont == nil || repo.savedFont.Factor != 1.1 {
		t.Fatalf("expected saved factor, got %+v", repo.savedFont)
	}
}
