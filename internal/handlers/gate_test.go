package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/i18n"
	"github.com/velours-paris/api/internal/platform/auth"
)

type stubSettingsService struct {
	comingSoon domain.ComingSoonConfig
	err        error
	saveErr    error
	fontScale  domain.FontScaleConfig

	savedOverride *domain.ComingSoonOverride
	savedFont     *domain.FontScaleConfig
}

func (s *stubSettingsService) ComingSoon(ctx context.Context) (domain.ComingSoonConfig, error) {
	if s.err != nil {
		// Mirrors the real service contract: degrade to gate-off.
		return domain.ComingSoonConfig{}, nil
	}
	return s.comingSoon, nil
}

func (s *stubSettingsService) SaveComingSoonOverride(ctx context.Context, override domain.ComingSoonOverride) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedOverride = &override
	return nil
}

func (s *stubSettingsService) FontScale(ctx context.Context) (domain.FontScaleConfig, error) {
	return s.fontScale.Normalize(), nil
}

func (s *stubSettingsService) SaveFontScale(ctx context.Context, cfg domain.FontScaleConfig) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedFont = &cfg
	return nil
}

func gateBundle() *i18n.Bundle {
	return i18n.NewBundle(map[domain.Language]map[string]string{}, domain.LanguageFrench)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestComingSoonGate_BlocksShoppers(t *testing.T) {
	settings := &stubSettingsService{comingSoon: domain.ComingSoonConfig{
		Enabled:   true,
		MessageFR: "Bientôt disponible",
		MessageEN: "Coming soon",
	}}
	gate := ComingSoonGate(settings, gateBundle())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body["status"] != "coming_soon" || body["message"] != "Bientôt disponible" {
		t.Fatalf("unexpected payload %v", body)
	}
}

func TestComingSoonGate_LocalizesMessage(t *testing.T) {
	settings := &stubSettingsService{comingSoon: domain.ComingSoonConfig{
		Enabled:   true,
		MessageFR: "Bientôt disponible",
		MessageEN: "Coming soon",
	}}
	gate := ComingSoonGate(settings, gateBundle())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-GB")
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Coming soon" {
		t.Fatalf("expected English message, got %v", body["message"])
	}
}

func TestComingSoonGate_LangParamBeatsHeader(t *testing.T) {
	settings := &stubSettingsService{comingSoon: domain.ComingSoonConfig{
		Enabled:   true,
		MessageFR: "Bientôt disponible",
		MessageEN: "Coming soon",
	}}
	gate := ComingSoonGate(settings, gateBundle())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "fr-FR")
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Coming soon" {
		t.Fatalf("explicit lang should win over the header, got %v", body["message"])
	}
}

func TestComingSoonGate_AdminBypass(t *testing.T) {
	settings := &stubSettingsService{comingSoon: domain.ComingSoonConfig{Enabled: true}}
	gate := ComingSoonGate(settings, gateBundle())(okHandler())

	admin := &auth.Identity{UID: "a-1", Roles: []string{auth.RoleAdmin}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), admin))
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("admin should pass the gate, got %d", rec.Code)
	}
}

func TestComingSoonGate_DisabledOrFailingStaysOpen(t *testing.T) {
	for _, settings := range []*stubSettingsService{
		{comingSoon: domain.ComingSoonConfig{Enabled: false}},
		{err: errors.New("backend down")},
	} {
		gate := ComingSoonGate(settings, gateBundle())(okHandler())
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("gate should stay open, got %d", rec.Code)
		}
	}
}
