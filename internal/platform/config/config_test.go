package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"STOREFRONT_FIREBASE_PROJECT_ID": "velours-prod",
		}),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Firestore.ProjectID != "velours-prod" {
		t.Fatalf("firestore project should default to firebase project, got %q", cfg.Firestore.ProjectID)
	}
	if cfg.Features.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected feature cache ttl %v", cfg.Features.CacheTTL)
	}
	if cfg.I18n.DefaultLanguage != "fr" {
		t.Fatalf("unexpected default language %q", cfg.I18n.DefaultLanguage)
	}
	if cfg.Catalog.DefaultCurrency != "EUR" {
		t.Fatalf("unexpected default currency %q", cfg.Catalog.DefaultCurrency)
	}
}

func TestLoad_CatalogMaps(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"STOREFRONT_FIREBASE_PROJECT_ID":       "velours-prod",
			"STOREFRONT_CATALOG_CURRENCY_RATES":    "usd=1.09,gbp=0.86,cad=1.47",
			"STOREFRONT_CATALOG_CURRENCY_SYMBOLS":  "usd=$,gbp=£",
			"STOREFRONT_CATALOG_DEFAULT_CURRENCY":  "eur",
			"STOREFRONT_FEATURE_CACHE_TTL":         "90s",
			"STOREFRONT_SERVER_READ_TIMEOUT":       "5s",
			"STOREFRONT_FIRESTORE_EMULATOR_HOST":   "localhost:8790",
			"STOREFRONT_I18N_DEFAULT_LANGUAGE":     "FR",
			"STOREFRONT_I18N_TRANSLATIONS_DIR":     "assets/i18n",
			"STOREFRONT_FIREBASE_CREDENTIALS_FILE": "/etc/velours/sa.json",
		}),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Catalog.Rates["USD"] != 1.09 || cfg.Catalog.Rates["CAD"] != 1.47 {
		t.Fatalf("unexpected rates %v", cfg.Catalog.Rates)
	}
	if cfg.Catalog.Symbols["GBP"] != "£" {
		t.Fatalf("unexpected symbols %v", cfg.Catalog.Symbols)
	}
	if cfg.Catalog.DefaultCurrency != "EUR" {
		t.Fatalf("currency code should be upper-cased, got %q", cfg.Catalog.DefaultCurrency)
	}
	if cfg.Features.CacheTTL != 90*time.Second {
		t.Fatalf("unexpected ttl %v", cfg.Features.CacheTTL)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.I18n.DefaultLanguage != "fr" {
		t.Fatalf("language should be lower-cased, got %q", cfg.I18n.DefaultLanguage)
	}
}

func TestLoad_MissingProjectFails(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	found := false
	for _, field := range verr.Fields() {
		if field == "Firebase.ProjectID" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Firebase.ProjectID in %v", verr.Fields())
	}
}

func TestLoad_RejectsNonPositiveRate(t *testing.T) {
	_, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"STOREFRONT_FIREBASE_PROJECT_ID":    "velours-prod",
			"STOREFRONT_CATALOG_CURRENCY_RATES": "usd=-1",
		}),
	)
	if err == nil {
		t.Fatal("expected validation error for negative rate")
	}
}
