package i18n

import (
	"testing"

	"github.com/velours-paris/api/internal/domain"
)

func testBundle() *Bundle {
	return NewBundle(map[domain.Language]map[string]string{
		domain.LanguageFrench: {
			"nav.home":      "Accueil",
			"cart.items":    "{count} articles",
			"footer.notice": "Tous droits réservés",
		},
		domain.LanguageEnglish: {
			"nav.home":   "Home",
			"cart.items": "{count} items",
		},
	}, domain.LanguageFrench)
}

func TestT_ResolvesActiveLanguage(t *testing.T) {
	b := testBundle()
	if got := b.T(domain.LanguageEnglish, "nav.home", nil); got != "Home" {
		t.Fatalf("expected Home, got %q", got)
	}
	if got := b.T(domain.LanguageFrench, "nav.home", nil); got != "Accueil" {
		t.Fatalf("expected Accueil, got %q", got)
	}
}

func TestT_FallsBackToDefaultThenKey(t *testing.T) {
	b := testBundle()
	// Key only present in the fallback language.
	if got := b.T(domain.LanguageEnglish, "footer.notice", nil); got != "Tous droits réservés" {
		t.Fatalf("expected fallback value, got %q", got)
	}
	// Unknown key resolves to itself, never empty.
	if got := b.T(domain.LanguageEnglish, "missing.key", nil); got != "missing.key" {
		t.Fatalf("expected key passthrough, got %q", got)
	}
}

func TestT_Interpolation(t *testing.T) {
	b := testBundle()
	got := b.T(domain.LanguageEnglish, "cart.items", map[string]string{"count": "3"})
	if got != "3 items" {
		t.Fatalf("expected interpolated string, got %q", got)
	}
}

func TestT_LanguageSwitchRoundTrip(t *testing.T) {
	b := testBundle()
	before := b.T(domain.LanguageFrench, "nav.home", nil)
	_ = b.T(domain.LanguageEnglish, "nav.home", nil)
	after := b.T(domain.LanguageFrench, "nav.home", nil)
	if before != after {
		t.Fatalf("language switch not idempotent: %q vs %q", before, after)
	}
}

func TestResolve_AcceptLanguage(t *testing.T) {
	b := testBundle()
	if got := b.Resolve("en-GB,en;q=0.9,fr;q=0.8"); got != domain.LanguageEnglish {
		t.Fatalf("expected en, got %s", got)
	}
	if got := b.Resolve("de-DE,de;q=0.9"); got != domain.LanguageFrench {
		t.Fatalf("expected fr fallback, got %s", got)
	}
	if got := b.Resolve(""); got != domain.LanguageFrench {
		t.Fatalf("expected fr for empty header, got %s", got)
	}
}
