package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/velours-paris/api/internal/domain"
)

// Bundle holds per-language translation dictionaries with fallback resolution.
type Bundle struct {
	dict     map[domain.Language]map[string]string
	fallback domain.Language
	matcher  language.Matcher
	tags     []language.Tag
}

// Load reads one JSON dictionary per supported language from dir. A missing
// file is tolerated for non-default languages; the fallback dictionary must load.
func Load(dir string, fallback domain.Language) (*Bundle, error) {
	if fallback == "" {
		fallback = domain.DefaultLanguage
	}

	b := &Bundle{
		dict:     map[domain.Language]map[string]string{},
		fallback: fallback,
	}

	for _, lang := range domain.SupportedLanguages() {
		tag, err := language.Parse(string(lang))
		if err != nil {
			return nil, fmt.Errorf("i18n: parse language tag %s: %w", lang, err)
		}
		b.tags = append(b.tags, tag)

		raw, err := os.ReadFile(filepath.Join(dir, string(lang)+".json"))
		if err != nil {
			if lang == fallback {
				return nil, fmt.Errorf("i18n: load dictionary %s: %w", lang, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal dictionary %s: %w", lang, err)
		}
		b.dict[lang] = m
	}

	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback dictionary %s not loaded", fallback)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// NewBundle builds a bundle from in-memory dictionaries. Used by tests and
// by callers that embed their translations.
func NewBundle(dict map[domain.Language]map[string]string, fallback domain.Language) *Bundle {
	if fallback == "" {
		fallback = domain.DefaultLanguage
	}
	tags := make([]language.Tag, 0, len(domain.SupportedLanguages()))
	for _, lang := range domain.SupportedLanguages() {
		if tag, err := language.Parse(string(lang)); err == nil {
			tags = append(tags, tag)
		}
	}
	if dict == nil {
		dict = map[domain.Language]map[string]string{}
	}
	return &Bundle{
		dict:     dict,
		fallback: fallback,
		matcher:  language.NewMatcher(tags),
		tags:     tags,
	}
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() domain.Language { return b.fallback }

// Supported lists the languages with a loaded dictionary, sorted.
func (b *Bundle) Supported() []domain.Language {
	out := make([]domain.Language, 0, len(b.dict))
	for lang := range b.dict {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// T resolves key in lang with named {param} interpolation. Resolution order:
// requested language, fallback language, then the key itself. T never fails
// and never returns empty for a non-empty key.
func (b *Bundle) T(lang domain.Language, key string, params map[string]string) string {
	template := key
	if m, ok := b.dict[lang]; ok {
		if v, ok := m[key]; ok {
			template = v
		} else if m, ok := b.dict[b.fallback]; ok {
			if v, ok := m[key]; ok {
				template = v
			}
		}
	} else if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			template = v
		}
	}
	return interpolate(template, params)
}

// Resolve picks the best supported language for an Accept-Language header,
// defaulting to the bundle fallback.
func (b *Bundle) Resolve(acceptLanguage string) domain.Language {
	if strings.TrimSpace(acceptLanguage) == "" || b.matcher == nil {
		return b.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, index, conf := b.matcher.Match(tags...)
	if conf == language.No || index >= len(b.tags) {
		return b.fallback
	}
	base, _ := b.tags[index].Base()
	return domain.ParseLanguage(base.String())
}

func interpolate(template string, params map[string]string) string {
	if len(params) == 0 || !strings.ContainsRune(template, '{') {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
