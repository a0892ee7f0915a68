package domain

import (
	"time"
)

// Language enumerates the storefront display languages.
type Language string

const (
	// LanguageFrench is the default storefront language.
	LanguageFrench Language = "fr"
	// LanguageEnglish is the secondary storefront language.
	LanguageEnglish Language = "en"
)

// DefaultLanguage is used whenever a request carries no usable language tag.
const DefaultLanguage = LanguageFrench

// SupportedLanguages lists the languages the storefront can render.
func SupportedLanguages() []Language {
	return []Language{LanguageFrench, LanguageEnglish}
}

// ParseLanguage normalises a raw tag to a supported language, falling back to the default.
func ParseLanguage(raw string) Language {
	switch raw {
	case string(LanguageFrench), "fr-FR", "fr-CA":
		return LanguageFrench
	case string(LanguageEnglish), "en-US", "en-GB", "en-CA":
		return LanguageEnglish
	default:
		return DefaultLanguage
	}
}

// CategoryGroup is a top-level navigation grouping for the catalog.
type CategoryGroup struct {
	ID        string
	Slug      string
	NameFR    string
	NameEN    string
	SortOrder int
	IsActive  bool
}

// Category belongs to exactly one group, referenced by key.
type Category struct {
	ID        string
	GroupID   string
	Slug      string
	NameFR    string
	NameEN    string
	SortOrder int
	IsActive  bool
}

// Name resolves the localized display name with cross-language fallback.
func (g CategoryGroup) Name(lang Language) string {
	return localizedName(lang, g.NameFR, g.NameEN)
}

// Name resolves the localized display name with cross-language fallback.
func (c Category) Name(lang Language) string {
	return localizedName(lang, c.NameFR, c.NameEN)
}

func localizedName(lang Language, fr, en string) string {
	if lang == LanguageEnglish {
		if en != "" {
			return en
		}
		return fr
	}
	if fr != "" {
		return fr
	}
	return en
}

// GroupWithCategories is the joined navigation view served to clients.
type GroupWithCategories struct {
	Group      CategoryGroup
	Categories []Category
}

// WishlistEntry marks a product as wished by a user. Existence is membership.
type WishlistEntry struct {
	UserID    string
	ProductID string
	AddedAt   time.Time
}

// SiteFeature is a keyed feature flag with free-form configuration.
type SiteFeature struct {
	Key     string
	Enabled bool
	Config  map[string]any
}

// DisabledFeature is the value an absent feature row degrades to.
func DisabledFeature(key string) SiteFeature {
	return SiteFeature{Key: key, Enabled: false, Config: map[string]any{}}
}

// ComingSoonConfig gates the public storefront behind a launch page.
type ComingSoonConfig struct {
	Enabled       bool      `json:"enabled"`
	CountdownDate time.Time `json:"countdown_date"`
	MessageFR     string    `json:"message_fr"`
	MessageEN     string    `json:"message_en"`
	YoutubeIDs    []string  `json:"youtube_ids"`
	Images        []string  `json:"images"`
}

// Message resolves the localized launch message.
func (c ComingSoonConfig) Message(lang Language) string {
	return localizedName(lang, c.MessageFR, c.MessageEN)
}

// ComingSoonOverride carries the persisted per-field overrides for the
// coming-soon configuration. Nil fields keep the hardcoded default.
type ComingSoonOverride struct {
	Enabled       *bool      `json:"enabled,omitempty"`
	CountdownDate *time.Time `json:"countdown_date,omitempty"`
	MessageFR     *string    `json:"message_fr,omitempty"`
	MessageEN     *string    `json:"message_en,omitempty"`
	YoutubeIDs    []string   `json:"youtube_ids,omitempty"`
	Images        []string   `json:"images,omitempty"`
}

// MergeComingSoon applies the persisted override field-by-field over the
// defaults. Persisted fields win; absent fields keep the default value.
func MergeComingSoon(defaults ComingSoonConfig, override ComingSoonOverride) ComingSoonConfig {
	merged := defaults
	if override.Enabled != nil {
		merged.Enabled = *override.Enabled
	}
	if override.CountdownDate != nil {
		merged.CountdownDate = *override.CountdownDate
	}
	if override.MessageFR != nil {
		merged.MessageFR = *override.MessageFR
	}
	if override.MessageEN != nil {
		merged.MessageEN = *override.MessageEN
	}
	if override.YoutubeIDs != nil {
		merged.YoutubeIDs = append([]string(nil), override.YoutubeIDs...)
	}
	if override.Images != nil {
		merged.Images = append([]string(nil), override.Images...)
	}
	return merged
}

// FontScaleConfig adjusts storefront typography globally.
type FontScaleConfig struct {
	Factor float64 `json:"factor"`
}

// DefaultFontScale is applied when no persisted value exists or the stored
// factor is not a positive number.
const DefaultFontScale = 1.0

// Normalize clamps the factor to a sane positive value.
func (c FontScaleConfig) Normalize() FontScaleConfig {
	if c.Factor <= 0 {
		c.Factor = DefaultFontScale
	}
	return c
}

// ContentBlock is an admin-authored piece of marketing copy keyed by page and slug.
type ContentBlock struct {
	ID        string
	Page      string
	Slug      string
	BodyFR    string
	BodyEN    string
	Format    string // "richtext" or "markdown"
	UpdatedAt time.Time
	UpdatedBy string
}

// Body resolves the localized body with cross-language fallback.
func (b ContentBlock) Body(lang Language) string {
	return localizedName(lang, b.BodyFR, b.BodyEN)
}
