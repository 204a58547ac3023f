package models

import "github.com/google/uuid"

// Translation is a supported locale. At most one available translation
// should carry DefaultTranslation; the services enforce it.
type Translation struct {
	ID                 uuid.UUID
	Name               string
	Locale             string
	OverrideLocale     *string
	DefaultTranslation bool
	Available          bool
	Timestamps
}

// PreferredLocale returns the override locale when set, the locale otherwise.
func (t *Translation) PreferredLocale() string {
	if t.OverrideLocale != nil && *t.OverrideLocale != "" {
		return *t.OverrideLocale
	}
	return t.Locale
}
