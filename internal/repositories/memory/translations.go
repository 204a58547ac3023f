package memory

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type TranslationRepository struct{ s *Store }

func NewTranslationRepository(s *Store) *TranslationRepository {
	return &TranslationRepository{s: s}
}

func localeTaken(a *arena, t *models.Translation) bool {
	for _, o := range a.translations {
		if o.ID == t.ID {
			continue
		}
		if o.Locale == t.Locale {
			return true
		}
		if t.OverrideLocale != nil && o.OverrideLocale != nil && *o.OverrideLocale == *t.OverrideLocale {
			return true
		}
	}
	return false
}

func (r *TranslationRepository) Create(_ context.Context, t *models.Translation) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.translations[t.ID]; ok {
			return duplicate("translation", t.ID)
		}
		if localeTaken(a, t) {
			return duplicate("translation locale", t.Locale)
		}
		a.translations[t.ID] = copyTranslation(t)
		return nil
	})
}

func (r *TranslationRepository) Update(_ context.Context, t *models.Translation) error {
	return r.s.write(func(a *arena) error {
		old, ok := a.translations[t.ID]
		if !ok {
			return notFound("translation", t.ID)
		}
		if localeTaken(a, t) {
			return duplicate("translation locale", t.Locale)
		}
		c := copyTranslation(t)
		c.CreatedAt = old.CreatedAt
		a.translations[t.ID] = c
		return nil
	})
}

func (r *TranslationRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Translation, error) {
	var out *models.Translation
	err := r.s.read(func(a *arena) error {
		t, ok := a.translations[id]
		if !ok {
			return notFound("translation", id)
		}
		out = copyTranslation(t)
		return nil
	})
	return out, err
}

// GetByLocale prefers a locale match over an override match.
func (r *TranslationRepository) GetByLocale(_ context.Context, locale string) (*models.Translation, error) {
	var out *models.Translation
	err := r.s.read(func(a *arena) error {
		for _, t := range a.translations {
			if t.Locale == locale {
				out = copyTranslation(t)
				return nil
			}
			if t.OverrideLocale != nil && *t.OverrideLocale == locale && out == nil {
				out = copyTranslation(t)
			}
		}
		if out == nil {
			return notFound("translation locale", locale)
		}
		return nil
	})
	return out, err
}

func (r *TranslationRepository) GetDefault(_ context.Context) (*models.Translation, error) {
	var out *models.Translation
	err := r.s.read(func(a *arena) error {
		for _, t := range a.translations {
			if t.DefaultTranslation {
				out = copyTranslation(t)
				return nil
			}
		}
		return notFound("translation", "default")
	})
	return out, err
}

func (r *TranslationRepository) ClearDefault(_ context.Context) error {
	return r.s.write(func(a *arena) error {
		for _, t := range a.translations {
			t.DefaultTranslation = false
		}
		return nil
	})
}

func (r *TranslationRepository) List(_ context.Context) ([]*models.Translation, error) {
	var out []*models.Translation
	err := r.s.read(func(a *arena) error {
		out = collect(a.translations,
			func(*models.Translation) bool { return true },
			copyTranslation,
			func(x, y *models.Translation) bool {
				if x.DefaultTranslation != y.DefaultTranslation {
					return x.DefaultTranslation
				}
				return strings.Compare(x.Locale, y.Locale) < 0
			})
		return nil
	})
	return out, err
}
