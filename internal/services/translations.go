package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

type TranslationService struct {
	base
}

func NewTranslationService(d Deps) *TranslationService {
	return &TranslationService{base: newBase(d, "translations")}
}

// NormalizeLocale turns "fr_fr" into "fr-FR".
func NormalizeLocale(locale string) (string, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", fmt.Errorf("%w: locale is empty", common.ErrorValidation)
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: locale %q: %v", common.ErrorValidation, locale, err)
	}
	return tag.String(), nil
}

func (s *TranslationService) Create(ctx context.Context, name, locale string, overrideLocale *string, available bool) (*models.Translation, error) {
	norm, err := NormalizeLocale(locale)
	if err != nil {
		return nil, err
	}
	t := &models.Translation{ID: uuid.New(), Name: name, Locale: norm, Available: available}
	if overrideLocale != nil && *overrideLocale != "" {
		o, err := NormalizeLocale(*overrideLocale)
		if err != nil {
			return nil, err
		}
		t.OverrideLocale = &o
	}
	t.Touch(s.now())

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Translations(tx)
		if err := s.checkLocaleFree(ctx, tx, t.ID, t.Locale); err != nil {
			return err
		}
		if t.OverrideLocale != nil {
			if err := s.checkLocaleFree(ctx, tx, t.ID, *t.OverrideLocale); err != nil {
				return err
			}
		}
		// the first available translation becomes the default
		_, err := repo.GetDefault(ctx)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			t.DefaultTranslation = available
		case err != nil:
			return err
		}
		return repo.Create(ctx, t)
	})
	if err != nil {
		s.log.Warn(ctx, "translation rejected", "locale", norm, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "translation created", "translation_id", t.ID, "locale", t.Locale)
	return t, nil
}

func (s *TranslationService) checkLocaleFree(ctx context.Context, tx dbx.DBTX, self uuid.UUID, locale string) error {
	other, err := s.repomanager.Translations(tx).GetByLocale(ctx, locale)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != self:
		return fmt.Errorf("%w: locale %s", common.ErrAlreadyExists, locale)
	}
	return nil
}

// SetDefault makes id the only default translation.
func (s *TranslationService) SetDefault(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Translations(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !t.Available {
			return fmt.Errorf("%w: translation %s is not available", common.ErrorValidation, t.Locale)
		}
		if err := repo.ClearDefault(ctx); err != nil {
			return err
		}
		t.DefaultTranslation = true
		t.Touch(s.now())
		return repo.Update(ctx, t)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "default translation changed", "translation_id", id)
	return nil
}

// SetAvailable toggles availability. The default translation stays available.
func (s *TranslationService) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Translations(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !available && t.DefaultTranslation {
			return fmt.Errorf("%w: default translation %s cannot be disabled", common.ErrorValidation, t.Locale)
		}
		t.Available = available
		t.Touch(s.now())
		return repo.Update(ctx, t)
	})
}

func (s *TranslationService) Get(ctx context.Context, id uuid.UUID) (*models.Translation, error) {
	return s.repomanager.Translations(s.conn()).GetByID(ctx, id)
}

func (s *TranslationService) GetDefault(ctx context.Context) (*models.Translation, error) {
	return s.repomanager.Translations(s.conn()).GetDefault(ctx)
}

// GetByLocale matches either the locale or the override locale.
func (s *TranslationService) GetByLocale(ctx context.Context, locale string) (*models.Translation, error) {
	norm, err := NormalizeLocale(locale)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Translations(s.conn()).GetByLocale(ctx, norm)
}

// ListAvailable returns available translations, default first.
func (s *TranslationService) ListAvailable(ctx context.Context) ([]*models.Translation, error) {
	all, err := s.repomanager.Translations(s.conn()).List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if t.Available {
			out = append(out, t)
		}
	}
	return out, nil
}
