package memory

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type DocumentRepository struct{ s *Store }

func NewDocumentRepository(s *Store) *DocumentRepository {
	return &DocumentRepository{s: s}
}

func (r *DocumentRepository) Create(_ context.Context, d *models.Document) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.documents[d.ID]; ok {
			return duplicate("document", d.ID)
		}
		a.documents[d.ID] = copyOf(d)
		return nil
	})
}

func (r *DocumentRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	var out *models.Document
	err := r.s.read(func(a *arena) error {
		d, ok := a.documents[id]
		if !ok {
			return notFound("document", id)
		}
		out = copyOf(d)
		return nil
	})
	return out, err
}

func (r *DocumentRepository) CreateCustomForm(_ context.Context, f *models.CustomForm) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.customForms[f.ID]; ok {
			return duplicate("custom form", f.ID)
		}
		for _, o := range a.customForms {
			if o.Name == f.Name {
				return duplicate("custom form", f.Name)
			}
		}
		a.customForms[f.ID] = copyOf(f)
		return nil
	})
}

func (r *DocumentRepository) GetCustomForm(_ context.Context, id uuid.UUID) (*models.CustomForm, error) {
	var out *models.CustomForm
	err := r.s.read(func(a *arena) error {
		f, ok := a.customForms[id]
		if !ok {
			return notFound("custom form", id)
		}
		out = copyOf(f)
		return nil
	})
	return out, err
}
