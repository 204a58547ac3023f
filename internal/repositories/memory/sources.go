package memory

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type SourceRepository struct{ s *Store }

func NewSourceRepository(s *Store) *SourceRepository {
	return &SourceRepository{s: s}
}

func (r *SourceRepository) Create(_ context.Context, src *models.NodesSources) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.sources[src.ID]; ok {
			return duplicate("source", src.ID)
		}
		if _, ok := a.nodes[src.NodeID]; !ok {
			return notFound("node", src.NodeID)
		}
		if _, ok := a.translations[src.TranslationID]; !ok {
			return notFound("translation", src.TranslationID)
		}
		for _, o := range a.sources {
			if o.NodeID == src.NodeID && o.TranslationID == src.TranslationID {
				return duplicate("source for translation", src.TranslationID)
			}
		}
		a.sources[src.ID] = copySource(src)
		return nil
	})
}

func (r *SourceRepository) Update(_ context.Context, src *models.NodesSources) error {
	return r.s.write(func(a *arena) error {
		old, ok := a.sources[src.ID]
		if !ok {
			return notFound("source", src.ID)
		}
		c := copySource(src)
		c.NodeID = old.NodeID
		c.TranslationID = old.TranslationID
		c.Discriminator = old.Discriminator
		c.CreatedAt = old.CreatedAt
		a.sources[src.ID] = c
		return nil
	})
}

func (r *SourceRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.sources[id]; !ok {
			return notFound("source", id)
		}
		deleteSourceRows(a, id)
		return nil
	})
}

func deleteSourceRows(a *arena, sourceID uuid.UUID) {
	for id, d := range a.sourceDocuments {
		if d.SourceID == sourceID {
			delete(a.sourceDocuments, id)
		}
	}
	for id, al := range a.aliases {
		if al.SourceID == sourceID {
			delete(a.aliases, id)
		}
	}
	for id, e := range a.audit {
		if e.SourceID == sourceID {
			delete(a.audit, id)
		}
	}
	delete(a.sources, sourceID)
}

func (r *SourceRepository) GetByID(_ context.Context, id uuid.UUID) (*models.NodesSources, error) {
	var out *models.NodesSources
	err := r.s.read(func(a *arena) error {
		src, ok := a.sources[id]
		if !ok {
			return notFound("source", id)
		}
		out = copySource(src)
		return nil
	})
	return out, err
}

func (r *SourceRepository) GetByNodeAndTranslation(_ context.Context, nodeID, translationID uuid.UUID) (*models.NodesSources, error) {
	var out *models.NodesSources
	err := r.s.read(func(a *arena) error {
		for _, src := range a.sources {
			if src.NodeID == nodeID && src.TranslationID == translationID {
				out = copySource(src)
				return nil
			}
		}
		return notFound("source for node", nodeID)
	})
	return out, err
}

func (r *SourceRepository) ListByNode(_ context.Context, nodeID uuid.UUID) ([]*models.NodesSources, error) {
	var out []*models.NodesSources
	err := r.s.read(func(a *arena) error {
		out = collect(a.sources,
			func(src *models.NodesSources) bool { return src.NodeID == nodeID },
			copySource,
			func(x, y *models.NodesSources) bool {
				if !x.CreatedAt.Equal(y.CreatedAt) {
					return x.CreatedAt.Before(y.CreatedAt)
				}
				return bytes.Compare(x.ID[:], y.ID[:]) < 0
			})
		return nil
	})
	return out, err
}

func (r *SourceRepository) AddDocument(_ context.Context, d *models.NodesSourcesDocuments) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.sources[d.SourceID]; !ok {
			return notFound("source", d.SourceID)
		}
		if _, ok := a.documents[d.DocumentID]; !ok {
			return notFound("document", d.DocumentID)
		}
		a.sourceDocuments[d.ID] = copyOf(d)
		return nil
	})
}

func (r *SourceRepository) RemoveDocument(_ context.Context, sourceID uuid.UUID, fieldName string, documentID uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		removed := false
		for id, d := range a.sourceDocuments {
			if d.SourceID == sourceID && d.FieldName == fieldName && d.DocumentID == documentID {
				delete(a.sourceDocuments, id)
				removed = true
			}
		}
		if !removed {
			return notFound("source document", documentID)
		}
		return nil
	})
}

func (r *SourceRepository) ListDocuments(_ context.Context, sourceID uuid.UUID, fieldName string) ([]*models.NodesSourcesDocuments, error) {
	return r.listDocuments(func(d *models.NodesSourcesDocuments) bool {
		return d.SourceID == sourceID && d.FieldName == fieldName
	})
}

func (r *SourceRepository) ListAllDocuments(_ context.Context, sourceID uuid.UUID) ([]*models.NodesSourcesDocuments, error) {
	return r.listDocuments(func(d *models.NodesSourcesDocuments) bool { return d.SourceID == sourceID })
}

func (r *SourceRepository) listDocuments(keep func(*models.NodesSourcesDocuments) bool) ([]*models.NodesSourcesDocuments, error) {
	var out []*models.NodesSourcesDocuments
	err := r.s.read(func(a *arena) error {
		out = collect(a.sourceDocuments, keep, copyOf[models.NodesSourcesDocuments],
			func(x, y *models.NodesSourcesDocuments) bool {
				if x.FieldName != y.FieldName {
					return x.FieldName < y.FieldName
				}
				return byPosition(x.Position, y.Position, x.ID, y.ID)
			})
		return nil
	})
	return out, err
}

func (r *SourceRepository) ReplaceNodeReferences(_ context.Context, nodeID uuid.UUID, fieldName string, refs []*models.NodesToNodes) error {
	return r.s.write(func(a *arena) error {
		for _, ref := range refs {
			if _, ok := a.nodes[ref.NodeBID]; !ok {
				return notFound("node", ref.NodeBID)
			}
		}
		for id, ref := range a.nodeRefs {
			if ref.NodeAID == nodeID && ref.FieldName == fieldName {
				delete(a.nodeRefs, id)
			}
		}
		for _, ref := range refs {
			c := copyOf(ref)
			c.NodeAID = nodeID
			c.FieldName = fieldName
			a.nodeRefs[c.ID] = c
		}
		return nil
	})
}

func (r *SourceRepository) ListNodeReferences(_ context.Context, nodeID uuid.UUID, fieldName string) ([]*models.NodesToNodes, error) {
	return r.listReferences(func(ref *models.NodesToNodes) bool {
		return ref.NodeAID == nodeID && ref.FieldName == fieldName
	})
}

func (r *SourceRepository) ListAllNodeReferences(_ context.Context, nodeID uuid.UUID) ([]*models.NodesToNodes, error) {
	return r.listReferences(func(ref *models.NodesToNodes) bool { return ref.NodeAID == nodeID })
}

func (r *SourceRepository) listReferences(keep func(*models.NodesToNodes) bool) ([]*models.NodesToNodes, error) {
	var out []*models.NodesToNodes
	err := r.s.read(func(a *arena) error {
		out = collect(a.nodeRefs, keep, copyOf[models.NodesToNodes],
			func(x, y *models.NodesToNodes) bool {
				if x.FieldName != y.FieldName {
					return x.FieldName < y.FieldName
				}
				return byPosition(x.Position, y.Position, x.ID, y.ID)
			})
		return nil
	})
	return out, err
}

func (r *SourceRepository) AddCustomForm(_ context.Context, cf *models.NodesCustomForms) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodes[cf.NodeID]; !ok {
			return notFound("node", cf.NodeID)
		}
		if _, ok := a.customForms[cf.CustomFormID]; !ok {
			return notFound("custom form", cf.CustomFormID)
		}
		a.nodeForms[cf.ID] = copyOf(cf)
		return nil
	})
}

func (r *SourceRepository) ListCustomForms(_ context.Context, nodeID uuid.UUID, fieldName string) ([]*models.NodesCustomForms, error) {
	return r.listCustomForms(func(cf *models.NodesCustomForms) bool {
		return cf.NodeID == nodeID && cf.FieldName == fieldName
	})
}

func (r *SourceRepository) ListAllCustomForms(_ context.Context, nodeID uuid.UUID) ([]*models.NodesCustomForms, error) {
	return r.listCustomForms(func(cf *models.NodesCustomForms) bool { return cf.NodeID == nodeID })
}

func (r *SourceRepository) listCustomForms(keep func(*models.NodesCustomForms) bool) ([]*models.NodesCustomForms, error) {
	var out []*models.NodesCustomForms
	err := r.s.read(func(a *arena) error {
		out = collect(a.nodeForms, keep, copyOf[models.NodesCustomForms],
			func(x, y *models.NodesCustomForms) bool {
				if x.FieldName != y.FieldName {
					return x.FieldName < y.FieldName
				}
				return byPosition(x.Position, y.Position, x.ID, y.ID)
			})
		return nil
	})
	return out, err
}

func (r *SourceRepository) AddUrlAlias(_ context.Context, al *models.UrlAlias) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.sources[al.SourceID]; !ok {
			return notFound("source", al.SourceID)
		}
		for _, o := range a.aliases {
			if o.Alias == al.Alias {
				return duplicate("url alias", al.Alias)
			}
		}
		a.aliases[al.ID] = copyOf(al)
		return nil
	})
}

func (r *SourceRepository) ListUrlAliases(_ context.Context, sourceID uuid.UUID) ([]*models.UrlAlias, error) {
	var out []*models.UrlAlias
	err := r.s.read(func(a *arena) error {
		out = collect(a.aliases,
			func(al *models.UrlAlias) bool { return al.SourceID == sourceID },
			copyOf[models.UrlAlias],
			func(x, y *models.UrlAlias) bool { return bytes.Compare(x.ID[:], y.ID[:]) < 0 })
		return nil
	})
	return out, err
}

func (r *SourceRepository) GetUrlAlias(_ context.Context, alias string) (*models.UrlAlias, error) {
	var out *models.UrlAlias
	err := r.s.read(func(a *arena) error {
		for _, al := range a.aliases {
			if al.Alias == alias {
				out = copyOf(al)
				return nil
			}
		}
		return notFound("url alias", alias)
	})
	return out, err
}
