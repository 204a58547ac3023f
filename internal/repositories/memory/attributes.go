package memory

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type AttributeRepository struct{ s *Store }

func NewAttributeRepository(s *Store) *AttributeRepository {
	return &AttributeRepository{s: s}
}

func (r *AttributeRepository) CreateGroup(_ context.Context, g *models.AttributeGroup) error {
	return r.s.write(func(a *arena) error {
		for _, o := range a.attrGroups {
			if o.ID == g.ID || o.CanonicalName == g.CanonicalName {
				return duplicate("attribute group", g.CanonicalName)
			}
		}
		a.attrGroups[g.ID] = copyOf(g)
		return nil
	})
}

func (r *AttributeRepository) GetGroup(_ context.Context, id uuid.UUID) (*models.AttributeGroup, error) {
	var out *models.AttributeGroup
	err := r.s.read(func(a *arena) error {
		g, ok := a.attrGroups[id]
		if !ok {
			return notFound("attribute group", id)
		}
		out = copyOf(g)
		return nil
	})
	return out, err
}

func (r *AttributeRepository) SetGroupTranslation(_ context.Context, gt *models.AttributeGroupTranslation) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.attrGroups[gt.GroupID]; !ok {
			return notFound("attribute group", gt.GroupID)
		}
		for _, o := range a.attrGroupTranslations {
			if o.GroupID == gt.GroupID && o.TranslationID == gt.TranslationID {
				o.Name = gt.Name
				return nil
			}
		}
		a.attrGroupTranslations[gt.ID] = copyOf(gt)
		return nil
	})
}

func (r *AttributeRepository) GetGroupTranslation(_ context.Context, groupID, translationID uuid.UUID) (*models.AttributeGroupTranslation, error) {
	var out *models.AttributeGroupTranslation
	err := r.s.read(func(a *arena) error {
		for _, o := range a.attrGroupTranslations {
			if o.GroupID == groupID && o.TranslationID == translationID {
				out = copyOf(o)
				return nil
			}
		}
		return notFound("attribute group translation", groupID)
	})
	return out, err
}

func (r *AttributeRepository) Create(_ context.Context, at *models.Attribute) error {
	return r.s.write(func(a *arena) error {
		for _, o := range a.attributes {
			if o.ID == at.ID || o.Code == at.Code {
				return duplicate("attribute", at.Code)
			}
		}
		a.attributes[at.ID] = copyAttribute(at)
		return nil
	})
}

func (r *AttributeRepository) Update(_ context.Context, at *models.Attribute) error {
	return r.s.write(func(a *arena) error {
		old, ok := a.attributes[at.ID]
		if !ok {
			return notFound("attribute", at.ID)
		}
		for _, o := range a.attributes {
			if o.ID != at.ID && o.Code == at.Code {
				return duplicate("attribute", at.Code)
			}
		}
		c := copyAttribute(at)
		c.CreatedAt = old.CreatedAt
		a.attributes[at.ID] = c
		return nil
	})
}

func (r *AttributeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Attribute, error) {
	return r.getOne(func(at *models.Attribute) bool { return at.ID == id }, id)
}

func (r *AttributeRepository) GetByCode(_ context.Context, code string) (*models.Attribute, error) {
	return r.getOne(func(at *models.Attribute) bool { return at.Code == code }, code)
}

func (r *AttributeRepository) getOne(match func(*models.Attribute) bool, key any) (*models.Attribute, error) {
	var out *models.Attribute
	err := r.s.read(func(a *arena) error {
		for _, at := range a.attributes {
			if match(at) {
				out = copyAttribute(at)
				return nil
			}
		}
		return notFound("attribute", key)
	})
	return out, err
}

// List orders by weight descending, then code.
func (r *AttributeRepository) List(_ context.Context) ([]*models.Attribute, error) {
	var out []*models.Attribute
	err := r.s.read(func(a *arena) error {
		out = collect(a.attributes,
			func(*models.Attribute) bool { return true },
			copyAttribute,
			func(x, y *models.Attribute) bool {
				if x.Weight != y.Weight {
					return x.Weight > y.Weight
				}
				return x.Code < y.Code
			})
		return nil
	})
	return out, err
}

func (r *AttributeRepository) SetTranslation(_ context.Context, at *models.AttributeTranslation) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.attributes[at.AttributeID]; !ok {
			return notFound("attribute", at.AttributeID)
		}
		for id, o := range a.attrTranslations {
			if o.AttributeID == at.AttributeID && o.TranslationID == at.TranslationID {
				c := copyAttributeTranslation(at)
				c.ID = o.ID
				a.attrTranslations[id] = c
				return nil
			}
		}
		a.attrTranslations[at.ID] = copyAttributeTranslation(at)
		return nil
	})
}

func (r *AttributeRepository) GetTranslation(_ context.Context, attributeID, translationID uuid.UUID) (*models.AttributeTranslation, error) {
	var out *models.AttributeTranslation
	err := r.s.read(func(a *arena) error {
		for _, o := range a.attrTranslations {
			if o.AttributeID == attributeID && o.TranslationID == translationID {
				out = copyAttributeTranslation(o)
				return nil
			}
		}
		return notFound("attribute translation", attributeID)
	})
	return out, err
}

func (r *AttributeRepository) AddDocument(_ context.Context, d *models.AttributeDocument) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.attributes[d.AttributeID]; !ok {
			return notFound("attribute", d.AttributeID)
		}
		if _, ok := a.documents[d.DocumentID]; !ok {
			return notFound("document", d.DocumentID)
		}
		a.attrDocuments[d.ID] = copyOf(d)
		return nil
	})
}

func (r *AttributeRepository) ListDocuments(_ context.Context, attributeID uuid.UUID) ([]*models.AttributeDocument, error) {
	var out []*models.AttributeDocument
	err := r.s.read(func(a *arena) error {
		out = collect(a.attrDocuments,
			func(d *models.AttributeDocument) bool { return d.AttributeID == attributeID },
			copyOf[models.AttributeDocument],
			func(x, y *models.AttributeDocument) bool { return byPosition(x.Position, y.Position, x.ID, y.ID) })
		return nil
	})
	return out, err
}

func (r *AttributeRepository) CreateValue(_ context.Context, v *models.AttributeValue) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.attrValues[v.ID]; ok {
			return duplicate("attribute value", v.ID)
		}
		if _, ok := a.attributes[v.AttributeID]; !ok {
			return notFound("attribute", v.AttributeID)
		}
		if _, ok := a.nodes[v.NodeID]; !ok {
			return notFound("node", v.NodeID)
		}
		a.attrValues[v.ID] = copyAttributeValue(v)
		return nil
	})
}

func (r *AttributeRepository) UpdateValue(_ context.Context, v *models.AttributeValue) error {
	return r.s.write(func(a *arena) error {
		old, ok := a.attrValues[v.ID]
		if !ok {
			return notFound("attribute value", v.ID)
		}
		c := copyAttributeValue(v)
		c.AttributeID = old.AttributeID
		c.NodeID = old.NodeID
		c.CreatedAt = old.CreatedAt
		a.attrValues[v.ID] = c
		return nil
	})
}

func (r *AttributeRepository) GetValue(_ context.Context, id uuid.UUID) (*models.AttributeValue, error) {
	var out *models.AttributeValue
	err := r.s.read(func(a *arena) error {
		v, ok := a.attrValues[id]
		if !ok {
			return notFound("attribute value", id)
		}
		out = copyAttributeValue(v)
		return nil
	})
	return out, err
}

func (r *AttributeRepository) DeleteValue(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.attrValues[id]; !ok {
			return notFound("attribute value", id)
		}
		deleteValueRows(a, id)
		return nil
	})
}

func deleteValueRows(a *arena, valueID uuid.UUID) {
	for id, vt := range a.attrValueTranslations {
		if vt.AttributeValueID == valueID {
			delete(a.attrValueTranslations, id)
		}
	}
	delete(a.attrValues, valueID)
}

func (r *AttributeRepository) ListValues(_ context.Context, nodeID uuid.UUID) ([]*models.AttributeValue, error) {
	var out []*models.AttributeValue
	err := r.s.read(func(a *arena) error {
		out = collect(a.attrValues,
			func(v *models.AttributeValue) bool { return v.NodeID == nodeID },
			copyAttributeValue,
			func(x, y *models.AttributeValue) bool { return byPosition(x.Position, y.Position, x.ID, y.ID) })
		return nil
	})
	return out, err
}

func (r *AttributeRepository) LockValues(context.Context, uuid.UUID) error { return nil }

func (r *AttributeRepository) SetValueTranslation(_ context.Context, vt *models.AttributeValueTranslation) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.attrValues[vt.AttributeValueID]; !ok {
			return notFound("attribute value", vt.AttributeValueID)
		}
		for _, o := range a.attrValueTranslations {
			if o.AttributeValueID == vt.AttributeValueID && o.TranslationID == vt.TranslationID {
				o.Value = copyString(vt.Value)
				return nil
			}
		}
		a.attrValueTranslations[vt.ID] = copyValueTranslation(vt)
		return nil
	})
}

func (r *AttributeRepository) GetValueTranslation(_ context.Context, valueID, translationID uuid.UUID) (*models.AttributeValueTranslation, error) {
	var out *models.AttributeValueTranslation
	err := r.s.read(func(a *arena) error {
		for _, o := range a.attrValueTranslations {
			if o.AttributeValueID == valueID && o.TranslationID == translationID {
				out = copyValueTranslation(o)
				return nil
			}
		}
		return notFound("attribute value translation", valueID)
	})
	return out, err
}

func (r *AttributeRepository) ListValueTranslations(_ context.Context, valueID uuid.UUID) ([]*models.AttributeValueTranslation, error) {
	var out []*models.AttributeValueTranslation
	err := r.s.read(func(a *arena) error {
		out = collect(a.attrValueTranslations,
			func(vt *models.AttributeValueTranslation) bool { return vt.AttributeValueID == valueID },
			copyValueTranslation,
			func(x, y *models.AttributeValueTranslation) bool {
				return bytes.Compare(x.TranslationID[:], y.TranslationID[:]) < 0
			})
		return nil
	})
	return out, err
}
