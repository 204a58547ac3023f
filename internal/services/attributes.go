package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/dmitrijs2005/nodestore/internal/textx"
	"github.com/google/uuid"
)

// AttributeService manages attribute definitions and the values nodes carry.
type AttributeService struct {
	base
}

func NewAttributeService(d Deps) *AttributeService {
	return &AttributeService{base: newBase(d, "attributes")}
}

func (s *AttributeService) CreateGroup(ctx context.Context, canonicalName string) (*models.AttributeGroup, error) {
	name := textx.Slugify(canonicalName)
	if name == "" {
		return nil, fmt.Errorf("%w: group name %q has no usable characters", common.ErrorValidation, canonicalName)
	}
	g := &models.AttributeGroup{ID: uuid.New(), CanonicalName: name}
	g.Touch(s.now())
	if err := s.repomanager.Attributes(s.conn()).CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *AttributeService) SetGroupName(ctx context.Context, groupID, translationID uuid.UUID, name string) error {
	return s.repomanager.Attributes(s.conn()).SetGroupTranslation(ctx, &models.AttributeGroupTranslation{
		ID:            uuid.New(),
		GroupID:       groupID,
		TranslationID: translationID,
		Name:          name,
	})
}

// AttributeInput describes a new attribute. Code is normalized to a slug.
type AttributeInput struct {
	Code           string
	Type           models.AttributeType
	Searchable     bool
	Universal      bool
	Color          string
	Weight         int
	GroupID        *uuid.UUID
	DefaultRealmID *uuid.UUID
}

func (s *AttributeService) CreateAttribute(ctx context.Context, in AttributeInput) (*models.Attribute, error) {
	code := textx.Slugify(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: attribute code %q has no usable characters", common.ErrorValidation, in.Code)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown attribute type %q", common.ErrorValidation, in.Type)
	}
	a := &models.Attribute{
		ID:             uuid.New(),
		Code:           code,
		Type:           in.Type,
		Searchable:     in.Searchable,
		Universal:      in.Universal,
		Color:          in.Color,
		Weight:         in.Weight,
		GroupID:        in.GroupID,
		DefaultRealmID: in.DefaultRealmID,
	}
	a.Touch(s.now())

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Attributes(tx)
		_, err := repo.GetByCode(ctx, code)
		switch {
		case err == nil:
			return fmt.Errorf("%w: attribute %s", common.ErrAlreadyExists, code)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		if in.GroupID != nil {
			if _, err := repo.GetGroup(ctx, *in.GroupID); err != nil {
				return err
			}
		}
		if in.DefaultRealmID != nil {
			if _, err := s.repomanager.Realms(tx).GetByID(ctx, *in.DefaultRealmID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		s.log.Warn(ctx, "attribute create rejected", "code", code, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "attribute created", "attribute_id", a.ID, "code", code, "type", string(a.Type))
	return a, nil
}

func (s *AttributeService) GetAttribute(ctx context.Context, code string) (*models.Attribute, error) {
	return s.repomanager.Attributes(s.conn()).GetByCode(ctx, textx.Slugify(code))
}

// SetAttributeTranslation stores the label and, for enum attributes, the
// options of an attribute in one translation.
func (s *AttributeService) SetAttributeTranslation(ctx context.Context, attributeID, translationID uuid.UUID, label string, options []string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Attributes(tx)
		a, err := repo.GetByID(ctx, attributeID)
		if err != nil {
			return err
		}
		if len(options) > 0 && a.Type != models.AttributeEnum {
			return fmt.Errorf("%w: options on %s attribute %s", common.ErrorValidation, a.Type, a.Code)
		}
		if _, err := s.repomanager.Translations(tx).GetByID(ctx, translationID); err != nil {
			return err
		}
		return repo.SetTranslation(ctx, &models.AttributeTranslation{
			ID:            uuid.New(),
			AttributeID:   attributeID,
			TranslationID: translationID,
			Label:         label,
			Options:       append([]string(nil), options...),
		})
	})
}

func attributeDocumentPosition(d *models.AttributeDocument) float64 { return d.Position }

// AttachAttributeDocument appends a document to a documents-typed attribute.
func (s *AttributeService) AttachAttributeDocument(ctx context.Context, attributeID, documentID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Attributes(tx)
		a, err := repo.GetByID(ctx, attributeID)
		if err != nil {
			return err
		}
		if a.Type != models.AttributeDocuments {
			return fmt.Errorf("%w: %s attribute %s holds no documents", common.ErrorValidation, a.Type, a.Code)
		}
		if _, err := s.repomanager.Documents(tx).GetByID(ctx, documentID); err != nil {
			return err
		}
		current, err := repo.ListDocuments(ctx, attributeID)
		if err != nil {
			return err
		}
		return repo.AddDocument(ctx, &models.AttributeDocument{
			ID:          uuid.New(),
			AttributeID: attributeID,
			DocumentID:  documentID,
			Position:    appendAfter(current, attributeDocumentPosition),
		})
	})
}

func (s *AttributeService) ListAttributeDocuments(ctx context.Context, attributeID uuid.UUID) ([]*models.Document, error) {
	db := s.conn()
	links, err := s.repomanager.Attributes(db).ListDocuments(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	docs := s.repomanager.Documents(db)
	out := make([]*models.Document, 0, len(links))
	for _, l := range links {
		d, err := docs.GetByID(ctx, l.DocumentID)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func valuePosition(v *models.AttributeValue) float64 { return v.Position }

// AddValue attaches attributeID to nodeID after the node's other values.
// Without realmID the attribute's default realm applies.
func (s *AttributeService) AddValue(ctx context.Context, nodeID, attributeID uuid.UUID, realmID *uuid.UUID) (*models.AttributeValue, error) {
	var v *models.AttributeValue
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Nodes(tx).GetByID(ctx, nodeID)
		if err != nil {
			return err
		}
		d, err := s.descriptor(ctx, n.NodeTypeName)
		if err != nil {
			return err
		}
		if !d.NodeType().Attributable {
			return fmt.Errorf("%w: node type %s is not attributable", common.ErrorValidation, n.NodeTypeName)
		}
		repo := s.repomanager.Attributes(tx)
		a, err := repo.GetByID(ctx, attributeID)
		if err != nil {
			return err
		}
		if realmID == nil {
			realmID = a.DefaultRealmID
		}
		if err := repo.LockValues(ctx, nodeID); err != nil {
			return err
		}
		current, err := repo.ListValues(ctx, nodeID)
		if err != nil {
			return err
		}
		v = &models.AttributeValue{
			ID:          uuid.New(),
			AttributeID: attributeID,
			NodeID:      nodeID,
			RealmID:     realmID,
			Position:    appendAfter(current, valuePosition),
		}
		v.Touch(s.now())
		return repo.CreateValue(ctx, v)
	})
	if err != nil {
		s.log.Warn(ctx, "attribute value rejected", "node_id", nodeID, "attribute_id", attributeID, "error", err)
		return nil, err
	}
	return v, nil
}

// valueTranslation returns the translation a value of a is stored under.
func (s *AttributeService) valueTranslation(ctx context.Context, db dbx.DBTX, a *models.Attribute, translationID uuid.UUID) (uuid.UUID, error) {
	if !a.Universal {
		return translationID, nil
	}
	def, err := s.repomanager.Translations(db).GetDefault(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("default translation: %w", err)
	}
	return def.ID, nil
}

// SetValue stores raw as the value of valueID in translationID after typed
// validation. Universal attributes always store on the default translation.
// A nil raw clears the value.
func (s *AttributeService) SetValue(ctx context.Context, valueID, translationID uuid.UUID, raw *string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Attributes(tx)
		v, err := repo.GetValue(ctx, valueID)
		if err != nil {
			return err
		}
		a, err := repo.GetByID(ctx, v.AttributeID)
		if err != nil {
			return err
		}
		trID, err := s.valueTranslation(ctx, tx, a, translationID)
		if err != nil {
			return err
		}

		var stored *string
		if raw != nil {
			var options []string
			at, err := repo.GetTranslation(ctx, a.ID, trID)
			switch {
			case err == nil:
				options = at.Options
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
			c, err := schema.CoerceAttributeValue(a.Type, options, *raw)
			if err != nil {
				return err
			}
			stored = &c
		}

		if err := repo.SetValueTranslation(ctx, &models.AttributeValueTranslation{
			ID:               uuid.New(),
			AttributeValueID: valueID,
			TranslationID:    trID,
			Value:            stored,
		}); err != nil {
			return err
		}
		v.Touch(s.now())
		return repo.UpdateValue(ctx, v)
	})
	if err != nil {
		s.log.Warn(ctx, "attribute value update rejected", "value_id", valueID, "error", err)
	}
	return err
}

// GetValue returns the stored value of valueID in translationID, nil when
// unset. Universal attributes read the default translation.
func (s *AttributeService) GetValue(ctx context.Context, valueID, translationID uuid.UUID) (*string, error) {
	db := s.conn()
	repo := s.repomanager.Attributes(db)
	v, err := repo.GetValue(ctx, valueID)
	if err != nil {
		return nil, err
	}
	a, err := repo.GetByID(ctx, v.AttributeID)
	if err != nil {
		return nil, err
	}
	trID, err := s.valueTranslation(ctx, db, a, translationID)
	if err != nil {
		return nil, err
	}
	vt, err := repo.GetValueTranslation(ctx, valueID, trID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vt.Value, nil
}

// MoveValue places valueID right after afterID among the node's values, or
// first when afterID is nil.
func (s *AttributeService) MoveValue(ctx context.Context, valueID uuid.UUID, afterID *uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Attributes(tx)
		moving, err := repo.GetValue(ctx, valueID)
		if err != nil {
			return err
		}
		if err := repo.LockValues(ctx, moving.NodeID); err != nil {
			return err
		}
		all, err := repo.ListValues(ctx, moving.NodeID)
		if err != nil {
			return err
		}
		i := indexOf(all, func(v *models.AttributeValue) bool { return v.ID == valueID })
		others := append(all[:i:i], all[i+1:]...)

		idx := -1
		if afterID != nil {
			idx = indexOf(others, func(v *models.AttributeValue) bool { return v.ID == *afterID })
			if idx < 0 {
				return fmt.Errorf("%w: attribute value %s on node %s", common.ErrorNotFound, afterID, moving.NodeID)
			}
		}
		pos, err := placeAfter(others, idx, valuePosition, func(v *models.AttributeValue, p float64) error {
			v.Position = p
			return repo.UpdateValue(ctx, v)
		})
		if err != nil {
			return err
		}
		moving.Position = pos
		moving.Touch(s.now())
		return repo.UpdateValue(ctx, moving)
	})
}

// RemoveValue deletes a value with its translations.
func (s *AttributeService) RemoveValue(ctx context.Context, valueID uuid.UUID) error {
	return s.repomanager.Attributes(s.conn()).DeleteValue(ctx, valueID)
}

// ListValues returns the node's attribute values by position, or by
// descending attribute weight when its type sorts attributes by weight.
func (s *AttributeService) ListValues(ctx context.Context, nodeID uuid.UUID) ([]*models.AttributeValue, error) {
	db := s.conn()
	n, err := s.repomanager.Nodes(db).GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Attributes(db)
	values, err := repo.ListValues(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	d, err := s.descriptor(ctx, n.NodeTypeName)
	if err != nil {
		return nil, err
	}
	if !d.NodeType().SortingAttributesByWeight {
		return values, nil
	}

	weights := make(map[uuid.UUID]int, len(values))
	for _, v := range values {
		if _, ok := weights[v.AttributeID]; ok {
			continue
		}
		a, err := repo.GetByID(ctx, v.AttributeID)
		if err != nil {
			return nil, err
		}
		weights[v.AttributeID] = a.Weight
	}
	sort.SliceStable(values, func(i, j int) bool {
		return weights[values[i].AttributeID] > weights[values[j].AttributeID]
	})
	return values, nil
}
