package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/google/uuid"
)

type SourceService struct {
	base
	auditor *Auditor
}

func NewSourceService(d Deps) *SourceService {
	d = d.withDefaults()
	return &SourceService{base: newBase(d, "sources"), auditor: NewAuditor(d.Repos, d.Clock)}
}

// Create adds the source of nodeID in translationID. A node has at most one
// source per translation.
func (s *SourceService) Create(ctx context.Context, nodeID, translationID uuid.UUID, title string) (*models.NodesSources, error) {
	var src *models.NodesSources
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Nodes(tx).GetByID(ctx, nodeID)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Translations(tx).GetByID(ctx, translationID); err != nil {
			return err
		}
		if err := s.checkNoSource(ctx, tx, nodeID, translationID); err != nil {
			return err
		}
		src = newSource(n, translationID, title, s.now())
		return s.repomanager.Sources(tx).Create(ctx, src)
	})
	if err != nil {
		s.log.Warn(ctx, "source create rejected", "node_id", nodeID, "translation_id", translationID, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "source created", "source_id", src.ID, "node_id", nodeID, "translation_id", translationID)
	return src, nil
}

func (s *SourceService) checkNoSource(ctx context.Context, tx dbx.DBTX, nodeID, translationID uuid.UUID) error {
	_, err := s.repomanager.Sources(tx).GetByNodeAndTranslation(ctx, nodeID, translationID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: node %s already has a source in translation %s", common.ErrAlreadyExists, nodeID, translationID)
	case errors.Is(err, common.ErrorNotFound):
		return nil
	}
	return err
}

// Translate creates the source of nodeID in translationID from the node's
// default translation source.
func (s *SourceService) Translate(ctx context.Context, nodeID, translationID uuid.UUID) (*models.NodesSources, error) {
	var src *models.NodesSources
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		def, err := s.repomanager.Translations(tx).GetDefault(ctx)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Translations(tx).GetByID(ctx, translationID); err != nil {
			return err
		}
		base, err := s.repomanager.Sources(tx).GetByNodeAndTranslation(ctx, nodeID, def.ID)
		if err != nil {
			return fmt.Errorf("default source: %w", err)
		}
		if err := s.checkNoSource(ctx, tx, nodeID, translationID); err != nil {
			return err
		}

		cp := *base
		cp.ID = uuid.New()
		cp.TranslationID = translationID
		cp.Fields = base.Fields.Clone()
		cp.Timestamps = models.Timestamps{}
		cp.Touch(s.now())
		src = &cp
		return s.repomanager.Sources(tx).Create(ctx, src)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "source translated", "source_id", src.ID, "node_id", nodeID, "translation_id", translationID)
	return src, nil
}

func (s *SourceService) Get(ctx context.Context, id uuid.UUID) (*models.NodesSources, error) {
	return s.repomanager.Sources(s.conn()).GetByID(ctx, id)
}

func (s *SourceService) GetByNodeAndTranslation(ctx context.Context, nodeID, translationID uuid.UUID) (*models.NodesSources, error) {
	return s.repomanager.Sources(s.conn()).GetByNodeAndTranslation(ctx, nodeID, translationID)
}

func (s *SourceService) ListByNode(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesSources, error) {
	return s.repomanager.Sources(s.conn()).ListByNode(ctx, nodeID)
}

// SourcePatch lists the changes Update applies; nil members are left alone.
// A nil value in Fields clears that field.
type SourcePatch struct {
	Title           *string
	PublishedAt     *time.Time
	MetaTitle       *string
	MetaDescription *string
	NoIndex         *bool
	Fields          models.FieldValues
}

// Update applies patch to sourceID. Field values are checked against the
// node type; universal fields are copied to the node's other sources and
// changes to versioned fields are written to the audit log.
func (s *SourceService) Update(ctx context.Context, sourceID uuid.UUID, patch SourcePatch) (*models.NodesSources, error) {
	var out *models.NodesSources
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sources(tx)
		src, err := repo.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		d, err := s.descriptor(ctx, src.Discriminator)
		if err != nil {
			return err
		}
		values, err := d.ValidateValues(patch.Fields)
		if err != nil {
			return err
		}

		before := src.Fields.Clone()
		applyPatch(src, patch, values)
		src.Touch(s.now())
		if err := repo.Update(ctx, src); err != nil {
			return err
		}
		if _, err := s.auditor.Record(ctx, tx, src, d, before, src.Fields); err != nil {
			return err
		}
		if err := s.syncUniversal(ctx, tx, src, d, values); err != nil {
			return err
		}
		out = src
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "source update rejected", "source_id", sourceID, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "source updated", "source_id", sourceID, "fields", len(patch.Fields))
	s.dispatch(ctx, Event{Type: EventSourceUpdated, NodeID: out.NodeID, SourceID: out.ID})
	return out, nil
}

func applyPatch(src *models.NodesSources, p SourcePatch, values models.FieldValues) {
	if p.Title != nil {
		src.Title = *p.Title
	}
	if p.PublishedAt != nil {
		t := p.PublishedAt.UTC()
		src.PublishedAt = &t
	}
	if p.MetaTitle != nil {
		src.MetaTitle = *p.MetaTitle
	}
	if p.MetaDescription != nil {
		src.MetaDescription = *p.MetaDescription
	}
	if p.NoIndex != nil {
		src.NoIndex = *p.NoIndex
	}
	if src.Fields == nil {
		src.Fields = models.FieldValues{}
	}
	for name, v := range values {
		if v == nil {
			delete(src.Fields, name)
			continue
		}
		src.Fields[name] = v
	}
}

// syncUniversal copies the universal fields present in values to every
// other source of the node.
func (s *SourceService) syncUniversal(ctx context.Context, tx dbx.DBTX, src *models.NodesSources, d *schema.Descriptor, values models.FieldValues) error {
	shared := models.FieldValues{}
	for _, f := range d.UniversalFields() {
		if v, ok := values[f.Name]; ok {
			shared[f.Name] = v
		}
	}
	if len(shared) == 0 {
		return nil
	}
	repo := s.repomanager.Sources(tx)
	others, err := repo.ListByNode(ctx, src.NodeID)
	if err != nil {
		return err
	}
	for _, o := range others {
		if o.ID == src.ID {
			continue
		}
		before := o.Fields.Clone()
		applyPatch(o, SourcePatch{}, shared)
		o.Touch(s.now())
		if err := repo.Update(ctx, o); err != nil {
			return err
		}
		if _, err := s.auditor.Record(ctx, tx, o, d, before, o.Fields); err != nil {
			return err
		}
	}
	return nil
}

// History lists the audit entries of a source, newest first.
func (s *SourceService) History(ctx context.Context, sourceID uuid.UUID) ([]*models.AuditEntry, error) {
	return s.auditor.ListBySource(ctx, s.conn(), sourceID)
}

// GetParent returns the source of the parent node in the same translation,
// or nil when the node is a root or the parent is not translated.
func (s *SourceService) GetParent(ctx context.Context, src *models.NodesSources) (*models.NodesSources, error) {
	db := s.conn()
	n, err := s.repomanager.Nodes(db).GetByID(ctx, src.NodeID)
	if err != nil {
		return nil, err
	}
	if n.ParentID == nil {
		return nil, nil
	}
	parent, err := s.repomanager.Sources(db).GetByNodeAndTranslation(ctx, *n.ParentID, src.TranslationID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return parent, err
}

// GetIdentifier returns the first url alias of src, or its node name.
func (s *SourceService) GetIdentifier(ctx context.Context, src *models.NodesSources) (string, error) {
	db := s.conn()
	aliases, err := s.repomanager.Sources(db).ListUrlAliases(ctx, src.ID)
	if err != nil {
		return "", err
	}
	if len(aliases) > 0 {
		return aliases[0].Alias, nil
	}
	n, err := s.repomanager.Nodes(db).GetByID(ctx, src.NodeID)
	if err != nil {
		return "", err
	}
	return n.NodeName, nil
}

var listingFields = map[string]string{
	models.OrderPosition:  "node.position",
	models.OrderNodeName:  "node.nodeName",
	models.OrderCreatedAt: "node.createdAt",
	models.OrderUpdatedAt: "node.updatedAt",
}

// GetListingSortOptions returns how listings of src's node should be sorted.
// A parent hiding its children imposes its own order on them.
func (s *SourceService) GetListingSortOptions(ctx context.Context, src *models.NodesSources) (models.SortOption, error) {
	repo := s.repomanager.Nodes(s.conn())
	n, err := repo.GetByID(ctx, src.NodeID)
	if err != nil {
		return models.SortOption{}, err
	}
	for n.ParentID != nil {
		parent, err := repo.GetByID(ctx, *n.ParentID)
		if err != nil {
			return models.SortOption{}, err
		}
		if !parent.HideChildren {
			break
		}
		n = parent
	}
	return sortOption(n), nil
}

func sortOption(n *models.Node) models.SortOption {
	dir := n.ChildrenOrderDirection
	if dir != models.SortDesc {
		dir = models.SortAsc
	}
	field, ok := listingFields[n.ChildrenOrder]
	if !ok {
		field = models.OrderPublishedAt
	}
	return models.SortOption{Field: field, Direction: dir}
}
