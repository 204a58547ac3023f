package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/position"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/dmitrijs2005/nodestore/internal/textx"
	"github.com/google/uuid"
)

// CreateDocument registers a reference to a stored file.
func (s *SourceService) CreateDocument(ctx context.Context, filename, mimeType string) (*models.Document, error) {
	d := &models.Document{ID: uuid.New(), Filename: filename, MimeType: mimeType}
	d.Touch(s.now())
	if err := s.repomanager.Documents(s.conn()).Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SourceService) CreateCustomForm(ctx context.Context, name, displayName string) (*models.CustomForm, error) {
	f := &models.CustomForm{ID: uuid.New(), Name: textx.Slugify(name), DisplayName: displayName}
	if f.Name == "" {
		return nil, fmt.Errorf("%w: custom form name %q has no usable characters", common.ErrorValidation, name)
	}
	f.Touch(s.now())
	if err := s.repomanager.Documents(s.conn()).CreateCustomForm(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// sourceField loads a source and checks that fieldName is a field of its
// type accepted by is.
func (s *SourceService) sourceField(ctx context.Context, db dbx.DBTX, sourceID uuid.UUID, fieldName string, is func(models.FieldType) bool) (*models.NodesSources, error) {
	src, err := s.repomanager.Sources(db).GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	d, err := s.descriptor(ctx, src.Discriminator)
	if err != nil {
		return nil, err
	}
	if _, err := d.RequireField(fieldName, is); err != nil {
		return nil, err
	}
	return src, nil
}

func (s *SourceService) nodeField(ctx context.Context, db dbx.DBTX, nodeID uuid.UUID, fieldName string, is func(models.FieldType) bool) (*schema.Descriptor, error) {
	n, err := s.repomanager.Nodes(db).GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	d, err := s.descriptor(ctx, n.NodeTypeName)
	if err != nil {
		return nil, err
	}
	if _, err := d.RequireField(fieldName, is); err != nil {
		return nil, err
	}
	return d, nil
}

// AttachDocument appends documentID to the documents field fieldName of a source.
func (s *SourceService) AttachDocument(ctx context.Context, sourceID uuid.UUID, fieldName string, documentID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.sourceField(ctx, tx, sourceID, fieldName, models.FieldType.IsDocuments); err != nil {
			return err
		}
		if _, err := s.repomanager.Documents(tx).GetByID(ctx, documentID); err != nil {
			return err
		}
		repo := s.repomanager.Sources(tx)
		current, err := repo.ListDocuments(ctx, sourceID, fieldName)
		if err != nil {
			return err
		}
		return repo.AddDocument(ctx, &models.NodesSourcesDocuments{
			ID:         uuid.New(),
			SourceID:   sourceID,
			DocumentID: documentID,
			FieldName:  fieldName,
			Position:   appendAfter(current, func(d *models.NodesSourcesDocuments) float64 { return d.Position }),
		})
	})
	if err != nil {
		s.log.Warn(ctx, "document attach rejected", "source_id", sourceID, "field", fieldName, "error", err)
	}
	return err
}

// GetDocumentsByFieldsWithName returns the documents attached to a source
// under fieldName, in position order.
func (s *SourceService) GetDocumentsByFieldsWithName(ctx context.Context, sourceID uuid.UUID, fieldName string) ([]*models.Document, error) {
	db := s.conn()
	if _, err := s.sourceField(ctx, db, sourceID, fieldName, models.FieldType.IsDocuments); err != nil {
		return nil, err
	}
	links, err := s.repomanager.Sources(db).ListDocuments(ctx, sourceID, fieldName)
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

func (s *SourceService) DetachDocument(ctx context.Context, sourceID uuid.UUID, fieldName string, documentID uuid.UUID) error {
	db := s.conn()
	if _, err := s.sourceField(ctx, db, sourceID, fieldName, models.FieldType.IsDocuments); err != nil {
		return err
	}
	return s.repomanager.Sources(db).RemoveDocument(ctx, sourceID, fieldName, documentID)
}

// SetNodeReferences replaces the ordered references of nodeID under fieldName.
func (s *SourceService) SetNodeReferences(ctx context.Context, nodeID uuid.UUID, fieldName string, targets []uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.nodeField(ctx, tx, nodeID, fieldName, models.FieldType.IsNodeReferences); err != nil {
			return err
		}
		positions := position.Renumber(len(targets))
		refs := make([]*models.NodesToNodes, len(targets))
		for i, target := range targets {
			if target == nodeID {
				return fmt.Errorf("%w: node %s cannot reference itself", common.ErrorValidation, nodeID)
			}
			refs[i] = &models.NodesToNodes{
				ID:        uuid.New(),
				NodeAID:   nodeID,
				NodeBID:   target,
				FieldName: fieldName,
				Position:  positions[i],
			}
		}
		return s.repomanager.Sources(tx).ReplaceNodeReferences(ctx, nodeID, fieldName, refs)
	})
}

// GetNodeReferences returns the nodes referenced by nodeID under fieldName.
func (s *SourceService) GetNodeReferences(ctx context.Context, nodeID uuid.UUID, fieldName string) ([]*models.Node, error) {
	db := s.conn()
	if _, err := s.nodeField(ctx, db, nodeID, fieldName, models.FieldType.IsNodeReferences); err != nil {
		return nil, err
	}
	refs, err := s.repomanager.Sources(db).ListNodeReferences(ctx, nodeID, fieldName)
	if err != nil {
		return nil, err
	}
	nodes := s.repomanager.Nodes(db)
	out := make([]*models.Node, 0, len(refs))
	for _, r := range refs {
		n, err := nodes.GetByID(ctx, r.NodeBID)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *SourceService) AttachCustomForm(ctx context.Context, nodeID uuid.UUID, fieldName string, formID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.nodeField(ctx, tx, nodeID, fieldName, models.FieldType.IsCustomForms); err != nil {
			return err
		}
		if _, err := s.repomanager.Documents(tx).GetCustomForm(ctx, formID); err != nil {
			return err
		}
		repo := s.repomanager.Sources(tx)
		current, err := repo.ListCustomForms(ctx, nodeID, fieldName)
		if err != nil {
			return err
		}
		return repo.AddCustomForm(ctx, &models.NodesCustomForms{
			ID:           uuid.New(),
			NodeID:       nodeID,
			CustomFormID: formID,
			FieldName:    fieldName,
			Position:     appendAfter(current, func(cf *models.NodesCustomForms) float64 { return cf.Position }),
		})
	})
}

func (s *SourceService) GetCustomForms(ctx context.Context, nodeID uuid.UUID, fieldName string) ([]*models.CustomForm, error) {
	db := s.conn()
	if _, err := s.nodeField(ctx, db, nodeID, fieldName, models.FieldType.IsCustomForms); err != nil {
		return nil, err
	}
	links, err := s.repomanager.Sources(db).ListCustomForms(ctx, nodeID, fieldName)
	if err != nil {
		return nil, err
	}
	docs := s.repomanager.Documents(db)
	out := make([]*models.CustomForm, 0, len(links))
	for _, l := range links {
		f, err := docs.GetCustomForm(ctx, l.CustomFormID)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// AddUrlAlias stores the slugified alias for a source. Aliases are unique
// across every source and translation.
func (s *SourceService) AddUrlAlias(ctx context.Context, sourceID uuid.UUID, alias string) (*models.UrlAlias, error) {
	slug := textx.Slugify(alias)
	if slug == "" {
		return nil, fmt.Errorf("%w: alias %q has no usable characters", common.ErrorValidation, alias)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	a := &models.UrlAlias{ID: id, SourceID: sourceID, Alias: slug}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sources(tx)
		if _, err := repo.GetByID(ctx, sourceID); err != nil {
			return err
		}
		_, err := repo.GetUrlAlias(ctx, slug)
		switch {
		case err == nil:
			return fmt.Errorf("%w: url alias %s", common.ErrAlreadyExists, slug)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		return repo.AddUrlAlias(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "url alias added", "source_id", sourceID, "alias", slug)
	return a, nil
}

func (s *SourceService) ListUrlAliases(ctx context.Context, sourceID uuid.UUID) ([]*models.UrlAlias, error) {
	return s.repomanager.Sources(s.conn()).ListUrlAliases(ctx, sourceID)
}
