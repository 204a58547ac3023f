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
	"github.com/google/uuid"
)

// SchemaService writes DB-resident node type definitions. Static
// definitions are read-only and never pass through here.
type SchemaService struct {
	base
}

func NewSchemaService(d Deps) *SchemaService {
	return &SchemaService{base: newBase(d, "schema")}
}

func normalizeField(f *models.NodeTypeField) {
	f.Name = schema.NormalizeFieldName(f.Name)
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
}

// CreateNodeType normalizes and validates nt, then stores it with its fields.
// Fields without a position are appended in declaration order.
func (s *SchemaService) CreateNodeType(ctx context.Context, nt *models.NodeType) (*models.NodeType, error) {
	nt = nt.Clone()
	nt.ID = uuid.New()
	nt.Name = schema.NormalizeTypeName(nt.Name)
	last := 0.0
	for _, f := range nt.Fields {
		normalizeField(f)
		f.NodeTypeID = nt.ID
		if f.Position == 0 {
			f.Position = position.Append(&last)
		}
		last = max(last, f.Position)
	}
	if err := schema.ValidateNodeType(nt); err != nil {
		s.log.Warn(ctx, "node type rejected", "node_type", nt.Name, "error", err)
		return nil, err
	}
	nt.Touch(s.now())

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		if _, err := repo.GetByName(ctx, nt.Name); err == nil {
			return fmt.Errorf("%w: node type %s", common.ErrAlreadyExists, nt.Name)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return repo.Create(ctx, nt)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "node type created", "node_type", nt.Name, "fields", len(nt.Fields))
	return nt, nil
}

// UpdateNodeType replaces the type-level properties of an existing type.
func (s *SchemaService) UpdateNodeType(ctx context.Context, nt *models.NodeType) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		cur, err := repo.GetByName(ctx, nt.Name)
		if err != nil {
			return err
		}
		upd := nt.Clone()
		upd.ID = cur.ID
		upd.CreatedAt = cur.CreatedAt
		upd.Touch(s.now())
		return repo.Update(ctx, upd)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "node type updated", "node_type", nt.Name)
	return nil
}

// DeleteNodeType refuses to drop a type still used by nodes.
func (s *SchemaService) DeleteNodeType(ctx context.Context, name string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		nt, err := repo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		n, err := s.repomanager.Nodes(tx).CountByType(ctx, name)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: node type %s is used by %d nodes", common.ErrorValidation, name, n)
		}
		return repo.Delete(ctx, nt.ID)
	})
	if err != nil {
		s.log.Warn(ctx, "node type delete rejected", "node_type", name, "error", err)
		return err
	}
	s.log.Info(ctx, "node type deleted", "node_type", name)
	return nil
}

func (s *SchemaService) AddField(ctx context.Context, typeName string, f *models.NodeTypeField) (*models.NodeTypeField, error) {
	f = f.Clone()
	normalizeField(f)
	if err := schema.ValidateField(f); err != nil {
		return nil, err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		nt, err := repo.GetByName(ctx, typeName)
		if err != nil {
			return err
		}
		if schema.GetFieldByName(nt, f.Name) != nil {
			return fmt.Errorf("%w: field %s.%s", common.ErrAlreadyExists, typeName, f.Name)
		}
		f.NodeTypeID = nt.ID
		if f.Position == 0 {
			f.Position = position.Append(lastFieldPosition(nt))
		}
		return repo.CreateField(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "field added", "node_type", typeName, "field", f.Name)
	return f, nil
}

func lastFieldPosition(nt *models.NodeType) *float64 {
	var last *float64
	for _, f := range nt.Fields {
		if last == nil || f.Position > *last {
			p := f.Position
			last = &p
		}
	}
	return last
}

// UpdateField replaces the properties of an existing field, keeping its
// identity and position.
func (s *SchemaService) UpdateField(ctx context.Context, typeName string, f *models.NodeTypeField) error {
	if err := schema.ValidateField(f); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		nt, err := repo.GetByName(ctx, typeName)
		if err != nil {
			return err
		}
		cur := schema.GetFieldByName(nt, f.Name)
		if cur == nil {
			return fmt.Errorf("%w: %s.%s", common.ErrUnknownField, typeName, f.Name)
		}
		upd := f.Clone()
		upd.ID = cur.ID
		upd.NodeTypeID = cur.NodeTypeID
		upd.Position = cur.Position
		return repo.UpdateField(ctx, upd)
	})
}

// MoveField places fieldName right after afterName, or first when afterName
// is empty.
func (s *SchemaService) MoveField(ctx context.Context, typeName, fieldName, afterName string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		nt, err := repo.GetByName(ctx, typeName)
		if err != nil {
			return err
		}
		nt.SortFields()
		moving := schema.GetFieldByName(nt, fieldName)
		if moving == nil {
			return fmt.Errorf("%w: %s.%s", common.ErrUnknownField, typeName, fieldName)
		}

		others := make([]*models.NodeTypeField, 0, len(nt.Fields))
		for _, f := range nt.Fields {
			if f.ID != moving.ID {
				others = append(others, f)
			}
		}
		idx := -1
		if afterName != "" {
			idx = indexOf(others, func(f *models.NodeTypeField) bool { return f.Name == afterName })
			if idx < 0 {
				return fmt.Errorf("%w: %s.%s", common.ErrUnknownField, typeName, afterName)
			}
		}

		pos, err := placeAfter(others, idx, func(f *models.NodeTypeField) float64 { return f.Position },
			func(f *models.NodeTypeField, p float64) error {
				f.Position = p
				return repo.UpdateField(ctx, f)
			})
		if err != nil {
			return err
		}
		moving.Position = pos
		return repo.UpdateField(ctx, moving)
	})
}

func (s *SchemaService) RemoveField(ctx context.Context, typeName, fieldName string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.NodeTypes(tx)
		nt, err := repo.GetByName(ctx, typeName)
		if err != nil {
			return err
		}
		f := schema.GetFieldByName(nt, fieldName)
		if f == nil {
			return fmt.Errorf("%w: %s.%s", common.ErrUnknownField, typeName, fieldName)
		}
		return repo.DeleteField(ctx, f.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "field removed", "node_type", typeName, "field", fieldName)
	return nil
}
