package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/textx"
	"github.com/google/uuid"
)

// CreateTag stores a tag under its slugified name.
func (s *NodeService) CreateTag(ctx context.Context, name string, parentID *uuid.UUID) (*models.Tag, error) {
	slug := textx.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: tag name %q has no usable characters", common.ErrorValidation, name)
	}
	t := &models.Tag{ID: uuid.New(), TagName: slug, ParentID: parentID, Visible: true}
	t.Touch(s.now())
	if err := s.repomanager.Tags(s.conn()).Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *NodeService) SetTagTranslation(ctx context.Context, tagID, translationID uuid.UUID, name, description string) error {
	err := s.repomanager.Tags(s.conn()).SetTranslation(ctx, &models.TagTranslation{
		ID:            uuid.New(),
		TagID:         tagID,
		TranslationID: translationID,
		Name:          name,
		Description:   description,
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "tag translated", "tag_id", tagID, "translation_id", translationID)
	return nil
}

func nodeTagPosition(nt *models.NodesTags) float64 { return nt.Position }

// AddTag links tagID to nodeID after the node's existing tags.
func (s *NodeService) AddTag(ctx context.Context, nodeID, tagID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tags(tx)
		if err := repo.LockNodeTags(ctx, nodeID); err != nil {
			return err
		}
		current, err := repo.ListNodeTags(ctx, nodeID)
		if err != nil {
			return err
		}
		return repo.AddNodeTag(ctx, &models.NodesTags{
			ID:       uuid.New(),
			NodeID:   nodeID,
			TagID:    tagID,
			Position: appendAfter(current, nodeTagPosition),
		})
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "tag added", "node_id", nodeID, "tag_id", tagID)
	return nil
}

// MoveTag places tagID right after afterTagID among the node's tags, or
// first when afterTagID is nil.
func (s *NodeService) MoveTag(ctx context.Context, nodeID, tagID uuid.UUID, afterTagID *uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tags(tx)
		if err := repo.LockNodeTags(ctx, nodeID); err != nil {
			return err
		}
		all, err := repo.ListNodeTags(ctx, nodeID)
		if err != nil {
			return err
		}
		i := indexOf(all, func(nt *models.NodesTags) bool { return nt.TagID == tagID })
		if i < 0 {
			return fmt.Errorf("%w: tag %s on node %s", common.ErrorNotFound, tagID, nodeID)
		}
		moving := all[i]
		others := append(all[:i:i], all[i+1:]...)

		idx := -1
		if afterTagID != nil {
			idx = indexOf(others, func(nt *models.NodesTags) bool { return nt.TagID == *afterTagID })
			if idx < 0 {
				return fmt.Errorf("%w: tag %s on node %s", common.ErrorNotFound, afterTagID, nodeID)
			}
		}
		pos, err := placeAfter(others, idx, nodeTagPosition, func(nt *models.NodesTags, p float64) error {
			nt.Position = p
			return repo.UpdateNodeTagPosition(ctx, nt.ID, p)
		})
		if err != nil {
			return err
		}
		return repo.UpdateNodeTagPosition(ctx, moving.ID, pos)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "tag moved", "node_id", nodeID, "tag_id", tagID)
	return nil
}

func (s *NodeService) RemoveTag(ctx context.Context, nodeID, tagID uuid.UUID) error {
	if err := s.repomanager.Tags(s.conn()).RemoveNodeTag(ctx, nodeID, tagID); err != nil {
		return err
	}
	s.log.Info(ctx, "tag removed", "node_id", nodeID, "tag_id", tagID)
	return nil
}

// ListTags returns the node's tags in position order.
func (s *NodeService) ListTags(ctx context.Context, nodeID uuid.UUID) ([]*models.Tag, error) {
	repo := s.repomanager.Tags(s.conn())
	links, err := repo.ListNodeTags(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Tag, 0, len(links))
	for _, l := range links {
		t, err := repo.GetByID(ctx, l.TagID)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
