package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const cloneSuffixBytes = 3

// cloner copies one subtree inside a single transaction. ids maps every
// original node id to its copy.
type cloner struct {
	s   *NodeService
	tx  dbx.DBTX
	ids map[uuid.UUID]uuid.UUID
}

// Clone deep-copies nodeID with its subtree right after the original. Every
// copy gets fresh ids, a suffixed node name, draft status and no home flag.
// URL aliases are not copied; node references into the subtree are re-pointed
// to the copies.
func (s *NodeService) Clone(ctx context.Context, nodeID uuid.UUID) (*models.Node, error) {
	var root *models.Node
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		orig, err := repo.GetByID(ctx, nodeID)
		if err != nil {
			return err
		}
		if err := repo.LockChildren(ctx, orig.ParentID); err != nil {
			return err
		}
		siblings, err := repo.Children(ctx, orig.ParentID)
		if err != nil {
			return err
		}
		idx := indexOf(siblings, func(n *models.Node) bool { return n.ID == orig.ID })
		pos, err := placeAfter(siblings, idx, nodePosition, s.setNodePosition(ctx, tx))
		if err != nil {
			return err
		}

		c := &cloner{s: s, tx: tx, ids: map[uuid.UUID]uuid.UUID{}}
		root, err = c.node(ctx, orig, orig.ParentID, pos)
		if err != nil {
			return err
		}
		return c.references(ctx)
	})
	if err != nil {
		s.log.Warn(ctx, "node clone failed", "node_id", nodeID, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "node cloned", "node_id", nodeID, "clone_id", root.ID)
	s.dispatch(ctx, Event{Type: EventNodeCloned, NodeID: root.ID})
	return root, nil
}

func (c *cloner) node(ctx context.Context, orig *models.Node, parentID *uuid.UUID, pos float64) (*models.Node, error) {
	repo := c.s.repomanager.Nodes(c.tx)
	name, err := c.freeName(ctx, orig.NodeName)
	if err != nil {
		return nil, err
	}

	cp := *orig
	cp.ID = uuid.New()
	cp.NodeName = name
	cp.ParentID = parentID
	cp.Position = pos
	cp.Home = false
	cp.Status = models.StatusDraft
	cp.Timestamps = models.Timestamps{}
	cp.Touch(c.s.now())
	if err := repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	c.ids[orig.ID] = cp.ID

	steps := []func(context.Context, uuid.UUID, uuid.UUID) error{
		c.stackTypes, c.tags, c.sources, c.customForms, c.attributeValues,
	}
	for _, step := range steps {
		if err := step(ctx, orig.ID, cp.ID); err != nil {
			return nil, err
		}
	}

	children, err := repo.Children(ctx, &orig.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if _, err := c.node(ctx, child, &cp.ID, child.Position); err != nil {
			return nil, err
		}
	}
	return &cp, nil
}

// freeName suffixes base with random hex until no node uses the result.
func (c *cloner) freeName(ctx context.Context, base string) (string, error) {
	repo := c.s.repomanager.Nodes(c.tx)
	for range 8 {
		suffix, err := common.MakeRandHexString(cloneSuffixBytes)
		if err != nil {
			return "", err
		}
		name := base + "-" + suffix
		if _, err := repo.GetByName(ctx, name); errors.Is(err, common.ErrorNotFound) {
			return name, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: no free clone name for %s", common.ErrAlreadyExists, base)
}

func (c *cloner) stackTypes(ctx context.Context, from, to uuid.UUID) error {
	repo := c.s.repomanager.Nodes(c.tx)
	list, err := repo.ListStackTypes(ctx, from)
	if err != nil {
		return err
	}
	for _, st := range list {
		if err := repo.AddStackType(ctx, &models.NodeStackType{NodeID: to, NodeTypeName: st.NodeTypeName}); err != nil {
			return err
		}
	}
	return nil
}

func (c *cloner) tags(ctx context.Context, from, to uuid.UUID) error {
	repo := c.s.repomanager.Tags(c.tx)
	links, err := repo.ListNodeTags(ctx, from)
	if err != nil {
		return err
	}
	for _, l := range links {
		if err := repo.AddNodeTag(ctx, &models.NodesTags{ID: uuid.New(), NodeID: to, TagID: l.TagID, Position: l.Position}); err != nil {
			return err
		}
	}
	return nil
}

func (c *cloner) sources(ctx context.Context, from, to uuid.UUID) error {
	repo := c.s.repomanager.Sources(c.tx)
	list, err := repo.ListByNode(ctx, from)
	if err != nil {
		return err
	}
	for _, src := range list {
		docs, err := repo.ListAllDocuments(ctx, src.ID)
		if err != nil {
			return err
		}

		cp := *src
		cp.ID = uuid.New()
		cp.NodeID = to
		cp.Fields = src.Fields.Clone()
		cp.Timestamps = models.Timestamps{}
		cp.Touch(c.s.now())
		if err := repo.Create(ctx, &cp); err != nil {
			return err
		}
		for _, d := range docs {
			link := &models.NodesSourcesDocuments{
				ID: uuid.New(), SourceID: cp.ID, DocumentID: d.DocumentID, FieldName: d.FieldName, Position: d.Position,
			}
			if err := repo.AddDocument(ctx, link); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *cloner) customForms(ctx context.Context, from, to uuid.UUID) error {
	repo := c.s.repomanager.Sources(c.tx)
	forms, err := repo.ListAllCustomForms(ctx, from)
	if err != nil {
		return err
	}
	for _, f := range forms {
		link := &models.NodesCustomForms{
			ID: uuid.New(), NodeID: to, CustomFormID: f.CustomFormID, FieldName: f.FieldName, Position: f.Position,
		}
		if err := repo.AddCustomForm(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func (c *cloner) attributeValues(ctx context.Context, from, to uuid.UUID) error {
	repo := c.s.repomanager.Attributes(c.tx)
	values, err := repo.ListValues(ctx, from)
	if err != nil {
		return err
	}
	for _, v := range values {
		translations, err := repo.ListValueTranslations(ctx, v.ID)
		if err != nil {
			return err
		}
		cp := *v
		cp.ID = uuid.New()
		cp.NodeID = to
		cp.Timestamps = models.Timestamps{}
		cp.Touch(c.s.now())
		if err := repo.CreateValue(ctx, &cp); err != nil {
			return err
		}
		for _, vt := range translations {
			if err := repo.SetValueTranslation(ctx, &models.AttributeValueTranslation{
				ID: uuid.New(), AttributeValueID: cp.ID, TranslationID: vt.TranslationID, Value: vt.Value,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// references copies node references once every node of the subtree exists,
// so targets inside the subtree can be re-pointed to their copies.
func (c *cloner) references(ctx context.Context) error {
	repo := c.s.repomanager.Sources(c.tx)
	for from, to := range c.ids {
		refs, err := repo.ListAllNodeReferences(ctx, from)
		if err != nil {
			return err
		}
		byField := map[string][]*models.NodesToNodes{}
		var fields []string
		for _, r := range refs {
			target := r.NodeBID
			if mapped, ok := c.ids[target]; ok {
				target = mapped
			}
			if _, seen := byField[r.FieldName]; !seen {
				fields = append(fields, r.FieldName)
			}
			byField[r.FieldName] = append(byField[r.FieldName], &models.NodesToNodes{
				ID: uuid.New(), NodeAID: to, NodeBID: target, FieldName: r.FieldName, Position: r.Position,
			})
		}
		for _, f := range fields {
			if err := repo.ReplaceNodeReferences(ctx, to, f, byField[f]); err != nil {
				return err
			}
		}
	}
	return nil
}
