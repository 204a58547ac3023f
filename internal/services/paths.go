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
)

// ResolvedPath is the outcome of ResolvePath.
type ResolvedPath struct {
	Node        *models.Node
	Source      *models.NodesSources
	Translation *models.Translation
}

// ResolvePath maps a public path such as "/fr/about/team" to a node source.
//
// A leading segment naming an available locale selects the translation,
// otherwise the default translation is used. Each following segment is
// either a url alias, which also pins the translation of its source, or the
// name of a child of the node matched so far. The first segment may be an
// alias of any node. An empty path resolves the root node flagged as home.
func (s *SourceService) ResolvePath(ctx context.Context, path string) (*ResolvedPath, error) {
	db := s.conn()
	segments := splitPath(path)

	tr, segments, err := s.pathTranslation(ctx, db, segments)
	if err != nil {
		return nil, err
	}

	var node *models.Node
	if len(segments) == 0 {
		if node, err = s.homeNode(ctx, db); err != nil {
			return nil, err
		}
	}

	nodes := s.repomanager.Nodes(db)
	sources := s.repomanager.Sources(db)
	for i, seg := range segments {
		var parentID *uuid.UUID
		if node != nil {
			parentID = &node.ID
		}

		seg = strings.ToLower(seg)
		alias, err := sources.GetUrlAlias(ctx, seg)
		switch {
		case err == nil:
			src, err := sources.GetByID(ctx, alias.SourceID)
			if err != nil {
				return nil, err
			}
			n, err := nodes.GetByID(ctx, src.NodeID)
			if err != nil {
				return nil, err
			}
			if i > 0 && !models.SameParent(n.ParentID, parentID) {
				return nil, pathNotFound(path, seg)
			}
			if tr, err = s.repomanager.Translations(db).GetByID(ctx, src.TranslationID); err != nil {
				return nil, err
			}
			node = n
			continue
		case !errors.Is(err, common.ErrorNotFound):
			return nil, err
		}

		n, err := nodes.GetByName(ctx, seg)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, pathNotFound(path, seg)
		}
		if err != nil {
			return nil, err
		}
		if !models.SameParent(n.ParentID, parentID) {
			return nil, pathNotFound(path, seg)
		}
		node = n
	}

	src, err := sources.GetByNodeAndTranslation(ctx, node.ID, tr.ID)
	if err != nil {
		return nil, fmt.Errorf("path %q in %s: %w", path, tr.Locale, err)
	}
	return &ResolvedPath{Node: node, Source: src, Translation: tr}, nil
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func pathNotFound(path, segment string) error {
	return fmt.Errorf("%w: path %q at %q", common.ErrorNotFound, path, segment)
}

// pathTranslation consumes a leading locale segment when it names an
// available translation.
func (s *SourceService) pathTranslation(ctx context.Context, db dbx.DBTX, segments []string) (*models.Translation, []string, error) {
	repo := s.repomanager.Translations(db)
	if len(segments) > 0 {
		if locale, err := NormalizeLocale(segments[0]); err == nil {
			tr, err := repo.GetByLocale(ctx, locale)
			switch {
			case err == nil && tr.Available:
				return tr, segments[1:], nil
			case err != nil && !errors.Is(err, common.ErrorNotFound):
				return nil, nil, err
			}
		}
	}
	tr, err := repo.GetDefault(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("default translation: %w", err)
	}
	return tr, segments, nil
}

func (s *SourceService) homeNode(ctx context.Context, db dbx.DBTX) (*models.Node, error) {
	roots, err := s.repomanager.Nodes(db).Children(ctx, nil)
	if err != nil {
		return nil, err
	}
	i := indexOf(roots, func(n *models.Node) bool { return n.Home })
	if i < 0 {
		return nil, fmt.Errorf("%w: home node", common.ErrorNotFound)
	}
	return roots[i], nil
}
