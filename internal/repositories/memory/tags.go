package memory

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type TagRepository struct{ s *Store }

func NewTagRepository(s *Store) *TagRepository {
	return &TagRepository{s: s}
}

func (r *TagRepository) Create(_ context.Context, t *models.Tag) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.tags[t.ID]; ok {
			return duplicate("tag", t.ID)
		}
		for _, o := range a.tags {
			if o.TagName == t.TagName {
				return duplicate("tag", t.TagName)
			}
		}
		a.tags[t.ID] = copyTag(t)
		return nil
	})
}

func (r *TagRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Tag, error) {
	var out *models.Tag
	err := r.s.read(func(a *arena) error {
		t, ok := a.tags[id]
		if !ok {
			return notFound("tag", id)
		}
		out = copyTag(t)
		return nil
	})
	return out, err
}

func (r *TagRepository) GetByName(_ context.Context, name string) (*models.Tag, error) {
	var out *models.Tag
	err := r.s.read(func(a *arena) error {
		for _, t := range a.tags {
			if t.TagName == name {
				out = copyTag(t)
				return nil
			}
		}
		return notFound("tag", name)
	})
	return out, err
}

func (r *TagRepository) SetTranslation(_ context.Context, tt *models.TagTranslation) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.tags[tt.TagID]; !ok {
			return notFound("tag", tt.TagID)
		}
		for _, o := range a.tagTranslations {
			if o.TagID == tt.TagID && o.TranslationID == tt.TranslationID {
				o.Name = tt.Name
				o.Description = tt.Description
				return nil
			}
		}
		a.tagTranslations[tt.ID] = copyOf(tt)
		return nil
	})
}

func (r *TagRepository) GetTranslation(_ context.Context, tagID, translationID uuid.UUID) (*models.TagTranslation, error) {
	var out *models.TagTranslation
	err := r.s.read(func(a *arena) error {
		for _, o := range a.tagTranslations {
			if o.TagID == tagID && o.TranslationID == translationID {
				out = copyOf(o)
				return nil
			}
		}
		return notFound("tag translation", tagID)
	})
	return out, err
}

func (r *TagRepository) AddNodeTag(_ context.Context, nt *models.NodesTags) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodes[nt.NodeID]; !ok {
			return notFound("node", nt.NodeID)
		}
		if _, ok := a.tags[nt.TagID]; !ok {
			return notFound("tag", nt.TagID)
		}
		for _, o := range a.nodeTags {
			if o.NodeID == nt.NodeID && o.TagID == nt.TagID {
				return duplicate("node tag", nt.TagID)
			}
		}
		a.nodeTags[nt.ID] = copyOf(nt)
		return nil
	})
}

func (r *TagRepository) UpdateNodeTagPosition(_ context.Context, id uuid.UUID, position float64) error {
	return r.s.write(func(a *arena) error {
		nt, ok := a.nodeTags[id]
		if !ok {
			return notFound("node tag", id)
		}
		nt.Position = position
		return nil
	})
}

func (r *TagRepository) RemoveNodeTag(_ context.Context, nodeID, tagID uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		for id, o := range a.nodeTags {
			if o.NodeID == nodeID && o.TagID == tagID {
				delete(a.nodeTags, id)
				return nil
			}
		}
		return notFound("node tag", tagID)
	})
}

func (r *TagRepository) ListNodeTags(_ context.Context, nodeID uuid.UUID) ([]*models.NodesTags, error) {
	var out []*models.NodesTags
	err := r.s.read(func(a *arena) error {
		out = collect(a.nodeTags,
			func(nt *models.NodesTags) bool { return nt.NodeID == nodeID },
			copyOf[models.NodesTags],
			func(x, y *models.NodesTags) bool { return byPosition(x.Position, y.Position, x.ID, y.ID) })
		return nil
	})
	return out, err
}

func (r *TagRepository) LockNodeTags(context.Context, uuid.UUID) error { return nil }
