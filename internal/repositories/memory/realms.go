package memory

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type RealmRepository struct{ s *Store }

func NewRealmRepository(s *Store) *RealmRepository {
	return &RealmRepository{s: s}
}

func (r *RealmRepository) Create(_ context.Context, realm *models.Realm) error {
	return r.s.write(func(a *arena) error {
		for _, o := range a.realms {
			if o.ID == realm.ID || o.Name == realm.Name {
				return duplicate("realm", realm.Name)
			}
		}
		a.realms[realm.ID] = copyOf(realm)
		return nil
	})
}

func (r *RealmRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Realm, error) {
	var out *models.Realm
	err := r.s.read(func(a *arena) error {
		realm, ok := a.realms[id]
		if !ok {
			return notFound("realm", id)
		}
		out = copyOf(realm)
		return nil
	})
	return out, err
}

func (r *RealmRepository) GetByName(_ context.Context, name string) (*models.Realm, error) {
	var out *models.Realm
	err := r.s.read(func(a *arena) error {
		for _, realm := range a.realms {
			if realm.Name == name {
				out = copyOf(realm)
				return nil
			}
		}
		return notFound("realm", name)
	})
	return out, err
}

func (r *RealmRepository) List(_ context.Context) ([]*models.Realm, error) {
	var out []*models.Realm
	err := r.s.read(func(a *arena) error {
		out = collect(a.realms,
			func(*models.Realm) bool { return true },
			copyOf[models.Realm],
			func(x, y *models.Realm) bool { return x.Name < y.Name })
		return nil
	})
	return out, err
}

func (r *RealmRepository) Bind(_ context.Context, rn *models.RealmNode) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodes[rn.NodeID]; !ok {
			return notFound("node", rn.NodeID)
		}
		if _, ok := a.realms[rn.RealmID]; !ok {
			return notFound("realm", rn.RealmID)
		}
		for _, o := range a.realmNodes {
			if o.NodeID == rn.NodeID && o.RealmID == rn.RealmID {
				return duplicate("realm binding", rn.RealmID)
			}
		}
		a.realmNodes[rn.ID] = copyOf(rn)
		return nil
	})
}

func (r *RealmRepository) Unbind(_ context.Context, nodeID, realmID uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		for id, o := range a.realmNodes {
			if o.NodeID == nodeID && o.RealmID == realmID {
				delete(a.realmNodes, id)
				return nil
			}
		}
		return notFound("realm binding", realmID)
	})
}

func (r *RealmRepository) ListBindings(_ context.Context, nodeID uuid.UUID) ([]*models.RealmNode, error) {
	var out []*models.RealmNode
	err := r.s.read(func(a *arena) error {
		out = collect(a.realmNodes,
			func(rn *models.RealmNode) bool { return rn.NodeID == nodeID },
			copyOf[models.RealmNode],
			func(x, y *models.RealmNode) bool { return bytes.Compare(x.ID[:], y.ID[:]) < 0 })
		return nil
	})
	return out, err
}
