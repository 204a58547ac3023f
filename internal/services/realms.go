package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/cryptox"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

// RealmService manages realms and their node bindings. Every binding write
// bumps an epoch that invalidates the caches of live Resolvers.
type RealmService struct {
	base
	epoch atomic.Uint64
}

func NewRealmService(d Deps) *RealmService {
	return &RealmService{base: newBase(d, "realms")}
}

type RealmInput struct {
	Name               string
	Type               models.RealmType
	Role               string
	Behaviour          models.RealmBehaviour
	SerializationGroup string
	// Password is required for plain password realms and wiped after hashing.
	Password []byte
}

func (s *RealmService) CreateRealm(ctx context.Context, in RealmInput) (*models.Realm, error) {
	defer common.WipeByteArray(in.Password)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: realm name is empty", common.ErrorValidation)
	}
	r := &models.Realm{
		ID:                 uuid.New(),
		Type:               in.Type,
		Name:               name,
		Role:               strings.TrimSpace(in.Role),
		Behaviour:          in.Behaviour,
		SerializationGroup: in.SerializationGroup,
	}
	if r.Behaviour == "" {
		r.Behaviour = models.BehaviourNone
	}
	switch r.Type {
	case models.RealmPlainPassword:
		if len(in.Password) == 0 {
			return nil, fmt.Errorf("%w: realm %s needs a password", common.ErrorValidation, name)
		}
		r.PasswordHash = cryptox.HashPassword(in.Password)
	case models.RealmRole:
		if r.Role == "" {
			return nil, fmt.Errorf("%w: realm %s needs a role", common.ErrorValidation, name)
		}
	case models.RealmUser:
	default:
		return nil, fmt.Errorf("%w: unknown realm type %q", common.ErrorValidation, in.Type)
	}
	r.Touch(s.now())

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Realms(tx)
		_, err := repo.GetByName(ctx, name)
		switch {
		case err == nil:
			return fmt.Errorf("%w: realm %s", common.ErrAlreadyExists, name)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		return repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "realm created", "realm_id", r.ID, "name", name, "type", string(r.Type))
	return r, nil
}

func (s *RealmService) GetByName(ctx context.Context, name string) (*models.Realm, error) {
	return s.repomanager.Realms(s.conn()).GetByName(ctx, strings.TrimSpace(name))
}

func (s *RealmService) List(ctx context.Context) ([]*models.Realm, error) {
	return s.repomanager.Realms(s.conn()).List(ctx)
}

// CheckPassword reports whether candidate opens a plain password realm.
func (s *RealmService) CheckPassword(ctx context.Context, realmID uuid.UUID, candidate []byte) (bool, error) {
	r, err := s.repomanager.Realms(s.conn()).GetByID(ctx, realmID)
	if err != nil {
		return false, err
	}
	if r.Type != models.RealmPlainPassword {
		return false, fmt.Errorf("%w: realm %s is not password protected", common.ErrorValidation, r.Name)
	}
	return cryptox.VerifyPassword(r.PasswordHash, candidate)
}

func (s *RealmService) Bind(ctx context.Context, realmID, nodeID uuid.UUID, inheritance models.InheritanceType) (*models.RealmNode, error) {
	if inheritance == "" {
		inheritance = models.InheritanceAuto
	}
	if !inheritance.Valid() {
		return nil, fmt.Errorf("%w: unknown inheritance type %q", common.ErrorValidation, inheritance)
	}
	rn := &models.RealmNode{ID: uuid.New(), NodeID: nodeID, RealmID: realmID, InheritanceType: inheritance}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Nodes(tx).GetByID(ctx, nodeID); err != nil {
			return err
		}
		repo := s.repomanager.Realms(tx)
		if _, err := repo.GetByID(ctx, realmID); err != nil {
			return err
		}
		return repo.Bind(ctx, rn)
	})
	if err != nil {
		return nil, err
	}
	s.epoch.Add(1)
	s.log.Info(ctx, "realm bound", "realm_id", realmID, "node_id", nodeID, "inheritance", string(inheritance))
	return rn, nil
}

func (s *RealmService) Unbind(ctx context.Context, realmID, nodeID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Realms(tx).Unbind(ctx, nodeID, realmID)
	})
	if err != nil {
		return err
	}
	s.epoch.Add(1)
	s.log.Info(ctx, "realm unbound", "realm_id", realmID, "node_id", nodeID)
	return nil
}

// Resolver answers which realms govern a node. It is meant to live for one
// request; results are memoized until a binding changes. Moving or deleting
// nodes does not reset it: a request that reparents a subtree must resolve
// through a new Resolver afterwards.
type Resolver struct {
	svc *RealmService

	mu       sync.Mutex
	epoch    uint64
	resolved map[uuid.UUID][]*models.Realm
	// passed holds what a node hands down to its children; nil blocks.
	passed map[uuid.UUID][]*models.Realm
	realms map[uuid.UUID]*models.Realm
}

func (s *RealmService) NewResolver() *Resolver {
	r := &Resolver{svc: s}
	r.reset(s.epoch.Load())
	return r
}

func (r *Resolver) reset(epoch uint64) {
	r.epoch = epoch
	r.resolved = map[uuid.UUID][]*models.Realm{}
	r.passed = map[uuid.UUID][]*models.Realm{}
	r.realms = map[uuid.UUID]*models.Realm{}
}

// Resolve returns the realm governing nodeID, or nil when the node is
// unrestricted. With several realms at the governing level the first bound
// one wins.
func (r *Resolver) Resolve(ctx context.Context, nodeID uuid.UUID) (*models.Realm, error) {
	all, err := r.ResolveAll(ctx, nodeID)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// ResolveAll returns every realm bound at the level governing nodeID.
//
// Bindings on the node itself apply whatever their inheritance type.
// Otherwise the closest ancestor carrying bindings decides: its auto and
// inherit bindings apply, and with none of those the node is unrestricted.
func (r *Resolver) ResolveAll(ctx context.Context, nodeID uuid.UUID) ([]*models.Realm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.svc.epoch.Load(); e != r.epoch {
		r.reset(e)
	}
	if out, ok := r.resolved[nodeID]; ok {
		return out, nil
	}

	db := r.svc.conn()
	own, err := r.svc.repomanager.Realms(db).ListBindings(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if len(own) > 0 {
		out, err := r.realmsOf(ctx, db, own, false)
		if err != nil {
			return nil, err
		}
		r.resolved[nodeID] = out
		return out, nil
	}

	ancestors, err := r.svc.repomanager.Nodes(db).Ancestors(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	var (
		out     []*models.Realm
		visited []uuid.UUID
	)
	for _, a := range ancestors {
		if p, ok := r.passed[a.ID]; ok {
			out = p
			break
		}
		visited = append(visited, a.ID)
		bindings, err := r.svc.repomanager.Realms(db).ListBindings(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if len(bindings) == 0 {
			continue
		}
		if out, err = r.realmsOf(ctx, db, bindings, true); err != nil {
			return nil, err
		}
		break
	}
	for _, id := range visited {
		r.passed[id] = out
	}
	r.resolved[nodeID] = out
	return out, nil
}

func (r *Resolver) realmsOf(ctx context.Context, db dbx.DBTX, bindings []*models.RealmNode, propagatingOnly bool) ([]*models.Realm, error) {
	var out []*models.Realm
	for _, b := range bindings {
		if propagatingOnly && !b.InheritanceType.Propagates() {
			continue
		}
		realm, ok := r.realms[b.RealmID]
		if !ok {
			var err error
			if realm, err = r.svc.repomanager.Realms(db).GetByID(ctx, b.RealmID); err != nil {
				return nil, err
			}
			r.realms[b.RealmID] = realm
		}
		out = append(out, realm)
	}
	return out, nil
}
