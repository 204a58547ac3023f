// Package memory is an in-process arena implementing every repository
// interface. Entities live in maps keyed by id and are copied on the way in
// and out, so callers never alias stored state. It backs service tests and
// the nodectl dry runs.
package memory

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

// Store is the shared arena. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.RWMutex
	a  *arena
}

type stackKey struct {
	nodeID   uuid.UUID
	typeName string
}

type arena struct {
	translations map[uuid.UUID]*models.Translation
	nodeTypes    map[uuid.UUID]*models.NodeType
	nodes        map[uuid.UUID]*models.Node
	stackTypes   map[stackKey]struct{}

	tags            map[uuid.UUID]*models.Tag
	tagTranslations map[uuid.UUID]*models.TagTranslation
	nodeTags        map[uuid.UUID]*models.NodesTags

	documents   map[uuid.UUID]*models.Document
	customForms map[uuid.UUID]*models.CustomForm

	sources         map[uuid.UUID]*models.NodesSources
	sourceDocuments map[uuid.UUID]*models.NodesSourcesDocuments
	nodeRefs        map[uuid.UUID]*models.NodesToNodes
	nodeForms       map[uuid.UUID]*models.NodesCustomForms
	aliases         map[uuid.UUID]*models.UrlAlias

	realms     map[uuid.UUID]*models.Realm
	realmNodes map[uuid.UUID]*models.RealmNode

	attrGroups            map[uuid.UUID]*models.AttributeGroup
	attrGroupTranslations map[uuid.UUID]*models.AttributeGroupTranslation
	attributes            map[uuid.UUID]*models.Attribute
	attrTranslations      map[uuid.UUID]*models.AttributeTranslation
	attrDocuments         map[uuid.UUID]*models.AttributeDocument
	attrValues            map[uuid.UUID]*models.AttributeValue
	attrValueTranslations map[uuid.UUID]*models.AttributeValueTranslation

	audit map[uuid.UUID]*models.AuditEntry
}

func NewStore() *Store {
	return &Store{a: newArena()}
}

func newArena() *arena {
	return &arena{
		translations:          map[uuid.UUID]*models.Translation{},
		nodeTypes:             map[uuid.UUID]*models.NodeType{},
		nodes:                 map[uuid.UUID]*models.Node{},
		stackTypes:            map[stackKey]struct{}{},
		tags:                  map[uuid.UUID]*models.Tag{},
		tagTranslations:       map[uuid.UUID]*models.TagTranslation{},
		nodeTags:              map[uuid.UUID]*models.NodesTags{},
		documents:             map[uuid.UUID]*models.Document{},
		customForms:           map[uuid.UUID]*models.CustomForm{},
		sources:               map[uuid.UUID]*models.NodesSources{},
		sourceDocuments:       map[uuid.UUID]*models.NodesSourcesDocuments{},
		nodeRefs:              map[uuid.UUID]*models.NodesToNodes{},
		nodeForms:             map[uuid.UUID]*models.NodesCustomForms{},
		aliases:               map[uuid.UUID]*models.UrlAlias{},
		realms:                map[uuid.UUID]*models.Realm{},
		realmNodes:            map[uuid.UUID]*models.RealmNode{},
		attrGroups:            map[uuid.UUID]*models.AttributeGroup{},
		attrGroupTranslations: map[uuid.UUID]*models.AttributeGroupTranslation{},
		attributes:            map[uuid.UUID]*models.Attribute{},
		attrTranslations:      map[uuid.UUID]*models.AttributeTranslation{},
		attrDocuments:         map[uuid.UUID]*models.AttributeDocument{},
		attrValues:            map[uuid.UUID]*models.AttributeValue{},
		attrValueTranslations: map[uuid.UUID]*models.AttributeValueTranslation{},
		audit:                 map[uuid.UUID]*models.AuditEntry{},
	}
}

// snapshot deep copies the arena.
func (s *Store) snapshot() *arena {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.a
	return &arena{
		translations:          cloneMap(a.translations, copyTranslation),
		nodeTypes:             cloneMap(a.nodeTypes, (*models.NodeType).Clone),
		nodes:                 cloneMap(a.nodes, copyNode),
		stackTypes:            cloneSet(a.stackTypes),
		tags:                  cloneMap(a.tags, copyTag),
		tagTranslations:       cloneMap(a.tagTranslations, copyOf[models.TagTranslation]),
		nodeTags:              cloneMap(a.nodeTags, copyOf[models.NodesTags]),
		documents:             cloneMap(a.documents, copyOf[models.Document]),
		customForms:           cloneMap(a.customForms, copyOf[models.CustomForm]),
		sources:               cloneMap(a.sources, copySource),
		sourceDocuments:       cloneMap(a.sourceDocuments, copyOf[models.NodesSourcesDocuments]),
		nodeRefs:              cloneMap(a.nodeRefs, copyOf[models.NodesToNodes]),
		nodeForms:             cloneMap(a.nodeForms, copyOf[models.NodesCustomForms]),
		aliases:               cloneMap(a.aliases, copyOf[models.UrlAlias]),
		realms:                cloneMap(a.realms, copyOf[models.Realm]),
		realmNodes:            cloneMap(a.realmNodes, copyOf[models.RealmNode]),
		attrGroups:            cloneMap(a.attrGroups, copyOf[models.AttributeGroup]),
		attrGroupTranslations: cloneMap(a.attrGroupTranslations, copyOf[models.AttributeGroupTranslation]),
		attributes:            cloneMap(a.attributes, copyAttribute),
		attrTranslations:      cloneMap(a.attrTranslations, copyAttributeTranslation),
		attrDocuments:         cloneMap(a.attrDocuments, copyOf[models.AttributeDocument]),
		attrValues:            cloneMap(a.attrValues, copyAttributeValue),
		attrValueTranslations: cloneMap(a.attrValueTranslations, copyValueTranslation),
		audit:                 cloneMap(a.audit, copyAudit),
	}
}

func (s *Store) restore(a *arena) {
	s.mu.Lock()
	s.a = a
	s.mu.Unlock()
}

func (s *Store) read(fn func(a *arena) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.a)
}

func (s *Store) write(fn func(a *arena) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.a)
}

func cloneMap[K comparable, V any](m map[K]*V, cp func(*V) *V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func cloneSet[K comparable](m map[K]struct{}) map[K]struct{} {
	out := make(map[K]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTranslation(t *models.Translation) *models.Translation {
	c := *t
	c.OverrideLocale = copyString(t.OverrideLocale)
	return &c
}

func copyTag(t *models.Tag) *models.Tag {
	c := *t
	c.ParentID = copyUUID(t.ParentID)
	return &c
}

func copyNode(n *models.Node) *models.Node {
	c := *n
	c.ParentID = copyUUID(n.ParentID)
	return &c
}

func copySource(s *models.NodesSources) *models.NodesSources {
	c := *s
	c.Fields = s.Fields.Clone()
	if s.PublishedAt != nil {
		t := *s.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

func copyAttribute(a *models.Attribute) *models.Attribute {
	c := *a
	c.GroupID = copyUUID(a.GroupID)
	c.DefaultRealmID = copyUUID(a.DefaultRealmID)
	return &c
}

func copyAttributeTranslation(t *models.AttributeTranslation) *models.AttributeTranslation {
	c := *t
	c.Options = append([]string(nil), t.Options...)
	return &c
}

func copyAttributeValue(v *models.AttributeValue) *models.AttributeValue {
	c := *v
	c.RealmID = copyUUID(v.RealmID)
	return &c
}

func copyValueTranslation(v *models.AttributeValueTranslation) *models.AttributeValueTranslation {
	c := *v
	c.Value = copyString(v.Value)
	return &c
}

func copyAudit(e *models.AuditEntry) *models.AuditEntry {
	c := *e
	c.OldValue = bytes.Clone(e.OldValue)
	c.NewValue = bytes.Clone(e.NewValue)
	return &c
}

func notFound(what string, key any) error {
	return fmt.Errorf("%w: %s %v", common.ErrorNotFound, what, key)
}

func duplicate(what string, key any) error {
	return fmt.Errorf("%w: %s %v", common.ErrAlreadyExists, what, key)
}

// collect filters m, copies the matches and sorts them with less.
func collect[V any](m map[uuid.UUID]*V, keep func(*V) bool, cp func(*V) *V, less func(a, b *V) bool) []*V {
	var out []*V
	for _, v := range m {
		if keep(v) {
			out = append(out, cp(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// byPosition orders by position, then id, like the SQL repositories.
func byPosition(pa, pb float64, ia, ib uuid.UUID) bool {
	if pa != pb {
		return pa < pb
	}
	return bytes.Compare(ia[:], ib[:]) < 0
}
