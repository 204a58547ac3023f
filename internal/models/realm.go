package models

import "github.com/google/uuid"

// RealmType selects how access to a realm is granted.
type RealmType string

const (
	RealmPlainPassword RealmType = "plain_password"
	RealmRole          RealmType = "role"
	RealmUser          RealmType = "user"
)

// RealmBehaviour selects what happens to content a visitor cannot access.
type RealmBehaviour string

const (
	BehaviourNone        RealmBehaviour = "none"
	BehaviourDeny        RealmBehaviour = "deny"
	BehaviourHideBlocked RealmBehaviour = "hide_blocked"
)

// InheritanceType controls how a RealmNode propagates to descendants.
type InheritanceType string

const (
	// InheritanceAuto governs every descendant until a closer binding overrides it.
	InheritanceAuto InheritanceType = "auto"
	// InheritanceInherit declares explicitly that the nearest restriction applies.
	InheritanceInherit InheritanceType = "inherit"
	// InheritanceNone confines the restriction to the bound node itself.
	InheritanceNone InheritanceType = "none"
)

// Valid reports whether t is a known inheritance type.
func (t InheritanceType) Valid() bool {
	return t == InheritanceAuto || t == InheritanceInherit || t == InheritanceNone
}

// Propagates reports whether the binding reaches the node's descendants.
func (t InheritanceType) Propagates() bool {
	return t == InheritanceAuto || t == InheritanceInherit
}

// Realm is an access-control domain. Role is the denormalized role name.
type Realm struct {
	ID                 uuid.UUID
	Type               RealmType
	Name               string
	Role               string
	Behaviour          RealmBehaviour
	SerializationGroup string
	PasswordHash       string
	Timestamps
}

// RealmNode binds one realm to one node.
type RealmNode struct {
	ID              uuid.UUID
	NodeID          uuid.UUID
	RealmID         uuid.UUID
	InheritanceType InheritanceType
}
