package models

import "github.com/google/uuid"

// Sort directions.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Children order fields accepted by Node.ChildrenOrder.
const (
	OrderPosition    = "position"
	OrderNodeName    = "nodeName"
	OrderCreatedAt   = "createdAt"
	OrderUpdatedAt   = "updatedAt"
	OrderPublishedAt = "publishedAt"
)

// Node is a generic hierarchical content unit. Its content shape is given by
// the NodeType named NodeTypeName; the type is referenced by name only.
type Node struct {
	ID           uuid.UUID
	NodeName     string
	ParentID     *uuid.UUID
	NodeTypeName string
	Status       NodeStatus

	Visible         bool
	Home            bool
	Locked          bool
	HideChildren    bool
	Sterile         bool
	DynamicNodeName bool

	TTL                    int
	ChildrenOrder          string
	ChildrenOrderDirection string
	Position               float64

	Timestamps
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.ParentID == nil }

// NewNode returns a node with the defaults applied on creation.
func NewNode(name, typeName string, parentID *uuid.UUID) *Node {
	return &Node{
		ID:                     uuid.New(),
		NodeName:               name,
		ParentID:               parentID,
		NodeTypeName:           typeName,
		Status:                 StatusDraft,
		Visible:                true,
		DynamicNodeName:        true,
		ChildrenOrder:          OrderPosition,
		ChildrenOrderDirection: SortAsc,
	}
}

// NodeStackType tags a node with a secondary NodeType name, typically used to
// declare which child types a container node stacks.
type NodeStackType struct {
	NodeID       uuid.UUID
	NodeTypeName string
}
