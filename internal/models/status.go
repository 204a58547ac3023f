package models

import (
	"fmt"
	"strings"
)

// NodeStatus is an ordinal workflow state. Values are persisted as integers
// and compared by order.
type NodeStatus int

const (
	StatusDraft     NodeStatus = 10
	StatusPending   NodeStatus = 20
	StatusPublished NodeStatus = 30
	StatusArchived  NodeStatus = 40
	StatusDeleted   NodeStatus = 50
)

var statusNames = map[NodeStatus]string{
	StatusDraft:     "draft",
	StatusPending:   "pending",
	StatusPublished: "published",
	StatusArchived:  "archived",
	StatusDeleted:   "deleted",
}

func (s NodeStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is one of the known states.
func (s NodeStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s NodeStatus) IsDraft() bool     { return s == StatusDraft }
func (s NodeStatus) IsPending() bool   { return s == StatusPending }
func (s NodeStatus) IsPublished() bool { return s == StatusPublished }
func (s NodeStatus) IsArchived() bool  { return s == StatusArchived }
func (s NodeStatus) IsDeleted() bool   { return s == StatusDeleted }

// ParseNodeStatus accepts a state name, case-insensitively.
func ParseNodeStatus(name string) (NodeStatus, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown node status %q", name)
}
