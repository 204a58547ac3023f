package services

import (
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// Workflow decides which status transitions are allowed.
type Workflow interface {
	Transition(n *models.Node, to models.NodeStatus) error
}

// DefaultWorkflow only moves forward, except that any status may be
// deleted and an archived node may return to draft.
type DefaultWorkflow struct{}

func (DefaultWorkflow) Transition(n *models.Node, to models.NodeStatus) error {
	from := n.Status
	switch {
	case !to.Valid():
		return fmt.Errorf("%w: unknown status %d", common.ErrorValidation, int(to))
	case from == to:
		return nil
	case to.IsDeleted(), to > from:
	case from.IsArchived() && to.IsDraft():
	default:
		return fmt.Errorf("%w: cannot go from %s to %s", common.ErrorValidation, from, to)
	}
	n.Status = to
	return nil
}
