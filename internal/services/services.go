// Package services contains the content store's business logic: the node
// tree, localized sources, translations, schema writes, attributes and
// realms. Every mutation runs inside one dbx.Transactor unit of work and
// reaches storage through repositories vended by the RepositoryManager, so
// the same code drives PostgreSQL and the in-memory store.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/logging"
	"github.com/dmitrijs2005/nodestore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/nodestore/internal/schema"
)

// Deps bundles the collaborators shared by every service. Tx, Repos and,
// for the services that read node types, Registry are required; the rest
// default to no-op implementations.
type Deps struct {
	Tx       dbx.Transactor
	Repos    repomanager.RepositoryManager
	Registry schema.Registry
	Logger   logging.Logger
	Events   EventDispatcher
	Workflow Workflow
	Clock    func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.Events == nil {
		d.Events = NopDispatcher{}
	}
	if d.Workflow == nil {
		d.Workflow = DefaultWorkflow{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

type base struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	registry    schema.Registry
	log         logging.Logger
	events      EventDispatcher
	now         func() time.Time
}

func newBase(d Deps, component string) base {
	d = d.withDefaults()
	return base{
		tx:          d.Tx,
		repomanager: d.Repos,
		registry:    d.Registry,
		log:         d.Logger.With("component", component),
		events:      d.Events,
		now:         func() time.Time { return d.Clock().UTC() },
	}
}

// conn is the handle for reads outside a transaction.
func (b *base) conn() dbx.DBTX { return b.tx.Conn() }

// dispatch notifies the event dispatcher after a commit. Failures are logged
// and never reach the caller.
func (b *base) dispatch(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = b.now()
	}
	if err := b.events.Dispatch(ctx, e); err != nil {
		b.log.Warn(ctx, "event dispatch failed", "event", string(e.Type), "node_id", e.NodeID, "error", err)
	}
}

func (b *base) descriptor(ctx context.Context, typeName string) (*schema.Descriptor, error) {
	return schema.Resolve(ctx, b.registry, typeName)
}
