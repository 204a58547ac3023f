package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/schema"
)

func (r *Runner) migrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(r.out)
	drop := fs.Bool("drop-legacy-schema", false, "also run migrations that drop the legacy node type tables")
	yes := fs.Bool("yes", false, "skip the interactive confirmation")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() > 0 {
		return r.usage()
	}

	if *drop && !*yes {
		if !stdinIsTerminal() {
			return fmt.Errorf("%w: stdin is not a terminal, pass --yes", common.ErrConfirmationRequired)
		}
		prompt := "This drops the node type tables. Export them first with 'nodectl schema export <dir>'."
		if !Confirm(r.reader, prompt, "DROP", r.out) {
			return fmt.Errorf("%w: aborted by operator", common.ErrConfirmationRequired)
		}
	}

	err := r.app.Repos.RunMigrations(ctx, r.app.DB, *drop)
	if errors.Is(err, common.ErrConfirmationRequired) {
		fmt.Fprintln(r.out, "Pending migration drops the node type tables; rerun with --drop-legacy-schema.")
		return err
	}
	if err != nil {
		return err
	}
	r.app.Logger.Info(ctx, "migrations applied", "drop_legacy_schema", *drop)
	fmt.Fprintln(r.out, "Migrations applied.")
	return nil
}

func (r *Runner) schemaExport(ctx context.Context, dir string) error {
	if _, err := r.app.WarnUnmatchedDecorators(ctx); err != nil {
		return err
	}
	paths, err := schema.Export(ctx, r.app.Registry, dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(r.out, p)
	}
	fmt.Fprintf(r.out, "Exported %d node types.\n", len(paths))
	return nil
}

func (r *Runner) schemaCheck(ctx context.Context) error {
	if _, err := r.app.WarnUnmatchedDecorators(ctx); err != nil {
		return err
	}
	types, err := r.app.Registry.ListNodeTypes(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tFIELDS\tREQUIRED\tVERSIONED\tSEARCHABLE")
	for _, nt := range types {
		d, err := schema.Resolve(ctx, r.app.Registry, nt.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", d.Name(), len(d.Fields()),
			len(d.RequiredFields()), len(d.VersionedFields()), len(d.SearchableFields()))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	diffs, err := r.app.SchemaDiff(ctx)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		return nil
	}
	fmt.Fprintln(r.out, "Static and database definitions differ:")
	for _, d := range diffs {
		fmt.Fprintln(r.out, "  "+d)
	}
	return fmt.Errorf("%w: %d schema differences", common.ErrorValidation, len(diffs))
}

func (r *Runner) realmResolve(ctx context.Context, nodeName string) error {
	node, err := r.app.Nodes.GetByName(ctx, nodeName)
	if err != nil {
		return err
	}
	realms, err := r.app.Realms.NewResolver().ResolveAll(ctx, node.ID)
	if err != nil {
		return err
	}
	if len(realms) == 0 {
		fmt.Fprintf(r.out, "%s is not restricted.\n", node.NodeName)
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REALM\tTYPE\tBEHAVIOUR")
	for _, realm := range realms {
		fmt.Fprintf(w, "%s\t%s\t%s\n", realm.Name, realm.Type, realm.Behaviour)
	}
	return w.Flush()
}

func (r *Runner) treeRebalance(ctx context.Context, nodeName string) error {
	node, err := r.app.Nodes.GetByName(ctx, nodeName)
	if err != nil {
		return err
	}
	n, err := r.app.Nodes.Rebalance(ctx, &node.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Renumbered %d children of %s.\n", n, node.NodeName)
	return nil
}
