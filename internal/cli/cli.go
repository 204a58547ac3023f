package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/app"
)

// ErrUsage reports a malformed command line. Usage has already been printed.
var ErrUsage = errors.New("invalid usage")

const usage = `Usage:
  nodectl [config flags] migrate [--drop-legacy-schema] [--yes]
  nodectl [config flags] schema export <dir>
  nodectl [config flags] schema check
  nodectl [config flags] realm resolve <nodeName>
  nodectl [config flags] tree rebalance <nodeName>

Config flags: -c file -d dsn -s database|static|chain -p dir -f decorators -l level -o json|text|zap -t seconds
`

// Runner executes one nodectl command against an App.
type Runner struct {
	app    *app.App
	reader *bufio.Reader
	out    io.Writer
}

func NewRunner(a *app.App, in io.Reader, out io.Writer) *Runner {
	return &Runner{app: a, reader: bufio.NewReader(in), out: out}
}

// Run dispatches args, already stripped of config flags, and records the
// command's duration and result.
func (r *Runner) Run(ctx context.Context, args []string) error {
	start := time.Now()
	err := r.dispatch(ctx, args)
	r.app.Metrics.RecordCommand(commandName(args), time.Since(start), err)
	return err
}

func (r *Runner) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return r.usage()
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "migrate":
		return r.migrate(ctx, args)
	case "schema":
		switch {
		case matches(args, "export", 1):
			return r.schemaExport(ctx, args[1])
		case matches(args, "check", 0):
			return r.schemaCheck(ctx)
		}
	case "realm":
		if matches(args, "resolve", 1) {
			return r.realmResolve(ctx, args[1])
		}
	case "tree":
		if matches(args, "rebalance", 1) {
			return r.treeRebalance(ctx, args[1])
		}
	case "help", "-h", "--help":
		fmt.Fprint(r.out, usage)
		return nil
	}
	return r.usage()
}

func (r *Runner) usage() error {
	fmt.Fprint(r.out, usage)
	return ErrUsage
}

// commandName is the metric label for args: the command and, for grouped
// commands, its subcommand.
func commandName(args []string) string {
	if len(args) == 0 {
		return "none"
	}
	switch args[0] {
	case "migrate":
		return args[0]
	case "schema", "realm", "tree":
		if len(args) > 1 {
			return args[0] + " " + args[1]
		}
		return args[0]
	default:
		return "other"
	}
}

// matches reports whether args is sub followed by exactly n operands.
func matches(args []string, sub string, n int) bool {
	return len(args) == n+1 && args[0] == sub
}
