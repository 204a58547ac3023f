// Package cli implements the nodectl commands: schema migrations, schema
// export and checks, realm resolution and sibling rebalancing.
//
// Usage:
//
//	nodectl [config flags] migrate [--drop-legacy-schema] [--yes]
//	nodectl [config flags] schema export <dir>
//	nodectl [config flags] schema check
//	nodectl [config flags] realm resolve <nodeName>
//	nodectl [config flags] tree rebalance <nodeName>
package cli
