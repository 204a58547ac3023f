// Package migrations embeds the goose SQL migrations of the content store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// LatestVersion is the highest migration version shipped.
const LatestVersion int64 = 2

// LastReversibleVersion is the highest version reachable without operator
// confirmation. Every later version drops data and cannot be rolled back.
const LastReversibleVersion int64 = 1
