// Package migrations embeds the SQL schema files so test fixtures and
// deployment tooling can apply them without reaching into the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
