// Package migrations holds the libsql schema as numbered up/down files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
