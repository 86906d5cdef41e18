// Package migrations holds the goose migrations for the postgres record store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
