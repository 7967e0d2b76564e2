// Package migrations provides embedded SQL migration files.
// They are applied at server startup and by testutil before integration
// tests; the golang-migrate CLI works against the same directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
