// Package postgres embebe las migraciones SQL para goose.
package postgres

import "embed"

//go:embed *.sql
var Migrations embed.FS
