// Package migrations embebe las migraciones SQL del store de perfiles en Postgres.
package migrations

import "embed"

// FS contiene los archivos NNNN_name_up.sql / NNNN_name_down.sql.
//
//go:embed *.sql
var FS embed.FS
