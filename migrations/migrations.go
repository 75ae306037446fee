// migrations встраивает SQL-миграции схемы Paleta в бинарник.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
