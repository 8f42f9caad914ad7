package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_form_schemas.sql
var createFormSchemasSQL string

//go:embed 0002_create_applications.sql
var createApplicationsSQL string

var Migrations = migrate.NewMigrations()
