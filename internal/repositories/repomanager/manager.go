// Package repomanager wires repository constructors and database
// migrations together behind a single interface.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/goodbrews/accounts/internal/dbx"
	"github.com/goodbrews/accounts/internal/repositories/accounts"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
