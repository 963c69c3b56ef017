// Package repomanager vends repositories bound to a dbx.DBTX so services
// can run several of them inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/credhex/internal/dbx"
	"github.com/dmitrijs2005/credhex/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/credhex/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
