package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/mintforge/edition-engine/internal/postgres"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
)

// Make sure Repository implements the datagateway interfaces.
var (
	_ datagateway.EditionsDataGateway       = (*Repository)(nil)
	_ datagateway.EditionsDataGatewayWithTx = (*Repository)(nil)
	_ datagateway.EngineInfoDataGateway     = (*Repository)(nil)
)

type Repository struct {
	db postgres.DB
	// q is the active query target: the bound transaction if one was begun,
	// the bare connection pool otherwise.
	q  postgres.Queryable
	tx pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db: db,
		q:  db,
	}
}
