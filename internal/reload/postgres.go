package reload

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// OpenPostgres opens a *sql.DB for Config.DB using the pgx driver, the same
// driver guard/internal/store used for its policy rows. Callers that already
// manage their own *sql.DB (connection pooling, tracing) can set Config.DB
// directly instead.
func OpenPostgres(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
