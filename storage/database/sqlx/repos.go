// Package sqlxrepos implements the core repositories over database/sql with sqlx. Queries are
// written with `?` placeholders and rebound for the connection's driver.
package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// trapNoRowsErr maps "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// in expands the slice args of query and rebinds it for db.
func in(db *sqlx.DB, query string, args ...interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, errors.Wrap(err, "expanding query")
	}
	return db.Rebind(q), a, nil
}

func like(s string) string {
	return "%" + s + "%"
}
