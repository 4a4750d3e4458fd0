package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
)

// Diagnostics is the log-only view of an error chain. None of it is sent
// to clients.
type Diagnostics struct {
	Message string
	Code    Code
	Chain   []string

	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string

	MongoDuplicateKey bool
	MongoTimeout      bool
}

// Diagnose walks err's unwrap chain and pulls driver-specific fields out of
// Postgres and Mongo errors.
func Diagnose(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}

	d := Diagnostics{Message: err.Error(), Code: CodeOf(err)}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T", e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case stdErrors.As(err, &pgxErr):
		d.SQLState = pgxErr.Code
		d.Constraint = pgxErr.ConstraintName
		d.Table = pgxErr.TableName
		d.Column = pgxErr.ColumnName
		d.Detail = pgxErr.Detail
	case stdErrors.As(err, &pqErr):
		d.SQLState = string(pqErr.Code)
		d.Constraint = pqErr.Constraint
		d.Table = pqErr.Table
		d.Column = pqErr.Column
		d.Detail = pqErr.Detail
	}

	d.MongoDuplicateKey = mongo.IsDuplicateKeyError(err)
	d.MongoTimeout = mongo.IsTimeout(err)
	return d
}

// Fields renders the diagnostics as structured log fields, omitting empty
// values.
func (d Diagnostics) Fields() map[string]any {
	fields := map[string]any{}
	put := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	put("error_code", string(d.Code))
	put("pg_code", d.SQLState)
	put("pg_constraint", d.Constraint)
	put("pg_table", d.Table)
	put("pg_column", d.Column)
	put("pg_detail", d.Detail)
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	if d.MongoDuplicateKey {
		fields["mongo_duplicate_key"] = true
	}
	if d.MongoTimeout {
		fields["mongo_timeout"] = true
	}
	return fields
}
