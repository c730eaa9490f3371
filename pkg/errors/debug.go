package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DatabaseFields are the parts of a Postgres error worth logging. Only the
// audit store produces them.
type DatabaseFields struct {
	Code       string `json:"pg_code,omitempty"`
	Table      string `json:"pg_table,omitempty"`
	Constraint string `json:"pg_constraint,omitempty"`
	Column     string `json:"pg_column,omitempty"`
	Detail     string `json:"pg_detail,omitempty"`
	Message    string `json:"pg_message,omitempty"`
}

// ErrorDump is the log-side view of an error; it may contain text that is
// never shown to console users.
type ErrorDump struct {
	TopMessage string          `json:"top_message"`
	Code       Code            `json:"code,omitempty"`
	Retryable  bool            `json:"retryable,omitempty"`
	Chain      []string        `json:"chain,omitempty"`
	Database   *DatabaseFields `json:"database,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		d.Retryable = MetadataFor(d.Code).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.Database = databaseFields(err)
	return d
}

func databaseFields(err error) *DatabaseFields {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &DatabaseFields{
			Code:       pgErr.Code,
			Table:      pgErr.TableName,
			Constraint: pgErr.ConstraintName,
			Column:     pgErr.ColumnName,
			Detail:     pgErr.Detail,
			Message:    pgErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DatabaseFields{
			Code:       string(pqErr.Code),
			Table:      pqErr.Table,
			Constraint: pqErr.Constraint,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
