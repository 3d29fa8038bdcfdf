package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstate to project code, for the states the job store can actually hit
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,    // unique_violation
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation, e.g. a bad uuid
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
	"40001": ErrorCodeUnavailable,     // serialization_failure
	"40P01": ErrorCodeUnavailable,     // deadlock_detected
}

// DBErrorCode maps the Postgres error inside err. ok is false when there is none
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	var pg *pgconn.PgError
	if !stderrs.As(err, &pg) {
		return ErrorCodeUnknown, false
	}
	if c, known := pgCodes[pg.Code]; known {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with the mapped code, ErrorCodeDB when unmapped. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, _ := DBErrorCode(err)
	if code == ErrorCodeUnknown {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}
