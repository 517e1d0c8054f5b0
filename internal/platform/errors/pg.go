package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the lookup store can produce.
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,
	"23503": ErrorCodeInvalidArgument,
	"23502": ErrorCodeValidation,
	"23514": ErrorCodeValidation,
	"22001": ErrorCodeInvalidArgument,
	"22P02": ErrorCodeInvalidArgument,
	"25006": ErrorCodeUnavailable,
	"57P03": ErrorCodeUnavailable,
}

// serialization failure, deadlock, lock not available
var pgRetry = map[string]bool{"40001": true, "40P01": true, "55P03": true}

var retryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(err, &pe)
	return pe, ok
}

// DBErrorCode classifies a *pgconn.PgError. ok is false for anything else.
func DBErrorCode(err error) (ErrorCode, bool) {
	pe, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if code, ok := pgCodes[pe.Code]; ok {
		return code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err under its mapped code. nil stays nil.
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresWithField is FromPostgres plus the offending column, taken from
// the PgError column or the trailing token of its constraint name.
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	pe, ok := pgError(err)
	if !ok {
		return out
	}
	if col := strings.TrimSpace(pe.ColumnName); col != "" {
		return WithField(out, col)
	}
	c := pe.ConstraintName
	if i := strings.LastIndexByte(c, '_'); i >= 0 && i < len(c)-1 && c[i+1:] != "key" {
		return WithField(out, c[i+1:])
	}
	return out
}

// Retryable reports transient database contention. Context cancellation is
// never retryable.
func Retryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := pgError(err); ok {
		return pgRetry[pe.Code]
	}
	s := strings.ToLower(Root(err).Error())
	for _, t := range retryText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
