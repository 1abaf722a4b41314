package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// StoreError marks an error as having come back from the store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// StoreErrorKind classifies errors coming back from the store
type StoreErrorKind int

const (
	StoreErrorNone StoreErrorKind = iota
	StoreErrorDuplicate
	StoreErrorNotFound
	StoreErrorOther
)

// PostgreSQL SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// ClassifyError inspects err for a recognized store failure. The returned code is the
// driver's own error code when one is available.
func ClassifyError(err error) (StoreErrorKind, string) {
	if err == nil {
		return StoreErrorNone, ""
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StoreErrorNotFound, ""
	}

	code := driverCode(err)
	if errors.Is(err, gorm.ErrDuplicatedKey) || code == pgUniqueViolation ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return StoreErrorDuplicate, code
	}

	var se *StoreError
	if code != "" || errors.As(err, &se) {
		return StoreErrorOther, code
	}

	return StoreErrorNone, ""
}

func driverCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return fmt.Sprintf("SQLITE_%d", int(liteErr.ExtendedCode))
	}
	return ""
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	kind, _ := ClassifyError(err)
	return kind == StoreErrorDuplicate
}
