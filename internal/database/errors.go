package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 3730
)

// classify maps a driver error onto the typed errors in pkg/models.
// Constraint violations become *models.ConflictError; everything else becomes
// *models.StorageError. sql.ErrNoRows is left to the caller, which knows the
// key that was looked up.
func classify(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := constraintReason(err); ok {
		return &models.ConflictError{Entity: entity, Reason: reason, Err: err}
	}
	return &models.StorageError{Op: op, Err: err}
}

func constraintReason(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return models.ConflictDuplicate, true
		case mysqlRowIsReferenced, mysqlRowIsReferenced2:
			return models.ConflictInUse, true
		case mysqlNoReferencedRow:
			return models.ConflictMissingParent, true
		}
		return "", false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code&0xff != sqlite3.SQLITE_CONSTRAINT {
			return "", false
		}
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return models.ConflictDuplicate, true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			// SQLite does not say which side of the key failed. Deletes go
			// through classifyDelete, which fixes the reason up.
			return models.ConflictMissingParent, true
		}
		return "constraint violation", true
	}
	return "", false
}

// classifyDelete is classify for DELETE statements, where the only foreign key
// that can fail is one pointing at the row being removed.
func classifyDelete(entity, op string, err error) error {
	err = classify(entity, op, err)
	var ce *models.ConflictError
	if errors.As(err, &ce) {
		ce.Reason = models.ConflictInUse
	}
	return err
}

// notFoundOr turns sql.ErrNoRows into a NotFoundError for entity/key and
// classifies anything else.
func notFoundOr(entity string, key interface{}, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewNotFound(entity, key)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &models.StorageError{Op: op, Err: err}
	}
	return classify(entity, op, err)
}
