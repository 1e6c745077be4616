// errors.go
//
// Persistence and API service for a cohort-scoped anonymous song message board
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of menfessdb.
// menfessdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// menfessdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with menfessdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/menfessdb/internal/types"
	"gorm.io/gorm"
)

// MySQL / MariaDB error numbers that mean a constraint rejected the write.
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // column cannot be null
	1062: true, // duplicate entry
	1451: true, // row is referenced
	1452: true, // referenced row missing
	3819: true, // check constraint (MySQL)
	4025: true, // check constraint (MariaDB)
}

// Driver message fragments for SQLite and SQL Server constraint failures.
var constraintMarkers = []string{
	"unique constraint failed",
	"foreign key constraint failed",
	"check constraint failed",
	"not null constraint failed",
	"violation of unique key constraint",
	"cannot insert duplicate key",
	"conflicted with the foreign key constraint",
	"conflicted with the check constraint",
}

// isConstraintViolation reports whether err is a storage constraint rejection on any supported dialect.
func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlConstraintErrors[myErr.Number]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range constraintMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// classifyWriteError maps a raw write error onto the error taxonomy.
// Already typed errors pass through unchanged.
func classifyWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := types.AsCustomError(err); ok {
		return err
	}
	if isConstraintViolation(err) {
		return types.NewIntegrityError(fmt.Sprintf("%s violates a storage constraint", what), err)
	}
	return types.NewInternalError(err)
}

// classifyTransactionError types the error returned by gorm's Transaction.
// Callbacks always return typed errors, so an untyped error came from begin or commit.
func classifyTransactionError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := types.AsCustomError(err); ok {
		return err
	}
	return types.NewTransactionError(err)
}

// classifyReadError maps a read failure, turning a missing record into NotFound for resource.
func classifyReadError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewNotFoundError(resource, id)
	}
	if _, ok := types.AsCustomError(err); ok {
		return err
	}
	return types.NewInternalError(err)
}

// outcome labels a result for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(types.KindOf(err))
}
