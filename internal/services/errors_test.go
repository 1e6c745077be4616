// errors_test.go
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
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.Kind
	}{
		{"gorm duplicate", gorm.ErrDuplicatedKey, types.KindIntegrity},
		{"gorm foreign key", fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated), types.KindIntegrity},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, types.KindIntegrity},
		{"mysql check", &mysql.MySQLError{Number: 3819, Message: "Check constraint violated"}, types.KindIntegrity},
		{"mariadb check", &mysql.MySQLError{Number: 4025, Message: "CONSTRAINT failed"}, types.KindIntegrity},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"}, types.KindInternal},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, types.KindIntegrity},
		{"postgres check", &pgconn.PgError{Code: "23514"}, types.KindIntegrity},
		{"postgres deadlock", &pgconn.PgError{Code: "40P01"}, types.KindInternal},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: likes.message_id, likes.user_id (2067)"), types.KindIntegrity},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), types.KindIntegrity},
		{"sqlserver duplicate", errors.New("mssql: Cannot insert duplicate key row in object 'dbo.likes'"), types.KindIntegrity},
		{"unrelated", errors.New("connection reset by peer"), types.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyWriteError(tt.err, "like")
			assert.Equal(t, tt.want, types.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyPassesTypedErrorsThrough(t *testing.T) {
	typed := types.NewNotFoundError("message", 1)
	assert.Same(t, typed, classifyWriteError(typed, "like"))
	assert.Same(t, typed, classifyTransactionError(typed))
	assert.Nil(t, classifyWriteError(nil, "like"))
	assert.Nil(t, classifyTransactionError(nil))

	assert.Equal(t, types.KindTransaction, types.KindOf(classifyTransactionError(errors.New("commit failed"))))
	assert.Equal(t, types.KindNotFound, types.KindOf(classifyReadError(gorm.ErrRecordNotFound, "user", 3)))
}
