// db.go
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

// Package testutil provides database fixtures for package tests.
package testutil

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/menfessdb/internal/database"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a schema-initialized SQLite database in a per-test temp dir.
// Connections are capped at one so concurrent writers queue instead of hitting SQLITE_BUSY.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := database.GormConfig(log)
	cfg.Logger = cfg.Logger.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.InitializeSchema(db))
	return db
}

// CreateUser inserts a user directly and returns its identity.
func CreateUser(t *testing.T, db *gorm.DB, username string, batch models.Batch) *types.Identity {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		BatchYear:    batch,
	}
	require.NoError(t, db.Create(&user).Error)

	return &types.Identity{UserID: user.ID, Username: user.Username, Batch: user.BatchYear}
}

// CreateMessage inserts a song and message with an explicit timestamp.
func CreateMessage(t *testing.T, db *gorm.DB, sender *types.Identity, receiver string, batch models.Batch, anonymous bool, at time.Time) *models.Message {
	t.Helper()

	song := models.Song{Title: "Song for " + receiver, Artist: "Artist", ExternalURL: "https://open.spotify.com/track/" + receiver}
	require.NoError(t, db.Create(&song).Error)

	msg := models.Message{
		ReceiverName:    receiver,
		Content:         "hello " + receiver,
		SongID:          &song.ID,
		BatchVisibility: batch,
		IsAnonymous:     anonymous,
		CreatedAt:       at.UTC(),
	}
	if sender != nil {
		id := sender.UserID
		msg.SenderID = &id
	}
	require.NoError(t, db.Create(&msg).Error)
	return &msg
}

// Count returns the number of rows in table.
func Count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
