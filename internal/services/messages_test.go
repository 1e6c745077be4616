// messages_test.go
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
	"context"
	"testing"
	"time"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/testutil"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMessage(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	msg := testutil.CreateMessage(t, db, alice, "Alex", models.Batch2024, true, feedEpoch)

	item, err := GetMessage(context.Background(), db, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, AnonymousName, item.SenderName)
	assert.True(t, feedEpoch.Equal(item.CreatedAt))

	_, err = GetMessage(context.Background(), db, 404)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListUserMessages(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	bob := testutil.CreateUser(t, db, "bob", models.Batch2024)
	testutil.CreateMessage(t, db, alice, "first", models.Batch2024, false, feedEpoch)
	testutil.CreateMessage(t, db, alice, "second", models.Batch2023, true, feedEpoch.Add(time.Hour))
	testutil.CreateMessage(t, db, bob, "other", models.Batch2024, false, feedEpoch)

	items, err := ListUserMessages(context.Background(), db, alice)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].ReceiverName)
	assert.Equal(t, "first", items[1].ReceiverName)

	_, err = ListUserMessages(context.Background(), db, nil)
	assert.ErrorIs(t, err, types.ErrAuth)
}

func TestDeleteMessage(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	bob := testutil.CreateUser(t, db, "bob", models.Batch2024)
	ctx := context.Background()
	msg := testutil.CreateMessage(t, db, alice, "Alex", models.Batch2024, false, feedEpoch)
	require.NoError(t, AddLike(ctx, db, msg.ID, bob))

	assert.ErrorIs(t, DeleteMessage(ctx, db, msg.ID, bob), types.ErrAuth)
	require.NoError(t, DeleteMessage(ctx, db, msg.ID, alice))
	assert.ErrorIs(t, DeleteMessage(ctx, db, msg.ID, alice), types.ErrNotFound)

	assert.Equal(t, int64(0), testutil.Count(t, db, "messages"))
	assert.Equal(t, int64(0), testutil.Count(t, db, "likes"))
	assert.Equal(t, int64(1), testutil.Count(t, db, "songs"))
}

func TestDeleteSongMissing(t *testing.T) {
	db := testutil.NewDB(t)
	assert.ErrorIs(t, DeleteSong(context.Background(), db, 404), types.ErrNotFound)
}
