// accounts_test.go
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

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/testutil"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration() RegistrationInput {
	return RegistrationInput{
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "hunter22",
		BatchYear: models.Batch2024,
	}
}

func TestRegisterUser(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	user, err := RegisterUser(ctx, db, registration())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	id, err := Authenticate(ctx, db, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, models.Batch2024, id.Batch)

	_, err = Authenticate(ctx, db, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, types.ErrAuth)
	_, err = Authenticate(ctx, db, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, types.ErrAuth)
}

func TestRegisterUserDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := RegisterUser(ctx, db, registration())
	require.NoError(t, err)

	again := registration()
	again.Email = "other@example.com"
	_, err = RegisterUser(ctx, db, again)
	assert.ErrorIs(t, err, types.ErrIntegrity)

	again = registration()
	again.Username = "alice2"
	_, err = RegisterUser(ctx, db, again)
	assert.ErrorIs(t, err, types.ErrIntegrity)
}

func TestRegisterUserValidation(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := RegisterUser(context.Background(), db, RegistrationInput{
		Email:     "not-an-email",
		Password:  "123",
		BatchYear: "1999",
	})
	require.ErrorIs(t, err, types.ErrValidation)

	ce, _ := types.AsCustomError(err)
	var fields []string
	for _, f := range ce.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"username", "email", "password", "batchYear"}, fields)
	assert.Equal(t, int64(0), testutil.Count(t, db, "users"))
}

func TestResolveIdentity(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", models.Batch2022)

	id, err := ResolveIdentity(ctx, db, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, *alice, *id)

	id, err = ResolveIdentityByEmail(ctx, db, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, id.UserID)

	_, err = ResolveIdentity(ctx, db, 404)
	assert.ErrorIs(t, err, types.ErrAuth)
}

func TestUpdateProfileKeepsBatch(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user, err := RegisterUser(ctx, db, registration())
	require.NoError(t, err)
	caller := &types.Identity{UserID: user.ID, Username: user.Username, Batch: user.BatchYear}

	updated, err := UpdateProfile(ctx, db, caller, ProfileUpdate{
		Username:        "alice_new",
		Email:           "new@example.com",
		CurrentPassword: "hunter22",
		NewPassword:     "correct horse",
		ConfirmPassword: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_new", updated.Username)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, models.Batch2024, updated.BatchYear)

	_, err = Authenticate(ctx, db, "new@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestUpdateProfileRejections(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user, err := RegisterUser(ctx, db, registration())
	require.NoError(t, err)
	testutil.CreateUser(t, db, "bob", models.Batch2024)
	caller := &types.Identity{UserID: user.ID}

	_, err = UpdateProfile(ctx, db, caller, ProfileUpdate{
		Username:        "alice",
		Email:           "alice@example.com",
		CurrentPassword: "wrong",
		NewPassword:     "secret1",
		ConfirmPassword: "secret1",
	})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = UpdateProfile(ctx, db, caller, ProfileUpdate{
		Username:        "alice",
		Email:           "alice@example.com",
		CurrentPassword: "hunter22",
		NewPassword:     "secret1",
		ConfirmPassword: "secret2",
	})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = UpdateProfile(ctx, db, caller, ProfileUpdate{Username: "bob", Email: "alice@example.com"})
	assert.ErrorIs(t, err, types.ErrIntegrity)

	_, err = UpdateProfile(ctx, db, nil, ProfileUpdate{Username: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, types.ErrAuth)
}

func TestDeleteUser(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)

	require.NoError(t, DeleteUser(ctx, db, alice))
	assert.ErrorIs(t, DeleteUser(ctx, db, alice), types.ErrNotFound)

	_, err := GetUser(ctx, db, alice.UserID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
