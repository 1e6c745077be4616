// health_test.go
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

	"github.com/localnerve/menfessdb/internal/config"
	"github.com/localnerve/menfessdb/internal/database"
	"github.com/localnerve/menfessdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{DBType: "sqlite"}

	result := HealthCheck(context.Background(), cfg, db)
	assert.True(t, result.Healthy())
	assert.Equal(t, "ok", result.Database)
	assert.Empty(t, result.Authorizer)

	cfg.AuthzURL = "http://127.0.0.1:1"
	result = HealthCheck(context.Background(), cfg, db)
	assert.False(t, result.Healthy())
	assert.Equal(t, "unreachable", result.Authorizer)
	assert.Contains(t, result.ErrorMessage, "Authorizer ping failed")

	require.NoError(t, database.Close(db))
	result = HealthCheck(context.Background(), &config.Config{DBType: "sqlite"}, db)
	assert.False(t, result.Healthy())
	assert.Equal(t, "unreachable", result.Database)
}

func TestValidateSessionWithoutClient(t *testing.T) {
	if IsAuthorizerInitialized() {
		t.Skip("authorizer client already initialized")
	}
	_, err := ValidateSession("cookie", []string{"user"})
	assert.EqualError(t, err, "authorizer client not initialized")
}
