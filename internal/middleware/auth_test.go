// auth_test.go
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

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/handlers"
	"github.com/localnerve/menfessdb/internal/middleware"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/testutil"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthGate(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2023)

	var gotRoles []string
	gate := &middleware.AuthGate{
		DB: db,
		Validate: func(cookie string, roles []string) (*services.SessionUser, error) {
			gotRoles = roles
			if cookie == "bad" {
				return nil, errors.New("expired")
			}
			return &services.SessionUser{ID: "sub-" + cookie, Email: cookie}, nil
		},
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/whoami", gate.AuthUser(), func(c *fiber.Ctx) error {
		return c.JSON(middleware.Identity(c))
	})
	app.Get("/admin", gate.AuthAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name    string
		cookie  string
		target  string
		status  int
		wantErr types.Kind
	}{
		{name: "no cookie", target: "/whoami", status: fiber.StatusUnauthorized, wantErr: types.KindAuth},
		{name: "rejected session", cookie: "bad", target: "/whoami", status: fiber.StatusUnauthorized, wantErr: types.KindAuth},
		{name: "unknown account", cookie: "nobody@example.com", target: "/whoami", status: fiber.StatusUnauthorized, wantErr: types.KindAuth},
		{name: "admin role requested", cookie: "alice@example.com", target: "/admin", status: fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, app, http.MethodGet, tt.target, nil, tt.cookie)
			testutil.AssertStatus(t, resp, tt.status)
			if tt.wantErr != "" {
				var body map[string]interface{}
				testutil.ParseJSON(t, resp, &body)
				assert.Equal(t, string(tt.wantErr), body["type"])
			}
		})
	}
	assert.Equal(t, []string{"admin"}, gotRoles)

	t.Run("identity resolved", func(t *testing.T) {
		resp := testutil.Do(t, app, http.MethodGet, "/whoami", nil, "alice@example.com")
		testutil.AssertStatus(t, resp, fiber.StatusOK)
		var identity types.Identity
		testutil.ParseJSON(t, resp, &identity)
		assert.Equal(t, alice.UserID, identity.UserID)
		assert.Equal(t, models.Batch2023, identity.Batch)
		assert.Equal(t, []string{"user"}, gotRoles)
	})
}

func TestIdentityWithoutGate(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		require.Nil(t, middleware.Identity(c))
		middleware.SetIdentity(c, &types.Identity{UserID: 9})
		return c.JSON(middleware.Identity(c))
	})

	resp := testutil.Do(t, app, http.MethodGet, "/", nil, "")
	var identity types.Identity
	testutil.ParseJSON(t, resp, &identity)
	assert.Equal(t, uint64(9), identity.UserID)
}
