// auth.go
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

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/config"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionCookie is the Authorizer session cookie name.
const SessionCookie = "cookie_session"

// identityKey is the fiber.Locals key holding the resolved *types.Identity.
const identityKey = "identity"

// SessionValidator validates a session cookie and returns the session's account.
type SessionValidator func(cookie string, roles []string) (*services.SessionUser, error)

// AuthGate validates the Authorizer session and resolves it to a store identity.
type AuthGate struct {
	Config   *config.Config
	DB       *gorm.DB
	Validate SessionValidator
}

// NewAuthGate returns a gate backed by the Authorizer service.
func NewAuthGate(cfg *config.Config, db *gorm.DB) *AuthGate {
	return &AuthGate{Config: cfg, DB: db, Validate: services.ValidateSession}
}

// AuthUser rejects requests without a valid user session.
func (g *AuthGate) AuthUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return g.authorize(c, []string{"user"})
	}
}

// authorize performs the authorization check
func (g *AuthGate) authorize(c *fiber.Ctx, roles []string) error {
	session := c.Cookies(SessionCookie)
	if session == "" {
		return types.NewAuthError("Authorizer cookie \"" + SessionCookie + "\" not found")
	}

	if g.Config != nil && !services.IsAuthorizerInitialized() {
		if err := services.InitAuthorizer(c.UserContext(), g.Config, c.Protocol(), c.Hostname()); err != nil {
			observability.Logger().WithFields(logrus.Fields{"error": err.Error()}).Error("Authorizer unavailable")
			return types.NewAuthError("authorization service unavailable")
		}
	}

	user, err := g.Validate(session, roles)
	if err != nil {
		return types.NewAuthError("invalid session")
	}

	identity, err := services.ResolveIdentityByEmail(c.UserContext(), g.DB, user.Email)
	if err != nil {
		return err
	}

	SetIdentity(c, identity)
	return c.Next()
}

// SetIdentity stores the resolved caller on the request.
func SetIdentity(c *fiber.Ctx, identity *types.Identity) {
	c.Locals(identityKey, identity)
}

// Identity returns the caller resolved by the gate, or nil.
func Identity(c *fiber.Ctx) *types.Identity {
	identity, _ := c.Locals(identityKey).(*types.Identity)
	return identity
}

// AuthAdmin rejects requests without a valid admin session.
func (g *AuthGate) AuthAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return g.authorize(c, []string{"admin"})
	}
}
