// auth_service.go
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
	"encoding/json"
	"fmt"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/menfessdb/internal/config"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/utils"
	"github.com/sirupsen/logrus"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
	authErr    error
)

// SessionUser is the account behind a validated Authorizer session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client once per process
func InitAuthorizer(ctx context.Context, cfg *config.Config, requestProtocol, requestHost string) error {
	authOnce.Do(func() {
		if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
			authErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		observability.Logger().WithFields(logrus.Fields{
			"authorizerURL": cfg.AuthzURL,
			"redirectURL":   redirectURL,
		}).Info("Initializing Authorizer")

		client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			authErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		authClient = client
	})

	return authErr
}

// ValidateSession validates a session cookie for the given roles
func ValidateSession(cookie string, roles []string) (*SessionUser, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	// Decode through JSON so the SDK's optional field pointers do not leak out of this package.
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	var user SessionUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("session user has no email")
	}
	return &user, nil
}
