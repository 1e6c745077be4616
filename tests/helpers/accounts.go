// accounts.go
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

package helpers

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/types"
	"gorm.io/gorm"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password with a capital and special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]

	for i := 3; i < 10; i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// NewRegistration returns a unique, valid registration in batch
func NewRegistration(batch models.Batch) services.RegistrationInput {
	name := "u" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return services.RegistrationInput{
		Username:  name,
		Email:     name + "@example.com",
		Password:  GeneratePassword(),
		BatchYear: batch,
	}
}

// RegisterAccount registers a fresh account in batch and returns its identity
func RegisterAccount(t *testing.T, db *gorm.DB, batch models.Batch) *types.Identity {
	t.Helper()

	user, err := services.RegisterUser(context.Background(), db, NewRegistration(batch))
	if err != nil {
		t.Fatalf("Failed to register account: %v", err)
	}
	return &types.Identity{UserID: user.ID, Username: user.Username, Batch: user.BatchYear}
}
