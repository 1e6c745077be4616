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

package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// RegistrationInput creates an account.
type RegistrationInput struct {
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	BatchYear models.Batch `json:"batchYear"`
}

// ProfileUpdate changes the caller's username, email, and optionally password. The batch never changes.
type ProfileUpdate struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

func (c *fieldChecker) email(field, value string) string {
	v := c.required(field, value)
	if v == "" {
		return v
	}
	c.maxLen(field, v, 100)
	if addr, err := mail.ParseAddress(v); err != nil || addr.Address != v {
		c.add(field, "%s must be a valid email address", field)
	}
	return strings.ToLower(v)
}

func (c *fieldChecker) password(field, value string) {
	if value == "" {
		c.add(field, "%s is required", field)
		return
	}
	if len(value) < MinPasswordLength {
		c.add(field, "%s must be at least %d characters", field, MinPasswordLength)
	}
}

// RegisterUser creates an account. Duplicate usernames or emails are IntegrityErrors.
func RegisterUser(ctx context.Context, db *gorm.DB, in RegistrationInput) (user *models.User, err error) {
	done := observability.TrackOperation("register_user")
	defer func() { done(outcome(err)) }()

	var c fieldChecker
	username := c.required("username", in.Username)
	c.maxLen("username", username, 50)
	email := c.email("email", in.Email)
	c.password("password", in.Password)
	c.batch("batchYear", in.BatchYear)
	if err = c.err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, types.NewInternalError(err)
	}

	user = &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		BatchYear:    in.BatchYear,
	}
	if err = db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, classifyWriteError(err, "user")
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"userId": user.ID,
		"batch":  user.BatchYear,
	}).Info("User registered")

	return user, nil
}

// GetUser loads an account by id.
func GetUser(ctx context.Context, db *gorm.DB, userID uint64) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, classifyReadError(err, "user", userID)
	}
	return &user, nil
}

// ResolveIdentity loads the caller identity for a user id. Unknown users are AuthErrors.
func ResolveIdentity(ctx context.Context, db *gorm.DB, userID uint64) (*types.Identity, error) {
	return resolveIdentity(db.WithContext(ctx).Where("id = ?", userID))
}

// ResolveIdentityByEmail loads the caller identity for an account email.
func ResolveIdentityByEmail(ctx context.Context, db *gorm.DB, email string) (*types.Identity, error) {
	return resolveIdentity(db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
}

func resolveIdentity(q *gorm.DB) (*types.Identity, error) {
	var user models.User
	if err := q.Select("id", "username", "batch_year").First(&user).Error; err != nil {
		if err = classifyReadError(err, "user", nil); types.KindOf(err) == types.KindNotFound {
			return nil, types.NewAuthError("unknown account")
		}
		return nil, err
	}
	return &types.Identity{UserID: user.ID, Username: user.Username, Batch: user.BatchYear}, nil
}

// Authenticate checks an email and password pair.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*types.Identity, error) {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if types.KindOf(classifyReadError(err, "user", nil)) == types.KindNotFound {
			return nil, types.NewAuthError("invalid email or password")
		}
		return nil, types.NewInternalError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, types.NewAuthError("invalid email or password")
	}
	return &types.Identity{UserID: user.ID, Username: user.Username, Batch: user.BatchYear}, nil
}

// UpdateProfile applies a profile change for caller. A password change requires the current password.
func UpdateProfile(ctx context.Context, db *gorm.DB, caller *types.Identity, in ProfileUpdate) (user *models.User, err error) {
	done := observability.TrackOperation("update_profile")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return nil, err
	}

	var c fieldChecker
	username := c.required("username", in.Username)
	c.maxLen("username", username, 50)
	email := c.email("email", in.Email)
	changingPassword := in.NewPassword != ""
	if changingPassword {
		if in.CurrentPassword == "" {
			c.add("currentPassword", "currentPassword is required to change password")
		}
		c.password("newPassword", in.NewPassword)
		if in.NewPassword != in.ConfirmPassword {
			c.add("confirmPassword", "confirmPassword does not match newPassword")
		}
	}
	if err = c.err(); err != nil {
		return nil, err
	}

	if user, err = GetUser(ctx, db, caller.UserID); err != nil {
		if types.KindOf(err) == types.KindNotFound {
			return nil, types.NewAuthError("unknown account")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"username": username,
		"email":    email,
	}
	if changingPassword {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return nil, types.NewValidationError([]types.FieldError{
				{Field: "currentPassword", Message: "currentPassword is incorrect"},
			})
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, types.NewInternalError(hashErr)
		}
		updates["password"] = string(hash)
	}

	if err = db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, classifyWriteError(err, "user")
	}

	return GetUser(ctx, db, caller.UserID)
}

// DeleteUser removes the caller's account. Their messages stay with no sender.
func DeleteUser(ctx context.Context, db *gorm.DB, caller *types.Identity) (err error) {
	done := observability.TrackOperation("delete_user")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return err
	}

	result := db.WithContext(ctx).Delete(&models.User{}, caller.UserID)
	if result.Error != nil {
		return classifyWriteError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return types.NewNotFoundError("user", caller.UserID)
	}

	observability.Logger().WithContext(ctx).WithField("userId", caller.UserID).Info("User deleted")
	return nil
}
