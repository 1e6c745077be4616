// user.go
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

package models

import (
	"time"
)

// User is a registered account. BatchYear is fixed at registration.
type User struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"column:password;size:255;not null" json:"-"`
	BatchYear      Batch     `gorm:"size:4;not null;check:batch_year IN ('2022','2023','2024')" json:"batchYear"`
	ProfilePicture *string   `gorm:"size:255" json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserPreference holds per-user display and privacy settings, at most one row per user.
type UserPreference struct {
	ID                   uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID               uint64    `gorm:"not null;uniqueIndex" json:"userId"`
	User                 *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ThemePreference      string    `gorm:"size:50;not null;default:pink" json:"theme"`
	NotificationSettings JSON      `json:"notificationSettings"`
	PrivacySettings      JSON      `json:"privacySettings"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for UserPreference
func (UserPreference) TableName() string {
	return "user_preferences"
}
