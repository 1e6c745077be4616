// preferences.go
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

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTheme is the theme of a user who never saved preferences.
const DefaultTheme = "pink"

// Preferences is the caller's settings document.
type Preferences struct {
	Theme                string          `json:"theme"`
	NotificationSettings json.RawMessage `json:"notificationSettings" swaggertype:"object"`
	PrivacySettings      json.RawMessage `json:"privacySettings" swaggertype:"object"`
}

func (c *fieldChecker) jsonDoc(field string, raw json.RawMessage) {
	if len(raw) > 0 && !json.Valid(raw) {
		c.add(field, "%s must be valid JSON", field)
	}
}

func preferencesOf(p *models.UserPreference) *Preferences {
	return &Preferences{
		Theme:                p.ThemePreference,
		NotificationSettings: p.NotificationSettings.Raw(),
		PrivacySettings:      p.PrivacySettings.Raw(),
	}
}

// GetPreferences returns the caller's stored preferences, or the defaults when none are saved.
func GetPreferences(ctx context.Context, db *gorm.DB, caller *types.Identity) (*Preferences, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	var prefs []models.UserPreference
	if err := db.WithContext(ctx).Where("user_id = ?", caller.UserID).Limit(1).Find(&prefs).Error; err != nil {
		return nil, types.NewInternalError(err)
	}
	if len(prefs) == 0 {
		return preferencesOf(&models.UserPreference{ThemePreference: DefaultTheme}), nil
	}
	return preferencesOf(&prefs[0]), nil
}

// SavePreferences creates or replaces the caller's preferences row.
func SavePreferences(ctx context.Context, db *gorm.DB, caller *types.Identity, in Preferences) (*Preferences, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	var c fieldChecker
	theme := in.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	c.maxLen("theme", theme, 50)
	c.jsonDoc("notificationSettings", in.NotificationSettings)
	c.jsonDoc("privacySettings", in.PrivacySettings)
	if err := c.err(); err != nil {
		return nil, err
	}

	row := models.UserPreference{
		UserID:               caller.UserID,
		ThemePreference:      theme,
		NotificationSettings: models.NewJSON(in.NotificationSettings),
		PrivacySettings:      models.NewJSON(in.PrivacySettings),
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"theme_preference", "notification_settings", "privacy_settings", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, classifyWriteError(err, "preferences")
	}

	return GetPreferences(ctx, db, caller)
}
