// messages.go
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

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetMessage returns a single message in feed form.
func GetMessage(ctx context.Context, db *gorm.DB, messageID uint64) (*FeedItem, error) {
	var rows []feedRow
	err := withFeedColumns(messagesFrom(db.WithContext(ctx), "")).
		Where("m.id = ?", messageID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, types.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, types.NewNotFoundError("message", messageID)
	}
	item := rows[0].item()
	return &item, nil
}

// ListUserMessages returns every message caller sent, newest first.
func ListUserMessages(ctx context.Context, db *gorm.DB, caller *types.Identity) ([]FeedItem, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	var rows []feedRow
	err := newestFirst(withFeedColumns(messagesFrom(db.WithContext(ctx), ""))).
		Where("m.sender_id = ?", caller.UserID).
		Scan(&rows).Error
	if err != nil {
		return nil, types.NewInternalError(err)
	}

	items := make([]FeedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return items, nil
}

// DeleteMessage removes a message the caller sent, cascading to its likes, comments and reports.
func DeleteMessage(ctx context.Context, db *gorm.DB, messageID uint64, caller *types.Identity) (err error) {
	done := observability.TrackOperation("delete_message")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return err
	}

	var msg models.Message
	if err = db.WithContext(ctx).Select("id", "sender_id").First(&msg, messageID).Error; err != nil {
		return classifyReadError(err, "message", messageID)
	}
	if msg.SenderID == nil || *msg.SenderID != caller.UserID {
		return types.NewAuthError("only the sender may delete a message")
	}

	if err = db.WithContext(ctx).Delete(&models.Message{}, messageID).Error; err != nil {
		return classifyWriteError(err, "message")
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"messageId": messageID,
		"userId":    caller.UserID,
	}).Info("Message deleted")
	return nil
}

// DeleteSong removes a song. Messages that carried it remain with no song.
func DeleteSong(ctx context.Context, db *gorm.DB, songID uint64) error {
	result := db.WithContext(ctx).Delete(&models.Song{}, songID)
	if result.Error != nil {
		return classifyWriteError(result.Error, "song")
	}
	if result.RowsAffected == 0 {
		return types.NewNotFoundError("song", songID)
	}
	return nil
}
