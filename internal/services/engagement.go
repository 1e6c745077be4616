// engagement.go
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
	"time"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ensureMessageExists returns NotFound when no message has id.
func ensureMessageExists(ctx context.Context, db *gorm.DB, id uint64) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return types.NewInternalError(err)
	}
	if count == 0 {
		return types.NewNotFoundError("message", id)
	}
	return nil
}

// AddLike records that caller likes a message. A second like by the same user is an IntegrityError;
// the unique (message_id, user_id) index decides races between concurrent attempts.
func AddLike(ctx context.Context, db *gorm.DB, messageID uint64, caller *types.Identity) (err error) {
	done := observability.TrackOperation("add_like")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return err
	}
	if err = ensureMessageExists(ctx, db, messageID); err != nil {
		return err
	}

	like := models.Like{MessageID: messageID, UserID: caller.UserID}
	if err = db.WithContext(ctx).Create(&like).Error; err != nil {
		err = classifyWriteError(err, "like")
		observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
			"messageId": messageID,
			"userId":    caller.UserID,
			"kind":      types.KindOf(err),
		}).Info("Like rejected")
		return err
	}

	return nil
}

// RemoveLike withdraws caller's like. Removing a like that does not exist is NotFound.
func RemoveLike(ctx context.Context, db *gorm.DB, messageID uint64, caller *types.Identity) (err error) {
	done := observability.TrackOperation("remove_like")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return err
	}

	result := db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, caller.UserID).
		Delete(&models.Like{})
	if result.Error != nil {
		return types.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NewNotFoundError("like", nil)
	}
	return nil
}

// CountLikes counts the likes a message has right now.
func CountLikes(ctx context.Context, db *gorm.DB, messageID uint64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Like{}).Where("message_id = ?", messageID).Count(&count).Error
	if err != nil {
		return 0, types.NewInternalError(err)
	}
	return count, nil
}

// AddComment attaches a non-empty comment to a message.
func AddComment(ctx context.Context, db *gorm.DB, messageID uint64, content string, caller *types.Identity) (comment *models.Comment, err error) {
	done := observability.TrackOperation("add_comment")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return nil, err
	}
	var c fieldChecker
	content = c.required("comment", content)
	if err = c.err(); err != nil {
		return nil, err
	}
	if err = ensureMessageExists(ctx, db, messageID); err != nil {
		return nil, err
	}

	comment = &models.Comment{MessageID: messageID, UserID: caller.UserID, Content: content}
	if err = db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, classifyWriteError(err, "comment")
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"messageId": messageID,
		"commentId": comment.ID,
		"content":   observability.Redact(content),
	}).Info("Comment added")

	return comment, nil
}

// CommentView is a comment with its author's name.
type CommentView struct {
	ID         uint64    `json:"id"`
	MessageID  uint64    `json:"messageId"`
	AuthorName string    `json:"authorName"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListComments returns the comments on a message, oldest first.
func ListComments(ctx context.Context, db *gorm.DB, messageID uint64) ([]CommentView, error) {
	if err := ensureMessageExists(ctx, db, messageID); err != nil {
		return nil, err
	}

	comments := []CommentView{}
	err := db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.message_id, u.username AS author_name, c.comment_content AS comment, c.created_at").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.message_id = ?", messageID).
		Order("c.created_at ASC").Order("c.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, types.NewInternalError(err)
	}
	return comments, nil
}

// AddReport files a pending moderation report. Repeat reports by the same user are kept.
func AddReport(ctx context.Context, db *gorm.DB, messageID uint64, reason string, caller *types.Identity) (report *models.Report, err error) {
	done := observability.TrackOperation("add_report")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return nil, err
	}
	var c fieldChecker
	reason = c.required("reason", reason)
	if err = c.err(); err != nil {
		return nil, err
	}
	if err = ensureMessageExists(ctx, db, messageID); err != nil {
		return nil, err
	}

	report = &models.Report{
		MessageID:  messageID,
		ReporterID: caller.UserID,
		Reason:     reason,
		Status:     models.ReportPending,
	}
	if err = db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, classifyWriteError(err, "report")
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"messageId": messageID,
		"reportId":  report.ID,
	}).Info("Report filed")

	return report, nil
}
