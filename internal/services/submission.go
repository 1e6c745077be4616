// submission.go
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

// SubmissionInput is a new message together with the song it carries.
type SubmissionInput struct {
	ReceiverName    string       `json:"receiverName"`
	Message         string       `json:"message"`
	SongTitle       string       `json:"songTitle"`
	SongArtist      string       `json:"songArtist"`
	SongURL         string       `json:"songUrl"`
	PreviewURL      string       `json:"previewUrl,omitempty"`
	AlbumArtURL     string       `json:"albumArtUrl,omitempty"`
	BatchVisibility models.Batch `json:"batchVisibility"`
	IsAnonymous     bool         `json:"isAnonymous"`
}

// validate checks every field and returns the trimmed song and message rows.
func (in SubmissionInput) validate() (*models.Song, *models.Message, error) {
	var c fieldChecker

	receiver := c.required("receiverName", in.ReceiverName)
	c.maxLen("receiverName", receiver, 100)
	content := c.required("message", in.Message)
	title := c.required("songTitle", in.SongTitle)
	c.maxLen("songTitle", title, 255)
	artist := c.required("songArtist", in.SongArtist)
	c.maxLen("songArtist", artist, 255)
	songURL := c.required("songUrl", in.SongURL)
	c.maxLen("songUrl", songURL, 255)
	preview := optional(in.PreviewURL)
	albumArt := optional(in.AlbumArtURL)
	c.batch("batchVisibility", in.BatchVisibility)

	if err := c.err(); err != nil {
		return nil, nil, err
	}

	song := &models.Song{
		Title:       title,
		Artist:      artist,
		ExternalURL: songURL,
		PreviewURL:  preview,
		AlbumArtURL: albumArt,
	}
	msg := &models.Message{
		ReceiverName:    receiver,
		Content:         content,
		BatchVisibility: in.BatchVisibility,
		IsAnonymous:     in.IsAnonymous,
	}
	return song, msg, nil
}

// SubmitMessage stores a song and a message referencing it as one unit of work.
// Either both rows exist afterwards or neither does.
func SubmitMessage(ctx context.Context, db *gorm.DB, in SubmissionInput, caller *types.Identity) (messageID uint64, err error) {
	done := observability.TrackOperation("submit_message")
	defer func() { done(outcome(err)) }()

	if err = requireIdentity(caller); err != nil {
		return 0, err
	}
	song, msg, err := in.validate()
	if err != nil {
		return 0, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(song).Error; err != nil {
			return classifyWriteError(err, "song")
		}

		senderID := caller.UserID
		msg.SenderID = &senderID
		msg.SongID = &song.ID
		if err := tx.Create(msg).Error; err != nil {
			return classifyWriteError(err, "message")
		}
		return nil
	})
	if err != nil {
		err = classifyTransactionError(err)
		observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
			"userId": caller.UserID,
			"batch":  in.BatchVisibility,
			"kind":   types.KindOf(err),
			"error":  err.Error(),
		}).Warn("Message submission failed")
		return 0, err
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"messageId": msg.ID,
		"songId":    song.ID,
		"batch":     msg.BatchVisibility,
		"anonymous": msg.IsAnonymous,
		"content":   observability.Redact(msg.Content),
	}).Info("Message submitted")

	return msg.ID, nil
}
