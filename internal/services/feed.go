// feed.go
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
	"fmt"
	"time"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	// DefaultPageSize is used when a request does not set one.
	DefaultPageSize = 10
	// MaxPageSize caps the configured page size.
	MaxPageSize = 100
	// AnonymousName replaces the sender on anonymous messages.
	AnonymousName = "Anonymous"
	// DeletedSenderName is shown when the sending account no longer exists.
	DeletedSenderName = "[deleted]"
)

// FeedRequest selects one page of the feed. An empty Batch means all batches.
type FeedRequest struct {
	Batch    models.Batch
	Page     int
	PageSize int
	// MaxExecution bounds the page query where the dialect honors optimizer hints. Zero disables it.
	MaxExecution time.Duration
}

// SongView is the song as shown on a feed item. It is nil once the song is deleted.
type SongView struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	URL         string  `json:"url"`
	PreviewURL  *string `json:"previewUrl,omitempty"`
	AlbumArtURL *string `json:"albumArtUrl,omitempty"`
}

// FeedItem is a message as displayed in the feed.
type FeedItem struct {
	ID              uint64       `json:"id"`
	ReceiverName    string       `json:"receiverName"`
	Message         string       `json:"message"`
	BatchVisibility models.Batch `json:"batchVisibility"`
	IsAnonymous     bool         `json:"isAnonymous"`
	SenderName      string       `json:"senderName"`
	Song            *SongView    `json:"song"`
	LikeCount       int64        `json:"likeCount"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// FeedPage is one page of feed items plus totals for the whole filter.
type FeedPage struct {
	Items      []FeedItem `json:"items"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
}

// feedRow is the flat join result of one message.
type feedRow struct {
	ID              uint64
	SenderID        *uint64
	SenderUsername  *string
	ReceiverName    string
	MessageContent  string
	BatchVisibility models.Batch
	IsAnonymous     bool
	CreatedAt       time.Time
	SongID          *uint64
	SongTitle       *string
	SongArtist      *string
	SongURL         *string
	SongPreviewURL  *string
	SongAlbumArtURL *string
	LikeCount       int64
}

const feedColumns = `m.id, m.sender_id, u.username AS sender_username, m.receiver_name, m.message_content,
	m.batch_visibility, m.is_anonymous, m.created_at,
	s.id AS song_id, s.title AS song_title, s.artist AS song_artist, s.external_url AS song_url,
	s.preview_url AS song_preview_url, s.album_art_url AS song_album_art_url,
	(SELECT COUNT(*) FROM likes l WHERE l.message_id = m.id) AS like_count`

// messagesFrom starts a query over messages, optionally restricted to one batch.
func messagesFrom(db *gorm.DB, batch models.Batch) *gorm.DB {
	q := db.Table("messages AS m")
	if batch != "" {
		q = q.Where("m.batch_visibility = ?", batch)
	}
	return q
}

// withFeedColumns adds the song, sender and like count columns.
func withFeedColumns(q *gorm.DB) *gorm.DB {
	return q.Select(feedColumns).
		Joins("LEFT JOIN songs s ON s.id = m.song_id").
		Joins("LEFT JOIN users u ON u.id = m.sender_id")
}

// newestFirst orders by creation time, breaking ties by id.
func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("m.created_at DESC").Order("m.id DESC")
}

// GetFeed returns one page of messages, newest first.
// Total and the page are read by separate statements, so a concurrent write may make them disagree.
func GetFeed(ctx context.Context, db *gorm.DB, req FeedRequest) (page *FeedPage, err error) {
	done := observability.TrackOperation("get_feed")
	defer func() { done(outcome(err)) }()

	req = normalizeFeedRequest(req)
	page = &FeedPage{
		Items:    []FeedItem{},
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	// An unknown batch can never match a stored row.
	if req.Batch != "" && !req.Batch.Valid() {
		return page, nil
	}

	session := db.WithContext(ctx)
	if err = messagesFrom(session, req.Batch).Count(&page.Total).Error; err != nil {
		return nil, types.NewInternalError(err)
	}
	page.TotalPages = totalPages(page.Total, req.PageSize)
	if int64(req.Page) > int64(page.TotalPages) {
		return page, nil
	}

	q := withFeedColumns(messagesFrom(session, req.Batch))
	if req.MaxExecution > 0 {
		q = q.Clauses(hints.New(fmt.Sprintf("MAX_EXECUTION_TIME(%d)", req.MaxExecution.Milliseconds())))
	}

	var rows []feedRow
	err = newestFirst(q).
		Limit(req.PageSize).
		Offset((req.Page - 1) * req.PageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, types.NewInternalError(err)
	}

	for _, row := range rows {
		page.Items = append(page.Items, row.item())
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"batch": req.Batch,
		"page":  req.Page,
		"items": len(page.Items),
		"total": page.Total,
	}).Debug("Feed page read")

	return page, nil
}

func normalizeFeedRequest(req FeedRequest) FeedRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = DefaultPageSize
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}
	return req
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

func (r feedRow) item() FeedItem {
	item := FeedItem{
		ID:              r.ID,
		ReceiverName:    r.ReceiverName,
		Message:         r.MessageContent,
		BatchVisibility: r.BatchVisibility,
		IsAnonymous:     r.IsAnonymous,
		SenderName:      senderName(r.IsAnonymous, r.SenderUsername),
		LikeCount:       r.LikeCount,
		CreatedAt:       r.CreatedAt.UTC(),
	}
	if r.SongID != nil {
		item.Song = &SongView{
			ID:          *r.SongID,
			Title:       deref(r.SongTitle),
			Artist:      deref(r.SongArtist),
			URL:         deref(r.SongURL),
			PreviewURL:  r.SongPreviewURL,
			AlbumArtURL: r.SongAlbumArtURL,
		}
	}
	return item
}

// senderName never exposes the sender of an anonymous message.
func senderName(anonymous bool, username *string) string {
	switch {
	case anonymous:
		return AnonymousName
	case username == nil:
		return DeletedSenderName
	default:
		return *username
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
