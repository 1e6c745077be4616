// content.go
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

// Song is a track reference attached to a message.
type Song struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Artist      string    `gorm:"size:255;not null" json:"artist"`
	ExternalURL string    `gorm:"size:255;not null" json:"url"`
	AlbumArtURL *string   `gorm:"size:255" json:"albumArtUrl,omitempty"`
	PreviewURL  *string   `gorm:"size:255" json:"previewUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message is a post addressed to a named receiver and scoped to one batch.
// A nil SenderID means the sending account was deleted; a nil SongID means the song was.
type Message struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID        *uint64   `gorm:"index" json:"-"`
	Sender          *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:SET NULL" json:"-"`
	ReceiverName    string    `gorm:"size:100;not null" json:"receiverName"`
	Content         string    `gorm:"column:message_content;type:text;not null" json:"message"`
	SongID          *uint64   `gorm:"index" json:"songId,omitempty"`
	Song            *Song     `gorm:"foreignKey:SongID;constraint:OnDelete:SET NULL" json:"song,omitempty"`
	BatchVisibility Batch     `gorm:"size:4;not null;index:idx_messages_feed,priority:1;check:batch_visibility IN ('2022','2023','2024')" json:"batchVisibility"`
	IsAnonymous     bool      `gorm:"not null;default:false" json:"isAnonymous"`
	CreatedAt       time.Time `gorm:"index:idx_messages_feed,priority:2;index:idx_messages_created" json:"createdAt"`
}

// Like records one user's like of one message.
type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"not null;uniqueIndex:idx_likes_message_user,priority:1" json:"messageId"`
	Message   *Message  `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_likes_message_user,priority:2;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a reply attached to a message.
type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"not null;index" json:"messageId"`
	Message   *Message  `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint64    `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"column:comment_content;type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report flags a message for moderation.
type Report struct {
	ID         uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID  uint64       `gorm:"not null;index" json:"messageId"`
	Message    *Message     `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	ReporterID uint64       `gorm:"not null;index" json:"reporterId"`
	Reporter   *User        `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus `gorm:"size:10;not null;default:pending;check:status IN ('pending','reviewed','resolved')" json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// TableName overrides the table name for Song
func (Song) TableName() string {
	return "songs"
}

// TableName overrides the table name for Message
func (Message) TableName() string {
	return "messages"
}

// TableName overrides the table name for Like
func (Like) TableName() string {
	return "likes"
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// TableName overrides the table name for Report
func (Report) TableName() string {
	return "reports"
}

// All returns every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Song{},
		&Message{},
		&Like{},
		&Comment{},
		&Report{},
		&UserPreference{},
	}
}

// TableNames returns the table of every model, in the order of All.
func TableNames() []string {
	models := All()
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.(interface{ TableName() string }).TableName())
	}
	return names
}
