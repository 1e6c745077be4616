// routes.go
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

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Routes holds what the API routes need.
type Routes struct {
	DB           *gorm.DB
	PageSize     int
	QueryTimeout time.Duration
	// AuthUser and AuthAdmin gate the authenticated routes.
	AuthUser  fiber.Handler
	AuthAdmin fiber.Handler
}

// Register mounts the API on router.
func (r *Routes) Register(router fiber.Router) {
	feed := &FeedHandler{DB: r.DB, PageSize: r.PageSize, QueryTimeout: r.QueryTimeout}
	messages := &MessageHandler{DB: r.DB}
	account := &AccountHandler{DB: r.DB}
	moderation := &ModerationHandler{DB: r.DB}

	// Public routes
	router.Get("/feed", feed.GetFeed)
	router.Get("/messages/:id", feed.GetMessage)
	router.Get("/messages/:id/comments", feed.ListComments)
	router.Post("/users", account.Register)

	// User routes
	router.Post("/messages", r.AuthUser, messages.SubmitMessage)
	router.Delete("/messages/:id", r.AuthUser, messages.DeleteMessage)
	router.Post("/messages/:id/like", r.AuthUser, messages.LikeMessage)
	router.Delete("/messages/:id/like", r.AuthUser, messages.UnlikeMessage)
	router.Post("/messages/:id/comments", r.AuthUser, messages.CommentOnMessage)
	router.Post("/messages/:id/reports", r.AuthUser, messages.ReportMessage)

	router.Get("/me", r.AuthUser, account.GetMe)
	router.Put("/me", r.AuthUser, account.UpdateMe)
	router.Delete("/me", r.AuthUser, account.DeleteMe)
	router.Get("/me/messages", r.AuthUser, account.ListMyMessages)
	router.Get("/me/preferences", r.AuthUser, account.GetPreferences)
	router.Put("/me/preferences", r.AuthUser, account.SavePreferences)

	// Admin routes
	router.Get("/reports", r.AuthAdmin, moderation.ListReports)
	router.Patch("/reports/:id", r.AuthAdmin, moderation.AdvanceReport)
}
