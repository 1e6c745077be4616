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

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"gorm.io/gorm"
)

// FeedHandler serves the message feed
type FeedHandler struct {
	DB           *gorm.DB
	PageSize     int
	QueryTimeout time.Duration
}

// GetFeed handles GET /api/feed
// @Summary Browse the message feed
// @Description Newest messages first, optionally restricted to one batch. Unknown batches match nothing.
// @Tags Feed
// @Produce json
// @Param batch query string false "Batch filter (2022, 2023, 2024)"
// @Param page query int false "1-based page number"
// @Success 200 {object} services.FeedPage
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /feed [get]
func (h *FeedHandler) GetFeed(c *fiber.Ctx) error {
	page, err := services.GetFeed(c.UserContext(), h.DB, services.FeedRequest{
		Batch:        models.Batch(c.Query("batch")),
		Page:         c.QueryInt("page", 1),
		PageSize:     h.PageSize,
		MaxExecution: h.QueryTimeout,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(page)
}

// GetMessage handles GET /api/messages/:id
// @Summary Get one message
// @Tags Feed
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} services.FeedItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /messages/{id} [get]
func (h *FeedHandler) GetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	item, err := services.GetMessage(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

// ListComments handles GET /api/messages/:id/comments
// @Summary List comments on a message
// @Tags Feed
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {array} services.CommentView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /messages/{id}/comments [get]
func (h *FeedHandler) ListComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	comments, err := services.ListComments(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(comments)
}
