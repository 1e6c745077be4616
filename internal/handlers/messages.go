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

package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/middleware"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/localnerve/menfessdb/internal/utils"
	"gorm.io/gorm"
)

// MessageHandler handles authenticated message and engagement routes
type MessageHandler struct {
	DB *gorm.DB
}

// TextInput is the body of comment and report requests
type TextInput struct {
	Text string `json:"text"`
}

// SubmitMessage handles POST /api/messages
// @Summary Submit a message with a song
// @Tags Messages
// @Accept json
// @Produce json
// @Param submission body services.SubmissionInput true "Message and song"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /messages [post]
func (h *MessageHandler) SubmitMessage(c *fiber.Ctx) error {
	var in services.SubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	if err := checkLinks(in); err != nil {
		return err
	}
	id, err := services.SubmitMessage(c.UserContext(), h.DB, in, middleware.Identity(c))
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, id)
}

// DeleteMessage handles DELETE /api/messages/:id
// @Summary Delete a message you sent
// @Tags Messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /messages/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteMessage(c.UserContext(), h.DB, id, middleware.Identity(c)); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, id)
}

// LikeMessage handles POST /api/messages/:id/like
// @Summary Like a message
// @Tags Engagement
// @Produce json
// @Param id path int true "Message ID"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /messages/{id}/like [post]
func (h *MessageHandler) LikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.AddLike(c.UserContext(), h.DB, id, middleware.Identity(c)); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, id)
}

// UnlikeMessage handles DELETE /api/messages/:id/like
// @Summary Withdraw a like
// @Tags Engagement
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /messages/{id}/like [delete]
func (h *MessageHandler) UnlikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.RemoveLike(c.UserContext(), h.DB, id, middleware.Identity(c)); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, id)
}

// CommentOnMessage handles POST /api/messages/:id/comments
// @Summary Comment on a message
// @Tags Engagement
// @Accept json
// @Produce json
// @Param id path int true "Message ID"
// @Param comment body TextInput true "Comment text"
// @Success 201 {object} models.Comment
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /messages/{id}/comments [post]
func (h *MessageHandler) CommentOnMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in TextInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	comment, err := services.AddComment(c.UserContext(), h.DB, id, in.Text, middleware.Identity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ReportMessage handles POST /api/messages/:id/reports
// @Summary Report a message for moderation
// @Tags Engagement
// @Accept json
// @Produce json
// @Param id path int true "Message ID"
// @Param report body TextInput true "Report reason"
// @Success 201 {object} models.Report
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /messages/{id}/reports [post]
func (h *MessageHandler) ReportMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in TextInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	report, err := services.AddReport(c.UserContext(), h.DB, id, in.Text, middleware.Identity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// checkLinks rejects song links the browser could not open. Empty links are left to the store's own checks.
func checkLinks(in services.SubmissionInput) error {
	var fields []types.FieldError
	for _, link := range []struct{ field, value string }{
		{"songUrl", in.SongURL},
		{"previewUrl", in.PreviewURL},
		{"albumArtUrl", in.AlbumArtURL},
	} {
		value := strings.TrimSpace(link.value)
		if value == "" {
			continue
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fields = append(fields, types.FieldError{Field: link.field, Message: link.field + " must be an http(s) URL"})
		}
	}
	if len(fields) > 0 {
		return types.NewValidationError(fields)
	}
	return nil
}
