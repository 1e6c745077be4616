// moderation.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"gorm.io/gorm"
)

// ModerationHandler handles admin report review
type ModerationHandler struct {
	DB *gorm.DB
}

// StatusInput is the body of a report status change
type StatusInput struct {
	Status models.ReportStatus `json:"status"`
}

// ListReports handles GET /api/reports
// @Summary List reports
// @Tags Moderation
// @Produce json
// @Param status query string false "pending, reviewed or resolved"
// @Success 200 {array} models.Report
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /reports [get]
func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	reports, err := services.ListReports(c.UserContext(), h.DB, models.ReportStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(reports)
}

// AdvanceReport handles PATCH /api/reports/:id
// @Summary Move a report forward in review
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param status body StatusInput true "Next status"
// @Success 200 {object} models.Report
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /reports/{id} [patch]
func (h *ModerationHandler) AdvanceReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in StatusInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	report, err := services.AdvanceReportStatus(c.UserContext(), h.DB, id, in.Status)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(report)
}
