// account.go
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
	"github.com/localnerve/menfessdb/internal/middleware"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/localnerve/menfessdb/internal/utils"
	"gorm.io/gorm"
)

// AccountHandler handles registration and the caller's own data
type AccountHandler struct {
	DB *gorm.DB
}

// Register handles POST /api/users
// @Summary Register an account
// @Tags Account
// @Accept json
// @Produce json
// @Param registration body services.RegistrationInput true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var in services.RegistrationInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	user, err := services.RegisterUser(c.UserContext(), h.DB, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetMe handles GET /api/me
// @Summary Get your profile
// @Tags Account
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /me [get]
func (h *AccountHandler) GetMe(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	if identity == nil {
		return types.NewAuthError("authentication required")
	}
	user, err := services.GetUser(c.UserContext(), h.DB, identity.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateMe handles PUT /api/me
// @Summary Update your profile
// @Description Username, email and password may change. The batch is fixed at registration.
// @Tags Account
// @Accept json
// @Produce json
// @Param profile body services.ProfileUpdate true "Profile changes"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /me [put]
func (h *AccountHandler) UpdateMe(c *fiber.Ctx) error {
	var in services.ProfileUpdate
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	user, err := services.UpdateProfile(c.UserContext(), h.DB, middleware.Identity(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// DeleteMe handles DELETE /api/me
// @Summary Delete your account
// @Description Messages you sent remain, without a sender.
// @Tags Account
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security CookieAuth
// @Router /me [delete]
func (h *AccountHandler) DeleteMe(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	if err := services.DeleteUser(c.UserContext(), h.DB, identity); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, identity.UserID)
}

// ListMyMessages handles GET /api/me/messages
// @Summary List messages you sent
// @Tags Account
// @Produce json
// @Success 200 {array} services.FeedItem
// @Security CookieAuth
// @Router /me/messages [get]
func (h *AccountHandler) ListMyMessages(c *fiber.Ctx) error {
	items, err := services.ListUserMessages(c.UserContext(), h.DB, middleware.Identity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(items)
}

// GetPreferences handles GET /api/me/preferences
// @Summary Get your preferences
// @Tags Account
// @Produce json
// @Success 200 {object} services.Preferences
// @Security CookieAuth
// @Router /me/preferences [get]
func (h *AccountHandler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := services.GetPreferences(c.UserContext(), h.DB, middleware.Identity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(prefs)
}

// SavePreferences handles PUT /api/me/preferences
// @Summary Save your preferences
// @Tags Account
// @Accept json
// @Produce json
// @Param preferences body services.Preferences true "Preferences"
// @Success 200 {object} services.Preferences
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /me/preferences [put]
func (h *AccountHandler) SavePreferences(c *fiber.Ctx) error {
	var in services.Preferences
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err)
	}
	prefs, err := services.SavePreferences(c.UserContext(), h.DB, middleware.Identity(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(prefs)
}
