// common.go
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
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/localnerve/menfessdb/internal/utils"
)

// ErrorHandler renders errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return utils.NotFoundResponse(c, "[404] Resource Not Found")
		}
		return c.Status(fe.Code).JSON(utils.ErrorResponseStruct{
			Status:  fe.Code,
			Message: fe.Message,
			URL:     c.OriginalURL(),
		})
	}
	return utils.ErrorResponse(c, err)
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewValidationError([]types.FieldError{
			{Field: name, Message: name + " must be a positive integer"},
		})
	}
	return id, nil
}

// bodyError wraps a malformed request body as a validation failure.
func bodyError(err error) error {
	return types.NewValidationError([]types.FieldError{
		{Field: "body", Message: "invalid JSON body: " + err.Error()},
	})
}
