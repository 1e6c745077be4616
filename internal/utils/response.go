// response.go
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

package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
)

// StatusFor maps an error kind onto an HTTP status
func StatusFor(kind types.Kind) int {
	switch kind {
	case types.KindValidation:
		return fiber.StatusBadRequest
	case types.KindAuth:
		return fiber.StatusUnauthorized
	case types.KindNotFound:
		return fiber.StatusNotFound
	case types.KindIntegrity:
		return fiber.StatusConflict
	case types.KindTransaction:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorResponse sends the error response for err. Internal details are logged, not returned.
func ErrorResponse(c *fiber.Ctx, err error) error {
	kind := types.KindOf(err)
	status := StatusFor(kind)

	body := ErrorResponseStruct{
		Status:    status,
		Message:   err.Error(),
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      string(kind),
	}
	if ce, ok := types.AsCustomError(err); ok {
		body.Message = ce.Message
		body.Fields = ce.Fields
	}
	if status >= fiber.StatusInternalServerError {
		observability.Logger().WithFields(logrus.Fields{
			"url":   c.OriginalURL(),
			"kind":  kind,
			"error": err.Error(),
		}).Error("Request failed")
		if kind == types.KindInternal {
			body.Message = "internal error"
		}
	}

	return c.Status(status).JSON(body)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponseStruct{
		Status:    fiber.StatusNotFound,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      string(types.KindNotFound),
	})
}

// MutationSuccessResponse sends a success response for mutations (POST/PUT/DELETE)
func MutationSuccessResponse(c *fiber.Ctx, status int, id uint64) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Message:   "Success",
		Ok:        true,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int                `json:"status"`
	Message   string             `json:"message"`
	Ok        bool               `json:"ok"`
	Timestamp string             `json:"timestamp"`
	URL       string             `json:"url"`
	Type      string             `json:"type,omitempty"`
	Fields    []types.FieldError `json:"fields,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	ID        uint64 `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
}
