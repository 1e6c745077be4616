// validation.go
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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/types"
)

// fieldChecker accumulates field problems so one ValidationError reports them all.
type fieldChecker struct {
	fields []types.FieldError
}

func (c *fieldChecker) add(field, format string, args ...interface{}) {
	c.fields = append(c.fields, types.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// required trims value and records an error when nothing is left.
func (c *fieldChecker) required(field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		c.add(field, "%s is required", field)
	}
	return v
}

// maxLen records an error when value exceeds the column width.
func (c *fieldChecker) maxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		c.add(field, "%s must be at most %d characters", field, max)
	}
}

// batch records an error unless b is a known batch. An empty batch is reported as missing.
func (c *fieldChecker) batch(field string, b models.Batch) {
	if strings.TrimSpace(string(b)) == "" {
		c.add(field, "%s is required", field)
		return
	}
	if !b.Valid() {
		c.add(field, "%s must be one of %s", field, batchList())
	}
}

func (c *fieldChecker) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return types.NewValidationError(c.fields)
}

func batchList() string {
	names := make([]string, 0, len(models.Batches))
	for i := len(models.Batches) - 1; i >= 0; i-- {
		names = append(names, string(models.Batches[i]))
	}
	return strings.Join(names, ", ")
}

// requireIdentity rejects calls without an authenticated caller.
func requireIdentity(caller *types.Identity) error {
	if caller == nil || caller.UserID == 0 {
		return types.NewAuthError("authentication required")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
