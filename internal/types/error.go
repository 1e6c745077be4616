// error.go
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

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a failure category. Callers branch on Kind, never on message text.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindIntegrity   Kind = "integrity"
	KindNotFound    Kind = "not_found"
	KindTransaction Kind = "transaction"
	KindInternal    Kind = "internal"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CustomError is the error type returned by every store operation.
type CustomError struct {
	Type    Kind         `json:"type"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

// Sentinels for errors.Is. They match any CustomError of the same Kind.
var (
	ErrValidation  = &CustomError{Type: KindValidation}
	ErrAuth        = &CustomError{Type: KindAuth}
	ErrIntegrity   = &CustomError{Type: KindIntegrity}
	ErrNotFound    = &CustomError{Type: KindNotFound}
	ErrTransaction = &CustomError{Type: KindTransaction}
	ErrInternal    = &CustomError{Type: KindInternal}
)

func (e *CustomError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by Kind.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Type == e.Type
}

// NewValidationError reports every offending field at once.
func NewValidationError(fields []FieldError) *CustomError {
	return &CustomError{
		Type:    KindValidation,
		Message: "invalid input",
		Fields:  fields,
	}
}

func NewAuthError(message string) *CustomError {
	return &CustomError{Type: KindAuth, Message: message}
}

func NewIntegrityError(message string, err error) *CustomError {
	return &CustomError{Type: KindIntegrity, Message: message, Err: err}
}

func NewNotFoundError(resource string, id interface{}) *CustomError {
	msg := resource + " not found"
	if id != nil {
		msg = fmt.Sprintf("%s %v not found", resource, id)
	}
	return &CustomError{Type: KindNotFound, Message: msg}
}

// NewTransactionError wraps a begin or commit failure. No writes from the unit of work persisted.
func NewTransactionError(err error) *CustomError {
	return &CustomError{Type: KindTransaction, Message: "transaction failed", Err: err}
}

func NewInternalError(err error) *CustomError {
	return &CustomError{Type: KindInternal, Message: "storage failure", Err: err}
}

// AsCustomError extracts the CustomError from an error chain.
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// KindOf returns the Kind carried by err, KindInternal for untyped errors, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if ce, ok := AsCustomError(err); ok {
		return ce.Type
	}
	return KindInternal
}
