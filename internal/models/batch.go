// batch.go
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

// Batch is a cohort label (graduation year). The set of batches is closed.
type Batch string

const (
	Batch2022 Batch = "2022"
	Batch2023 Batch = "2023"
	Batch2024 Batch = "2024"
)

// Batches lists every accepted batch, newest first.
var Batches = []Batch{Batch2024, Batch2023, Batch2022}

// Valid reports whether b is one of the accepted batches.
func (b Batch) Valid() bool {
	switch b {
	case Batch2022, Batch2023, Batch2024:
		return true
	}
	return false
}

// ParseBatch converts a raw label to a Batch.
func ParseBatch(s string) (Batch, bool) {
	b := Batch(s)
	return b, b.Valid()
}

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved:
		return true
	}
	return false
}

// CanAdvanceTo reports whether a report may move from s to next.
// Moderation only moves forward: pending -> reviewed -> resolved, or straight to resolved.
func (s ReportStatus) CanAdvanceTo(next ReportStatus) bool {
	switch s {
	case ReportPending:
		return next == ReportReviewed || next == ReportResolved
	case ReportReviewed:
		return next == ReportResolved
	}
	return false
}
