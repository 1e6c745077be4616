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

package services

import (
	"context"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListReports returns reports in the given status, oldest first. An empty status lists all.
func ListReports(ctx context.Context, db *gorm.DB, status models.ReportStatus) ([]models.Report, error) {
	q := db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		if !status.Valid() {
			return nil, types.NewValidationError([]types.FieldError{
				{Field: "status", Message: "status must be one of pending, reviewed, resolved"},
			})
		}
		q = q.Where("status = ?", status)
	}

	reports := []models.Report{}
	if err := q.Order("created_at ASC").Order("id ASC").Find(&reports).Error; err != nil {
		return nil, types.NewInternalError(err)
	}
	return reports, nil
}

// AdvanceReportStatus moves a report forward in moderation.
// The update is conditional on the status read, so two moderators cannot both advance from the same state.
func AdvanceReportStatus(ctx context.Context, db *gorm.DB, reportID uint64, next models.ReportStatus) (report *models.Report, err error) {
	done := observability.TrackOperation("advance_report")
	defer func() { done(outcome(err)) }()

	report = &models.Report{}
	if err = db.WithContext(ctx).First(report, reportID).Error; err != nil {
		return nil, classifyReadError(err, "report", reportID)
	}

	if !report.Status.CanAdvanceTo(next) {
		return nil, types.NewValidationError([]types.FieldError{{
			Field:   "status",
			Message: "cannot move report from " + string(report.Status) + " to " + string(next),
		}})
	}

	result := db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, report.Status).
		Update("status", next)
	if result.Error != nil {
		return nil, classifyWriteError(result.Error, "report")
	}
	if result.RowsAffected == 0 {
		return nil, types.NewIntegrityError("report status changed concurrently", nil)
	}

	observability.Logger().WithContext(ctx).WithFields(logrus.Fields{
		"reportId": reportID,
		"from":     report.Status,
		"to":       next,
	}).Info("Report status advanced")

	report.Status = next
	return report, nil
}
