// handlers_test.go
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

package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/menfessdb/internal/handlers"
	"github.com/localnerve/menfessdb/internal/middleware"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/testutil"
	"github.com/localnerve/menfessdb/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupApp mounts the API with a session validator that treats the cookie value as the account email.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)

	gate := &middleware.AuthGate{
		DB: db,
		Validate: func(cookie string, roles []string) (*services.SessionUser, error) {
			if cookie == "expired" {
				return nil, fmt.Errorf("session is not valid")
			}
			if roles[0] == "admin" && cookie != "admin@example.com" {
				return nil, fmt.Errorf("missing role")
			}
			return &services.SessionUser{ID: cookie, Email: cookie}, nil
		},
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api", middleware.VersionMiddleware())
	routes := &handlers.Routes{
		DB:        db,
		PageSize:  10,
		AuthUser:  gate.AuthUser(),
		AuthAdmin: gate.AuthAdmin(),
	}
	routes.Register(api)
	return app, db
}

func submission() services.SubmissionInput {
	return services.SubmissionInput{
		ReceiverName:    "Alex",
		Message:         "happy birthday",
		SongTitle:       "Yellow",
		SongArtist:      "Coldplay",
		SongURL:         "https://open.spotify.com/track/yellow",
		BatchVisibility: models.Batch2024,
	}
}

func TestSubmitThenBrowse(t *testing.T) {
	app, db := setupApp(t)
	testutil.CreateUser(t, db, "alice", models.Batch2024)

	resp := testutil.Do(t, app, http.MethodPost, "/api/messages", submission(), "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var created utils.SuccessResponseStruct
	testutil.ParseJSON(t, resp, &created)
	assert.NotZero(t, created.ID)

	resp = testutil.Do(t, app, http.MethodGet, "/api/feed?batch=2024", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var page services.FeedPage
	testutil.ParseJSON(t, resp, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
	assert.Equal(t, "alice", page.Items[0].SenderName)
	assert.Equal(t, int64(1), page.Total)

	resp = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/api/messages/%d", created.ID), nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
}

func TestFeedPageSizeIsFixed(t *testing.T) {
	app, db := setupApp(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	for i := 0; i < 3; i++ {
		testutil.CreateMessage(t, db, alice, fmt.Sprintf("r%d", i), models.Batch2024, false, time.Now().Add(time.Duration(i)*time.Second))
	}

	resp := testutil.Do(t, app, http.MethodGet, "/api/feed?pageSize=1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var page services.FeedPage
	testutil.ParseJSON(t, resp, &page)
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Items, 3)

	resp = testutil.Do(t, app, http.MethodGet, "/api/feed?page=1844674407370955161", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	page = services.FeedPage{}
	testutil.ParseJSON(t, resp, &page)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(3), page.Total)
}

func TestSubmitRequiresSession(t *testing.T) {
	app, db := setupApp(t)
	testutil.CreateUser(t, db, "alice", models.Batch2024)

	resp := testutil.Do(t, app, http.MethodPost, "/api/messages", submission(), "")
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = testutil.Do(t, app, http.MethodPost, "/api/messages", submission(), "expired")
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = testutil.Do(t, app, http.MethodPost, "/api/messages", submission(), "stranger@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)

	assert.Equal(t, int64(0), testutil.Count(t, db, "messages"))
}

func TestSubmitValidationFields(t *testing.T) {
	app, db := setupApp(t)
	testutil.CreateUser(t, db, "alice", models.Batch2024)

	in := submission()
	in.SongTitle = ""
	in.BatchVisibility = "2021"
	resp := testutil.Do(t, app, http.MethodPost, "/api/messages", in, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	assert.Equal(t, "validation", body.Type)
	assert.Len(t, body.Fields, 2)
}

func TestSubmitRejectsMalformedLinks(t *testing.T) {
	app, db := setupApp(t)
	testutil.CreateUser(t, db, "alice", models.Batch2024)

	in := submission()
	in.SongURL = "not a url"
	in.AlbumArtURL = "ftp://example.com/cover.png"
	resp := testutil.Do(t, app, http.MethodPost, "/api/messages", in, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "songUrl", body.Fields[0].Field)
	assert.Equal(t, "albumArtUrl", body.Fields[1].Field)
	assert.Equal(t, int64(0), testutil.Count(t, db, "songs"))
}

func TestSubmitTrimsLinksBeforeChecking(t *testing.T) {
	app, db := setupApp(t)
	testutil.CreateUser(t, db, "alice", models.Batch2024)

	in := submission()
	in.SongURL = "  https://open.spotify.com/track/yellow  "
	resp := testutil.Do(t, app, http.MethodPost, "/api/messages", in, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	in = submission()
	in.SongURL = "   "
	resp = testutil.Do(t, app, http.MethodPost, "/api/messages", in, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "songUrl", body.Fields[0].Field)
	assert.Equal(t, "songUrl is required", body.Fields[0].Message)
}

func TestLikeEndpoints(t *testing.T) {
	app, db := setupApp(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	msg := testutil.CreateMessage(t, db, alice, "Alex", models.Batch2024, false, time.Now())
	target := fmt.Sprintf("/api/messages/%d/like", msg.ID)

	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodPost, target, nil, "alice@example.com"), fiber.StatusCreated)
	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodPost, target, nil, "alice@example.com"), fiber.StatusConflict)
	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodPost, "/api/messages/999/like", nil, "alice@example.com"), fiber.StatusNotFound)
	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodPost, "/api/messages/abc/like", nil, "alice@example.com"), fiber.StatusBadRequest)
	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodDelete, target, nil, "alice@example.com"), fiber.StatusOK)
}

func TestCommentAndReportEndpoints(t *testing.T) {
	app, db := setupApp(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	testutil.CreateUser(t, db, "admin", models.Batch2022)
	msg := testutil.CreateMessage(t, db, alice, "Alex", models.Batch2024, false, time.Now())

	resp := testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/comments", msg.ID), handlers.TextInput{Text: "aww"}, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	resp = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/comments", msg.ID), handlers.TextInput{Text: " "}, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	resp = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/api/messages/%d/comments", msg.ID), nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var comments []services.CommentView
	testutil.ParseJSON(t, resp, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].AuthorName)

	resp = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/api/messages/%d/reports", msg.ID), handlers.TextInput{Text: "spam"}, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var report models.Report
	testutil.ParseJSON(t, resp, &report)
	assert.Equal(t, models.ReportPending, report.Status)

	resp = testutil.Do(t, app, http.MethodGet, "/api/reports?status=pending", nil, "alice@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = testutil.Do(t, app, http.MethodPatch, fmt.Sprintf("/api/reports/%d", report.ID), handlers.StatusInput{Status: models.ReportResolved}, "admin@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &report)
	assert.Equal(t, models.ReportResolved, report.Status)
}

func TestAccountEndpoints(t *testing.T) {
	app, _ := setupApp(t)

	resp := testutil.Do(t, app, http.MethodPost, "/api/users", services.RegistrationInput{
		Username:  "carol",
		Email:     "carol@example.com",
		Password:  "secret123",
		BatchYear: models.Batch2023,
	}, "")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var user models.User
	testutil.ParseJSON(t, resp, &user)
	assert.Equal(t, "carol", user.Username)

	resp = testutil.Do(t, app, http.MethodGet, "/api/me", nil, "carol@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Do(t, app, http.MethodPut, "/api/me/preferences", map[string]interface{}{
		"theme":           "lavender",
		"privacySettings": map[string]bool{"showBatch": false},
	}, "carol@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Do(t, app, http.MethodGet, "/api/me/preferences", nil, "carol@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var prefs services.Preferences
	testutil.ParseJSON(t, resp, &prefs)
	assert.Equal(t, "lavender", prefs.Theme)

	resp = testutil.Do(t, app, http.MethodGet, "/api/me/messages", nil, "carol@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Do(t, app, http.MethodDelete, "/api/me", nil, "carol@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Do(t, app, http.MethodGet, "/api/me", nil, "carol@example.com")
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)
}

func TestDeleteMessageEndpoint(t *testing.T) {
	app, db := setupApp(t)
	alice := testutil.CreateUser(t, db, "alice", models.Batch2024)
	testutil.CreateUser(t, db, "bob", models.Batch2024)
	msg := testutil.CreateMessage(t, db, alice, "Alex", models.Batch2024, false, time.Now())
	target := fmt.Sprintf("/api/messages/%d", msg.ID)

	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodDelete, target, nil, "bob@example.com"), fiber.StatusUnauthorized)
	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodDelete, target, nil, "alice@example.com"), fiber.StatusOK)
	testutil.AssertStatus(t, testutil.Do(t, app, http.MethodGet, target, nil, ""), fiber.StatusNotFound)
}

func TestVersionHeader(t *testing.T) {
	app, _ := setupApp(t)

	resp := testutil.Do(t, app, http.MethodGet, "/api/feed", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Equal(t, middleware.APIVersion, resp.Header.Get("X-Api-Version"))

	req, _ := http.NewRequest(http.MethodGet, "/api/feed", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setupApp(t)
	resp := testutil.Do(t, app, http.MethodGet, "/api/nowhere", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}
