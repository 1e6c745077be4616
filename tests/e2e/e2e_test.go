// e2e_test.go
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

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/menfessdb/internal/config"
	"github.com/localnerve/menfessdb/internal/database"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/tests/helpers"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	serverHost, _ := tc.ServerContainer.Host(ctx)
	serverPort, _ := tc.ServerContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", serverHost, serverPort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	// Run E2E tests
	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("PublicAPIAccess", func(t *testing.T) {
		testPublicAPIAccess(t, baseURL)
	})

	t.Run("ProtectedAPIAccess", func(t *testing.T) {
		testProtectedAPIAccess(t, baseURL)
	})
}

func testHealthCheck(t *testing.T, tc *helpers.TestContainers) {
	ctx := context.Background()

	// 1. Prepare configuration for the health check
	// We need to point to the mapped ports on localhost, not internal container names
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Update DB host and port to mapped values
	dbHost, _ := tc.DBContainer.Host(ctx)
	dbPort, _ := tc.DBContainer.MappedPort(ctx, tcpPort(os.Getenv("DB_PORT")))
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()

	// Update Authorizer URL to mapped value
	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, tcpPort(os.Getenv("AUTHZ_PORT")))
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())

	// 2. Establish GORM connection to the test database
	gormDB, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(gormDB)

	// 3. Perform the health check
	result := services.HealthCheck(ctx, cfg, gormDB)

	// 4. Verify the result
	if !result.Healthy() {
		t.Errorf("Health check failed: %+v", result)
	}

	t.Logf("Health check passed: status=%s, database=%s, authorizer=%s",
		result.Status, result.Database, result.Authorizer)
}

func tcpPort(port string) nat.Port {
	return nat.Port(port + "/tcp")
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, bodyStr)
	}
	if !strings.Contains(bodyStr, "menfessdb_store_operations_total") {
		t.Errorf("Expected menfessdb_store_operations_total metric")
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(bodyStr))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testPublicAPIAccess(t *testing.T, baseURL string) {
	// Registration is public
	reg := helpers.NewRegistration(models.Batch2024)
	raw, _ := json.Marshal(reg)
	resp, err := http.Post(baseURL+"/api/users", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201 for registration, got %d", resp.StatusCode)
	}

	// The feed is public and returns a page even when empty
	resp, err = http.Get(baseURL + "/api/feed?batch=2024")
	if err != nil {
		t.Fatalf("Failed to access public API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var page services.FeedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Errorf("Response is not valid JSON: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Expected page 1, got %d", page.Page)
	}
}

func testProtectedAPIAccess(t *testing.T, baseURL string) {
	raw, _ := json.Marshal(helpers.NewSubmission(models.Batch2024, 0))
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/api/messages", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "not-a-session"})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for a forged session, got %d", resp.StatusCode)
	}
}
