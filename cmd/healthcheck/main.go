// main.go
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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/localnerve/menfessdb/internal/config"
	"github.com/localnerve/menfessdb/internal/database"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/services"
)

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to an .env file")
	timeout := flag.Duration("timeout", 5*time.Second, "overall check deadline")
	flag.Parse()

	log := observability.Logger()

	// Load configuration
	cfg, err := config.LoadFile(envFilename)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Perform health check
	result := services.HealthCheck(ctx, cfg, db)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if !result.Healthy() {
		os.Exit(1)
	}
	os.Exit(0)
}
