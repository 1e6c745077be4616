// inspect_schema.go
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
	"flag"
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/menfessdb/internal/database"
	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/observability"
	"gorm.io/gorm"
)

// Prints the DDL the models migrate to, table by table, with their indexes.
func main() {
	withIndexes := flag.Bool("indexes", true, "also print index definitions")
	flag.Parse()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(observability.Logger()))
	if err != nil {
		log.Fatal(err)
	}

	if err := database.InitializeSchema(db); err != nil {
		log.Fatal(err)
	}

	for _, table := range models.TableNames() {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&schema)
		fmt.Println(schema)

		if !*withIndexes {
			continue
		}
		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, index := range indexes {
			fmt.Println(index)
		}
	}
}
