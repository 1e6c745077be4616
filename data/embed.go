// embed.go
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

package data

import (
	_ "embed"
	"strings"
)

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string

// MariaDBPrivileges returns the grant script for the service account on database.
func MariaDBPrivileges(database, user string) string {
	return strings.NewReplacer("{{database}}", database, "{{user}}", user).Replace(InitdbMariaDBPrivileges)
}
