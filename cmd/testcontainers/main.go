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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/menfessdb/tests/helpers"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "db", "", "database type override (mariadb, mysql, postgres)")
	flag.Parse()

	usage := `
Run the menfessdb stack (database, Authorizer and server) in testcontainers
with the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db DB_TYPE]

ENV_FILE_PATH: path to the .env file
DB_TYPE: overrides DB_TYPE from the environment

example
  testcontainers -f /path/to/something/.env -db postgres
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}
	if dbType != "" {
		os.Setenv("DB_TYPE", dbType)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	started := make(chan *helpers.TestContainers, 1)
	go func() {
		testContainers, err := helpers.CreateAllTestContainers(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
		started <- testContainers
	}()

	var testContainers *helpers.TestContainers
	for testContainers == nil {
		select {
		case tc := <-started:
			testContainers = tc
			log.Printf("Stack is up, press Ctrl-C to terminate\n")
		case sig := <-sigs:
			log.Printf("\nReceived signal: %v before startup finished, exiting\n", sig)
			return
		}
	}

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	testContainers.Terminate(nil)
}
