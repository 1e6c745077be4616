// testcontainers.go
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

// This file is a helper for running tests with testcontainers.
// StartDatabase serves the integration tests. CreateAllTestContainers starts the full stack for the
// e2e tests and the standalone cmd/testcontainers executable, and expects the environment from an .env file.
//

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/localnerve/menfessdb/data"
	"github.com/localnerve/menfessdb/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestContainers struct {
	Network                *testcontainers.DockerNetwork
	DBContainer            testcontainers.Container
	AuthorizerContainer    testcontainers.Container
	ServerContainer        testcontainers.Container
	ServerBuilderContainer testcontainers.Container
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.ServerContainer != nil {
		if err := tc.ServerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate menfessdb: %v", err)
		}
	}
	if tc.ServerBuilderContainer != nil {
		if err := tc.ServerBuilderContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate menfessdb builder: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// dbSpec describes one database server to provision in a container
type dbSpec struct {
	Type         string
	Image        string
	Port         string
	Database     string
	User         string
	Password     string
	RootPassword string
	Network      string
	Alias        string
}

func (s dbSpec) env() map[string]string {
	switch s.Type {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": s.Password,
			"POSTGRES_USER":     s.User,
			"POSTGRES_DB":       s.Database,
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": s.RootPassword,
			"MYSQL_DATABASE":      s.Database,
			"MYSQL_USER":          s.User,
			"MYSQL_PASSWORD":      s.Password,
		}
	}
	return nil
}

func (s dbSpec) waitStrategy(port nat.Port) wait.Strategy {
	if s.Type == "postgres" {
		// postgres restarts once after running its init scripts
		return wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)
	}
	return wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
}

func defaultDBPort(dbType string) string {
	if dbType == "postgres" {
		return "5432"
	}
	return "3306"
}

func startDBContainer(ctx context.Context, spec dbSpec) (testcontainers.Container, nat.Port, error) {
	tcpPort, err := nat.NewPort("tcp", spec.Port)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create DB port: %w", err)
	}

	req := testcontainers.ContainerRequest{
		Image:        spec.Image,
		ExposedPorts: []string{string(tcpPort)},
		Env:          spec.env(),
		WaitingFor:   spec.waitStrategy(tcpPort),
	}
	if spec.Network != "" {
		req.Networks = []string{spec.Network}
		req.NetworkAliases = map[string][]string{
			spec.Network: {spec.Alias},
		}
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	return dbContainer, tcpPort, err
}

// StartDatabase starts a throwaway database server of dbType and returns the config to reach it.
// The container is terminated when the test ends.
func StartDatabase(t *testing.T, dbType, dbImage string) *config.Config {
	t.Helper()
	ctx := context.Background()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	spec := dbSpec{
		Type:         dbType,
		Image:        dbImage,
		Port:         defaultDBPort(dbType),
		Database:     "menfess_" + suffix,
		User:         "menfess",
		Password:     uuid.NewString(),
		RootPassword: uuid.NewString(),
	}

	dbContainer, tcpPort, err := startDBContainer(ctx, spec)
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", dbType, err)
	}
	t.Cleanup(func() {
		if err := dbContainer.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate %s container: %v", dbType, err)
		}
	})

	host, err := dbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := dbContainer.MappedPort(ctx, tcpPort)
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	if err := initDatabase(ctx, spec, host, port); err != nil {
		t.Fatalf("Failed to initialize %s: %v", dbType, err)
	}

	return &config.Config{
		DBType:            dbType,
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        spec.Database,
		DBUser:            spec.User,
		DBPassword:        spec.Password,
		DBConnectionLimit: 5,
		FeedPageSize:      10,
		FeedQueryTimeout:  2 * time.Second,
	}
}

func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	debugContainer := os.Getenv("DEBUG_CONTAINER")

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Create and start the Database container
	dbType := os.Getenv("DB_TYPE")
	spec := dbSpec{
		Type:         dbType,
		Image:        os.Getenv("DB_IMAGE"),
		Port:         os.Getenv("DB_PORT"),
		Database:     os.Getenv("DB_DATABASE"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		RootPassword: os.Getenv("DB_ROOT_PASSWORD"),
		Network:      networkName,
		Alias:        os.Getenv("DB_HOST"),
	}
	dbContainer, tcpDbPort, err := startDBContainer(ctx, spec)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Database")
	}
	testContainers.DBContainer = dbContainer

	// Initialize the database(s)
	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	authzDatabase := os.Getenv("AUTHZ_DATABASE")
	if err := initDatabase(ctx, spec, dbHost, dbPort, authzDatabase); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to initialize databases")
	}

	// Create and start the Authorizer container
	authzNetworkName := "authorizer"
	tcpAuthzPort, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authzLogLevel := "info"
	if debugContainer == "true" {
		authzLogLevel = "debug"
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          os.Getenv("AUTHZ_PORT"),
				"DATABASE_TYPE": dbType,
				"DATABASE_NAME": authzDatabase,
				"DATABASE_URL":  authorizerDatabaseURL(spec, authzDatabase),
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     authzLogLevel,
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(10 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	testContainers.AuthorizerContainer = authorizerContainer

	// Log the localhost and mapped ports for Authorizer for test processes
	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	logMessage(t, "AUTHZ_URL=%s:%s", authzHost, authzPort.Port())

	imageName := "menfessdb-test:latest"

	// Check if image exists
	imageExists, err := imageExists(ctx, imageName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	serverPortNumber := os.Getenv("PORT")
	tcpServerPort, err := nat.NewPort("tcp", serverPortNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create menfessdb port")
	}

	serverExposedPorts := []string{string(tcpServerPort)}
	if debugContainer == "true" {
		serverExposedPorts = append(serverExposedPorts, "2345/tcp")
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer == "true" {
			hostConfig.PortBindings = nat.PortMap{
				"2345/tcp": []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "2345"}, // Force local 2345
				},
			}
			hostConfig.CapAdd = []string{"SYS_PTRACE"}
			hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	var waitStrategy wait.Strategy
	waitStrategy = wait.ForHTTP("/metrics").WithPort(tcpServerPort).WithStartupTimeout(30 * time.Second)
	if debugContainer == "true" {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	// Create the server container request (we add to it later)
	serverContainerRequest := testcontainers.ContainerRequest{
		ExposedPorts: serverExposedPorts,
		Env: map[string]string{
			"DB_TYPE":             dbType,
			"DB_HOST":             spec.Alias,
			"DB_PORT":             spec.Port,
			"DB_DATABASE":         spec.Database,
			"DB_USER":             spec.User,
			"DB_PASSWORD":         spec.Password,
			"DB_CONNECTION_LIMIT": os.Getenv("DB_CONNECTION_LIMIT"),
			"AUTHZ_URL":           fmt.Sprintf("http://%s:%s", authzNetworkName, os.Getenv("AUTHZ_PORT")),
			"AUTHZ_CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
			"PORT":                serverPortNumber,
			"LOG_LEVEL":           os.Getenv("LOG_LEVEL"),
		},
		HostConfigModifier: hostConfigModifier,
		WaitingFor:         waitStrategy,
		Networks:           []string{networkName},
	}

	if debugContainer == "true" {
		serverContainerRequest.Entrypoint = []string{
			"/usr/local/bin/dlv",
			"--listen=:2345",
			"--headless=true",
			"--api-version=2",
			"--accept-multiclient",
			"exec",
			"./menfessdb",
		}
	}

	if !imageExists {
		// Build the builder image and add fromDockerfile to the server container request
		resourceReaperSessionID := uuid.New().String()

		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &resourceReaperSessionID,
		}
		if debugContainer == "true" {
			buildArgs["DEBUG"] = &debugContainer
		}

		buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
		if buildContext == "" {
			buildContext = "../.."
		}

		logMessage(t, "Image %s does not exist, building...", imageName)
		builderContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "menfessdb-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder" // Build specific stage
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to build menfessdb-test-builder")
		}
		testContainers.ServerBuilderContainer = builderContainer

		imageNameParts := strings.Split(imageName, ":")
		serverContainerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       imageNameParts[0],
			Tag:        imageNameParts[1],
			KeepImage:  true, // Keep the image so we can reuse it
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		// Reuse the existing image
		logMessage(t, "Image %s exists, reusing...", imageName)
		serverContainerRequest.Image = imageName
	}

	// Create and start the server container
	serverContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: serverContainerRequest,
		Started:          true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start menfessdb")
	}
	testContainers.ServerContainer = serverContainer

	// Log the localhost and mapped ports for the server
	serverHost, _ := serverContainer.Host(ctx)
	serverPort, _ := serverContainer.MappedPort(ctx, tcpServerPort)
	logMessage(t, "BASE_URL=%s:%s", serverHost, serverPort.Port())

	logMessage(t, "menfessdb testcontainer started successfully")
	return testContainers, nil
}

// authorizerDatabaseURL is the Authorizer's connection string, addressed by the database's network alias.
func authorizerDatabaseURL(spec dbSpec, database string) string {
	if spec.Type == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", spec.User, spec.Password, spec.Alias, spec.Port, database)
	}
	return fmt.Sprintf("root:%s@tcp(%s:%s)/%s", spec.RootPassword, spec.Alias, spec.Port, database)
}

// initDatabase prepares the server at host:port. extraDatabases are created alongside the service database.
func initDatabase(ctx context.Context, spec dbSpec, host string, port nat.Port, extraDatabases ...string) error {
	switch spec.Type {
	case "postgres":
		return performPostgresDBInit(ctx, spec, host, port, extraDatabases)
	case "mysql", "mariadb":
		return performMySqlDBInit(ctx, spec, host, port, extraDatabases)
	}
	return fmt.Errorf("unsupported database type: %s", spec.Type)
}

// openReady opens a pool and waits for the server to answer
func openReady(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		time.Sleep(1 * time.Second)
	}
	db.Close()
	return nil, fmt.Errorf("not ready after 30 seconds: %w", err)
}

func performMySqlDBInit(ctx context.Context, spec dbSpec, host string, port nat.Port, extraDatabases []string) error {
	db, err := openReady(ctx, "mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", spec.RootPassword, host, port.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s for setup: %w", spec.Type, err)
	}
	defer db.Close()

	for _, name := range append([]string{spec.Database}, extraDatabases...) {
		if name == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", name)); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", spec.User, spec.Password)); err != nil {
		return fmt.Errorf("failed to create user %s: %w", spec.User, err)
	}

	schemaDB, err := openReady(ctx, "mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/%s", spec.RootPassword, host, port.Port(), spec.Database))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", spec.Database, err)
	}
	defer schemaDB.Close()

	if err := executeSQL(schemaDB, data.InitdbMariaDBTables); err != nil {
		return fmt.Errorf("failed to execute %s tables init sql: %w", spec.Type, err)
	}
	if err := executeSQL(db, data.MariaDBPrivileges(spec.Database, spec.User)); err != nil {
		return fmt.Errorf("failed to execute %s privileges init sql: %w", spec.Type, err)
	}
	return nil
}

// performPostgresDBInit waits for the server and creates extra databases. The schema comes from migration.
func performPostgresDBInit(ctx context.Context, spec dbSpec, host string, port nat.Port, extraDatabases []string) error {
	db, err := openReady(ctx, "pgx", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", spec.User, spec.Password, host, port.Port(), spec.Database))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres for setup: %w", err)
	}
	defer db.Close()

	for _, name := range extraDatabases {
		if name == "" || name == spec.Database {
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name)); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}
	return nil
}

func executeSQL(db *sql.DB, sql string) error {
	lines := strings.Split(sql, "\n")

	var ncls []string
	for _, l := range lines {
		ncl := excludeComment(l)
		ncls = append(ncls, ncl)
	}

	l := strings.Join(ncls, "\n")
	queries := strings.Split(l, ";")
	queries = queries[:len(queries)-1]

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		_, err := db.Exec(q)
		if err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func excludeComment(line string) string {
	d := "\""
	s := "'"
	c := "--"

	var nc string
	ck := line
	mx := len(line) + 1

	for {
		if len(ck) == 0 {
			return nc
		}

		di := strings.Index(ck, d)
		si := strings.Index(ck, s)
		ci := strings.Index(ck, c)

		if di < 0 {
			di = mx
		}
		if si < 0 {
			si = mx
		}
		if ci < 0 {
			ci = mx
		}

		var ei int

		if di < si && di < ci {
			nc += ck[:di+1]
			ck = ck[di+1:]
			ei = strings.Index(ck, d)
		} else if si < di && si < ci {
			nc += ck[:si+1]
			ck = ck[si+1:]
			ei = strings.Index(ck, s)
		} else if ci < di && ci < si {
			return nc + ck[:ci]
		} else {
			return nc + ck
		}

		nc += ck[:ei+1]
		ck = ck[ei+1:]
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
