//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"rental-backend/cmd/bootstrap"
	"rental-backend/cmd/bootstrap/components"
	"rental-backend/internal/infra/db"
	"rental-backend/internal/pkg/config"
	"rental-backend/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = nat.Port("5432/tcp")
)

var (
	postgresOnce      sync.Once
	postgresContainer testcontainers.Container
	postgresErr       error
)

type ContainerInfo struct {
	Host string
	Port nat.Port
}

func (ci ContainerInfo) dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, ci.Host, ci.Port.Port(), database)
}

// ------------------------------------------------------------
// container
// ------------------------------------------------------------

// startPostgres boots one throwaway PostgreSQL per test process. The data directory lives on
// tmpfs and durability is switched off.
func startPostgres(t *testing.T) ContainerInfo {
	t.Helper()

	postgresOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{string(pgPort)},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
			},
			WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
				return ContainerInfo{Host: host, Port: port}.dsn("postgres")
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "rental-e2e"},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		postgresContainer, postgresErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if postgresErr != nil {
			return
		}

		// ryuk reaps the container too; this covers runs with ryuk disabled
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := postgresContainer.Terminate(ctx); err != nil {
				slog.Debug("postgres container already gone", "error", err.Error())
			}
		})
	})
	require.NoError(t, postgresErr, "failed to start postgres container")

	ctx := context.Background()
	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err)
	return ContainerInfo{Host: host, Port: port}
}

// ------------------------------------------------------------
// database
// ------------------------------------------------------------

// createDatabase makes a fresh database with the schema applied and drops it on cleanup.
func createDatabase(t *testing.T, pg ContainerInfo) (*pgxpool.Pool, config.DBConfig) {
	t.Helper()

	name := "rental_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin, err := pgxpool.New(ctx, pg.dsn("postgres"))
	require.NoError(t, err, "admin connection failed")
	defer admin.Close()

	_, err = admin.Exec(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, pg.dsn("postgres"))
		if err != nil {
			return
		}
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", name, "error", err.Error())
		}
	})

	dbConfig := config.DBConfig{
		Host:     pg.Host,
		Port:     pg.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 20,
	}
	pool, _, err := db.Connect(dbConfig)
	require.NoError(t, err, "database connection failed")

	require.NoError(t, applyMigrations(ctx, pool), "migration failed")
	require.NoError(t, dbtest.SeedReferenceData(pool), "failed to seed reference data")

	return pool, dbConfig
}

// applyMigrations runs every migrations/*.sql file in name order. The directory is found by
// walking up from the package under test to the module root.
func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

func migrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("module root not found")
		}
		dir = parent
	}
}

// ------------------------------------------------------------
// application
// ------------------------------------------------------------

// buildApp wires the production fx graph against the test pool, without the HTTP listener.
func buildApp(t *testing.T, pool *pgxpool.Pool, dbConfig config.DBConfig, mutators ...func(*config.Config)) (*gin.Engine, config.Config) {
	t.Helper()

	var (
		router *gin.Engine
		cfg    config.Config
	)

	app := fx.New(
		fx.Supply(pool),
		fx.Provide(func() config.Config {
			c := config.NewTestConfig()
			c.DB = dbConfig
			for _, m := range mutators {
				m(&c)
			}
			return c
		}),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		components.PersistenceModule,
		components.ClientModule,
		components.UseCaseModule,
		components.JobModule,
		components.HandlerModule,
		fx.Populate(&router, &cfg),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})
	return router, cfg
}

// ------------------------------------------------------------
// shared e2e suite
// ------------------------------------------------------------

type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

// SetupSharedSuite starts the environment. Mutators adjust the test config before the app is built,
// e.g. to point the payment client at a stub.
func (s *SharedSuite) SetupSharedSuite(t *testing.T, mutators ...func(*config.Config)) {
	gin.SetMode(gin.TestMode)

	pg := startPostgres(t)
	pool, dbConfig := createDatabase(t, pg)
	t.Cleanup(pool.Close)

	s.DB = pool
	s.Router, s.Config = buildApp(t, pool, dbConfig, mutators...)
	require.NotNil(t, s.Router, "router setup failed")
}

func (s *SharedSuite) SetupSuite() {
	s.SetupSharedSuite(s.T())
}

// SetupSubTest gives every s.Run case empty tables.
func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database state")
}
