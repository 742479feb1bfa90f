// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Most tests run against the in-memory store; the PostgreSQL and Valkey
// variants are skipped when those services are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"contentplanner/internal/cache"
	"contentplanner/internal/database"
	"contentplanner/internal/models"
	"contentplanner/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "contentplanner")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "contentplanner")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "piece:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds the dependencies for handler tests.
type testEnv struct {
	Repo    store.Repository
	Cache   *cache.PieceCache
	Content *Content
	Router  chi.Router
}

// newTestEnv builds handlers over a fresh in-memory store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, store.NewMemoryStore(), nil)
}

// newTestEnvWith builds handlers over repo and an optional cache, mounted
// on the same paths the application router uses.
func newTestEnvWith(t *testing.T, repo store.Repository, pc *cache.PieceCache) *testEnv {
	t.Helper()

	h := NewContent(repo, pc)

	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Route("/api/content", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})

	return &testEnv{Repo: repo, Cache: pc, Content: h, Router: r}
}

// do sends a request through the test router and returns the recorder.
func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// seedPiece stores a piece directly through the repository.
func (env *testEnv) seedPiece(t *testing.T, p *models.ContentPiece) *models.ContentPiece {
	t.Helper()
	saved, err := env.Repo.Save(context.Background(), p)
	if err != nil {
		t.Fatalf("seed piece: %v", err)
	}
	return saved
}

var errBackendDown = errors.New("backend down")

// brokenRepo is a Repository whose every call fails.
type brokenRepo struct{}

func (brokenRepo) FindAll(context.Context) ([]models.ContentPiece, error) {
	return nil, errBackendDown
}
func (brokenRepo) FindByID(context.Context, int64) (*models.ContentPiece, error) {
	return nil, errBackendDown
}
func (brokenRepo) ExistsByID(context.Context, int64) (bool, error) { return false, errBackendDown }
func (brokenRepo) Save(context.Context, *models.ContentPiece) (*models.ContentPiece, error) {
	return nil, errBackendDown
}
func (brokenRepo) DeleteByID(context.Context, int64) error { return errBackendDown }
func (brokenRepo) DeleteAll(context.Context) error         { return errBackendDown }
func (brokenRepo) Count(context.Context) (int, error)      { return 0, errBackendDown }
func (brokenRepo) Ping(context.Context) error              { return errBackendDown }
