// store_test.go provides shared test database helpers and a contract suite
// that every Repository implementation must pass. Postgres and MySQL tests
// are skipped if the database is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contentplanner/internal/database"
	"contentplanner/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "contentplanner")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "contentplanner")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testGormDB connects to MySQL through GORM when MYSQL_DSN is set.
func testGormDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: MYSQL_DSN not set")
	}
	db, err := database.OpenMySQL(dsn)
	if err != nil {
		t.Skipf("skipping integration test: MySQL not reachable: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fullPiece returns a piece with every field populated.
func fullPiece(title string) *models.ContentPiece {
	upload := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)
	return &models.ContentPiece{
		Title:         models.StringPtr(title),
		ContentPillar: models.StringPtr("Tech"),
		Format:        models.StringPtr("Talking Head"),
		Status:        models.StringPtr(models.StatusIdeation),
		Performance:   models.StringPtr("High"),
		Notes:         models.StringPtr("Some notes"),
		UploadDate:    &upload,
		Link:          models.StringPtr("https://youtube.com/watch?v=123"),
		Script:        models.StringPtr("Hook here"),
		Shotlist:      models.StringPtr("Shot 1, Shot 2"),
		Hook:          models.StringPtr("Did you know?"),
		Caption:       models.StringPtr("#tech"),
	}
}

// assertSameFields compares every field except ID.
func assertSameFields(t *testing.T, want, got *models.ContentPiece) {
	t.Helper()
	assert.Equal(t, want.Title, got.Title, "title")
	assert.Equal(t, want.ContentPillar, got.ContentPillar, "contentPillar")
	assert.Equal(t, want.Format, got.Format, "format")
	assert.Equal(t, want.Status, got.Status, "status")
	assert.Equal(t, want.Performance, got.Performance, "performance")
	assert.Equal(t, want.Notes, got.Notes, "notes")
	assert.Equal(t, want.Link, got.Link, "link")
	assert.Equal(t, want.Script, got.Script, "script")
	assert.Equal(t, want.Shotlist, got.Shotlist, "shotlist")
	assert.Equal(t, want.Hook, got.Hook, "hook")
	assert.Equal(t, want.Caption, got.Caption, "caption")
	if want.UploadDate == nil {
		assert.Nil(t, got.UploadDate, "uploadDate")
	} else if assert.NotNil(t, got.UploadDate, "uploadDate") {
		assert.True(t, want.UploadDate.Equal(*got.UploadDate),
			"uploadDate: got %v, want %v", got.UploadDate, want.UploadDate)
	}
}

// runRepositoryContract exercises the Repository contract against repo,
// which must start empty.
func runRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()

	t.Run("empty store lists nothing", func(t *testing.T) {
		require.NoError(t, repo.DeleteAll(ctx))
		items, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("save assigns id and round-trips", func(t *testing.T) {
		in := fullPiece("Round trip")
		saved, err := repo.Save(ctx, in)
		require.NoError(t, err)
		require.NotZero(t, saved.ID)
		assertSameFields(t, in, saved)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, saved.ID, found.ID)
		assertSameFields(t, in, found)
	})

	t.Run("ids are unique", func(t *testing.T) {
		a, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("A")})
		require.NoError(t, err)
		b, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("B")})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("nil fields stay nil", func(t *testing.T) {
		saved, err := repo.Save(ctx, &models.ContentPiece{})
		require.NoError(t, err)
		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assertSameFields(t, &models.ContentPiece{}, found)
	})

	t.Run("save with id replaces every field", func(t *testing.T) {
		saved, err := repo.Save(ctx, fullPiece("Original"))
		require.NoError(t, err)

		replacement := &models.ContentPiece{ID: saved.ID, Title: models.StringPtr("Updated")}
		updated, err := repo.Save(ctx, replacement)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assertSameFields(t, replacement, found)
	})

	t.Run("save with unknown id inserts it", func(t *testing.T) {
		const explicitID = 424242
		require.NoError(t, repo.DeleteByID(ctx, explicitID))

		saved, err := repo.Save(ctx, &models.ContentPiece{ID: explicitID, Title: models.StringPtr("Explicit")})
		require.NoError(t, err)
		assert.EqualValues(t, explicitID, saved.ID)

		exists, err := repo.ExistsByID(ctx, explicitID)
		require.NoError(t, err)
		assert.True(t, exists)

		next, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("After explicit")})
		require.NoError(t, err)
		assert.NotEqual(t, int64(explicitID), next.ID)
	})

	t.Run("find missing returns nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, 99999999)
		require.NoError(t, err)
		assert.Nil(t, found)

		exists, err := repo.ExistsByID(ctx, 99999999)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("delete removes the piece", func(t *testing.T) {
		saved, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("To Delete")})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, saved.ID))
		exists, err := repo.ExistsByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		// A second delete is a no-op at the storage level.
		assert.NoError(t, repo.DeleteByID(ctx, saved.ID))
	})

	t.Run("find all is ordered by id", func(t *testing.T) {
		require.NoError(t, repo.DeleteAll(ctx))
		for _, title := range []string{"first", "second", "third"} {
			_, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr(title)})
			require.NoError(t, err)
		}

		items, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		for i := 1; i < len(items); i++ {
			assert.Less(t, items[i-1].ID, items[i].ID)
		}
		assert.Equal(t, "first", *items[0].Title)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("concurrent saves get distinct ids", func(t *testing.T) {
		const workers = 8
		ids := make(chan int64, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				saved, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("concurrent")})
				if assert.NoError(t, err) {
					ids <- saved.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
	})

	t.Run("deleted ids are not handed out again", func(t *testing.T) {
		kept, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("kept")})
		require.NoError(t, err)
		highest, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("highest")})
		require.NoError(t, err)
		require.NoError(t, repo.DeleteByID(ctx, highest.ID))

		// Replacing an existing row must not rewind id assignment.
		kept.Status = models.StringPtr(models.StatusPosted)
		_, err = repo.Save(ctx, kept)
		require.NoError(t, err)

		next, err := repo.Save(ctx, &models.ContentPiece{Title: models.StringPtr("next")})
		require.NoError(t, err)
		assert.Greater(t, next.ID, highest.ID)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})

	require.NoError(t, repo.DeleteAll(ctx))
}
