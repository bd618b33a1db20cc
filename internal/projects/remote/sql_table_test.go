package remote

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLTable(t *testing.T) (*SQLTable, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLTable(db, "projects"), mock, db
}

func TestSQLTable_FindID(t *testing.T) {
	ctx := context.Background()
	table, mock, _ := setupSQLTable(t)

	t.Run("returns the matching id", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id::text FROM "projects" WHERE title = \$1`).
			WithArgs("Kiosk", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("row-1"))

		id, err := table.FindID(ctx, "Kiosk", "u1")
		require.NoError(t, err)
		assert.Equal(t, "row-1", id)
	})

	t.Run("no row is not an error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id::text FROM "projects"`).
			WithArgs("Missing", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		id, err := table.FindID(ctx, "Missing", "u1")
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTable_CreatorOf(t *testing.T) {
	ctx := context.Background()
	table, mock, _ := setupSQLTable(t)

	mock.ExpectQuery(`SELECT creator_id::text FROM "projects" WHERE id::text = \$1`).
		WithArgs("row-1").
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow("alice"))
	mock.ExpectQuery(`SELECT creator_id::text FROM "projects"`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}))

	creator, err := table.CreatorOf(ctx, "row-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", creator)

	creator, err = table.CreatorOf(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, creator)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTable_Insert(t *testing.T) {
	ctx := context.Background()
	table, mock, _ := setupSQLTable(t)

	row := RowFromRecord(testRecord("Kiosk", "u1"))
	row.ApprovalStatus = "pending"

	args := make([]driver.Value, 22)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[0] = row.ID
	args[1] = "u1"
	args[2] = "Kiosk"
	args[9] = "pending"

	t.Run("returns the assigned id", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO "projects"`).
			WithArgs(args...).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(row.ID))

		id, err := table.Insert(ctx, row)
		require.NoError(t, err)
		assert.Equal(t, row.ID, id)
	})

	t.Run("keeps the driver error for unique detection", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO "projects"`).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

		_, err := table.Insert(ctx, row)
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTable_Update(t *testing.T) {
	ctx := context.Background()
	table, mock, _ := setupSQLTable(t)
	row := RowFromRecord(testRecord("Kiosk", "u1"))

	t.Run("updates mutable columns", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "projects" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, table.Update(ctx, "row-1", row))
	})

	t.Run("no affected row is an error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "projects" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := table.Update(ctx, "row-404", row)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no row affected")
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTable_List(t *testing.T) {
	ctx := context.Background()
	table, mock, _ := setupSQLTable(t)

	created := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "creator_id", "title", "description", "summary", "category", "tags", "deadline",
		"status", "approval_status", "cover_image", "image_urls", "video_url", "website_url",
		"github_url", "roadmap", "team_members", "requirements", "featured", "views", "likes",
		"comment_count", "share_count", "bookmark_count", "created_at", "updated_at",
	}

	mock.ExpectQuery(`SELECT (.+) FROM "projects" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"row-1", "u1", "Kiosk", "short", "", "IoT", "{solar,iot}", nil,
			"", "approved", "https://img/cover.png", "{}", "", "https://demo",
			"", []byte(`[{"title":"MVP","completed":true}]`), []byte(`[{"name":"Backer"},{"name":"Patron"}]`), "long form", false, int64(7), int64(2),
			int64(1), int64(0), int64(0), created, nil,
		))

	rows, err := table.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec := rows[0].Record()
	assert.Equal(t, "row-1", rec.ID)
	assert.Equal(t, []string{"solar", "iot"}, rec.Tags)
	assert.Equal(t, []string{"https://img/cover.png"}, rec.ImageURLs)
	assert.Equal(t, "https://demo", rec.DemoURL)
	assert.Equal(t, "long form", rec.LongDescription)
	assert.Equal(t, "active", string(rec.Status))
	require.Len(t, rec.Roadmap, 1)
	assert.True(t, rec.Roadmap[0].Completed)
	assert.Equal(t, 2, rec.TeamSize())
	assert.Equal(t, 7, rec.Views)
	assert.Equal(t, 1, rec.Comments)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, created, rec.UpdatedAt)
	assert.Nil(t, rec.Deadline)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pgx", &pgconn.PgError{Code: "23505"}, true},
		{"pgx other code", &pgconn.PgError{Code: "23503"}, false},
		{"lib/pq", &pq.Error{Code: "23505"}, true},
		{"postgrest text", errors.New("insert projects: (23505) duplicate key value"), true},
		{"plain", errors.New("timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
