package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const selectColumns = `id::text, COALESCE(creator_id::text, ''), title, COALESCE(description, ''),
	COALESCE(summary, ''), COALESCE(category, ''), COALESCE(tags, '{}'), deadline,
	COALESCE(status, ''), COALESCE(approval_status, ''), COALESCE(cover_image, ''),
	COALESCE(image_urls, '{}'), COALESCE(video_url, ''), COALESCE(website_url, ''),
	COALESCE(github_url, ''), COALESCE(roadmap, '[]'::jsonb), COALESCE(team_members, '[]'::jsonb),
	COALESCE(requirements, ''), COALESCE(featured, false), COALESCE(views, 0), COALESCE(likes, 0),
	COALESCE(comment_count, 0), COALESCE(share_count, 0), COALESCE(bookmark_count, 0),
	created_at, updated_at`

// SQLTable reaches the same projects schema directly over Postgres. db is
// usually stdlib.OpenDBFromPool over the shared pgx pool.
type SQLTable struct {
	db    *sql.DB
	table string
}

func NewSQLTable(db *sql.DB, table string) *SQLTable {
	if table == "" {
		table = "projects"
	}
	return &SQLTable{db: db, table: pq.QuoteIdentifier(table)}
}

func (t *SQLTable) Name() string { return "postgres" }

func (t *SQLTable) FindID(ctx context.Context, title, creatorID string) (string, error) {
	query := fmt.Sprintf(`SELECT id::text FROM %s WHERE title = $1 AND creator_id::text = $2 LIMIT 1`, t.table)

	var id string
	err := t.db.QueryRowContext(ctx, query, title, creatorID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select project by title: %w", err)
	}
	return id, nil
}

func (t *SQLTable) CreatorOf(ctx context.Context, id string) (string, error) {
	query := fmt.Sprintf(`SELECT creator_id::text FROM %s WHERE id::text = $1 LIMIT 1`, t.table)

	var creator string
	err := t.db.QueryRowContext(ctx, query, id).Scan(&creator)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select project by id: %w", err)
	}
	return creator, nil
}

func (t *SQLTable) Insert(ctx context.Context, row Row) (string, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, creator_id, title, description, summary, category, tags, deadline,
			status, approval_status, cover_image, image_urls, video_url, website_url,
			roadmap, team_members, requirements, views, likes, comment_count,
			created_at, updated_at
		)
		VALUES (
			COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15::jsonb, $16::jsonb, $17, $18, $19, $20,
			COALESCE($21, NOW()), COALESCE($22, NOW())
		)
		RETURNING id::text
	`, t.table)

	var id string
	err := t.db.QueryRowContext(ctx, query,
		row.ID,
		row.CreatorID,
		row.Title,
		row.Description,
		row.Summary,
		row.Category,
		pq.Array(row.Tags),
		row.Deadline,
		row.Status,
		row.ApprovalStatus,
		row.CoverImage,
		pq.Array(row.ImageURLs),
		row.VideoURL,
		row.WebsiteURL,
		jsonText(row.Roadmap),
		jsonText(row.TeamMembers),
		row.Requirements,
		row.Views,
		row.Likes,
		row.CommentCount,
		row.CreatedAt,
		row.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

func (t *SQLTable) Update(ctx context.Context, id string, row Row) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			title = $2,
			description = $3,
			summary = $4,
			category = $5,
			tags = $6,
			deadline = $7,
			status = $8,
			cover_image = $9,
			image_urls = $10,
			video_url = $11,
			website_url = $12,
			roadmap = $13::jsonb,
			team_members = $14::jsonb,
			requirements = $15,
			updated_at = COALESCE($16, NOW())
		WHERE id::text = $1
	`, t.table)

	res, err := t.db.ExecContext(ctx, query,
		id,
		row.Title,
		row.Description,
		row.Summary,
		row.Category,
		pq.Array(row.Tags),
		row.Deadline,
		row.Status,
		row.CoverImage,
		pq.Array(row.ImageURLs),
		row.VideoURL,
		row.WebsiteURL,
		jsonText(row.Roadmap),
		jsonText(row.TeamMembers),
		row.Requirements,
		row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update project %s: no row affected", id)
	}
	return nil
}

func (t *SQLTable) List(ctx context.Context) ([]Row, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, selectColumns, t.table)

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r           Row
			deadline    sql.NullTime
			createdAt   sql.NullTime
			updatedAt   sql.NullTime
			roadmap     []byte
			teamMembers []byte
		)
		if err := rows.Scan(
			&r.ID,
			&r.CreatorID,
			&r.Title,
			&r.Description,
			&r.Summary,
			&r.Category,
			pq.Array(&r.Tags),
			&deadline,
			&r.Status,
			&r.ApprovalStatus,
			&r.CoverImage,
			pq.Array(&r.ImageURLs),
			&r.VideoURL,
			&r.WebsiteURL,
			&r.GithubURL,
			&roadmap,
			&teamMembers,
			&r.Requirements,
			&r.Featured,
			&r.Views,
			&r.Likes,
			&r.CommentCount,
			&r.ShareCount,
			&r.BookmarkCount,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}

		r.Deadline = nullTimePtr(deadline)
		r.CreatedAt = nullTimePtr(createdAt)
		r.UpdatedAt = nullTimePtr(updatedAt)
		r.Roadmap = roadmap
		r.TeamMembers = teamMembers
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func (t *SQLTable) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}
