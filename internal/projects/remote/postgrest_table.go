package remote

import (
	"context"
	"errors"
	"fmt"

	postgrest "github.com/supabase-community/postgrest-go"
)

// QueryClient is satisfied by *supabase.Client and *postgrest.Client.
type QueryClient interface {
	From(table string) *postgrest.QueryBuilder
}

// PostgrestTable talks to the projects table through the Supabase REST API.
// The query builder has no context support, so ctx is only checked before a
// request is issued.
type PostgrestTable struct {
	client QueryClient
	table  string
}

func NewPostgrestTable(client QueryClient, table string) *PostgrestTable {
	if table == "" {
		table = "projects"
	}
	return &PostgrestTable{client: client, table: table}
}

func (t *PostgrestTable) Name() string { return "postgrest" }

func (t *PostgrestTable) FindID(ctx context.Context, title, creatorID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	_, err := t.client.From(t.table).
		Select("id", "", false).
		Eq("title", title).
		Eq("creator_id", creatorID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("select %s by title: %w", t.table, err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].ID, nil
}

func (t *PostgrestTable) CreatorOf(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rows []struct {
		CreatorID string `json:"creator_id"`
	}
	_, err := t.client.From(t.table).
		Select("creator_id", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("select %s by id: %w", t.table, err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].CreatorID, nil
}

func (t *PostgrestTable) Insert(ctx context.Context, row Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var created []Row
	_, err := t.client.From(t.table).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", t.table, err)
	}
	if len(created) == 0 || created[0].ID == "" {
		return "", errors.New("insert returned no row")
	}
	return created[0].ID, nil
}

func (t *PostgrestTable) Update(ctx context.Context, id string, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var updated []Row
	_, err := t.client.From(t.table).
		Update(row.mutableColumns(), "representation", "").
		Eq("id", id).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", t.table, id, err)
	}
	if len(updated) == 0 {
		// row vanished between lookup and update, or RLS hid it
		return fmt.Errorf("update %s %s: no row affected", t.table, id)
	}
	return nil
}

func (t *PostgrestTable) List(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []Row
	_, err := t.client.From(t.table).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	return rows, nil
}

func (t *PostgrestTable) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := t.client.From(t.table).Select("id", "", false).Limit(1, "").Execute()
	return err
}
