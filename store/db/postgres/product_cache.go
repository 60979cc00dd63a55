package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopsmart/shopsmart/store"
)

func (d *DB) UpsertProductCacheRecord(ctx context.Context, upsert *store.ProductCacheRecord) (*store.ProductCacheRecord, error) {
	stmt := `
		INSERT INTO product_cache (list_uid, record_id, name, group_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (list_uid, record_id) DO UPDATE SET
			name = EXCLUDED.name,
			group_id = EXCLUDED.group_id
		RETURNING added_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.ListUID, upsert.RecordID, upsert.Name, upsert.GroupID,
	).Scan(&upsert.AddedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert product cache record: %w", err)
	}
	return upsert, nil
}

func (d *DB) UpdateProductCacheGroup(ctx context.Context, update *store.UpdateProductCacheGroup) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE product_cache SET group_id = $1 WHERE list_uid = $2 AND record_id = $3`,
		update.GroupID, update.ListUID, update.RecordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product cache group: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product cache record not found: %s", update.RecordID)
	}
	return nil
}

func (d *DB) ListProductCacheRecords(ctx context.Context, find *store.FindProductCacheRecord) ([]*store.ProductCacheRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ListUID; v != nil {
		where, args = append(where, "product_cache.list_uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RecordID; v != nil {
		where, args = append(where, "product_cache.record_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT list_uid, record_id, name, group_id, added_ts
		FROM product_cache
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY product_cache.added_ts ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list product cache records: %w", err)
	}
	defer rows.Close()

	list := []*store.ProductCacheRecord{}
	for rows.Next() {
		record := &store.ProductCacheRecord{}
		if err := rows.Scan(
			&record.ListUID,
			&record.RecordID,
			&record.Name,
			&record.GroupID,
			&record.AddedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product cache record: %w", err)
		}
		list = append(list, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
