package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopsmart/shopsmart/store"
)

func (d *DB) CreateShoppingList(ctx context.Context, create *store.ShoppingList) (*store.ShoppingList, error) {
	members, err := marshalJSON(create.Members)
	if err != nil {
		return nil, err
	}
	pendingInvites, err := marshalJSON(create.PendingInvites)
	if err != nil {
		return nil, err
	}
	items, err := marshalJSON(create.Items)
	if err != nil {
		return nil, err
	}
	customGroupOrder, err := marshalJSON(create.CustomGroupOrder)
	if err != nil {
		return nil, err
	}

	fields := []string{"uid", "name", "owner_uid", "members", "pending_invites", "items", "custom_group_order"}
	placeholderValues := []any{create.UID, create.Name, create.OwnerUID, members, pendingInvites, items, customGroupOrder}

	stmt := `INSERT INTO shopping_list (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}

	return create, nil
}

func (d *DB) ListShoppingLists(ctx context.Context, find *store.FindShoppingList) ([]*store.ShoppingList, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "shopping_list.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "shopping_list.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MemberUID; v != nil {
		where, args = append(where, "shopping_list.members @> jsonb_build_array("+placeholder(len(args)+1)+"::text)"), append(args, *v)
	}
	if v := find.PendingInviteEmail; v != nil {
		where, args = append(where, "shopping_list.pending_invites @> jsonb_build_array("+placeholder(len(args)+1)+"::text)"), append(args, *v)
	}

	query := `
		SELECT
			id, uid, name, owner_uid,
			members, pending_invites, items, custom_group_order,
			created_ts, updated_ts
		FROM shopping_list
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY shopping_list.created_ts ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	defer rows.Close()

	list := []*store.ShoppingList{}
	for rows.Next() {
		shoppingList, err := scanShoppingList(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, shoppingList)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateShoppingList(ctx context.Context, update *store.UpdateShoppingList) (*store.ShoppingList, error) {
	set, args := []string{}, []any{}

	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Members; v != nil {
		members, err := marshalJSON(*v)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "members = "+placeholder(len(args)+1)+"::jsonb"), append(args, members)
	}
	if v := update.PendingInvites; v != nil {
		pendingInvites, err := marshalJSON(*v)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "pending_invites = "+placeholder(len(args)+1)+"::jsonb"), append(args, pendingInvites)
	}
	if v := update.Items; v != nil {
		items, err := marshalJSON(*v)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "items = "+placeholder(len(args)+1)+"::jsonb"), append(args, items)
	}
	if v := update.CustomGroupOrder; v != nil {
		customGroupOrder, err := marshalJSON(*v)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "custom_group_order = "+placeholder(len(args)+1)+"::jsonb"), append(args, customGroupOrder)
	}

	set = append(set, "updated_ts = EXTRACT(EPOCH FROM NOW())")
	args = append(args, update.UID)

	stmt := `UPDATE shopping_list SET ` + strings.Join(set, ", ") + `
		WHERE uid = ` + placeholder(len(args)) + `
		RETURNING
			id, uid, name, owner_uid,
			members, pending_invites, items, custom_group_order,
			created_ts, updated_ts`

	shoppingList, err := scanShoppingList(d.db.QueryRowContext(ctx, stmt, args...).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to update shopping list: %w", err)
	}
	return shoppingList, nil
}

func (d *DB) DeleteShoppingList(ctx context.Context, delete *store.DeleteShoppingList) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE uid = $1`, delete.UID); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	// The list's product cache collection goes with it.
	if _, err := d.db.ExecContext(ctx, `DELETE FROM product_cache WHERE list_uid = $1`, delete.UID); err != nil {
		return fmt.Errorf("failed to delete product cache of list: %w", err)
	}
	return nil
}

func scanShoppingList(scan func(dest ...any) error) (*store.ShoppingList, error) {
	shoppingList := &store.ShoppingList{}
	var members, pendingInvites, items, customGroupOrder string
	if err := scan(
		&shoppingList.ID,
		&shoppingList.UID,
		&shoppingList.Name,
		&shoppingList.OwnerUID,
		&members,
		&pendingInvites,
		&items,
		&customGroupOrder,
		&shoppingList.CreatedTs,
		&shoppingList.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to scan shopping list: %w", err)
	}

	if err := unmarshalJSON(members, &shoppingList.Members); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(pendingInvites, &shoppingList.PendingInvites); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(items, &shoppingList.Items); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(customGroupOrder, &shoppingList.CustomGroupOrder); err != nil {
		return nil, err
	}
	return shoppingList, nil
}
