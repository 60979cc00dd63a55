package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates or upgrades the database schema.
	Migrate(ctx context.Context) error

	// User model related methods.
	UpsertUser(ctx context.Context, upsert *UpsertUser) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)

	// ShoppingList model related methods.
	CreateShoppingList(ctx context.Context, create *ShoppingList) (*ShoppingList, error)
	ListShoppingLists(ctx context.Context, find *FindShoppingList) ([]*ShoppingList, error)
	UpdateShoppingList(ctx context.Context, update *UpdateShoppingList) (*ShoppingList, error)
	DeleteShoppingList(ctx context.Context, delete *DeleteShoppingList) error

	// ProductCacheRecord model related methods.
	UpsertProductCacheRecord(ctx context.Context, upsert *ProductCacheRecord) (*ProductCacheRecord, error)
	UpdateProductCacheGroup(ctx context.Context, update *UpdateProductCacheGroup) error
	ListProductCacheRecords(ctx context.Context, find *FindProductCacheRecord) ([]*ProductCacheRecord, error)
}
