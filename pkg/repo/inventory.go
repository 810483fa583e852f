package repo

import (
	"context"

	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type InventoryQuery struct {
	// Keyword matches name, company or catalog number.
	Keyword  string
	LowStock bool
	Offset   int
	Limit    int
}

type InventoryRepo interface {
	IDOrUUIDTranslate

	// Get returns a non-deleted item, code.ItemNotFound otherwise.
	Get(ctx context.Context, kind *model.Kind, id uuid.UUID) (model.InventoryRecord, error)
	GetByID(ctx context.Context, kind *model.Kind, id int64) (model.InventoryRecord, error)
	// GetByIDs skips ids that do not resolve to a non-deleted item.
	GetByIDs(ctx context.Context, kind *model.Kind, ids ...int64) (map[int64]model.InventoryRecord, error)
	List(ctx context.Context, kind *model.Kind, q InventoryQuery) ([]model.InventoryRecord, int64, error)
	Update(ctx context.Context, kind *model.Kind, id int64, fields map[string]any) error
	// Save writes every column of rec except its identity, available stock
	// and deleted flag.
	Save(ctx context.Context, kind *model.Kind, rec model.InventoryRecord) error
	SoftDelete(ctx context.Context, kind *model.Kind, id int64) error
	// Decrement takes amount from available stock in one statement. With
	// enforce set it fails with code.InsufficientStock instead of going
	// below zero.
	Decrement(ctx context.Context, kind *model.Kind, id int64, amount float64, enforce bool) error
	// Increment puts amount back on available stock, never above total.
	Increment(ctx context.Context, kind *model.Kind, id int64, amount float64) error
}
