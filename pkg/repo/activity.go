package repo

import (
	"context"
	"time"

	"github.com/scienceol/labinv/pkg/repo/model"
)

type ActivityQuery struct {
	Action   model.ActivityAction
	ItemType model.ItemType
	UserID   int64
	Since    *time.Time
	Until    *time.Time
	Offset   int
	Limit    int
}

type ActivityRepo interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, q ActivityQuery) ([]*model.ActivityLog, int64, error)
	// PruneBefore deletes entries older than before and returns the count.
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}
