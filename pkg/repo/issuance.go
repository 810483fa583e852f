package repo

import (
	"context"
	"time"

	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type IssuedQuery struct {
	IssuedToID       int64
	FacultyID        int64
	PendingRequestID int64
	Status           model.IssueStatus
	Offset           int
	Limit            int
}

type IssuanceRepo interface {
	IDOrUUIDTranslate

	ExistsForRequest(ctx context.Context, requestID int64) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*model.IssuedItem, error)
	List(ctx context.Context, q IssuedQuery) ([]*model.IssuedItem, int64, error)
	// MarkReturned flips an issued row to returned. It reports false when
	// the row was already returned.
	MarkReturned(ctx context.Context, id int64, at time.Time) (bool, error)
	// CountOpen counts issued, not yet returned rows of one item.
	CountOpen(ctx context.Context, itemType model.ItemType, itemID int64) (int64, error)
}
