package repo

import (
	"context"
	"time"

	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type RequestQuery struct {
	RequestedBy int64
	FacultyID   int64
	Status      model.RequestStatus
	Offset      int
	Limit       int
}

type RequestRepo interface {
	IDOrUUIDTranslate

	Create(ctx context.Context, req *model.PendingRequest, items []*model.RequestLineItem) error
	// Get loads a request with its line items.
	Get(ctx context.Context, id uuid.UUID) (*model.PendingRequest, error)
	List(ctx context.Context, q RequestQuery) ([]*model.PendingRequest, int64, error)
	// Decide moves a pending request to status. It reports false when the
	// request was no longer pending.
	Decide(ctx context.Context, id int64, status model.RequestStatus, deciderID int64, note string, at time.Time) (bool, error)
	// ClaimIssue sets issued_at on an approved, not yet issued request. It
	// reports false when no such request matched.
	ClaimIssue(ctx context.Context, id int64, at time.Time) (bool, error)
}
