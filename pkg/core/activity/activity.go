package activity

import (
	"context"

	"github.com/scienceol/labinv/pkg/common"
)

type Service interface {
	// Record appends an entry attributed to the current user. Call it with
	// the transaction context of the action it records.
	Record(ctx context.Context, entry *Entry) error
	List(ctx context.Context, req *ListReq) (*common.PageResp[[]*LogResp], error)
	Prune(ctx context.Context, req *PruneReq) (*PruneResp, error)
}
