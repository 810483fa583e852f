package inventory

import (
	"context"

	"github.com/scienceol/labinv/pkg/common"
)

type Service interface {
	Create(ctx context.Context, req *CreateReq) (*ItemResp, error)
	Get(ctx context.Context, req *ItemReq) (*ItemResp, error)
	List(ctx context.Context, req *ListReq) (*common.PageResp[[]*ItemResp], error)
	Update(ctx context.Context, req *UpdateReq) (*ItemResp, error)
	// Adjust is the admin correction of available stock.
	Adjust(ctx context.Context, req *AdjustReq) (*ItemResp, error)
	// Delete hides the item. Items with open issuances cannot be deleted.
	Delete(ctx context.Context, req *ItemReq) error
	// LowStock lists items of every category with available < 10% of total.
	LowStock(ctx context.Context) ([]*ItemResp, error)
	Export(ctx context.Context, req *ExportReq) (*ExportResp, error)
	LookupCAS(ctx context.Context, req *CasReq) (*CasResp, error)
}
