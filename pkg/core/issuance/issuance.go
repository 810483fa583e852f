package issuance

import (
	"context"

	"github.com/scienceol/labinv/pkg/common"
)

type Service interface {
	// Issue hands out every line of an approved request and takes the
	// amounts from available stock, all in one transaction.
	Issue(ctx context.Context, req *IssueReq) (*IssueResp, error)
	Return(ctx context.Context, req *ReturnReq) (*IssuedResp, error)
	List(ctx context.Context, req *ListReq) (*common.PageResp[[]*IssuedResp], error)
}
