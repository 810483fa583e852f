package request

import (
	"context"

	"github.com/scienceol/labinv/pkg/common"
)

type Service interface {
	Submit(ctx context.Context, req *SubmitReq) (*RequestResp, error)
	Get(ctx context.Context, req *GetReq) (*RequestResp, error)
	List(ctx context.Context, req *ListReq) (*common.PageResp[[]*RequestResp], error)
	Approve(ctx context.Context, req *DecideReq) (*RequestResp, error)
	Reject(ctx context.Context, req *DecideReq) (*RequestResp, error)
}
