package activity

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/activity"
)

type Handle struct {
	svc activity.Service
}

func NewHandle(svc activity.Service) *Handle {
	return &Handle{svc: svc}
}

func (h *Handle) List(ctx *gin.Context) {
	req := &activity.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.List(ctx, req)
	common.Reply(ctx, err, resp)
}

// Prune deletes entries older than ?older_than, e.g. 720h.
func (h *Handle) Prune(ctx *gin.Context) {
	req := &activity.PruneReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.Prune(ctx, req)
	common.Reply(ctx, err, resp)
}
