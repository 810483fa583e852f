package issuance

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/issuance"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

type Handle struct {
	svc issuance.Service
}

func NewHandle(svc issuance.Service) *Handle {
	return &Handle{svc: svc}
}

func (h *Handle) List(ctx *gin.Context) {
	req := &issuance.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.List(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Return(ctx *gin.Context) {
	id, ok := common.ParamUUID(ctx, "uuid")
	if !ok {
		return
	}
	req := &issuance.ReturnReq{UUID: id}
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
			logger.Errorf(ctx, "parse Return param err: %+v", err.Error())
			common.ReplyErr(ctx, code.ParamErr, err.Error())
			return
		}
	}
	resp, err := h.svc.Return(ctx, req)
	common.Reply(ctx, err, resp)
}
