package request

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/issuance"
	"github.com/scienceol/labinv/pkg/core/request"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

type Handle struct {
	svc   request.Service
	issue issuance.Service
}

func NewHandle(svc request.Service, issue issuance.Service) *Handle {
	return &Handle{svc: svc, issue: issue}
}

// bindOptional binds a JSON body when one was sent. Decision and issue
// notes are optional, so an empty body is valid.
func bindOptional(ctx *gin.Context, req any) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	if err := ctx.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		logger.Errorf(ctx, "parse %s param err: %+v", ctx.FullPath(), err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return false
	}
	return true
}

func (h *Handle) Submit(ctx *gin.Context) {
	req := &request.SubmitReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Submit param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.Submit(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) List(ctx *gin.Context) {
	req := &request.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.List(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	id, ok := common.ParamUUID(ctx, "uuid")
	if !ok {
		return
	}
	resp, err := h.svc.Get(ctx, &request.GetReq{UUID: id})
	common.Reply(ctx, err, resp)
}

func (h *Handle) Approve(ctx *gin.Context) {
	h.decide(ctx, h.svc.Approve)
}

func (h *Handle) Reject(ctx *gin.Context) {
	h.decide(ctx, h.svc.Reject)
}

func (h *Handle) decide(ctx *gin.Context, fn func(context.Context, *request.DecideReq) (*request.RequestResp, error)) {
	id, ok := common.ParamUUID(ctx, "uuid")
	if !ok {
		return
	}
	req := &request.DecideReq{UUID: id}
	if !bindOptional(ctx, req) {
		return
	}
	resp, err := fn(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Issue(ctx *gin.Context) {
	id, ok := common.ParamUUID(ctx, "uuid")
	if !ok {
		return
	}
	req := &issuance.IssueReq{UUID: id}
	if !bindOptional(ctx, req) {
		return
	}
	resp, err := h.issue.Issue(ctx, req)
	if err != nil {
		logger.Warnf(ctx, "issue request %s err: %v", id, err)
	}
	common.Reply(ctx, err, resp)
}
