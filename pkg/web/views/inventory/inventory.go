package inventory

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/inventory"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handle struct {
	svc inventory.Service
}

func NewHandle(svc inventory.Service) *Handle {
	return &Handle{svc: svc}
}

func itemReq(ctx *gin.Context) (inventory.ItemReq, bool) {
	id, ok := common.ParamUUID(ctx, "uuid")
	if !ok {
		return inventory.ItemReq{}, false
	}
	return inventory.ItemReq{Type: ctx.Param("type"), UUID: id}, true
}

func (h *Handle) Create(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil || len(body) == 0 {
		common.ReplyErr(ctx, code.ParamErr, "request body is required")
		return
	}
	resp, err := h.svc.Create(ctx, &inventory.CreateReq{Type: ctx.Param("type"), Body: body})
	if err != nil {
		logger.Errorf(ctx, "create %s err: %+v", ctx.Param("type"), err)
	}
	common.Reply(ctx, err, resp)
}

func (h *Handle) List(ctx *gin.Context) {
	req := &inventory.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.Type = ctx.Param("type")
	resp, err := h.svc.List(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	req, ok := itemReq(ctx)
	if !ok {
		return
	}
	resp, err := h.svc.Get(ctx, &req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Update(ctx *gin.Context) {
	req, ok := itemReq(ctx)
	if !ok {
		return
	}
	body, err := ctx.GetRawData()
	if err != nil || len(body) == 0 {
		common.ReplyErr(ctx, code.ParamErr, "request body is required")
		return
	}
	resp, err := h.svc.Update(ctx, &inventory.UpdateReq{ItemReq: req, Body: body})
	if err != nil {
		logger.Errorf(ctx, "update %s %s err: %+v", req.Type, req.UUID, err)
	}
	common.Reply(ctx, err, resp)
}

func (h *Handle) Adjust(ctx *gin.Context) {
	item, ok := itemReq(ctx)
	if !ok {
		return
	}
	req := &inventory.AdjustReq{ItemReq: item}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Adjust param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.Adjust(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Delete(ctx *gin.Context) {
	req, ok := itemReq(ctx)
	if !ok {
		return
	}
	common.Reply(ctx, h.svc.Delete(ctx, &req))
}

func (h *Handle) LowStock(ctx *gin.Context) {
	resp, err := h.svc.LowStock(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Export(ctx *gin.Context) {
	resp, err := h.svc.Export(ctx, &inventory.ExportReq{Type: ctx.Param("type")})
	if err != nil {
		logger.Errorf(ctx, "export %s err: %+v", ctx.Param("type"), err)
		common.ReplyErr(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", resp.FileName))
	ctx.DataFromReader(http.StatusOK, int64(len(resp.Data)), xlsxContentType, bytes.NewReader(resp.Data), nil)
}

func (h *Handle) LookupCAS(ctx *gin.Context) {
	req := &inventory.CasReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.LookupCAS(ctx, req)
	common.Reply(ctx, err, resp)
}
