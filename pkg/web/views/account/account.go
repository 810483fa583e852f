package account

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/account"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

const tokenCookie = "access_token"

type Handle struct {
	svc account.Service
}

func NewHandle(svc account.Service) *Handle {
	return &Handle{svc: svc}
}

func setTokenCookie(ctx *gin.Context, resp *account.TokenResp) {
	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(tokenCookie, resp.AccessToken, maxAge, "/", "", ctx.Request.TLS != nil, true)
}

func (h *Handle) Register(ctx *gin.Context) {
	req := &account.RegisterReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Register param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.Register(ctx, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	setTokenCookie(ctx, resp)
	common.Reply(ctx, nil, resp)
}

func (h *Handle) Login(ctx *gin.Context) {
	req := &account.LoginReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.Login(ctx, req)
	if err != nil {
		logger.Warnf(ctx, "login %s failed: %v", req.Email, err)
		common.ReplyErr(ctx, err)
		return
	}
	setTokenCookie(ctx, resp)
	common.Reply(ctx, nil, resp)
}

func (h *Handle) Logout(ctx *gin.Context) {
	ctx.SetCookie(tokenCookie, "", -1, "/", "", ctx.Request.TLS != nil, true)
	common.ReplyOk(ctx)
}

func (h *Handle) Me(ctx *gin.Context) {
	resp, err := h.svc.Me(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Faculty(ctx *gin.Context) {
	resp, err := h.svc.ListFaculty(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) SetRole(ctx *gin.Context) {
	id, ok := common.ParamUUID(ctx, "uuid")
	if !ok {
		return
	}
	req := &account.RoleReq{UUID: id}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse SetRole param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.svc.SetRole(ctx, req)
	common.Reply(ctx, err, resp)
}
