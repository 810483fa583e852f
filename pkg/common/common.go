package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
)

type Error struct {
	Msg string `json:"msg"`
}

type Resp struct {
	Code  code.ErrCode `json:"code"`
	Data  any          `json:"data,omitempty"`
	Error *Error       `json:"error,omitempty"`
}

func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

func ReplyOk(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, &Resp{Code: code.Success})
}

// ReplyErr writes the error envelope. An optional message overrides the
// message carried by err.
func ReplyErr(ctx *gin.Context, err error, msgs ...string) {
	c, msg := code.From(err)
	if len(msgs) > 0 && msgs[0] != "" {
		msg = msgs[0]
	}
	ctx.JSON(c.HTTPStatus(), &Resp{
		Code:  c,
		Error: &Error{Msg: msg},
	})
}

type PageReq struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

func (p *PageReq) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

func (p *PageReq) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PageResp[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Data     T     `json:"data"`
}

// ParamUUID reads a UUID path parameter. On failure it replies ParamErr and
// reports false.
func ParamUUID(ctx *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.FromString(ctx.Param(key))
	if err != nil {
		ReplyErr(ctx, code.ParamErr, "invalid "+key)
		return uuid.Nil, false
	}
	return id, true
}
