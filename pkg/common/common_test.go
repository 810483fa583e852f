package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestReplyErrUsesCodeStatus(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	ReplyErr(ctx, code.InsufficientStock.WithErr(errors.New("row not matched")))

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := &Resp{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	assert.Equal(t, code.InsufficientStock, resp.Code)
	assert.Equal(t, "insufficient stock", resp.Error.Msg)
}

func TestReplyErrMessageOverride(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	ReplyErr(ctx, code.ParamErr, "name is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := &Resp{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	assert.Equal(t, "name is required", resp.Error.Msg)
}

func TestReplyData(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	Reply(ctx, nil, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"data":{"n":1}}`, w.Body.String())
}

func TestPageReqNormalize(t *testing.T) {
	p := &PageReq{}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = &PageReq{Page: 3, PageSize: 1000}
	p.Normalize()
	assert.Equal(t, maxPageSize, p.PageSize)
	assert.Equal(t, 2*maxPageSize, p.Offset())
}

func TestRole(t *testing.T) {
	assert.True(t, Faculty.CanManage())
	assert.True(t, Admin.CanManage())
	assert.False(t, Student.CanManage())
	assert.False(t, Role("guest").Valid())
}

func TestParamUUID(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Params = gin.Params{{Key: "uuid", Value: "not-a-uuid"}}

	_, ok := ParamUUID(ctx, "uuid")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ctx.Params = gin.Params{{Key: "uuid", Value: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}}
	id, ok := ParamUUID(ctx, "uuid")
	assert.True(t, ok)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", id.String())
}
