package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/repo/model"
)

var USERKEY = "AUTH_USER_KEY"

type userCtxKey struct{}

// WithUser binds a verified identity to a plain context.
func WithUser(ctx context.Context, user *model.UserData) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// GetCurrentUser returns the identity placed by AuthWeb or WithUser. It
// resolves through contexts derived from the gin context.
func GetCurrentUser(ctx context.Context) *model.UserData {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(userCtxKey{}).(*model.UserData); ok {
		return u
	}
	if gCtx, ok := ctx.(*gin.Context); ok {
		if v, exists := gCtx.Get(USERKEY); exists {
			u, _ := v.(*model.UserData)
			return u
		}
		return nil
	}
	u, _ := ctx.Value(USERKEY).(*model.UserData)
	return u
}
