package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
)

type AuthType string

const AuthTypeBearer AuthType = "Bearer"

func abort(ctx *gin.Context, status int, c code.ErrCode) {
	ctx.AbortWithStatusJSON(status, &common.Resp{
		Code:  c,
		Error: &common.Error{Msg: c.String()},
	})
}

// AuthWeb verifies the bearer token from the access_token cookie, the
// access_token query parameter or the Authorization header.
func AuthWeb() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		secret := []byte(config.Global().Auth.JWTSecret)

		cookie, _ := ctx.Cookie("access_token")
		if cookie != "" && !strings.Contains(cookie, " ") {
			cookie = string(AuthTypeBearer) + " " + cookie
		}
		queryToken := ctx.Query("access_token")
		if queryToken != "" {
			queryToken = string(AuthTypeBearer) + " " + queryToken
		}
		authHeader := utils.Or(ctx.GetHeader("Authorization"), cookie, queryToken)
		if authHeader == "" {
			abort(ctx, http.StatusUnauthorized, code.UnLogin)
			return
		}

		tokens := strings.SplitN(authHeader, " ", 2)
		if len(tokens) != 2 || AuthType(tokens[0]) != AuthTypeBearer || tokens[1] == "" {
			abort(ctx, http.StatusUnauthorized, code.LoginFormatErr)
			return
		}

		claims, err := utils.ParseJWT(secret, tokens[1])
		if err != nil {
			logger.Warnf(ctx, "parse access token err: %v", err)
			abort(ctx, http.StatusUnauthorized, code.InvalidToken)
			return
		}

		role := common.Role(claims.Role)
		if !role.Valid() || claims.UserID == 0 {
			abort(ctx, http.StatusUnauthorized, code.InvalidToken)
			return
		}

		ctx.Set(USERKEY, &model.UserData{
			ID:       claims.UserID,
			UUID:     uuid.Parse(claims.UUID),
			Email:    claims.Email,
			FullName: claims.FullName,
			RollNo:   claims.RollNo,
			Role:     role,
		})
		ctx.Next()
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// AuthWeb.
func RequireRole(roles ...common.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := GetCurrentUser(ctx)
		if user == nil {
			abort(ctx, http.StatusUnauthorized, code.UnLogin)
			return
		}
		for _, r := range roles {
			if user.Role == r {
				ctx.Next()
				return
			}
		}
		abort(ctx, http.StatusForbidden, code.PermissionDenied)
	}
}
