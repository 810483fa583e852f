package web

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	accountView "github.com/scienceol/labinv/pkg/web/views/account"
	activityView "github.com/scienceol/labinv/pkg/web/views/activity"
	"github.com/scienceol/labinv/pkg/web/views/health"
	inventoryView "github.com/scienceol/labinv/pkg/web/views/inventory"
	issuanceView "github.com/scienceol/labinv/pkg/web/views/issuance"
	requestView "github.com/scienceol/labinv/pkg/web/views/request"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(g *gin.Engine, s *Services) {
	RegisterValidators()
	installMiddleware(g)
	installURL(g, s)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	corsConf := cors.DefaultConfig()
	corsConf.AllowOrigins = []string{server.WebURL}
	corsConf.AllowCredentials = true
	corsConf.AddAllowHeaders("Authorization")
	g.Use(cors.New(corsConf))
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(g *gin.Engine, s *Services) {
	g.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)

	v1 := api.Group("/v1")
	admin := auth.RequireRole(common.Admin)

	{
		h := accountView.NewHandle(s.Account)
		authRouter := v1.Group("/auth")
		authRouter.POST("/register", h.Register)
		authRouter.POST("/login", h.Login)
		authRouter.POST("/logout", h.Logout)
		authRouter.GET("/me", auth.AuthWeb(), h.Me)

		userRouter := v1.Group("/users", auth.AuthWeb())
		userRouter.GET("/faculty", h.Faculty)
		userRouter.PUT("/:uuid/role", admin, h.SetRole)
	}

	{
		h := inventoryView.NewHandle(s.Inventory)
		invRouter := v1.Group("/inventory", auth.AuthWeb())
		invRouter.GET("/low-stock", h.LowStock)
		invRouter.GET("/chemical/cas", h.LookupCAS)
		invRouter.POST("/:type", h.Create)
		invRouter.GET("/:type", h.List)
		invRouter.GET("/:type/export", h.Export)
		invRouter.GET("/:type/:uuid", h.Get)
		invRouter.PATCH("/:type/:uuid", h.Update)
		invRouter.PATCH("/:type/:uuid/adjust", admin, h.Adjust)
		invRouter.DELETE("/:type/:uuid", h.Delete)
	}

	{
		h := requestView.NewHandle(s.Request, s.Issuance)
		reqRouter := v1.Group("/requests", auth.AuthWeb())
		reqRouter.POST("", h.Submit)
		reqRouter.GET("", h.List)
		reqRouter.GET("/:uuid", h.Get)
		reqRouter.POST("/:uuid/approve", h.Approve)
		reqRouter.POST("/:uuid/reject", h.Reject)
		reqRouter.POST("/:uuid/issue", h.Issue)
	}

	{
		h := issuanceView.NewHandle(s.Issuance)
		issuedRouter := v1.Group("/issued", auth.AuthWeb())
		issuedRouter.GET("", h.List)
		issuedRouter.POST("/:uuid/return", h.Return)
	}

	{
		h := activityView.NewHandle(s.Activity)
		logRouter := v1.Group("/activity", auth.AuthWeb())
		logRouter.GET("", h.List)
		logRouter.DELETE("", admin, h.Prune)
	}

	v1.GET("/events", auth.AuthWeb(), s.Hub.Stream)
}
