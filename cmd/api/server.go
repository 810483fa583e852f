package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/scienceol/labinv/docs" // swagger docs

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/middleware/redis"
	"github.com/scienceol/labinv/pkg/middleware/trace"
	"github.com/scienceol/labinv/pkg/repo/migrate"
	"github.com/scienceol/labinv/pkg/utils"
	"github.com/scienceol/labinv/pkg/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 60 * time.Second

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "apiserver",
		Long:         "Start the inventory API server",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         runServer,
		PostRunE:     cleanWebResource,
	}
}

func NewMigrate() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Long:         "Create or update the database tables",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			InitDB(cmd.Context())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Table(cmd.Context(), db.DB())
		},
		PostRunE: func(cmd *cobra.Command, _ []string) error {
			db.Close(cmd.Context())
			return nil
		},
	}
}

// InitDB opens the global datastore from the database config.
func InitDB(ctx context.Context) {
	conf := config.Global()
	db.Init(ctx, &db.Config{
		Driver:  string(conf.Database.Driver),
		Host:    conf.Database.Host,
		Port:    conf.Database.Port,
		User:    conf.Database.User,
		PW:      conf.Database.Password,
		DBName:  conf.Database.Name,
		SSLMode: conf.Database.SSLMode,
		MaxOpen: conf.Database.MaxOpen,
		MaxIdle: conf.Database.MaxIdle,
		LogConf: db.LogConf{Level: conf.Log.LogLevel},
	})
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:     fmt.Sprintf("%s-%s", conf.Server.Service, conf.Server.Platform),
		Version:         conf.Trace.Version,
		TraceEndpoint:   conf.Trace.TraceEndpoint,
		MetricEndpoint:  conf.Trace.MetricEndpoint,
		TraceProject:    conf.Trace.TraceProject,
		TraceInstanceID: conf.Trace.TraceInstanceID,
		TraceAK:         conf.Trace.TraceAK,
		TraceSK:         conf.Trace.TraceSK,
		Stdout:          conf.Trace.Stdout,
	})
	InitDB(cmd.Context())
	if conf.Redis.Enabled {
		redis.InitRedis(cmd.Context(), &redis.Redis{
			Host:     conf.Redis.Host,
			Port:     conf.Redis.Port,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
	}
	return nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	services, err := web.NewServices(cmd.Context(), db.DB(), redis.GetClient(), conf)
	if err != nil {
		return err
	}
	defer services.Close(context.WithoutCancel(cmd.Context()))

	router := gin.Default()
	web.NewRouter(router, services)
	port := conf.Server.Port

	httpServer := http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(cmd.Context(), "start server err: %v", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})
	logger.Infof(cmd.Context(), "api server listening on :%d", port)

	<-cmd.Context().Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf(ctx, "shut down server err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	redis.CloseRedis(cmd.Context())
	db.Close(cmd.Context())
	trace.CloseTrace()
	return nil
}
