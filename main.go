package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/scienceol/labinv/cmd/api"
	"github.com/scienceol/labinv/cmd/prune"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// @title       labinv API
// @version     1.0
// @description Lab inventory requests, approvals, issuance and returns.
// @BasePath    /api/v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	rootCtx := utils.SetupSignalContext()
	root := &cobra.Command{
		SilenceUsage:      true,
		Short:             "labinv",
		Long:              "labinv - laboratory inventory request and issuance service",
		PersistentPreRunE: initGlobalResource,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPostRunE: cleanGlobalResource,
	}
	root.SetContext(rootCtx)
	root.AddCommand(api.NewWeb())
	root.AddCommand(api.NewMigrate())
	root.AddCommand(prune.New())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initGlobalResource(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found - using environment variables")
	}

	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.AutomaticEnv()

	conf := config.Global()
	if err := v.Unmarshal(conf); err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	logger.Init(&logger.LogConfig{
		Path:     conf.Log.LogPath,
		LogLevel: conf.Log.LogLevel,
		ServiceEnv: logger.ServiceEnv{
			Platform: conf.Server.Platform,
			Service:  conf.Server.Service,
			Env:      conf.Server.Env,
		},
	})
	logger.Infof(cmd.Context(), "%s starting in %s, database %s, redis enabled %t",
		cmd.Name(), conf.Server.Env, conf.Database.Driver, conf.Redis.Enabled)
	return nil
}

func cleanGlobalResource(_ *cobra.Command, _ []string) error {
	logger.Close()
	return nil
}
