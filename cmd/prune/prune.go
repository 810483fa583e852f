package prune

import (
	"time"

	"github.com/scienceol/labinv/cmd/api"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/core/activity"
	activityImpl "github.com/scienceol/labinv/pkg/core/activity/activity"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	activityRepo "github.com/scienceol/labinv/pkg/repo/activity"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:          "prune-logs",
		Long:         "Delete activity log entries older than the retention period",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			api.InitDB(cmd.Context())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan == 0 {
				olderThan = config.Global().Workflow.ActivityRetention
			}
			svc := activityImpl.New(activityRepo.New(db.DB()))
			resp, err := svc.Prune(cmd.Context(), &activity.PruneReq{OlderThan: olderThan})
			if err != nil {
				return err
			}
			logger.Infof(cmd.Context(), "deleted %d activity logs older than %s", resp.Deleted, resp.Before.Format(time.RFC3339))
			cmd.Printf("deleted %d activity logs\n", resp.Deleted)
			return nil
		},
		PostRunE: func(cmd *cobra.Command, _ []string) error {
			db.Close(cmd.Context())
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention age, defaults to ACTIVITY_RETENTION")
	return cmd
}
