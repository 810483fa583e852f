package migrate

import (
	"context"

	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo/model"
)

// Models lists every table the service owns.
func Models() []any {
	models := []any{
		&model.User{},
		&model.PendingRequest{},
		&model.RequestLineItem{},
		&model.IssuedItem{},
		&model.ActivityLog{},
	}
	return append(models, model.InventoryModels()...)
}

func Table(ctx context.Context, ds *db.Datastore) error {
	d := ds.DBWithContext(ctx)
	for _, m := range Models() {
		if err := d.AutoMigrate(m); err != nil {
			logger.Errorf(ctx, "migrate table err: %+v", err)
			return err
		}
	}
	logger.Infof(ctx, "migrate %d tables done", len(Models()))
	return nil
}
