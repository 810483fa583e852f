package activity

import (
	"context"
	"time"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type activityImpl struct {
	*repo.BaseDB
}

func New(ds *db.Datastore) repo.ActivityRepo {
	return &activityImpl{BaseDB: repo.NewBaseDB(ds)}
}

func (a *activityImpl) Append(ctx context.Context, entry *model.ActivityLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := a.DBWithContext(ctx).Create(entry).Error; err != nil {
		logger.Errorf(ctx, "append activity log err: %+v", err)
		return code.ActivityLogErr.WithErr(err)
	}
	return nil
}

func (a *activityImpl) List(ctx context.Context, q repo.ActivityQuery) ([]*model.ActivityLog, int64, error) {
	tx := a.DBWithContext(ctx).Model(&model.ActivityLog{})
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.ItemType != "" {
		tx = tx.Where("item_type = ?", q.ItemType)
	}
	if q.UserID > 0 {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Since != nil {
		tx = tx.Where("timestamp >= ?", *q.Since)
	}
	if q.Until != nil {
		tx = tx.Where("timestamp < ?", *q.Until)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	list := make([]*model.ActivityLog, 0, q.Limit)
	if err := tx.Order("timestamp desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		logger.Errorf(ctx, "list activity logs err: %+v", err)
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (a *activityImpl) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	res := a.DBWithContext(ctx).Where("timestamp < ?", before).Delete(&model.ActivityLog{})
	if res.Error != nil {
		logger.Errorf(ctx, "prune activity logs err: %+v", res.Error)
		return 0, code.DeleteDataErr.WithErr(res.Error)
	}
	return res.RowsAffected, nil
}
