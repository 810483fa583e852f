package issuance

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"gorm.io/gorm"
)

type issuanceImpl struct {
	*repo.BaseDB
}

func New(ds *db.Datastore) repo.IssuanceRepo {
	return &issuanceImpl{BaseDB: repo.NewBaseDB(ds)}
}

func (i *issuanceImpl) ExistsForRequest(ctx context.Context, requestID int64) (bool, error) {
	var n int64
	if err := i.DBWithContext(ctx).Model(&model.IssuedItem{}).
		Where("pending_request_id = ?", requestID).
		Count(&n).Error; err != nil {
		logger.Errorf(ctx, "count issued items of request %d err: %+v", requestID, err)
		return false, code.QueryRecordErr.WithErr(err)
	}
	return n > 0, nil
}

func (i *issuanceImpl) Get(ctx context.Context, id uuid.UUID) (*model.IssuedItem, error) {
	item := &model.IssuedItem{}
	if err := i.DBWithContext(ctx).Where("uuid = ?", id).Take(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.IssuedItemNotFound
		}
		logger.Errorf(ctx, "get issued item err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return item, nil
}

func (i *issuanceImpl) List(ctx context.Context, q repo.IssuedQuery) ([]*model.IssuedItem, int64, error) {
	tx := i.DBWithContext(ctx).Model(&model.IssuedItem{})
	if q.IssuedToID > 0 {
		tx = tx.Where("issued_to_id = ?", q.IssuedToID)
	}
	if q.FacultyID > 0 {
		tx = tx.Where("faculty_in_charge_id = ?", q.FacultyID)
	}
	if q.PendingRequestID > 0 {
		tx = tx.Where("pending_request_id = ?", q.PendingRequestID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	list := make([]*model.IssuedItem, 0, q.Limit)
	if err := tx.Order("id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		logger.Errorf(ctx, "list issued items err: %+v", err)
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (i *issuanceImpl) MarkReturned(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := i.DBWithContext(ctx).Model(&model.IssuedItem{}).
		Where("id = ? AND status = ?", id, model.IssueIssued).
		Updates(map[string]any{
			"status":      model.IssueReturned,
			"return_date": at,
		})
	if res.Error != nil {
		logger.Errorf(ctx, "mark issued item %d returned err: %+v", id, res.Error)
		return false, code.ReturnErr.WithErr(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (i *issuanceImpl) CountOpen(ctx context.Context, itemType model.ItemType, itemID int64) (int64, error) {
	var n int64
	if err := i.DBWithContext(ctx).Model(&model.IssuedItem{}).
		Where("item_type = ? AND item_id = ? AND status = ?", itemType, itemID, model.IssueIssued).
		Count(&n).Error; err != nil {
		return 0, code.QueryRecordErr.WithErr(err)
	}
	return n, nil
}
