package request

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
	"gorm.io/gorm/clause"
)

type requestImpl struct {
	*repo.BaseDB
}

func New(ds *db.Datastore) repo.RequestRepo {
	return &requestImpl{BaseDB: repo.NewBaseDB(ds)}
}

func (r *requestImpl) Create(ctx context.Context, req *model.PendingRequest, items []*model.RequestLineItem) error {
	return r.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.DBWithContext(txCtx).Omit(clause.Associations).Create(req).Error; err != nil {
			logger.Errorf(txCtx, "create pending request err: %+v", err)
			return code.RequestSubmitErr.WithErr(err)
		}
		for _, it := range items {
			it.PendingRequestID = req.ID
		}
		if err := r.DBWithContext(txCtx).Create(items).Error; err != nil {
			logger.Errorf(txCtx, "create request line items err: %+v", err)
			return code.RequestSubmitErr.WithErr(err)
		}
		req.LineItems = items
		return nil
	})
}

func (r *requestImpl) Get(ctx context.Context, id uuid.UUID) (*model.PendingRequest, error) {
	req := &model.PendingRequest{}
	err := r.DBWithContext(ctx).
		Preload("LineItems", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Where("uuid = ?", id).Take(req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RequestNotFound
		}
		logger.Errorf(ctx, "get pending request err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return req, nil
}

func (r *requestImpl) List(ctx context.Context, q repo.RequestQuery) ([]*model.PendingRequest, int64, error) {
	tx := r.DBWithContext(ctx).Model(&model.PendingRequest{})
	if q.RequestedBy > 0 {
		tx = tx.Where("requested_by_user_id = ?", q.RequestedBy)
	}
	if q.FacultyID > 0 {
		tx = tx.Where("faculty_in_charge_id = ?", q.FacultyID)
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

	list := make([]*model.PendingRequest, 0, q.Limit)
	if err := tx.Preload("LineItems").Order("id desc").
		Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		logger.Errorf(ctx, "list pending requests err: %+v", err)
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (r *requestImpl) Decide(ctx context.Context, id int64, status model.RequestStatus, deciderID int64, note string, at time.Time) (bool, error) {
	res := r.DBWithContext(ctx).Model(&model.PendingRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]any{
			"status":        status,
			"decided_at":    at,
			"decided_by_id": deciderID,
			"decision_note": note,
		})
	if res.Error != nil {
		logger.Errorf(ctx, "decide pending request %d err: %+v", id, res.Error)
		return false, code.RequestDecideErr.WithErr(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestImpl) ClaimIssue(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.DBWithContext(ctx).Model(&model.PendingRequest{}).
		Where("id = ? AND status = ? AND issued_at IS NULL", id, model.RequestApproved).
		Update("issued_at", at)
	if res.Error != nil {
		logger.Errorf(ctx, "claim pending request %d err: %+v", id, res.Error)
		return false, code.IssueErr.WithErr(res.Error)
	}
	return res.RowsAffected == 1, nil
}
