package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	core "github.com/scienceol/labinv/pkg/core/activity"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
	"gorm.io/datatypes"
)

const minRetention = time.Hour

type activityImpl struct {
	store repo.ActivityRepo
	now   func() time.Time
}

func New(store repo.ActivityRepo) core.Service {
	return &activityImpl{store: store, now: time.Now}
}

func (a *activityImpl) Record(ctx context.Context, entry *core.Entry) error {
	log := &model.ActivityLog{
		Action:    entry.Action,
		ItemType:  entry.ItemType,
		ItemID:    entry.ItemID,
		ItemName:  entry.ItemName,
		User:      "system",
		Timestamp: a.now(),
	}
	if user := auth.GetCurrentUser(ctx); user != nil {
		log.UserID = user.ID
		log.User = user.FullName
	}
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return code.ActivityLogErr.WithErr(err)
		}
		log.Details = datatypes.JSON(data)
	}
	return a.store.Append(ctx, log)
}

func (a *activityImpl) List(ctx context.Context, req *core.ListReq) (*common.PageResp[[]*core.LogResp], error) {
	req.Normalize()
	q := repo.ActivityQuery{
		Action: req.Action,
		Since:  req.Since,
		Until:  req.Until,
		Offset: req.Offset(),
		Limit:  req.PageSize,
	}
	if req.ItemType != "" {
		typ, ok := model.ParseItemType(req.ItemType)
		if !ok {
			return nil, code.InvalidItemType.WithMsgf("unknown item type %q", req.ItemType)
		}
		q.ItemType = typ
	}

	list, total, err := a.store.List(ctx, q)
	if err != nil {
		return nil, err
	}

	data := utils.FilterSlice(list, func(l *model.ActivityLog) (*core.LogResp, bool) {
		resp := &core.LogResp{
			UUID:      l.UUID,
			Action:    l.Action,
			ItemType:  l.ItemType,
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			User:      l.User,
			Timestamp: l.Timestamp,
		}
		if len(l.Details) > 0 {
			var details any
			if err := json.Unmarshal(l.Details, &details); err != nil {
				logger.Warnf(ctx, "decode activity details %s err: %v", l.UUID, err)
			} else {
				resp.Details = details
			}
		}
		return resp, true
	})

	return &common.PageResp[[]*core.LogResp]{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Data:     data,
	}, nil
}

func (a *activityImpl) Prune(ctx context.Context, req *core.PruneReq) (*core.PruneResp, error) {
	if req.OlderThan < minRetention {
		return nil, code.ParamErr.WithMsgf("older_than must be at least %s", minRetention)
	}
	before := a.now().Add(-req.OlderThan)
	n, err := a.store.PruneBefore(ctx, before)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "pruned %d activity logs before %s", n, before.Format(time.RFC3339))
	return &core.PruneResp{Deleted: n, Before: before}, nil
}
