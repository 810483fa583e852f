package activity

import (
	"context"
	"testing"
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	core "github.com/scienceol/labinv/pkg/core/activity"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/db/dbtest"
	repoActivity "github.com/scienceol/labinv/pkg/repo/activity"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordListPrune(t *testing.T) {
	ds := dbtest.Open(t, &model.ActivityLog{})
	svc := New(repoActivity.New(ds)).(*activityImpl)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := auth.WithUser(context.Background(), &model.UserData{ID: 3, FullName: "Dr. Rao", Role: common.Faculty})

	svc.now = func() time.Time { return now.Add(-72 * time.Hour) }
	require.NoError(t, svc.Record(ctx, &core.Entry{
		Action: model.ActionAdd, ItemType: model.ItemGlassware, ItemID: 1, ItemName: "beaker",
	}))
	svc.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, svc.Record(ctx, &core.Entry{
		Action: model.ActionRequest, ItemName: "REQ-1",
		Details: map[string]any{"lines": 2},
	}))
	svc.now = func() time.Time { return now }

	resp, err := svc.List(ctx, &core.ListReq{})
	require.NoError(t, err)
	require.EqualValues(t, 2, resp.Total)
	assert.Equal(t, model.ActionRequest, resp.Data[0].Action)
	assert.Equal(t, "Dr. Rao", resp.Data[0].User)
	assert.Equal(t, map[string]any{"lines": float64(2)}, resp.Data[0].Details)

	resp, err = svc.List(ctx, &core.ListReq{ItemType: "glassware"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)

	_, err = svc.List(ctx, &core.ListReq{ItemType: "reagent"})
	assert.ErrorIs(t, err, code.InvalidItemType)

	_, err = svc.Prune(ctx, &core.PruneReq{OlderThan: time.Minute})
	assert.ErrorIs(t, err, code.ParamErr)

	pruned, err := svc.Prune(ctx, &core.PruneReq{OlderThan: 24 * time.Hour})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned.Deleted)

	resp, err = svc.List(ctx, &core.ListReq{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)
}

func TestRecordWithoutUser(t *testing.T) {
	ds := dbtest.Open(t, &model.ActivityLog{})
	svc := New(repoActivity.New(ds))

	require.NoError(t, svc.Record(context.Background(), &core.Entry{Action: model.ActionDelete}))
	resp, err := svc.List(context.Background(), &core.ListReq{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "system", resp.Data[0].User)
}
