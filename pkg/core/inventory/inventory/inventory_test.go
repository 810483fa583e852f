package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/activity"
	activityImpl "github.com/scienceol/labinv/pkg/core/activity/activity"
	core "github.com/scienceol/labinv/pkg/core/inventory"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/db/dbtest"
	"github.com/scienceol/labinv/pkg/repo"
	repoActivity "github.com/scienceol/labinv/pkg/repo/activity"
	repoInventory "github.com/scienceol/labinv/pkg/repo/inventory"
	repoIssuance "github.com/scienceol/labinv/pkg/repo/issuance"
	"github.com/scienceol/labinv/pkg/repo/migrate"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	ds       *db.Datastore
	svc      core.Service
	activity repo.ActivityRepo
	admin    context.Context
	faculty  context.Context
	student  context.Context
}

func newFixture(t *testing.T, act activity.Service) *fixture {
	ds := dbtest.Open(t, migrate.Models()...)
	actStore := repoActivity.New(ds)
	if act == nil {
		act = activityImpl.New(actStore)
	}
	bg := context.Background()
	return &fixture{
		ds: ds,
		svc: New(&Options{
			Store:    repoInventory.New(ds),
			Issued:   repoIssuance.New(ds),
			Activity: act,
		}),
		activity: actStore,
		admin:    auth.WithUser(bg, &model.UserData{ID: 1, FullName: "Admin", Role: common.Admin}),
		faculty:  auth.WithUser(bg, &model.UserData{ID: 2, FullName: "Dr. Rao", Role: common.Faculty}),
		student:  auth.WithUser(bg, &model.UserData{ID: 3, FullName: "Sam", Role: common.Student}),
	}
}

func (f *fixture) create(t *testing.T, typ, body string) *core.ItemResp {
	t.Helper()
	resp, err := f.svc.Create(f.faculty, &core.CreateReq{Type: typ, Body: json.RawMessage(body)})
	require.NoError(t, err)
	return resp
}

func (f *fixture) actions(t *testing.T) []model.ActivityAction {
	list, _, err := f.activity.List(context.Background(), repo.ActivityQuery{Limit: 100})
	require.NoError(t, err)
	out := make([]model.ActivityAction, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i].Action)
	}
	return out
}

func TestCreateDefaultsAvailableToTotal(t *testing.T) {
	f := newFixture(t, nil)

	g := f.create(t, "glassware", `{"name":"beaker","capacity":"250ml","total_quantity":10}`)
	total, available := g.Item.Stock()
	assert.Equal(t, float64(10), total)
	assert.Equal(t, float64(10), available)
	assert.Equal(t, model.ItemGlassware, g.ItemType)
	assert.Equal(t, "250ml", g.Item.(*model.Glassware).Capacity)

	c := f.create(t, "Chemical", `{"name":"ethanol","unit":"g","total_weight":100}`)
	total, available = c.Item.Stock()
	assert.Equal(t, float64(100), total)
	assert.Equal(t, float64(100), available)

	got, err := f.svc.Get(f.student, &core.ItemReq{Type: "chemical", UUID: c.Item.Base().UUID})
	require.NoError(t, err)
	assert.Equal(t, "ethanol", got.Item.Base().Name)

	assert.Equal(t, []model.ActivityAction{model.ActionAdd, model.ActionAdd}, f.actions(t))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, nil)

	cases := []struct {
		name string
		ctx  context.Context
		typ  string
		body string
		want code.ErrCode
	}{
		{"student", f.student, "glassware", `{"name":"a","total_quantity":1}`, code.PermissionDenied},
		{"unknown type", f.faculty, "reagent", `{"name":"a"}`, code.InvalidItemType},
		{"missing total", f.faculty, "glassware", `{"name":"a"}`, code.ParamErr},
		{"missing name", f.faculty, "glassware", `{"total_quantity":1}`, code.ParamErr},
		{"available above total", f.faculty, "slide", `{"name":"a","total_quantity":1,"available_quantity":2}`, code.InvalidQuantity},
		{"negative", f.faculty, "chemical", `{"name":"a","total_weight":-1}`, code.InvalidQuantity},
		{"fractional count", f.faculty, "instrument", `{"name":"a","total_quantity":1.5}`, code.ParamErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(tc.ctx, &core.CreateReq{Type: tc.typ, Body: json.RawMessage(tc.body)})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.actions(t))
}

type failingActivity struct{ activity.Service }

func (failingActivity) Record(context.Context, *activity.Entry) error {
	return code.ActivityLogErr.WithErr(errors.New("disk full"))
}

func TestActivityFailureRollsBackCreate(t *testing.T) {
	f := newFixture(t, failingActivity{})

	_, err := f.svc.Create(f.faculty, &core.CreateReq{Type: "glassware", Body: json.RawMessage(`{"name":"a","total_quantity":1}`)})
	require.ErrorIs(t, err, code.ItemCreateErr)
	assert.ErrorIs(t, err, code.ActivityLogErr)

	list, err := f.svc.List(f.faculty, &core.ListReq{Type: "glassware"})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestUpdateAndAdjust(t *testing.T) {
	f := newFixture(t, nil)
	g := f.create(t, "glassware", `{"name":"beaker","total_quantity":10,"available_quantity":6}`)
	id := g.Item.Base().UUID
	item := core.ItemReq{Type: "glassware", UUID: id}

	resp, err := f.svc.Update(f.faculty, &core.UpdateReq{ItemReq: item, Body: json.RawMessage(`{"name":"flask","total_quantity":12}`)})
	require.NoError(t, err)
	total, available := resp.Item.Stock()
	assert.Equal(t, "flask", resp.Item.Base().Name)
	assert.Equal(t, float64(12), total)
	assert.Equal(t, float64(6), available)

	_, err = f.svc.Update(f.faculty, &core.UpdateReq{ItemReq: item, Body: json.RawMessage(`{"total_quantity":5}`)})
	assert.ErrorIs(t, err, code.InvalidQuantity)
	_, err = f.svc.Update(f.faculty, &core.UpdateReq{ItemReq: item, Body: json.RawMessage(`{"available_quantity":1}`)})
	assert.ErrorIs(t, err, code.ParamErr)

	_, err = f.svc.Adjust(f.faculty, &core.AdjustReq{ItemReq: item, Available: 1})
	assert.ErrorIs(t, err, code.PermissionDenied)
	_, err = f.svc.Adjust(f.admin, &core.AdjustReq{ItemReq: item, Available: 13})
	assert.ErrorIs(t, err, code.InvalidQuantity)

	resp, err = f.svc.Adjust(f.admin, &core.AdjustReq{ItemReq: item, Available: 1, Reason: "broken"})
	require.NoError(t, err)
	assert.True(t, resp.LowStock)

	got, err := f.svc.Get(f.faculty, &item)
	require.NoError(t, err)
	total, available = got.Item.Stock()
	assert.Equal(t, float64(12), total)
	assert.Equal(t, float64(1), available)
	assert.Equal(t, "flask", got.Item.Base().Name)

	assert.Equal(t, []model.ActivityAction{model.ActionAdd, model.ActionEdit, model.ActionEdit}, f.actions(t))
}

func TestDeleteRefusedWhileIssued(t *testing.T) {
	f := newFixture(t, nil)
	g := f.create(t, "instrument", `{"name":"microscope","total_quantity":2}`)
	item := &core.ItemReq{Type: "instrument", UUID: g.Item.Base().UUID}

	issued := &model.IssuedItem{
		ItemType: model.ItemInstrument, ItemID: g.Item.Base().ID, IssuedToID: 3,
		Quantity: 1, IssueDate: time.Now(), Status: model.IssueIssued,
	}
	require.NoError(t, f.ds.DBWithContext(context.Background()).Create(issued).Error)

	assert.ErrorIs(t, f.svc.Delete(f.faculty, item), code.ItemInUse)

	ok, err := repoIssuance.New(f.ds).MarkReturned(context.Background(), issued.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.svc.Delete(f.faculty, item))
	_, err = f.svc.Get(f.faculty, item)
	assert.ErrorIs(t, err, code.ItemNotFound)
	assert.Equal(t, []model.ActivityAction{model.ActionAdd, model.ActionDelete}, f.actions(t))
}

func TestLowStockAcrossCategories(t *testing.T) {
	f := newFixture(t, nil)
	f.create(t, "chemical", `{"name":"acetone","total_weight":100,"available_weight":9.9}`)
	f.create(t, "chemical", `{"name":"water","total_weight":100,"available_weight":10}`)
	f.create(t, "plasticware", `{"name":"tube","total_quantity":50,"available_quantity":0}`)
	f.create(t, "slide", `{"name":"blank","total_quantity":10}`)

	list, err := f.svc.LowStock(f.student)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, it := range list {
		assert.True(t, it.LowStock)
		names = append(names, it.Item.Base().Name)
	}
	assert.ElementsMatch(t, []string{"acetone", "tube"}, names)
}

func TestLowStockWalksEveryPage(t *testing.T) {
	old := lowStockPage
	lowStockPage = 2
	t.Cleanup(func() { lowStockPage = old })

	f := newFixture(t, nil)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		f.create(t, "glassware", `{"name":"`+name+`","total_quantity":10,"available_quantity":0}`)
	}

	list, err := f.svc.LowStock(f.student)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestExport(t *testing.T) {
	f := newFixture(t, nil)
	f.create(t, "chemical", `{"name":"ethanol","cas":"64-17-5","unit":"ml","total_weight":500}`)
	f.create(t, "chemical", `{"name":"acetone","total_weight":100,"available_weight":5}`)

	resp, err := f.svc.Export(f.faculty, &core.ExportReq{Type: "chemical"})
	require.NoError(t, err)
	assert.Contains(t, resp.FileName, "chemicals-")

	wb, err := excelize.OpenReader(bytes.NewReader(resp.Data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Chemical")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
	assert.Contains(t, rows[0], "cas")
	assert.Equal(t, "acetone", rows[1][1])
	assert.Equal(t, "ethanol", rows[2][1])
}
