package issuance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	activityImpl "github.com/scienceol/labinv/pkg/core/activity/activity"
	invCore "github.com/scienceol/labinv/pkg/core/inventory"
	invImpl "github.com/scienceol/labinv/pkg/core/inventory/inventory"
	core "github.com/scienceol/labinv/pkg/core/issuance"
	"github.com/scienceol/labinv/pkg/core/notify"
	reqCore "github.com/scienceol/labinv/pkg/core/request"
	reqImpl "github.com/scienceol/labinv/pkg/core/request/request"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/db/dbtest"
	"github.com/scienceol/labinv/pkg/repo"
	repoActivity "github.com/scienceol/labinv/pkg/repo/activity"
	repoInventory "github.com/scienceol/labinv/pkg/repo/inventory"
	repoIssuance "github.com/scienceol/labinv/pkg/repo/issuance"
	"github.com/scienceol/labinv/pkg/repo/migrate"
	"github.com/scienceol/labinv/pkg/repo/model"
	repoRequest "github.com/scienceol/labinv/pkg/repo/request"
	repoUser "github.com/scienceol/labinv/pkg/repo/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailbox struct {
	sent []*notify.Mail
	err  error
}

func (m *mailbox) Send(_ context.Context, mail *notify.Mail) error {
	m.sent = append(m.sent, mail)
	return m.err
}

type lab struct {
	t         *testing.T
	store     repo.IssuanceRepo
	inv       repo.InventoryRepo
	activity  repo.ActivityRepo
	inventory invCore.Service
	requests  reqCore.Service
	svc       core.Service
	mail      *mailbox

	admin, faculty, otherFaculty, student context.Context
	facultyUUID                           uuid.UUID
}

func newLab(t *testing.T, enforce, restock bool) *lab {
	ds := dbtest.Open(t, migrate.Models()...)
	users := repoUser.New(ds)
	l := &lab{
		t:        t,
		store:    repoIssuance.New(ds),
		inv:      repoInventory.New(ds),
		activity: repoActivity.New(ds),
		mail:     &mailbox{},
	}
	act := activityImpl.New(l.activity)
	requests := repoRequest.New(ds)

	l.inventory = invImpl.New(&invImpl.Options{Store: l.inv, Issued: l.store, Activity: act})
	l.requests = reqImpl.New(&reqImpl.Options{
		Store: requests, Inventory: l.inv, Users: users, Activity: act, Mailer: l.mail,
	})
	l.svc = New(&Options{
		Store: l.store, Requests: requests, Inventory: l.inv, Users: users,
		Activity: act, Mailer: l.mail,
		EnforceStock: enforce, RestockOnReturn: restock,
	})

	login := func(name string, role common.Role) (context.Context, *model.User) {
		u := &model.User{Email: name + "@lab.test", PasswordHash: "x", FullName: name, Role: role, IsActive: true}
		require.NoError(t, users.Create(context.Background(), u))
		return auth.WithUser(context.Background(), &model.UserData{
			ID: u.ID, UUID: u.UUID, Email: u.Email, FullName: u.FullName, Role: u.Role,
		}), u
	}
	l.admin, _ = login("admin", common.Admin)
	var f *model.User
	l.faculty, f = login("rao", common.Faculty)
	l.facultyUUID = f.UUID
	l.otherFaculty, _ = login("iyer", common.Faculty)
	l.student, _ = login("sam", common.Student)
	return l
}

func (l *lab) item(typ, body string) *invCore.ItemResp {
	l.t.Helper()
	resp, err := l.inventory.Create(l.faculty, &invCore.CreateReq{Type: typ, Body: json.RawMessage(body)})
	require.NoError(l.t, err)
	return resp
}

func (l *lab) available(it *invCore.ItemResp) float64 {
	l.t.Helper()
	kind, _ := model.KindOf(it.ItemType)
	rec, err := l.inv.GetByID(context.Background(), kind, it.Item.Base().ID)
	require.NoError(l.t, err)
	_, available := rec.Stock()
	return available
}

func line(it *invCore.ItemResp, amount float64) *reqCore.LineReq {
	l := &reqCore.LineReq{ItemType: string(it.ItemType), ItemUUID: it.Item.Base().UUID}
	if it.Measure == model.MeasureWeight {
		l.TotalWeightRequested = amount
	} else {
		l.Quantity = int64(amount)
	}
	return l
}

// approved submits a request as the student and approves it as faculty.
func (l *lab) approved(lines ...*reqCore.LineReq) *reqCore.RequestResp {
	l.t.Helper()
	resp, err := l.requests.Submit(l.student, &reqCore.SubmitReq{
		FacultyUUID: l.facultyUUID, Purpose: "titration", Items: lines,
	})
	require.NoError(l.t, err)
	resp, err = l.requests.Approve(l.faculty, &reqCore.DecideReq{UUID: resp.UUID})
	require.NoError(l.t, err)
	return resp
}

func (l *lab) issuedRows(req *reqCore.RequestResp) []*core.IssuedResp {
	l.t.Helper()
	list, err := l.svc.List(l.admin, &core.ListReq{RequestUUID: req.UUID.String()})
	require.NoError(l.t, err)
	return list.Data
}

func (l *lab) count(action model.ActivityAction) int64 {
	_, n, err := l.activity.List(context.Background(), repo.ActivityQuery{Action: action})
	require.NoError(l.t, err)
	return n
}

func eachMode(t *testing.T, fn func(t *testing.T, l *lab)) {
	for _, enforce := range []bool{false, true} {
		t.Run(fmt.Sprintf("enforce=%v", enforce), func(t *testing.T) {
			fn(t, newLab(t, enforce, false))
		})
	}
}

func TestChemicalIssueEndToEnd(t *testing.T) {
	eachMode(t, func(t *testing.T, l *lab) {
		chem := l.item("chemical", `{"name":"ethanol","total_weight":100}`)
		assert.Equal(t, float64(100), l.available(chem))

		req := l.approved(line(chem, 30))
		resp, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		it := resp.Items[0]
		assert.Equal(t, model.IssueIssued, it.Status)
		assert.Equal(t, 30.0, it.TotalWeightIssued)
		assert.Equal(t, "ethanol", it.ItemName)
		assert.Equal(t, "sam", it.IssuedTo)
		assert.Equal(t, "rao", it.IssuedBy.Name)
		assert.Equal(t, req.UUID, *it.RequestUUID)
		assert.Equal(t, float64(70), l.available(chem))

		got, err := l.requests.Get(l.student, &reqCore.GetReq{UUID: req.UUID})
		require.NoError(t, err)
		assert.NotNil(t, got.IssuedAt)
		assert.EqualValues(t, 1, l.count(model.ActionIssue))
	})
}

func TestIssueBeyondAvailable(t *testing.T) {
	t.Run("legacy goes negative", func(t *testing.T) {
		l := newLab(t, false, false)
		glass := l.item("glassware", `{"name":"beaker","total_quantity":10,"available_quantity":2}`)
		req := l.approved(line(glass, 5))

		_, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
		require.NoError(t, err)
		assert.Equal(t, float64(-3), l.available(glass))
		assert.Len(t, l.issuedRows(req), 1)
	})

	t.Run("enforced rolls back", func(t *testing.T) {
		l := newLab(t, true, false)
		glass := l.item("glassware", `{"name":"beaker","total_quantity":10,"available_quantity":2}`)
		req := l.approved(line(glass, 5))

		_, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
		require.ErrorIs(t, err, code.InsufficientStock)
		assert.Equal(t, float64(2), l.available(glass))
		assert.Empty(t, l.issuedRows(req))
		assert.Zero(t, l.count(model.ActionIssue))

		got, err := l.requests.Get(l.faculty, &reqCore.GetReq{UUID: req.UUID})
		require.NoError(t, err)
		assert.Nil(t, got.IssuedAt)
		assert.Equal(t, model.RequestApproved, got.Status)

		// The claim was rolled back, so the request can be issued once
		// stock is corrected.
		_, err = l.inventory.Adjust(l.admin, &invCore.AdjustReq{
			ItemReq:   invCore.ItemReq{Type: "glassware", UUID: glass.Item.Base().UUID},
			Available: 10,
		})
		require.NoError(t, err)
		_, err = l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
		require.NoError(t, err)
		assert.Equal(t, float64(5), l.available(glass))
	})
}

func TestIssueTwice(t *testing.T) {
	eachMode(t, func(t *testing.T, l *lab) {
		glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)
		req := l.approved(line(glass, 2))

		_, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
		require.NoError(t, err)
		_, err = l.svc.Issue(l.admin, &core.IssueReq{UUID: req.UUID})
		assert.ErrorIs(t, err, code.RequestAlreadyIssued)

		assert.Len(t, l.issuedRows(req), 1)
		assert.Equal(t, float64(8), l.available(glass))
	})
}

func TestIssueRequiresApproval(t *testing.T) {
	eachMode(t, func(t *testing.T, l *lab) {
		glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)

		pending, err := l.requests.Submit(l.student, &reqCore.SubmitReq{
			FacultyUUID: l.facultyUUID, Items: []*reqCore.LineReq{line(glass, 1)},
		})
		require.NoError(t, err)
		_, err = l.svc.Issue(l.faculty, &core.IssueReq{UUID: pending.UUID})
		assert.ErrorIs(t, err, code.RequestNotApproved)

		rejected, err := l.requests.Reject(l.faculty, &reqCore.DecideReq{UUID: pending.UUID, Note: "not today"})
		require.NoError(t, err)
		assert.Equal(t, model.RequestRejected, rejected.Status)

		_, err = l.svc.Issue(l.faculty, &core.IssueReq{UUID: pending.UUID})
		assert.ErrorIs(t, err, code.RequestNotApproved)
		assert.Empty(t, l.issuedRows(pending))
		assert.Equal(t, float64(10), l.available(glass))
	})
}

func TestIssuePermissions(t *testing.T) {
	l := newLab(t, true, false)
	glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)
	req := l.approved(line(glass, 1))

	_, err := l.svc.Issue(l.student, &core.IssueReq{UUID: req.UUID})
	assert.ErrorIs(t, err, code.PermissionDenied)
	_, err = l.svc.Issue(l.otherFaculty, &core.IssueReq{UUID: req.UUID})
	assert.ErrorIs(t, err, code.PermissionDenied)
	_, err = l.svc.Issue(context.Background(), &core.IssueReq{UUID: req.UUID})
	assert.ErrorIs(t, err, code.UnLogin)
	_, err = l.svc.Issue(l.faculty, &core.IssueReq{UUID: uuid.NewV4()})
	assert.ErrorIs(t, err, code.RequestNotFound)

	assert.Equal(t, float64(10), l.available(glass))
}

func TestTwoLineRequest(t *testing.T) {
	eachMode(t, func(t *testing.T, l *lab) {
		chem := l.item("chemical", `{"name":"acetone","total_weight":500}`)
		scope := l.item("instrument", `{"name":"microscope","total_quantity":3}`)
		req := l.approved(line(chem, 12.5), line(scope, 1))

		resp, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID, Notes: "bench 4"})
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)

		rows := l.issuedRows(req)
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, req.UUID, *r.RequestUUID)
			assert.Equal(t, "bench 4", r.Notes)
		}
		assert.Equal(t, 487.5, l.available(chem))
		assert.Equal(t, float64(2), l.available(scope))
		assert.EqualValues(t, 2, l.count(model.ActionIssue))
	})
}

func TestReturn(t *testing.T) {
	for _, restock := range []bool{false, true} {
		t.Run(fmt.Sprintf("restock=%v", restock), func(t *testing.T) {
			l := newLab(t, true, restock)
			glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)
			req := l.approved(line(glass, 4))
			issued, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
			require.NoError(t, err)
			require.Equal(t, float64(6), l.available(glass))

			item := issued.Items[0]
			_, err = l.svc.Return(l.student, &core.ReturnReq{UUID: item.UUID})
			assert.ErrorIs(t, err, code.PermissionDenied)

			ret, err := l.svc.Return(l.faculty, &core.ReturnReq{UUID: item.UUID})
			require.NoError(t, err)
			assert.Equal(t, model.IssueReturned, ret.Status)
			assert.NotNil(t, ret.ReturnDate)

			want := float64(6)
			if restock {
				want = 10
			}
			assert.Equal(t, want, l.available(glass))

			_, err = l.svc.Return(l.faculty, &core.ReturnReq{UUID: item.UUID})
			assert.ErrorIs(t, err, code.AlreadyReturned)
			assert.Equal(t, want, l.available(glass))
			assert.EqualValues(t, 1, l.count(model.ActionReturn))

			_, err = l.svc.Return(l.faculty, &core.ReturnReq{UUID: uuid.NewV4()})
			assert.ErrorIs(t, err, code.IssuedItemNotFound)
		})
	}
}

func TestRestockCappedAtTotal(t *testing.T) {
	l := newLab(t, true, true)
	glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)
	req := l.approved(line(glass, 4))
	issued, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
	require.NoError(t, err)
	require.Equal(t, float64(6), l.available(glass))

	// A recount finds the full shelf before the return is booked.
	_, err = l.inventory.Adjust(l.admin, &invCore.AdjustReq{
		ItemReq:   invCore.ItemReq{Type: "glassware", UUID: glass.Item.Base().UUID},
		Available: 10,
	})
	require.NoError(t, err)

	_, err = l.svc.Return(l.faculty, &core.ReturnReq{UUID: issued.Items[0].UUID})
	require.NoError(t, err)
	assert.Equal(t, float64(10), l.available(glass))
}

func TestListScopes(t *testing.T) {
	l := newLab(t, true, false)
	glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)
	req := l.approved(line(glass, 1))
	_, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
	require.NoError(t, err)

	mine, err := l.svc.List(l.student, &core.ListReq{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)

	_, err = l.svc.List(l.student, &core.ListReq{Scope: core.ScopeAll})
	assert.ErrorIs(t, err, code.PermissionDenied)

	assigned, err := l.svc.List(l.otherFaculty, &core.ListReq{})
	require.NoError(t, err)
	assert.Zero(t, assigned.Total)

	returned, err := l.svc.List(l.admin, &core.ListReq{Status: model.IssueReturned})
	require.NoError(t, err)
	assert.Zero(t, returned.Total)

	_, err = l.svc.List(l.admin, &core.ListReq{Status: "lost"})
	assert.ErrorIs(t, err, code.ParamErr)
}

func TestMailFailureDoesNotFailIssue(t *testing.T) {
	l := newLab(t, true, false)
	glass := l.item("glassware", `{"name":"beaker","total_quantity":10}`)
	req := l.approved(line(glass, 1))

	l.mail.err = errors.New("smtp down")
	l.mail.sent = nil
	_, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
	require.NoError(t, err)
	require.Len(t, l.mail.sent, 1)
	assert.Equal(t, []string{"sam@lab.test"}, l.mail.sent[0].To)
	assert.Contains(t, l.mail.sent[0].Body, "beaker")
}

func TestEditAfterStockWentNegative(t *testing.T) {
	l := newLab(t, false, false)
	glass := l.item("glassware", `{"name":"beaker","total_quantity":10,"available_quantity":2}`)
	req := l.approved(line(glass, 5))
	_, err := l.svc.Issue(l.faculty, &core.IssueReq{UUID: req.UUID})
	require.NoError(t, err)
	require.Equal(t, float64(-3), l.available(glass))

	ref := invCore.ItemReq{Type: "glassware", UUID: glass.Item.Base().UUID}
	got, err := l.inventory.Update(l.admin, &invCore.UpdateReq{
		ItemReq: ref, Body: json.RawMessage(`{"name":"beaker 250ml"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "beaker 250ml", got.Item.Base().Name)
	assert.Equal(t, float64(-3), l.available(glass))

	_, err = l.inventory.Update(l.admin, &invCore.UpdateReq{
		ItemReq: ref, Body: json.RawMessage(`{"total_quantity":-1}`),
	})
	assert.ErrorIs(t, err, code.InvalidQuantity)
}
