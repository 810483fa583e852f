package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/activity"
	"github.com/scienceol/labinv/pkg/core/inventory"
	"github.com/scienceol/labinv/pkg/core/notify"
	core "github.com/scienceol/labinv/pkg/core/request"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/trace"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
)

const requestNoPrefix = "REQ"

type Options struct {
	Store     repo.RequestRepo
	Inventory repo.InventoryRepo
	Users     repo.UserRepo
	Activity  activity.Service
	Events    notify.MsgCenter
	Mailer    notify.Mailer
	// Node generates request numbers. Node 1 is used when nil.
	Node *snowflake.Node
}

type requestImpl struct {
	store     repo.RequestRepo
	inventory repo.InventoryRepo
	users     repo.UserRepo
	activity  activity.Service
	events    notify.MsgCenter
	mailer    notify.Mailer
	node      *snowflake.Node
	now       func() time.Time
}

func New(opt *Options) core.Service {
	node := opt.Node
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	return &requestImpl{
		store:     opt.Store,
		inventory: opt.Inventory,
		users:     opt.Users,
		activity:  opt.Activity,
		events:    opt.Events,
		mailer:    opt.Mailer,
		node:      node,
		now:       time.Now,
	}
}

func (r *requestImpl) Submit(ctx context.Context, req *core.SubmitReq) (*core.RequestResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if len(req.Items) == 0 {
		return nil, code.RequestEmpty
	}

	faculty, err := r.users.Get(ctx, req.FacultyUUID)
	if err != nil {
		if errors.Is(err, code.UserNotFound) {
			return nil, code.FacultyNotFound.WithMsgf("user %s not found", req.FacultyUUID)
		}
		return nil, err
	}
	if !faculty.Role.CanManage() || !faculty.IsActive {
		return nil, code.FacultyNotFound.WithMsgf("%s cannot be faculty in charge", faculty.FullName)
	}

	items := make([]*model.RequestLineItem, 0, len(req.Items))
	for i, line := range req.Items {
		item, err := r.lineItem(ctx, line)
		if err != nil {
			var e *code.Error
			if errors.As(err, &e) {
				return nil, e.Code.WithMsgf("item %d: %s", i+1, e.Msg)
			}
			return nil, err
		}
		items = append(items, item)
	}

	now := r.now()
	pr := &model.PendingRequest{
		RequestNo:         requestNoPrefix + r.node.Generate().String(),
		FacultyInChargeID: faculty.ID,
		RequestedByUserID: user.ID,
		RequesterName:     user.FullName,
		RequesterRole:     user.Role,
		RequesterRollNo:   user.RollNo,
		RequesterEmail:    user.Email,
		Purpose:           strings.TrimSpace(req.Purpose),
		DesiredIssueTime:  req.DesiredIssueTime,
		DesiredReturnTime: req.DesiredReturnTime,
		Notes:             req.Notes,
		Status:            model.RequestPending,
		RequestDate:       now,
	}

	err = r.store.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.store.Create(txCtx, pr, items); err != nil {
			return err
		}
		return code.Wrap(code.RequestSubmitErr, r.activity.Record(txCtx, &activity.Entry{
			Action:   model.ActionRequest,
			ItemID:   pr.ID,
			ItemName: pr.RequestNo,
			Details: map[string]any{
				"faculty_in_charge": faculty.FullName,
				"items":             lineDetails(items),
			},
		}))
	})
	trace.RecordTransition(ctx, string(model.ActionRequest), err)
	if err != nil {
		return nil, err
	}

	resp, err := r.view(ctx, pr)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, "submitted", pr, resp)
	notify.Deliver(ctx, r.mailer, &notify.Mail{
		To:      []string{faculty.Email},
		Key:     faculty.Email,
		Subject: fmt.Sprintf("New item request %s from %s", pr.RequestNo, pr.RequesterName),
		Body:    requestMailBody(resp),
	})
	return resp, nil
}

func (r *requestImpl) lineItem(ctx context.Context, line *core.LineReq) (*model.RequestLineItem, error) {
	if line == nil {
		return nil, code.ParamErr.WithMsg("empty line item")
	}
	kind, err := inventory.ResolveKind(line.ItemType)
	if err != nil {
		return nil, err
	}
	rec, err := r.inventory.Get(ctx, kind, line.ItemUUID)
	if err != nil {
		return nil, err
	}

	item := &model.RequestLineItem{ItemType: kind.Type, ItemID: rec.Base().ID}
	if kind.Measure == model.MeasureWeight {
		if !kind.ValidAmount(line.TotalWeightRequested) {
			return nil, code.InvalidQuantity.WithMsg("total_weight_requested must be positive")
		}
		item.TotalWeightRequested = line.TotalWeightRequested
		return item, nil
	}
	if line.Quantity <= 0 {
		return nil, code.InvalidQuantity.WithMsg("quantity must be a positive integer")
	}
	item.Quantity = line.Quantity
	return item, nil
}

func lineDetails(items []*model.RequestLineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"item_type": it.ItemType,
			"item_id":   it.ItemID,
			"amount":    it.Amount(),
		})
	}
	return out
}

func (r *requestImpl) Get(ctx context.Context, req *core.GetReq) (*core.RequestResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	pr, err := r.store.Get(ctx, req.UUID)
	if err != nil {
		return nil, err
	}
	if !canView(user, pr) {
		return nil, code.PermissionDenied
	}
	return r.view(ctx, pr)
}

func canView(user *model.UserData, pr *model.PendingRequest) bool {
	return user.Role.IsAdmin() || pr.RequestedByUserID == user.ID || pr.FacultyInChargeID == user.ID
}

// resolveScope picks the default view for the role and rejects scopes the
// role may not use.
func resolveScope(user *model.UserData, scope core.Scope) (core.Scope, error) {
	if scope == "" {
		switch {
		case user.Role.IsAdmin():
			return core.ScopeAll, nil
		case user.Role.CanManage():
			return core.ScopeAssigned, nil
		default:
			return core.ScopeMine, nil
		}
	}
	switch scope {
	case core.ScopeMine:
	case core.ScopeAssigned:
		if !user.Role.CanManage() {
			return "", code.PermissionDenied
		}
	case core.ScopeAll:
		if !user.Role.IsAdmin() {
			return "", code.PermissionDenied
		}
	default:
		return "", code.ParamErr.WithMsgf("unknown scope %q", scope)
	}
	return scope, nil
}

func (r *requestImpl) List(ctx context.Context, req *core.ListReq) (*common.PageResp[[]*core.RequestResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	scope, err := resolveScope(user, req.Scope)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case "", model.RequestPending, model.RequestApproved, model.RequestRejected:
	default:
		return nil, code.ParamErr.WithMsgf("unknown status %q", req.Status)
	}

	req.Normalize()
	q := repo.RequestQuery{Status: req.Status, Offset: req.Offset(), Limit: req.PageSize}
	switch scope {
	case core.ScopeMine:
		q.RequestedBy = user.ID
	case core.ScopeAssigned:
		q.FacultyID = user.ID
	}

	list, total, err := r.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := r.views(ctx, list)
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*core.RequestResp]{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Data:     data,
	}, nil
}

func (r *requestImpl) Approve(ctx context.Context, req *core.DecideReq) (*core.RequestResp, error) {
	return r.decide(ctx, req, model.RequestApproved, model.ActionApprove)
}

func (r *requestImpl) Reject(ctx context.Context, req *core.DecideReq) (*core.RequestResp, error) {
	return r.decide(ctx, req, model.RequestRejected, model.ActionReject)
}

func (r *requestImpl) decide(ctx context.Context, req *core.DecideReq, status model.RequestStatus, action model.ActivityAction) (*core.RequestResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if !user.Role.CanManage() {
		return nil, code.PermissionDenied
	}

	var pr *model.PendingRequest
	err := r.store.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		pr, err = r.store.Get(txCtx, req.UUID)
		if err != nil {
			return err
		}
		if pr.FacultyInChargeID != user.ID && !user.Role.IsAdmin() {
			return code.PermissionDenied.WithMsg("only the faculty in charge or an admin can decide this request")
		}

		now := r.now()
		ok, err := r.store.Decide(txCtx, pr.ID, status, user.ID, req.Note, now)
		if err != nil {
			return err
		}
		if !ok {
			return code.RequestNotPending.WithMsgf("request %s is %s", pr.RequestNo, pr.Status)
		}
		pr.Status = status
		pr.DecidedAt = &now
		pr.DecidedByID = user.ID
		pr.DecisionNote = req.Note

		return code.Wrap(code.RequestDecideErr, r.activity.Record(txCtx, &activity.Entry{
			Action:   action,
			ItemID:   pr.ID,
			ItemName: pr.RequestNo,
			Details:  map[string]any{"note": req.Note},
		}))
	})
	trace.RecordTransition(ctx, string(action), err)
	if err != nil {
		return nil, err
	}

	resp, err := r.view(ctx, pr)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, string(status), pr, resp)
	notify.Deliver(ctx, r.mailer, &notify.Mail{
		To:      []string{pr.RequesterEmail},
		Key:     pr.RequesterEmail,
		Subject: fmt.Sprintf("Your item request %s was %s", pr.RequestNo, status),
		Body:    requestMailBody(resp),
	})
	return resp, nil
}

func (r *requestImpl) publish(ctx context.Context, event string, pr *model.PendingRequest, resp *core.RequestResp) {
	notify.Publish(ctx, r.events, &notify.SendMsg{
		Channel: notify.RequestChanged,
		Event:   event,
		UserIDs: []int64{pr.RequestedByUserID, pr.FacultyInChargeID},
		Data:    resp,
	})
}
