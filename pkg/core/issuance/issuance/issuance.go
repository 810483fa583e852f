package issuance

import (
	"context"
	"fmt"
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/core/activity"
	core "github.com/scienceol/labinv/pkg/core/issuance"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/trace"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
)

type Options struct {
	Store     repo.IssuanceRepo
	Requests  repo.RequestRepo
	Inventory repo.InventoryRepo
	Users     repo.UserRepo
	Activity  activity.Service
	Events    notify.MsgCenter
	Mailer    notify.Mailer

	// EnforceStock refuses to take available stock below zero.
	EnforceStock bool
	// RestockOnReturn puts the issued amount back on return.
	RestockOnReturn bool
}

type issuanceImpl struct {
	store     repo.IssuanceRepo
	requests  repo.RequestRepo
	inventory repo.InventoryRepo
	users     repo.UserRepo
	activity  activity.Service
	events    notify.MsgCenter
	mailer    notify.Mailer

	enforceStock    bool
	restockOnReturn bool
	now             func() time.Time
}

func New(opt *Options) core.Service {
	return &issuanceImpl{
		store:           opt.Store,
		requests:        opt.Requests,
		inventory:       opt.Inventory,
		users:           opt.Users,
		activity:        opt.Activity,
		events:          opt.Events,
		mailer:          opt.Mailer,
		enforceStock:    opt.EnforceStock,
		restockOnReturn: opt.RestockOnReturn,
		now:             time.Now,
	}
}

func requireManager(ctx context.Context) (*model.UserData, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if !user.Role.CanManage() {
		return nil, code.PermissionDenied
	}
	return user, nil
}

func (s *issuanceImpl) Issue(ctx context.Context, req *core.IssueReq) (*core.IssueResp, error) {
	user, err := requireManager(ctx)
	if err != nil {
		return nil, err
	}

	var (
		pr     *model.PendingRequest
		issued []*model.IssuedItem
		now    time.Time
	)
	err = s.store.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		pr, err = s.requests.Get(txCtx, req.UUID)
		if err != nil {
			return err
		}
		if pr.FacultyInChargeID != user.ID && !user.Role.IsAdmin() {
			return code.PermissionDenied.WithMsg("only the faculty in charge or an admin can issue this request")
		}

		now = s.now()
		claimed, err := s.requests.ClaimIssue(txCtx, pr.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			if pr.Status != model.RequestApproved {
				return code.RequestNotApproved.WithMsgf("request %s is %s", pr.RequestNo, pr.Status)
			}
			return code.RequestAlreadyIssued.WithMsgf("request %s was already issued", pr.RequestNo)
		}
		// Rows issued before issued_at existed still block a second issue.
		exists, err := s.store.ExistsForRequest(txCtx, pr.ID)
		if err != nil {
			return err
		}
		if exists {
			return code.RequestAlreadyIssued.WithMsgf("request %s was already issued", pr.RequestNo)
		}
		if len(pr.LineItems) == 0 {
			return code.RequestEmpty
		}

		issued = make([]*model.IssuedItem, 0, len(pr.LineItems))
		for _, line := range pr.LineItems {
			item, err := s.issueLine(txCtx, user, pr, line, req.Notes, now)
			if err != nil {
				return err
			}
			issued = append(issued, item)
		}
		return nil
	})
	trace.RecordTransition(ctx, string(model.ActionIssue), err)
	if err != nil {
		return nil, err
	}

	for _, it := range issued {
		trace.RecordStock(ctx, "out", string(it.ItemType), it.Amount())
	}
	items, err := s.views(ctx, issued)
	if err != nil {
		return nil, err
	}
	resp := &core.IssueResp{
		RequestUUID: pr.UUID,
		RequestNo:   pr.RequestNo,
		IssuedAt:    now,
		Items:       items,
	}
	notify.Publish(ctx, s.events, &notify.SendMsg{
		Channel: notify.IssuanceChanged,
		Event:   "issued",
		UserIDs: []int64{pr.RequestedByUserID, pr.FacultyInChargeID},
		Data:    resp,
	})
	notify.Deliver(ctx, s.mailer, &notify.Mail{
		To:      []string{pr.RequesterEmail},
		Key:     pr.RequesterEmail,
		Subject: fmt.Sprintf("Items of request %s have been issued", pr.RequestNo),
		Body:    issueMailBody(resp),
	})
	return resp, nil
}

// issueLine records one IssuedItem and takes its amount from stock.
func (s *issuanceImpl) issueLine(ctx context.Context, user *model.UserData, pr *model.PendingRequest,
	line *model.RequestLineItem, notes string, now time.Time) (*model.IssuedItem, error) {
	kind, ok := model.KindOf(line.ItemType)
	if !ok {
		return nil, code.InvalidItemType.WithMsgf("unknown item type %q", line.ItemType)
	}
	rec, err := s.inventory.GetByID(ctx, kind, line.ItemID)
	if err != nil {
		return nil, err
	}

	item := &model.IssuedItem{
		ItemType:          line.ItemType,
		ItemID:            line.ItemID,
		IssuedToID:        pr.RequestedByUserID,
		IssuedByUserID:    user.ID,
		IssuedByName:      user.FullName,
		IssuedByRole:      user.Role,
		IssuedByRollNo:    user.RollNo,
		FacultyInChargeID: pr.FacultyInChargeID,
		Quantity:          line.Quantity,
		TotalWeightIssued: line.TotalWeightRequested,
		Purpose:           pr.Purpose,
		IssueDate:         now,
		Status:            model.IssueIssued,
		Notes:             utils.Or(notes, pr.Notes),
		PendingRequestID:  utils.Ptr(pr.ID),
		LineItemID:        utils.Ptr(line.ID),
	}
	if err := s.store.CreateData(ctx, item); err != nil {
		return nil, code.Wrap(code.IssueErr, err)
	}
	if err := s.inventory.Decrement(ctx, kind, line.ItemID, line.Amount(), s.enforceStock); err != nil {
		return nil, code.Wrap(code.IssueErr, err)
	}

	return item, code.Wrap(code.IssueErr, s.activity.Record(ctx, &activity.Entry{
		Action:   model.ActionIssue,
		ItemType: kind.Type,
		ItemID:   line.ItemID,
		ItemName: rec.Base().Name,
		Details: map[string]any{
			"request_no":   pr.RequestNo,
			"amount":       line.Amount(),
			"issued_to":    pr.RequesterName,
			"enforce_mode": s.enforceStock,
		},
	}))
}

func (s *issuanceImpl) Return(ctx context.Context, req *core.ReturnReq) (*core.IssuedResp, error) {
	if _, err := requireManager(ctx); err != nil {
		return nil, err
	}

	var item *model.IssuedItem
	err := s.store.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		item, err = s.store.Get(txCtx, req.UUID)
		if err != nil {
			return err
		}
		kind, ok := model.KindOf(item.ItemType)
		if !ok {
			return code.InvalidItemType.WithMsgf("unknown item type %q", item.ItemType)
		}

		now := s.now()
		returned, err := s.store.MarkReturned(txCtx, item.ID, now)
		if err != nil {
			return err
		}
		if !returned {
			return code.AlreadyReturned
		}
		item.Status = model.IssueReturned
		item.ReturnDate = &now

		if s.restockOnReturn {
			if err := s.inventory.Increment(txCtx, kind, item.ItemID, item.Amount()); err != nil {
				return code.Wrap(code.ReturnErr, err)
			}
		}

		name := ""
		if rec, err := s.inventory.GetByID(txCtx, kind, item.ItemID); err == nil {
			name = rec.Base().Name
		}
		return code.Wrap(code.ReturnErr, s.activity.Record(txCtx, &activity.Entry{
			Action:   model.ActionReturn,
			ItemType: kind.Type,
			ItemID:   item.ItemID,
			ItemName: name,
			Details: map[string]any{
				"amount":    item.Amount(),
				"restocked": s.restockOnReturn,
				"notes":     req.Notes,
			},
		}))
	})
	trace.RecordTransition(ctx, string(model.ActionReturn), err)
	if err != nil {
		return nil, err
	}
	if s.restockOnReturn {
		trace.RecordStock(ctx, "in", string(item.ItemType), item.Amount())
	}

	list, err := s.views(ctx, []*model.IssuedItem{item})
	if err != nil {
		return nil, err
	}
	notify.Publish(ctx, s.events, &notify.SendMsg{
		Channel: notify.IssuanceChanged,
		Event:   "returned",
		UserIDs: []int64{item.IssuedToID, item.FacultyInChargeID},
		Data:    list[0],
	})
	return list[0], nil
}

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

func (s *issuanceImpl) List(ctx context.Context, req *core.ListReq) (*common.PageResp[[]*core.IssuedResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	scope, err := resolveScope(user, req.Scope)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case "", model.IssueIssued, model.IssueReturned:
	default:
		return nil, code.ParamErr.WithMsgf("unknown status %q", req.Status)
	}

	req.Normalize()
	q := repo.IssuedQuery{Status: req.Status, Offset: req.Offset(), Limit: req.PageSize}
	switch scope {
	case core.ScopeMine:
		q.IssuedToID = user.ID
	case core.ScopeAssigned:
		q.FacultyID = user.ID
	}
	if req.RequestUUID != "" {
		reqUUID, err := uuid.FromString(req.RequestUUID)
		if err != nil {
			return nil, code.ParamErr.WithMsgf("invalid request_uuid %q", req.RequestUUID)
		}
		id, ok := s.requests.UUID2ID(ctx, &model.PendingRequest{}, reqUUID)[reqUUID]
		if !ok {
			return nil, code.RequestNotFound
		}
		q.PendingRequestID = id
	}

	list, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := s.views(ctx, list)
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*core.IssuedResp]{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Data:     data,
	}, nil
}
