package request

import (
	"context"
	"fmt"
	"strings"

	"github.com/scienceol/labinv/pkg/core/inventory"
	core "github.com/scienceol/labinv/pkg/core/request"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
)

func (r *requestImpl) view(ctx context.Context, pr *model.PendingRequest) (*core.RequestResp, error) {
	list, err := r.views(ctx, []*model.PendingRequest{pr})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// views resolves users and items of a page of requests with one query per
// table.
func (r *requestImpl) views(ctx context.Context, list []*model.PendingRequest) ([]*core.RequestResp, error) {
	refs := make(map[model.ItemType][]int64)
	userIDs := make([]int64, 0, len(list)*2)
	for _, pr := range list {
		userIDs = append(userIDs, pr.RequestedByUserID, pr.FacultyInChargeID)
		for _, it := range pr.LineItems {
			refs[it.ItemType] = append(refs[it.ItemType], it.ItemID)
		}
	}

	records, err := inventory.LoadRecords(ctx, r.inventory, refs)
	if err != nil {
		return nil, err
	}
	users, err := r.users.GetByIDs(ctx, utils.Uniq(userIDs)...)
	if err != nil {
		return nil, err
	}

	return utils.FilterSlice(list, func(pr *model.PendingRequest) (*core.RequestResp, bool) {
		resp := &core.RequestResp{
			UUID:      pr.UUID,
			RequestNo: pr.RequestNo,
			Status:    pr.Status,
			Requester: core.Person{
				Name:   pr.RequesterName,
				Role:   pr.RequesterRole,
				RollNo: pr.RequesterRollNo,
				Email:  pr.RequesterEmail,
			},
			Purpose:           pr.Purpose,
			DesiredIssueTime:  pr.DesiredIssueTime,
			DesiredReturnTime: pr.DesiredReturnTime,
			Notes:             pr.Notes,
			RequestDate:       pr.RequestDate,
			DecidedAt:         pr.DecidedAt,
			DecisionNote:      pr.DecisionNote,
			IssuedAt:          pr.IssuedAt,
		}
		if u, ok := users[pr.RequestedByUserID]; ok {
			resp.Requester.UUID = u.UUID
		}
		if u, ok := users[pr.FacultyInChargeID]; ok {
			resp.Faculty = core.Person{UUID: u.UUID, Name: u.FullName, Role: u.Role, Email: u.Email}
		}
		resp.Items = utils.FilterSlice(pr.LineItems, func(it *model.RequestLineItem) (*core.LineResp, bool) {
			line := &core.LineResp{
				UUID:                 it.UUID,
				ItemType:             it.ItemType,
				Quantity:             it.Quantity,
				TotalWeightRequested: it.TotalWeightRequested,
			}
			if kind, ok := model.KindOf(it.ItemType); ok {
				line.Measure = kind.Measure
			}
			if rec, ok := records.Find(it.ItemType, it.ItemID); ok {
				line.ItemUUID = rec.Base().UUID
				line.ItemName = rec.Base().Name
			}
			return line, true
		})
		return resp, true
	}), nil
}

func requestMailBody(resp *core.RequestResp) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request %s\n", resp.RequestNo)
	fmt.Fprintf(&b, "Requested by: %s (%s)\n", resp.Requester.Name, resp.Requester.Role)
	fmt.Fprintf(&b, "Faculty in charge: %s\n", resp.Faculty.Name)
	fmt.Fprintf(&b, "Status: %s\n", resp.Status)
	if resp.Purpose != "" {
		fmt.Fprintf(&b, "Purpose: %s\n", resp.Purpose)
	}
	if resp.DecisionNote != "" {
		fmt.Fprintf(&b, "Note: %s\n", resp.DecisionNote)
	}
	b.WriteString("\nItems:\n")
	for _, it := range resp.Items {
		if it.Measure == model.MeasureWeight {
			fmt.Fprintf(&b, "  - %s (%s): %v\n", it.ItemName, it.ItemType, it.TotalWeightRequested)
			continue
		}
		fmt.Fprintf(&b, "  - %s (%s): %d\n", it.ItemName, it.ItemType, it.Quantity)
	}
	return b.String()
}
