package issuance

import (
	"context"
	"fmt"
	"strings"

	"github.com/scienceol/labinv/pkg/core/inventory"
	core "github.com/scienceol/labinv/pkg/core/issuance"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
)

func (s *issuanceImpl) views(ctx context.Context, list []*model.IssuedItem) ([]*core.IssuedResp, error) {
	refs := make(map[model.ItemType][]int64)
	userIDs := make([]int64, 0, len(list)*2)
	requestIDs := make([]int64, 0, len(list))
	for _, it := range list {
		refs[it.ItemType] = append(refs[it.ItemType], it.ItemID)
		userIDs = append(userIDs, it.IssuedToID, it.FacultyInChargeID)
		if it.PendingRequestID != nil {
			requestIDs = append(requestIDs, *it.PendingRequestID)
		}
	}

	records, err := inventory.LoadRecords(ctx, s.inventory, refs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetByIDs(ctx, utils.Uniq(userIDs)...)
	if err != nil {
		return nil, err
	}
	requestUUIDs := s.requests.ID2UUID(ctx, &model.PendingRequest{}, utils.Uniq(requestIDs)...)

	return utils.FilterSlice(list, func(it *model.IssuedItem) (*core.IssuedResp, bool) {
		resp := &core.IssuedResp{
			UUID:              it.UUID,
			ItemType:          it.ItemType,
			Quantity:          it.Quantity,
			TotalWeightIssued: it.TotalWeightIssued,
			IssuedBy: core.Issuer{
				Name:   it.IssuedByName,
				Role:   it.IssuedByRole,
				RollNo: it.IssuedByRollNo,
			},
			Purpose:    it.Purpose,
			IssueDate:  it.IssueDate,
			ReturnDate: it.ReturnDate,
			Status:     it.Status,
			Notes:      it.Notes,
		}
		if kind, ok := model.KindOf(it.ItemType); ok {
			resp.Measure = kind.Measure
		}
		if rec, ok := records.Find(it.ItemType, it.ItemID); ok {
			resp.ItemUUID = rec.Base().UUID
			resp.ItemName = rec.Base().Name
		}
		if u, ok := users[it.IssuedToID]; ok {
			resp.IssuedTo = u.FullName
		}
		if u, ok := users[it.FacultyInChargeID]; ok {
			resp.FacultyInCharge = u.FullName
		}
		if it.PendingRequestID != nil {
			if id, ok := requestUUIDs[*it.PendingRequestID]; ok {
				resp.RequestUUID = &id
			}
		}
		return resp, true
	}), nil
}

func issueMailBody(resp *core.IssueResp) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request %s was issued at %s.\n\n", resp.RequestNo, resp.IssuedAt.Format("2006-01-02 15:04"))
	for _, it := range resp.Items {
		if it.Measure == model.MeasureWeight {
			fmt.Fprintf(&b, "  - %s: %v\n", it.ItemName, it.TotalWeightIssued)
			continue
		}
		fmt.Fprintf(&b, "  - %s: %d\n", it.ItemName, it.Quantity)
	}
	b.WriteString("\nPlease return the items when you are done.\n")
	return b.String()
}
