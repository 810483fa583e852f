package inventory

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/activity"
	core "github.com/scienceol/labinv/pkg/core/inventory"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
)

// lowStockPage is the page size used to walk each category for low stock.
var lowStockPage = 500

type Options struct {
	Store    repo.InventoryRepo
	Issued   repo.IssuanceRepo
	PubChem  repo.PubChemRepo
	Activity activity.Service
	Events   notify.MsgCenter
}

type inventoryImpl struct {
	store    repo.InventoryRepo
	issued   repo.IssuanceRepo
	pubchem  repo.PubChemRepo
	activity activity.Service
	events   notify.MsgCenter
}

func New(opt *Options) core.Service {
	return &inventoryImpl{
		store:    opt.Store,
		issued:   opt.Issued,
		pubchem:  opt.PubChem,
		activity: opt.Activity,
		events:   opt.Events,
	}
}

type stockFields struct {
	TotalQuantity     *float64 `json:"total_quantity"`
	AvailableQuantity *float64 `json:"available_quantity"`
	TotalWeight       *float64 `json:"total_weight"`
	AvailableWeight   *float64 `json:"available_weight"`
}

func decodeStock(kind *model.Kind, body []byte) (total, available *float64, err error) {
	f := &stockFields{}
	if err := json.Unmarshal(body, f); err != nil {
		return nil, nil, code.ParamErr.WithMsg(err.Error())
	}
	if kind.Measure == model.MeasureWeight {
		return f.TotalWeight, f.AvailableWeight, nil
	}
	return f.TotalQuantity, f.AvailableQuantity, nil
}

func validStock(kind *model.Kind, total, available float64) error {
	if total < 0 || available < 0 {
		return code.InvalidQuantity.WithMsg("stock cannot be negative")
	}
	if available > total {
		return code.InvalidQuantity.WithMsgf("available %v exceeds total %v", available, total)
	}
	if kind.Measure == model.MeasureCount && (total != math.Trunc(total) || available != math.Trunc(available)) {
		return code.InvalidQuantity.WithMsg("quantity must be a whole number")
	}
	return nil
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

func toResp(kind *model.Kind, rec model.InventoryRecord) *core.ItemResp {
	total, available := rec.Stock()
	return &core.ItemResp{
		ItemType: kind.Type,
		Measure:  kind.Measure,
		LowStock: available < total*model.LowStockRatio,
		Item:     rec,
	}
}

func (s *inventoryImpl) publish(ctx context.Context, event string, kind *model.Kind, rec model.InventoryRecord) {
	notify.Publish(ctx, s.events, &notify.SendMsg{
		Channel: notify.InventoryChanged,
		Event:   event,
		Data:    toResp(kind, rec),
	})
}

func (s *inventoryImpl) Create(ctx context.Context, req *core.CreateReq) (*core.ItemResp, error) {
	if _, err := requireManager(ctx); err != nil {
		return nil, err
	}
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return nil, err
	}

	rec := kind.New()
	if err := json.Unmarshal(req.Body, rec); err != nil {
		return nil, code.ParamErr.WithMsg(err.Error())
	}
	total, available, err := decodeStock(kind, req.Body)
	if err != nil {
		return nil, err
	}
	if total == nil {
		return nil, code.ParamErr.WithMsgf("%s is required", kind.TotalColumn)
	}
	if available == nil {
		available = total
	}
	if err := validStock(kind, *total, *available); err != nil {
		return nil, err
	}

	base := rec.Base()
	base.Name = strings.TrimSpace(base.Name)
	if base.Name == "" {
		return nil, code.ParamErr.WithMsg("name is required")
	}
	base.BaseModel = model.BaseModel{}
	base.IsDeleted = false
	rec.SetStock(*total, *available)

	err = s.store.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateData(txCtx, rec); err != nil {
			return code.ItemCreateErr.WithErr(err)
		}
		return code.Wrap(code.ItemCreateErr, s.activity.Record(txCtx, &activity.Entry{
			Action:   model.ActionAdd,
			ItemType: kind.Type,
			ItemID:   base.ID,
			ItemName: base.Name,
			Details:  map[string]any{"total": *total, "available": *available},
		}))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "created", kind, rec)
	return toResp(kind, rec), nil
}

func (s *inventoryImpl) Get(ctx context.Context, req *core.ItemReq) (*core.ItemResp, error) {
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, kind, req.UUID)
	if err != nil {
		return nil, err
	}
	return toResp(kind, rec), nil
}

func (s *inventoryImpl) List(ctx context.Context, req *core.ListReq) (*common.PageResp[[]*core.ItemResp], error) {
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return nil, err
	}
	req.Normalize()
	list, total, err := s.store.List(ctx, kind, repo.InventoryQuery{
		Keyword:  req.Keyword,
		LowStock: req.LowStock,
		Offset:   req.Offset(),
		Limit:    req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*core.ItemResp]{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Data: utils.FilterSlice(list, func(r model.InventoryRecord) (*core.ItemResp, bool) {
			return toResp(kind, r), true
		}),
	}, nil
}

func (s *inventoryImpl) Update(ctx context.Context, req *core.UpdateReq) (*core.ItemResp, error) {
	if _, err := requireManager(ctx); err != nil {
		return nil, err
	}
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return nil, err
	}
	newTotal, newAvailable, err := decodeStock(kind, req.Body)
	if err != nil {
		return nil, err
	}
	if newAvailable != nil {
		return nil, code.ParamErr.WithMsgf("%s can only be changed by an adjustment", kind.AvailableColumn)
	}

	var rec model.InventoryRecord
	err = s.store.ExecTx(ctx, func(txCtx context.Context) error {
		rec, err = s.store.Get(txCtx, kind, req.UUID)
		if err != nil {
			return err
		}
		keep := *rec.Base()
		oldTotal, available := rec.Stock()

		if err := json.Unmarshal(req.Body, rec); err != nil {
			return code.ParamErr.WithMsg(err.Error())
		}
		base := rec.Base()
		base.BaseModel = keep.BaseModel
		base.IsDeleted = keep.IsDeleted
		base.Name = strings.TrimSpace(base.Name)
		if base.Name == "" {
			return code.ParamErr.WithMsg("name is required")
		}

		total := utils.DerefOr(newTotal, oldTotal)
		// Available may already be negative when stock is not enforced; an
		// edit only has to keep total consistent with it.
		if err := validStock(kind, total, max(available, 0)); err != nil {
			return err
		}
		rec.SetStock(total, available)

		if err := s.store.Save(txCtx, kind, rec); err != nil {
			return err
		}
		details := map[string]any{"fields": changedKeys(req.Body)}
		if total != oldTotal {
			details["total"] = map[string]float64{"from": oldTotal, "to": total}
		}
		return code.Wrap(code.ItemUpdateErr, s.activity.Record(txCtx, &activity.Entry{
			Action:   model.ActionEdit,
			ItemType: kind.Type,
			ItemID:   base.ID,
			ItemName: base.Name,
			Details:  details,
		}))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "updated", kind, rec)
	return toResp(kind, rec), nil
}

func changedKeys(body []byte) []string {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (s *inventoryImpl) Adjust(ctx context.Context, req *core.AdjustReq) (*core.ItemResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if !user.Role.IsAdmin() {
		return nil, code.PermissionDenied
	}
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return nil, err
	}

	var rec model.InventoryRecord
	err = s.store.ExecTx(ctx, func(txCtx context.Context) error {
		rec, err = s.store.Get(txCtx, kind, req.UUID)
		if err != nil {
			return err
		}
		oldTotal, oldAvailable := rec.Stock()
		total := utils.DerefOr(req.Total, oldTotal)
		if err := validStock(kind, total, req.Available); err != nil {
			return err
		}
		if err := s.store.Update(txCtx, kind, rec.Base().ID, map[string]any{
			kind.TotalColumn:     kind.Amount(total),
			kind.AvailableColumn: kind.Amount(req.Available),
		}); err != nil {
			return err
		}
		rec.SetStock(total, req.Available)
		return code.Wrap(code.ItemUpdateErr, s.activity.Record(txCtx, &activity.Entry{
			Action:   model.ActionEdit,
			ItemType: kind.Type,
			ItemID:   rec.Base().ID,
			ItemName: rec.Base().Name,
			Details: map[string]any{
				"adjust":    true,
				"reason":    req.Reason,
				"total":     map[string]float64{"from": oldTotal, "to": total},
				"available": map[string]float64{"from": oldAvailable, "to": req.Available},
			},
		}))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "adjusted", kind, rec)
	return toResp(kind, rec), nil
}

func (s *inventoryImpl) Delete(ctx context.Context, req *core.ItemReq) error {
	if _, err := requireManager(ctx); err != nil {
		return err
	}
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return err
	}

	var rec model.InventoryRecord
	err = s.store.ExecTx(ctx, func(txCtx context.Context) error {
		rec, err = s.store.Get(txCtx, kind, req.UUID)
		if err != nil {
			return err
		}
		open, err := s.issued.CountOpen(txCtx, kind.Type, rec.Base().ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return code.ItemInUse.WithMsgf("%s %q has %d open issuances", kind.Type, rec.Base().Name, open)
		}
		if err := s.store.SoftDelete(txCtx, kind, rec.Base().ID); err != nil {
			return err
		}
		return code.Wrap(code.ItemDeleteErr, s.activity.Record(txCtx, &activity.Entry{
			Action:   model.ActionDelete,
			ItemType: kind.Type,
			ItemID:   rec.Base().ID,
			ItemName: rec.Base().Name,
		}))
	})
	if err != nil {
		return err
	}

	s.publish(ctx, "deleted", kind, rec)
	return nil
}

func (s *inventoryImpl) LowStock(ctx context.Context) ([]*core.ItemResp, error) {
	res := make([]*core.ItemResp, 0)
	for _, kind := range model.Kinds() {
		for offset := 0; ; offset += lowStockPage {
			list, _, err := s.store.List(ctx, kind, repo.InventoryQuery{
				LowStock: true,
				Offset:   offset,
				Limit:    lowStockPage,
			})
			if err != nil {
				return nil, err
			}
			for _, r := range list {
				res = append(res, toResp(kind, r))
			}
			if len(list) < lowStockPage {
				break
			}
		}
	}
	return res, nil
}

func (s *inventoryImpl) LookupCAS(ctx context.Context, req *core.CasReq) (*core.CasResp, error) {
	cas := strings.TrimSpace(req.CAS)
	if cas == "" {
		return nil, code.ParamErr.WithMsg("cas is required")
	}
	info, err := s.pubchem.GetCompoundByCAS(ctx, cas)
	if err != nil {
		return nil, code.Wrap(code.CASQueryErr, err)
	}
	return &core.CasResp{
		CAS:              cas,
		Name:             info.Name,
		MolecularFormula: info.MolecularFormula,
		SMILES:           info.SMILES,
	}, nil
}
