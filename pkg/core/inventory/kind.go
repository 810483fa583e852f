package inventory

import (
	"context"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
)

// ResolveKind maps a category name from a path or payload to its kind.
func ResolveKind(s string) (*model.Kind, error) {
	typ, ok := model.ParseItemType(s)
	if !ok {
		return nil, code.InvalidItemType.WithMsgf("unknown item type %q", s)
	}
	k, _ := model.KindOf(typ)
	return k, nil
}

// Records maps item type and id to the loaded record.
type Records map[model.ItemType]map[int64]model.InventoryRecord

func (r Records) Find(typ model.ItemType, id int64) (model.InventoryRecord, bool) {
	rec, ok := r[typ][id]
	return rec, ok
}

// LoadRecords batch-loads the items referenced by refs, one query per
// category. Deleted items are absent from the result.
func LoadRecords(ctx context.Context, store repo.InventoryRepo, refs map[model.ItemType][]int64) (Records, error) {
	out := make(Records, len(refs))
	for typ, ids := range refs {
		kind, ok := model.KindOf(typ)
		if !ok {
			continue
		}
		recs, err := store.GetByIDs(ctx, kind, utils.Uniq(ids)...)
		if err != nil {
			return nil, err
		}
		out[typ] = recs
	}
	return out, nil
}
