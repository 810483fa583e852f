package inventory

import (
	"encoding/json"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

// CreateReq carries the raw JSON body of the category's item. Stock is read
// from total_quantity/available_quantity, or total_weight/available_weight
// for chemicals. Available defaults to total when omitted.
type CreateReq struct {
	Type string          `json:"-"`
	Body json.RawMessage `json:"-"`
}

type ItemReq struct {
	Type string    `json:"-" uri:"type" binding:"required"`
	UUID uuid.UUID `json:"-"`
}

// UpdateReq patches descriptive fields and the total. Fields missing from
// Body keep their value.
type UpdateReq struct {
	ItemReq
	Body json.RawMessage `json:"-"`
}

// AdjustReq sets available stock directly, optionally with a new total.
type AdjustReq struct {
	ItemReq
	Available float64  `json:"available" binding:"gte=0"`
	Total     *float64 `json:"total" binding:"omitempty,gte=0"`
	Reason    string   `json:"reason"`
}

type ListReq struct {
	common.PageReq
	Type     string `json:"-" uri:"type"`
	Keyword  string `form:"keyword"`
	LowStock bool   `form:"low_stock"`
}

type ItemResp struct {
	ItemType model.ItemType        `json:"item_type"`
	Measure  model.Measure         `json:"measure"`
	LowStock bool                  `json:"low_stock"`
	Item     model.InventoryRecord `json:"item"`
}

type ExportReq struct {
	Type string `uri:"type" binding:"required"`
}

type ExportResp struct {
	FileName string
	Data     []byte
}

type CasReq struct {
	CAS string `form:"cas" binding:"required"`
}

type CasResp struct {
	CAS              string `json:"cas"`
	Name             string `json:"name"`
	MolecularFormula string `json:"molecular_formula"`
	SMILES           string `json:"smiles"`
}
