package model

import (
	"math"
	"strings"
)

type Measure string

const (
	MeasureCount  Measure = "count"
	MeasureWeight Measure = "weight"
)

// LowStockRatio marks an item as low on stock when available < ratio * total.
const LowStockRatio = 0.10

// Kind describes how one ItemType is stored.
type Kind struct {
	Type            ItemType
	Measure         Measure
	Table           string
	TotalColumn     string
	AvailableColumn string

	newFn   func() InventoryRecord
	newList func() (any, func() []InventoryRecord)
}

// New returns an empty record of the kind, usable as a gorm model.
func (k *Kind) New() InventoryRecord {
	return k.newFn()
}

// NewList returns a pointer to an empty typed slice for gorm to fill and a
// function that reads the filled slice back as records.
func (k *Kind) NewList() (dest any, records func() []InventoryRecord) {
	return k.newList()
}

// Amount converts a requested amount to the column's Go type.
func (k *Kind) Amount(q float64) any {
	if k.Measure == MeasureCount {
		return int64(q)
	}
	return q
}

// ValidAmount reports whether q is a positive amount for the kind. Count
// kinds only accept whole numbers.
func (k *Kind) ValidAmount(q float64) bool {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return false
	}
	if k.Measure == MeasureCount {
		return q == math.Trunc(q)
	}
	return true
}

func kindOf[T any, P interface {
	*T
	InventoryRecord
	TableName() string
}](typ ItemType, measure Measure) *Kind {
	k := &Kind{
		Type:    typ,
		Measure: measure,
		Table:   P(new(T)).TableName(),
		newFn:   func() InventoryRecord { return P(new(T)) },
		newList: func() (any, func() []InventoryRecord) {
			list := make([]*T, 0)
			return &list, func() []InventoryRecord {
				out := make([]InventoryRecord, 0, len(list))
				for _, it := range list {
					out = append(out, P(it))
				}
				return out
			}
		},
	}
	if measure == MeasureWeight {
		k.TotalColumn, k.AvailableColumn = "total_weight", "available_weight"
	} else {
		k.TotalColumn, k.AvailableColumn = "total_quantity", "available_quantity"
	}
	return k
}

var kinds = []*Kind{
	kindOf[Chemical](ItemChemical, MeasureWeight),
	kindOf[Glassware](ItemGlassware, MeasureCount),
	kindOf[Plasticware](ItemPlasticware, MeasureCount),
	kindOf[Instrument](ItemInstrument, MeasureCount),
	kindOf[Specimen](ItemSpecimen, MeasureCount),
	kindOf[Slide](ItemSlide, MeasureCount),
	kindOf[Miscellaneous](ItemMiscellaneous, MeasureCount),
}

var kindByType = func() map[ItemType]*Kind {
	m := make(map[ItemType]*Kind, len(kinds))
	for _, k := range kinds {
		m[k.Type] = k
	}
	return m
}()

// KindOf resolves an item type to its descriptor.
func KindOf(t ItemType) (*Kind, bool) {
	k, ok := kindByType[t]
	return k, ok
}

func Kinds() []*Kind {
	out := make([]*Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseItemType accepts the canonical name in any letter case.
func ParseItemType(s string) (ItemType, bool) {
	for _, k := range kinds {
		if strings.EqualFold(string(k.Type), strings.TrimSpace(s)) {
			return k.Type, true
		}
	}
	return "", false
}

func (t ItemType) Valid() bool {
	_, ok := kindByType[t]
	return ok
}

// InventoryModels lists one value per category table, for migrations.
func InventoryModels() []any {
	out := make([]any, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.New())
	}
	return out
}
