package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"gorm.io/gorm"
)

type inventoryImpl struct {
	*repo.BaseDB
}

func New(ds *db.Datastore) repo.InventoryRepo {
	return &inventoryImpl{BaseDB: repo.NewBaseDB(ds)}
}

func activeScope(tx *gorm.DB) *gorm.DB {
	return tx.Where("is_deleted = ?", false)
}

func (i *inventoryImpl) Get(ctx context.Context, kind *model.Kind, id uuid.UUID) (model.InventoryRecord, error) {
	rec := kind.New()
	err := i.DBWithContext(ctx).Model(rec).Scopes(activeScope).
		Where("uuid = ?", id).Take(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ItemNotFound.WithMsgf("%s %s not found", kind.Type, id)
		}
		logger.Errorf(ctx, "get %s err: %+v", kind.Type, err)
		return nil, code.ItemQueryErr.WithErr(err)
	}
	return rec, nil
}

func (i *inventoryImpl) GetByID(ctx context.Context, kind *model.Kind, id int64) (model.InventoryRecord, error) {
	rec := kind.New()
	err := i.DBWithContext(ctx).Model(rec).Scopes(activeScope).
		Where("id = ?", id).Take(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ItemNotFound.WithMsgf("%s %d not found", kind.Type, id)
		}
		logger.Errorf(ctx, "get %s by id err: %+v", kind.Type, err)
		return nil, code.ItemQueryErr.WithErr(err)
	}
	return rec, nil
}

func (i *inventoryImpl) GetByIDs(ctx context.Context, kind *model.Kind, ids ...int64) (map[int64]model.InventoryRecord, error) {
	res := make(map[int64]model.InventoryRecord, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	dest, records := kind.NewList()
	if err := i.DBWithContext(ctx).Model(kind.New()).Scopes(activeScope).
		Where("id IN ?", ids).Find(dest).Error; err != nil {
		logger.Errorf(ctx, "get %s by ids err: %+v", kind.Type, err)
		return nil, code.ItemQueryErr.WithErr(err)
	}
	for _, r := range records() {
		res[r.Base().ID] = r
	}
	return res, nil
}

func (i *inventoryImpl) List(ctx context.Context, kind *model.Kind, q repo.InventoryQuery) ([]model.InventoryRecord, int64, error) {
	tx := i.DBWithContext(ctx).Model(kind.New()).Scopes(activeScope)
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(catalog_number) LIKE ?)", like, like, like)
	}
	if q.LowStock {
		tx = tx.Where(fmt.Sprintf("%s < %s * ?", kind.AvailableColumn, kind.TotalColumn), model.LowStockRatio)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		logger.Errorf(ctx, "count %s err: %+v", kind.Type, err)
		return nil, 0, code.ItemQueryErr.WithErr(err)
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	dest, records := kind.NewList()
	if err := tx.Order("id desc").Offset(q.Offset).Limit(q.Limit).Find(dest).Error; err != nil {
		logger.Errorf(ctx, "list %s err: %+v", kind.Type, err)
		return nil, 0, code.ItemQueryErr.WithErr(err)
	}
	return records(), total, nil
}

func (i *inventoryImpl) Update(ctx context.Context, kind *model.Kind, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := i.DBWithContext(ctx).Model(kind.New()).Scopes(activeScope).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		logger.Errorf(ctx, "update %s err: %+v", kind.Type, res.Error)
		return code.ItemUpdateErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.ItemNotFound
	}
	return nil
}

func (i *inventoryImpl) Save(ctx context.Context, kind *model.Kind, rec model.InventoryRecord) error {
	res := i.DBWithContext(ctx).Model(rec).Scopes(activeScope).
		Select("*").
		Omit("id", "uuid", "created_at", "is_deleted", kind.AvailableColumn).
		Updates(rec)
	if res.Error != nil {
		logger.Errorf(ctx, "save %s err: %+v", kind.Type, res.Error)
		return code.ItemUpdateErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.ItemNotFound
	}
	return nil
}

func (i *inventoryImpl) SoftDelete(ctx context.Context, kind *model.Kind, id int64) error {
	res := i.DBWithContext(ctx).Model(kind.New()).Scopes(activeScope).
		Where("id = ?", id).Update("is_deleted", true)
	if res.Error != nil {
		logger.Errorf(ctx, "delete %s err: %+v", kind.Type, res.Error)
		return code.ItemDeleteErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.ItemNotFound
	}
	return nil
}

func (i *inventoryImpl) Decrement(ctx context.Context, kind *model.Kind, id int64, amount float64, enforce bool) error {
	col := kind.AvailableColumn
	q := kind.Amount(amount)
	tx := i.DBWithContext(ctx).Model(kind.New()).Scopes(activeScope).Where("id = ?", id)
	if enforce {
		tx = tx.Where(col+" >= ?", q)
	}
	res := tx.Update(col, gorm.Expr(col+" - ?", q))
	if res.Error != nil {
		logger.Errorf(ctx, "decrement %s %d err: %+v", kind.Type, id, res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	rec, err := i.GetByID(ctx, kind, id)
	if err != nil {
		return err
	}
	_, available := rec.Stock()
	return code.InsufficientStock.WithMsgf("%s %q has %v available, %v requested",
		kind.Type, rec.Base().Name, available, amount)
}

// Increment puts amount back on available stock, capped at total.
func (i *inventoryImpl) Increment(ctx context.Context, kind *model.Kind, id int64, amount float64) error {
	col, total := kind.AvailableColumn, kind.TotalColumn
	q := kind.Amount(amount)
	res := i.DBWithContext(ctx).Model(kind.New()).
		Where("id = ?", id).
		Update(col, gorm.Expr("CASE WHEN "+col+" + ? > "+total+" THEN "+total+" ELSE "+col+" + ? END", q, q))
	if res.Error != nil {
		logger.Errorf(ctx, "increment %s %d err: %+v", kind.Type, id, res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.ItemNotFound
	}
	return nil
}
