package repo

import (
	"context"
	"errors"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"gorm.io/gorm"
)

type IDOrUUIDTranslate interface {
	UUID2ID(ctx context.Context, tableModel any, uuids ...uuid.UUID) map[uuid.UUID]int64
	ID2UUID(ctx context.Context, tableModel any, ids ...int64) map[int64]uuid.UUID
	CreateData(ctx context.Context, data any) error
	UpdateData(ctx context.Context, data any, conds map[string]any, keys ...string) error
	ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type BaseDB struct {
	*db.Datastore
}

func NewBaseDB(ds *db.Datastore) *BaseDB {
	return &BaseDB{Datastore: ds}
}

type idPair struct {
	ID   int64
	UUID uuid.UUID
}

func (b *BaseDB) UUID2ID(ctx context.Context, tableModel any, uuids ...uuid.UUID) map[uuid.UUID]int64 {
	res := make(map[uuid.UUID]int64, len(uuids))
	if len(uuids) == 0 {
		return res
	}
	pairs := make([]*idPair, 0, len(uuids))
	if err := b.DBWithContext(ctx).Model(tableModel).
		Select("id", "uuid").
		Where("uuid IN ?", uuids).
		Find(&pairs).Error; err != nil {
		logger.Errorf(ctx, "UUID2ID err: %+v", err)
		return res
	}
	for _, p := range pairs {
		res[p.UUID] = p.ID
	}
	return res
}

func (b *BaseDB) ID2UUID(ctx context.Context, tableModel any, ids ...int64) map[int64]uuid.UUID {
	res := make(map[int64]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return res
	}
	pairs := make([]*idPair, 0, len(ids))
	if err := b.DBWithContext(ctx).Model(tableModel).
		Select("id", "uuid").
		Where("id IN ?", ids).
		Find(&pairs).Error; err != nil {
		logger.Errorf(ctx, "ID2UUID err: %+v", err)
		return res
	}
	for _, p := range pairs {
		res[p.ID] = p.UUID
	}
	return res
}

func (b *BaseDB) CreateData(ctx context.Context, data any) error {
	if err := b.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateData err: %+v", err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return code.CreateDataErr.WithMsg("duplicated record")
		}
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

// UpdateData updates the columns named by keys from data on every row
// matching conds.
func (b *BaseDB) UpdateData(ctx context.Context, data any, conds map[string]any, keys ...string) error {
	q := b.DBWithContext(ctx).Model(data).Where(conds)
	if len(keys) > 0 {
		q = q.Select(keys)
	}
	if err := q.Updates(data).Error; err != nil {
		logger.Errorf(ctx, "UpdateData err: %+v", err)
		return code.UpdateDataErr.WithErr(err)
	}
	return nil
}
