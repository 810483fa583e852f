package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	ID    int64 `gorm:"primaryKey"`
	Value int64
}

func TestExecTxRollback(t *testing.T) {
	ds := dbtest.Open(t, &counter{})
	ctx := context.Background()
	require.NoError(t, ds.DBWithContext(ctx).Create(&counter{ID: 1, Value: 10}).Error)

	boom := errors.New("boom")
	err := ds.ExecTx(ctx, func(txCtx context.Context) error {
		assert.True(t, db.InTx(txCtx))
		if err := ds.DBWithContext(txCtx).Model(&counter{}).Where("id = ?", 1).
			Update("value", 3).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got := &counter{}
	require.NoError(t, ds.DBWithContext(ctx).First(got, 1).Error)
	assert.Equal(t, int64(10), got.Value)
}

func TestExecTxNestedJoinsOuter(t *testing.T) {
	ds := dbtest.Open(t, &counter{})
	ctx := context.Background()

	err := ds.ExecTx(ctx, func(txCtx context.Context) error {
		if err := ds.DBWithContext(txCtx).Create(&counter{ID: 1}).Error; err != nil {
			return err
		}
		inner := ds.ExecTx(txCtx, func(innerCtx context.Context) error {
			return ds.DBWithContext(innerCtx).Create(&counter{ID: 2}).Error
		})
		require.NoError(t, inner)
		return errors.New("abort")
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, ds.DBWithContext(ctx).Model(&counter{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.False(t, db.InTx(ctx))
}
