package user

import (
	"context"
	"errors"
	"strings"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"gorm.io/gorm"
)

type userImpl struct {
	*repo.BaseDB
}

func New(ds *db.Datastore) repo.UserRepo {
	return &userImpl{BaseDB: repo.NewBaseDB(ds)}
}

func (u *userImpl) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := u.DBWithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return code.UserAlreadyExists
		}
		logger.Errorf(ctx, "create user err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (u *userImpl) take(ctx context.Context, query string, args ...any) (*model.User, error) {
	user := &model.User{}
	if err := u.DBWithContext(ctx).Where(query, args...).Take(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.UserNotFound
		}
		logger.Errorf(ctx, "get user err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return user, nil
}

func (u *userImpl) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.take(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (u *userImpl) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return u.take(ctx, "uuid = ?", id)
}

func (u *userImpl) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.take(ctx, "id = ?", id)
}

func (u *userImpl) GetByIDs(ctx context.Context, ids ...int64) (map[int64]*model.User, error) {
	res := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	users := make([]*model.User, 0, len(ids))
	if err := u.DBWithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, code.QueryRecordErr.WithErr(err)
	}
	for _, it := range users {
		res[it.ID] = it
	}
	return res, nil
}

func (u *userImpl) ListByRoles(ctx context.Context, roles ...common.Role) ([]*model.User, error) {
	users := make([]*model.User, 0)
	if err := u.DBWithContext(ctx).
		Where("role IN ? AND is_active = ?", roles, true).
		Order("full_name asc").
		Find(&users).Error; err != nil {
		logger.Errorf(ctx, "list users by role err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return users, nil
}

func (u *userImpl) UpdateRole(ctx context.Context, id int64, role common.Role) error {
	res := u.DBWithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.UserNotFound
	}
	return nil
}
