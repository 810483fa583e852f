package repo

import (
	"context"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type UserRepo interface {
	IDOrUUIDTranslate

	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids ...int64) (map[int64]*model.User, error)
	ListByRoles(ctx context.Context, roles ...common.Role) ([]*model.User, error)
	UpdateRole(ctx context.Context, id int64, role common.Role) error
}
