package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	core "github.com/scienceol/labinv/pkg/core/account"
	"github.com/scienceol/labinv/pkg/core/notify/limiter"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/scienceol/labinv/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	Users    repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
	// BootstrapAdmin is the email that registers as admin.
	BootstrapAdmin string
	// Limiter throttles login attempts per email. Optional.
	Limiter limiter.Limiter
}

type accountImpl struct {
	users          repo.UserRepo
	secret         []byte
	ttl            time.Duration
	issuer         string
	bootstrapAdmin string
	limiter        limiter.Limiter
	cost           int
}

func New(opt *Options) core.Service {
	return &accountImpl{
		users:          opt.Users,
		secret:         opt.Secret,
		ttl:            opt.TokenTTL,
		issuer:         opt.Issuer,
		bootstrapAdmin: strings.ToLower(strings.TrimSpace(opt.BootstrapAdmin)),
		limiter:        opt.Limiter,
		cost:           bcrypt.DefaultCost,
	}
}

func toResp(u *model.User) *core.UserResp {
	return &core.UserResp{
		UUID:     u.UUID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		RollNo:   u.RollNo,
		IsActive: u.IsActive,
	}
}

func (a *accountImpl) Register(ctx context.Context, req *core.RegisterReq) (*core.TokenResp, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.FullName)
	if email == "" || name == "" {
		return nil, code.ParamErr.WithMsg("email and full_name are required")
	}
	if len(req.Password) < 8 {
		return nil, code.ParamErr.WithMsg("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return nil, code.ParamErr.WithErr(err)
	}
	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         common.Student,
		RollNo:       strings.TrimSpace(req.RollNo),
		IsActive:     true,
	}
	if a.bootstrapAdmin != "" && email == a.bootstrapAdmin {
		user.Role = common.Admin
		logger.Infof(ctx, "registering bootstrap admin %s", email)
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return a.token(user)
}

func (a *accountImpl) Login(ctx context.Context, req *core.LoginReq) (*core.TokenResp, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if a.limiter != nil {
		ok, err := a.limiter.Allow(ctx, email)
		if err != nil {
			logger.Warnf(ctx, "login limiter err: %+v", err)
		} else if !ok {
			return nil, code.LoginThrottled
		}
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, code.UserNotFound) {
			return nil, code.LoginFailed
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, code.LoginFailed
	}
	if !user.IsActive {
		return nil, code.UserDisabled
	}
	return a.token(user)
}

func (a *accountImpl) token(user *model.User) (*core.TokenResp, error) {
	claims := &utils.Claims{
		UserID:   user.ID,
		UUID:     user.UUID.String(),
		Role:     string(user.Role),
		FullName: user.FullName,
		RollNo:   user.RollNo,
		Email:    user.Email,
	}
	token, err := utils.SignJWT(a.secret, claims, a.ttl, a.issuer)
	if err != nil {
		return nil, code.SignTokenErr.WithErr(err)
	}
	return &core.TokenResp{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        toResp(user),
	}, nil
}

func (a *accountImpl) Me(ctx context.Context) (*core.UserResp, error) {
	cur := auth.GetCurrentUser(ctx)
	if cur == nil {
		return nil, code.UnLogin
	}
	user, err := a.users.GetByID(ctx, cur.ID)
	if err != nil {
		return nil, err
	}
	return toResp(user), nil
}

func (a *accountImpl) ListFaculty(ctx context.Context) ([]*core.UserResp, error) {
	users, err := a.users.ListByRoles(ctx, common.Faculty, common.Admin)
	if err != nil {
		return nil, err
	}
	return utils.FilterSlice(users, func(u *model.User) (*core.UserResp, bool) {
		return toResp(u), true
	}), nil
}

func (a *accountImpl) SetRole(ctx context.Context, req *core.RoleReq) (*core.UserResp, error) {
	cur := auth.GetCurrentUser(ctx)
	if cur == nil {
		return nil, code.UnLogin
	}
	if !cur.Role.IsAdmin() {
		return nil, code.PermissionDenied
	}
	if !req.Role.Valid() {
		return nil, code.ParamErr.WithMsgf("unknown role %q", req.Role)
	}

	user, err := a.users.Get(ctx, req.UUID)
	if err != nil {
		return nil, err
	}
	if user.ID == cur.ID && req.Role != common.Admin {
		return nil, code.ParamErr.WithMsg("admins cannot demote themselves")
	}
	if err := a.users.UpdateRole(ctx, user.ID, req.Role); err != nil {
		return nil, err
	}
	logger.Infof(ctx, "user %s role %s -> %s by %s", user.Email, user.Role, req.Role, cur.Email)
	user.Role = req.Role
	return toResp(user), nil
}
