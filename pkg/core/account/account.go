package account

import "context"

type Service interface {
	// Register creates a student account and signs the caller in.
	Register(ctx context.Context, req *RegisterReq) (*TokenResp, error)
	Login(ctx context.Context, req *LoginReq) (*TokenResp, error)
	Me(ctx context.Context) (*UserResp, error)
	// ListFaculty lists the active users who may be chosen as faculty in
	// charge of a request.
	ListFaculty(ctx context.Context) ([]*UserResp, error)
	SetRole(ctx context.Context, req *RoleReq) (*UserResp, error)
}
