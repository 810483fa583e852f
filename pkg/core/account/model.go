package account

import (
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
)

type RegisterReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required"`
	RollNo   string `json:"roll_no"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RoleReq struct {
	UUID uuid.UUID   `json:"-"`
	Role common.Role `json:"role" binding:"required,oneof=student faculty admin"`
}

type UserResp struct {
	UUID     uuid.UUID   `json:"uuid"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     common.Role `json:"role"`
	RollNo   string      `json:"roll_no,omitempty"`
	IsActive bool        `json:"is_active"`
}

type TokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *UserResp `json:"user"`
}
