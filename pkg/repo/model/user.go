package model

import (
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
)

type User struct {
	BaseModel
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string      `gorm:"type:varchar(255);not null" json:"full_name"`
	Role         common.Role `gorm:"type:varchar(16);not null;default:student;index" json:"role"`
	RollNo       string      `gorm:"type:varchar(64)" json:"roll_no"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
}

func (*User) TableName() string {
	return "users"
}

// UserData is the verified identity the auth middleware places on the
// request context.
type UserData struct {
	ID       int64       `json:"id"`
	UUID     uuid.UUID   `json:"uuid"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	RollNo   string      `json:"roll_no"`
	Role     common.Role `json:"role"`
}
