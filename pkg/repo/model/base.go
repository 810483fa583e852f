package model

import (
	"time"

	"github.com/scienceol/labinv/pkg/common/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.UUID.IsNil() {
		b.UUID = uuid.NewV4()
	}
	return nil
}

func (b *BaseModel) GetID() int64 {
	return b.ID
}

func (b *BaseModel) GetUUID() uuid.UUID {
	return b.UUID
}
