package model

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityAction string

const (
	ActionAdd     ActivityAction = "add"
	ActionEdit    ActivityAction = "edit"
	ActionDelete  ActivityAction = "delete"
	ActionRequest ActivityAction = "request"
	ActionApprove ActivityAction = "approve"
	ActionReject  ActivityAction = "reject"
	ActionIssue   ActivityAction = "issue"
	ActionReturn  ActivityAction = "return"
)

type ActivityLog struct {
	BaseModel
	Action    ActivityAction `gorm:"type:varchar(16);not null;index" json:"action"`
	ItemType  ItemType       `gorm:"type:varchar(32);index" json:"item_type"`
	ItemID    int64          `gorm:"index" json:"item_id"`
	ItemName  string         `gorm:"type:varchar(255)" json:"item_name"`
	UserID    int64          `gorm:"index" json:"user_id"`
	User      string         `gorm:"type:varchar(255)" json:"user"`
	Details   datatypes.JSON `json:"details,omitempty"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
}

func (*ActivityLog) TableName() string {
	return "activity_logs"
}
