package model

import (
	"time"

	"github.com/scienceol/labinv/pkg/common"
)

type IssueStatus string

const (
	IssueIssued   IssueStatus = "issued"
	IssueReturned IssueStatus = "returned"
)

type IssuedItem struct {
	BaseModel
	ItemType   ItemType `gorm:"type:varchar(32);not null;index:idx_issued_item" json:"item_type"`
	ItemID     int64    `gorm:"not null;index:idx_issued_item" json:"item_id"`
	IssuedToID int64    `gorm:"not null;index" json:"issued_to_id"`

	// Snapshot of the issuer.
	IssuedByUserID int64       `gorm:"not null" json:"issued_by_user_id"`
	IssuedByName   string      `gorm:"type:varchar(255)" json:"issued_by_name"`
	IssuedByRole   common.Role `gorm:"type:varchar(16)" json:"issued_by_role"`
	IssuedByRollNo string      `gorm:"type:varchar(64)" json:"issued_by_roll_no"`

	FacultyInChargeID int64       `gorm:"not null;index" json:"faculty_in_charge_id"`
	Quantity          int64       `gorm:"not null;default:0" json:"quantity"`
	TotalWeightIssued float64     `gorm:"type:numeric(14,3);not null;default:0" json:"total_weight_issued"`
	Purpose           string      `gorm:"type:text" json:"purpose"`
	IssueDate         time.Time   `gorm:"not null" json:"issue_date"`
	ReturnDate        *time.Time  `json:"return_date"`
	Status            IssueStatus `gorm:"type:varchar(16);not null;default:issued;index" json:"status"`
	Notes             string      `gorm:"type:text" json:"notes"`

	PendingRequestID *int64 `gorm:"uniqueIndex:idx_issued_request_line" json:"pending_request_id"`
	LineItemID       *int64 `gorm:"uniqueIndex:idx_issued_request_line" json:"line_item_id"`
}

func (*IssuedItem) TableName() string {
	return "issued_items"
}

func (i *IssuedItem) Amount() float64 {
	if i.ItemType == ItemChemical {
		return i.TotalWeightIssued
	}
	return float64(i.Quantity)
}
