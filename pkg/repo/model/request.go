package model

import (
	"time"

	"github.com/scienceol/labinv/pkg/common"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type PendingRequest struct {
	BaseModel
	RequestNo         string `gorm:"type:varchar(32);uniqueIndex;not null" json:"request_no"`
	FacultyInChargeID int64  `gorm:"not null;index" json:"faculty_in_charge_id"`
	RequestedByUserID int64  `gorm:"not null;index" json:"requested_by_user_id"`

	// Snapshot of the requester at submission time.
	RequesterName   string      `gorm:"type:varchar(255)" json:"requester_name"`
	RequesterRole   common.Role `gorm:"type:varchar(16)" json:"requester_role"`
	RequesterRollNo string      `gorm:"type:varchar(64)" json:"requester_roll_no"`
	RequesterEmail  string      `gorm:"type:varchar(255)" json:"requester_email"`

	Purpose           string        `gorm:"type:text" json:"purpose"`
	DesiredIssueTime  *time.Time    `json:"desired_issue_time"`
	DesiredReturnTime *time.Time    `json:"desired_return_time"`
	Notes             string        `gorm:"type:text" json:"notes"`
	Status            RequestStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	RequestDate       time.Time     `gorm:"not null" json:"request_date"`

	DecidedAt    *time.Time `json:"decided_at"`
	DecidedByID  int64      `json:"decided_by_id"`
	DecisionNote string     `gorm:"type:text" json:"decision_note"`
	// IssuedAt is set once, when the request is issued.
	IssuedAt *time.Time `gorm:"index" json:"issued_at"`

	LineItems []*RequestLineItem `gorm:"foreignKey:PendingRequestID" json:"line_items,omitempty"`
}

func (*PendingRequest) TableName() string {
	return "pending_requests"
}

type RequestLineItem struct {
	BaseModel
	PendingRequestID     int64    `gorm:"not null;index" json:"pending_request_id"`
	ItemType             ItemType `gorm:"type:varchar(32);not null" json:"item_type"`
	ItemID               int64    `gorm:"not null;index" json:"item_id"`
	Quantity             int64    `gorm:"not null;default:0" json:"quantity"`
	TotalWeightRequested float64  `gorm:"type:numeric(14,3);not null;default:0" json:"total_weight_requested"`
}

func (*RequestLineItem) TableName() string {
	return "request_line_items"
}

// Amount is the requested amount in the item's own measure.
func (l *RequestLineItem) Amount() float64 {
	if l.ItemType == ItemChemical {
		return l.TotalWeightRequested
	}
	return float64(l.Quantity)
}
