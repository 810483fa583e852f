package request

import (
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type Scope string

const (
	ScopeMine     Scope = "mine"
	ScopeAssigned Scope = "assigned"
	ScopeAll      Scope = "all"
)

// LineReq asks for quantity of a count item or total_weight_requested of a
// chemical.
type LineReq struct {
	ItemType             string    `json:"item_type" binding:"required,item_type"`
	ItemUUID             uuid.UUID `json:"item_uuid" binding:"required"`
	Quantity             int64     `json:"quantity" binding:"gte=0"`
	TotalWeightRequested float64   `json:"total_weight_requested" binding:"gte=0"`
}

type SubmitReq struct {
	FacultyUUID       uuid.UUID  `json:"faculty_uuid" binding:"required"`
	Purpose           string     `json:"purpose"`
	DesiredIssueTime  *time.Time `json:"desired_issue_time"`
	DesiredReturnTime *time.Time `json:"desired_return_time"`
	Notes             string     `json:"notes"`
	Items             []*LineReq `json:"items" binding:"dive"`
}

type GetReq struct {
	UUID uuid.UUID `json:"-"`
}

type DecideReq struct {
	UUID uuid.UUID `json:"-"`
	Note string    `json:"note"`
}

type ListReq struct {
	common.PageReq
	// Scope defaults to the widest view the caller's role allows among
	// mine, assigned and all.
	Scope  Scope               `form:"scope"`
	Status model.RequestStatus `form:"status"`
}

type Person struct {
	UUID     uuid.UUID   `json:"uuid,omitempty"`
	Name     string      `json:"name"`
	Role     common.Role `json:"role,omitempty"`
	RollNo   string      `json:"roll_no,omitempty"`
	Email    string      `json:"email,omitempty"`
}

type LineResp struct {
	UUID                 uuid.UUID      `json:"uuid"`
	ItemType             model.ItemType `json:"item_type"`
	ItemUUID             uuid.UUID      `json:"item_uuid"`
	ItemName             string         `json:"item_name"`
	Measure              model.Measure  `json:"measure"`
	Quantity             int64          `json:"quantity"`
	TotalWeightRequested float64        `json:"total_weight_requested"`
}

type RequestResp struct {
	UUID              uuid.UUID           `json:"uuid"`
	RequestNo         string              `json:"request_no"`
	Status            model.RequestStatus `json:"status"`
	Requester         Person              `json:"requester"`
	Faculty           Person              `json:"faculty_in_charge"`
	Purpose           string              `json:"purpose"`
	DesiredIssueTime  *time.Time          `json:"desired_issue_time"`
	DesiredReturnTime *time.Time          `json:"desired_return_time"`
	Notes             string              `json:"notes"`
	RequestDate       time.Time           `json:"request_date"`
	DecidedAt         *time.Time          `json:"decided_at"`
	DecisionNote      string              `json:"decision_note,omitempty"`
	IssuedAt          *time.Time          `json:"issued_at"`
	Items             []*LineResp         `json:"items"`
}
