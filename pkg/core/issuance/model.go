package issuance

import (
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

type Scope string

const (
	// ScopeMine lists items issued to the caller.
	ScopeMine Scope = "mine"
	// ScopeAssigned lists items the caller is faculty in charge of.
	ScopeAssigned Scope = "assigned"
	ScopeAll      Scope = "all"
)

type IssueReq struct {
	UUID  uuid.UUID `json:"-"`
	Notes string    `json:"notes"`
}

type ReturnReq struct {
	UUID  uuid.UUID `json:"-"`
	Notes string    `json:"notes"`
}

type ListReq struct {
	common.PageReq
	Scope       Scope             `form:"scope"`
	Status      model.IssueStatus `form:"status"`
	RequestUUID string            `form:"request_uuid"`
}

type Issuer struct {
	Name   string      `json:"name"`
	Role   common.Role `json:"role"`
	RollNo string      `json:"roll_no,omitempty"`
}

type IssuedResp struct {
	UUID              uuid.UUID         `json:"uuid"`
	ItemType          model.ItemType    `json:"item_type"`
	ItemUUID          uuid.UUID         `json:"item_uuid"`
	ItemName          string            `json:"item_name"`
	Measure           model.Measure     `json:"measure"`
	Quantity          int64             `json:"quantity"`
	TotalWeightIssued float64           `json:"total_weight_issued"`
	IssuedTo          string            `json:"issued_to"`
	IssuedBy          Issuer            `json:"issued_by"`
	FacultyInCharge   string            `json:"faculty_in_charge"`
	Purpose           string            `json:"purpose"`
	IssueDate         time.Time         `json:"issue_date"`
	ReturnDate        *time.Time        `json:"return_date"`
	Status            model.IssueStatus `json:"status"`
	Notes             string            `json:"notes"`
	RequestUUID       *uuid.UUID        `json:"request_uuid,omitempty"`
}

type IssueResp struct {
	RequestUUID uuid.UUID     `json:"request_uuid"`
	RequestNo   string        `json:"request_no"`
	IssuedAt    time.Time     `json:"issued_at"`
	Items       []*IssuedResp `json:"items"`
}
