package activity

import (
	"time"

	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/repo/model"
)

// Entry is one audit record, written by the service that performs the
// action.
type Entry struct {
	Action   model.ActivityAction
	ItemType model.ItemType
	ItemID   int64
	ItemName string
	Details  any
}

type ListReq struct {
	common.PageReq
	Action   model.ActivityAction `form:"action"`
	ItemType string               `form:"item_type"`
	Since    *time.Time           `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until    *time.Time           `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
}

type LogResp struct {
	UUID      uuid.UUID            `json:"uuid"`
	Action    model.ActivityAction `json:"action"`
	ItemType  model.ItemType       `json:"item_type,omitempty"`
	ItemID    int64                `json:"item_id,omitempty"`
	ItemName  string               `json:"item_name,omitempty"`
	User      string               `json:"user"`
	Details   any                  `json:"details,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

type PruneReq struct {
	OlderThan time.Duration `form:"older_than"`
}

type PruneResp struct {
	Deleted int64     `json:"deleted"`
	Before  time.Time `json:"before"`
}
