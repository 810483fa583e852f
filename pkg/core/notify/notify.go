package notify

import (
	"context"

	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

type Action string

const (
	InventoryChanged Action = "inventory-changed"
	RequestChanged   Action = "request-changed"
	IssuanceChanged  Action = "issuance-changed"
)

// Actions lists every channel the event center relays.
func Actions() []Action {
	return []Action{InventoryChanged, RequestChanged, IssuanceChanged}
}

type SendMsg struct {
	Channel   Action    `json:"action"`
	Event     string    `json:"event"`
	UserIDs   []int64   `json:"user_ids,omitempty"`
	Data      any       `json:"data"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}

type Mail struct {
	To      []string
	Subject string
	Body    string
	// Key groups mails for rate limiting, usually the recipient.
	Key string
}

type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}

// Publish broadcasts msg when center is set. Failures are logged only.
func Publish(ctx context.Context, center MsgCenter, msg *SendMsg) {
	if center == nil {
		return
	}
	if err := center.Broadcast(ctx, msg); err != nil {
		logger.Warnf(ctx, "broadcast %s/%s err: %+v", msg.Channel, msg.Event, err)
	}
}

// Deliver hands mail to mailer when both are set. Failures are logged only.
func Deliver(ctx context.Context, mailer Mailer, mail *Mail) {
	if mailer == nil || mail == nil || len(mail.To) == 0 {
		return
	}
	if err := mailer.Send(ctx, mail); err != nil {
		logger.Warnf(ctx, "send mail %q to %v err: %+v", mail.Subject, mail.To, err)
	}
}
