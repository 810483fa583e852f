// Package sse streams workflow events to browsers as server-sent events.
package sse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

const (
	clientBuffer = 16
	keepAlive    = 25 * time.Second
)

type client struct {
	userID int64
	admin  bool
	ch     chan *notify.SendMsg
}

// wants reports whether msg targets the client. Messages without user ids
// go to everyone, admins see everything.
func (c *client) wants(msg *notify.SendMsg) bool {
	return c.admin || len(msg.UserIDs) == 0 || slices.Contains(msg.UserIDs, c.userID)
}

// Hub fans events out to the streams connected to this instance. It doubles
// as an in-process notify.MsgCenter when no redis is configured.
type Hub struct {
	clients   *haxmap.Map[string, *client]
	keepAlive time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:   haxmap.New[string, *client](),
		keepAlive: keepAlive,
	}
}

// Subscribe feeds the hub from every channel of center.
func (h *Hub) Subscribe(ctx context.Context, center notify.MsgCenter) error {
	for _, a := range notify.Actions() {
		if err := center.Registry(ctx, a, h.handle); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) handle(_ context.Context, payload string) error {
	msg := &notify.SendMsg{}
	if err := json.Unmarshal([]byte(payload), msg); err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	h.Dispatch(msg)
	return nil
}

// Dispatch hands msg to every interested client. A client whose buffer is
// full misses the message.
func (h *Hub) Dispatch(msg *notify.SendMsg) {
	h.clients.ForEach(func(_ string, c *client) bool {
		if c.wants(msg) {
			select {
			case c.ch <- msg:
			default:
			}
		}
		return true
	})
}

func (h *Hub) Registry(context.Context, notify.Action, notify.HandleFunc) error {
	return nil
}

func (h *Hub) Broadcast(_ context.Context, msg *notify.SendMsg) error {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}
	h.Dispatch(msg)
	return nil
}

func (h *Hub) Close(context.Context) error {
	return nil
}

func (h *Hub) Clients() int {
	return int(h.clients.Len())
}

// Stream serves GET /events until the client goes away.
func (h *Hub) Stream(ctx *gin.Context) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		common.ReplyErr(ctx, code.UnLogin)
		return
	}

	id := uuid.NewV4().String()
	c := &client{
		userID: user.ID,
		admin:  user.Role.IsAdmin(),
		ch:     make(chan *notify.SendMsg, clientBuffer),
	}
	h.clients.Set(id, c)
	defer h.clients.Del(id)
	logger.Debugf(ctx, "sse client %s connected user %d", id, user.ID)

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.Header().Set("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)
	ctx.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	done := ctx.Request.Context().Done()

	ctx.Stream(func(io.Writer) bool {
		select {
		case msg := <-c.ch:
			ctx.SSEvent(string(msg.Channel), msg)
			return true
		case <-ticker.C:
			ctx.SSEvent("ping", time.Now().Unix())
			return true
		case <-done:
			return false
		}
	})
	logger.Debugf(ctx, "sse client %s disconnected", id)
}
