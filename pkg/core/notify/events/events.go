package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/utils"
)

const channelPrefix = "labinv:events:"

// Events relays messages between API instances over redis pub/sub.
type Events struct {
	actions sync.Map
	subs    sync.Map
	client  *r.Client
	wait    sync.WaitGroup
}

func New(client *r.Client) *Events {
	return &Events{client: client}
}

func channel(a notify.Action) string {
	return channelPrefix + string(a)
}

func (e *Events) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, ok := e.actions.LoadOrStore(msgName, handleFunc); ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}

	sub := e.client.Subscribe(ctx, channel(msgName))
	e.subs.Store(msgName, sub)

	e.wait.Add(1)
	utils.SafelyGo(func() {
		defer e.wait.Done()
		defer e.actions.Delete(msgName)

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					logger.Infof(ctx, "exit redis channel name: %s", msgName)
					return
				}
				if msg == nil {
					continue
				}
				if err := handleFunc(ctx, msg.Payload); err != nil {
					logger.Errorf(ctx, "handle redis msg fail name: %s, err: %+v", msgName, err)
				}
			case <-ctx.Done():
				logger.Infof(ctx, "exit redis channel name: %s", msgName)
				if err := sub.Close(); err != nil {
					logger.Errorf(ctx, "close subscription %s err: %+v", msgName, err)
				}
				return
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "Registry handle msg err: %+v", err)
	})
	return nil
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	if err := e.client.Publish(ctx, channel(msg.Channel), data).Err(); err != nil {
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, err)
		return code.NotifySendMsgErr.WithErr(err)
	}
	return nil
}

// Close stops every subscription and waits for the loops to exit.
func (e *Events) Close(ctx context.Context) error {
	e.subs.Range(func(key, value any) bool {
		if sub, ok := value.(*r.PubSub); ok {
			if err := sub.Close(); err != nil {
				logger.Warnf(ctx, "close subscription %v err: %+v", key, err)
			}
		}
		e.subs.Delete(key)
		return true
	})
	e.wait.Wait()
	return nil
}
