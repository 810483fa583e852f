package web

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/core/account"
	accountImpl "github.com/scienceol/labinv/pkg/core/account/account"
	"github.com/scienceol/labinv/pkg/core/activity"
	activityImpl "github.com/scienceol/labinv/pkg/core/activity/activity"
	"github.com/scienceol/labinv/pkg/core/inventory"
	inventoryImpl "github.com/scienceol/labinv/pkg/core/inventory/inventory"
	"github.com/scienceol/labinv/pkg/core/issuance"
	issuanceImpl "github.com/scienceol/labinv/pkg/core/issuance/issuance"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/core/notify/events"
	"github.com/scienceol/labinv/pkg/core/notify/limiter"
	"github.com/scienceol/labinv/pkg/core/notify/mail"
	"github.com/scienceol/labinv/pkg/core/request"
	requestImpl "github.com/scienceol/labinv/pkg/core/request/request"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	activityRepo "github.com/scienceol/labinv/pkg/repo/activity"
	inventoryRepo "github.com/scienceol/labinv/pkg/repo/inventory"
	issuanceRepo "github.com/scienceol/labinv/pkg/repo/issuance"
	"github.com/scienceol/labinv/pkg/repo/pubchem"
	requestRepo "github.com/scienceol/labinv/pkg/repo/request"
	userRepo "github.com/scienceol/labinv/pkg/repo/user"
	"github.com/scienceol/labinv/pkg/web/views/sse"
)

const mailDrainTimeout = 10 * time.Second

type Services struct {
	Account   account.Service
	Inventory inventory.Service
	Request   request.Service
	Issuance  issuance.Service
	Activity  activity.Service
	Hub       *sse.Hub

	events notify.MsgCenter
	mailer *mail.Mailer
}

// NewServices wires the services over ds. With a redis client, events travel
// over pub/sub and limits are shared between instances; without one the hub
// relays events in process and limits are kept in memory.
func NewServices(ctx context.Context, ds *db.Datastore, client *r.Client, conf *config.GlobalConfig) (*Services, error) {
	hub := sse.NewHub()
	s := &Services{Hub: hub}

	var mailLimit, loginLimit limiter.Limiter
	if client != nil {
		s.events = events.New(client)
		mailLimit = limiter.NewRedis(client, "labinv:limit:mail:", conf.Mail.RateLimit, conf.Mail.RateWindow)
		loginLimit = limiter.NewRedis(client, "labinv:limit:login:", conf.Auth.LoginRateLimit, conf.Auth.LoginRateWindow)
	} else {
		s.events = hub
		mailLimit = limiter.NewMemory(conf.Mail.RateLimit, conf.Mail.RateWindow)
		loginLimit = limiter.NewMemory(conf.Auth.LoginRateLimit, conf.Auth.LoginRateWindow)
	}
	if err := hub.Subscribe(ctx, s.events); err != nil {
		return nil, err
	}

	var mailer notify.Mailer
	if conf.Mail.Enabled() {
		m, err := mail.New(&mail.Config{
			Host:     conf.Mail.Host,
			Port:     conf.Mail.Port,
			User:     conf.Mail.User,
			Password: conf.Mail.Password,
			From:     conf.Mail.From,
			Workers:  conf.Mail.Workers,
		}, mailLimit)
		if err != nil {
			return nil, err
		}
		s.mailer = m
		mailer = m
	} else {
		logger.Infof(ctx, "smtp host not set, mail notifications disabled")
	}

	node, err := snowflake.NewNode(nodeID(conf))
	if err != nil {
		return nil, err
	}

	users := userRepo.New(ds)
	items := inventoryRepo.New(ds)
	requests := requestRepo.New(ds)
	issued := issuanceRepo.New(ds)
	s.Activity = activityImpl.New(activityRepo.New(ds))

	s.Account = accountImpl.New(&accountImpl.Options{
		Users:          users,
		Secret:         []byte(conf.Auth.JWTSecret),
		TokenTTL:       conf.Auth.TokenTTL,
		Issuer:         conf.Auth.Issuer,
		BootstrapAdmin: conf.Auth.BootstrapAdminEmail,
		Limiter:        loginLimit,
	})
	s.Inventory = inventoryImpl.New(&inventoryImpl.Options{
		Store:    items,
		Issued:   issued,
		PubChem:  pubchem.New(conf.RPC.PubChem.Addr),
		Activity: s.Activity,
		Events:   s.events,
	})
	s.Request = requestImpl.New(&requestImpl.Options{
		Store:     requests,
		Inventory: items,
		Users:     users,
		Activity:  s.Activity,
		Events:    s.events,
		Mailer:    mailer,
		Node:      node,
	})
	s.Issuance = issuanceImpl.New(&issuanceImpl.Options{
		Store:           issued,
		Requests:        requests,
		Inventory:       items,
		Users:           users,
		Activity:        s.Activity,
		Events:          s.events,
		Mailer:          mailer,
		EnforceStock:    conf.Workflow.EnforceStock,
		RestockOnReturn: conf.Workflow.RestockOnReturn,
	})
	return s, nil
}

// nodeID keeps request numbers distinct between instances sharing a
// database. Configure NODE_ID per instance.
func nodeID(conf *config.GlobalConfig) int64 {
	return conf.Server.NodeID & 1023
}

// Close drains queued mail and stops the event subscriptions.
func (s *Services) Close(ctx context.Context) {
	if s.mailer != nil {
		s.mailer.Close(mailDrainTimeout)
	}
	if s.events != nil {
		if err := s.events.Close(ctx); err != nil {
			logger.Warnf(ctx, "close events err: %+v", err)
		}
	}
}
