package mail

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/core/notify/limiter"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"gopkg.in/gomail.v2"
)

const retryDelay = 2 * time.Second

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Workers  int
}

type Mailer struct {
	from    string
	pool    *ants.Pool
	limiter limiter.Limiter
	send    func(*gomail.Message) error
	delay   time.Duration
}

// New returns an SMTP mailer. Mails are delivered on a bounded worker pool
// and a failed delivery is retried once.
func New(conf *Config, lim limiter.Limiter) (*Mailer, error) {
	d := gomail.NewDialer(conf.Host, conf.Port, conf.User, conf.Password)
	return newMailer(conf, lim, func(m *gomail.Message) error { return d.DialAndSend(m) })
}

func newMailer(conf *Config, lim limiter.Limiter, send func(*gomail.Message) error) (*Mailer, error) {
	workers := conf.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		logger.Errorf(context.Background(), "mail worker panic: %v", p)
	}))
	if err != nil {
		return nil, code.NotificationErr.WithErr(err)
	}
	return &Mailer{
		from:    conf.From,
		pool:    pool,
		limiter: lim,
		send:    send,
		delay:   retryDelay,
	}, nil
}

func (m *Mailer) Send(ctx context.Context, mail *notify.Mail) error {
	if m.limiter != nil {
		key := mail.Key
		if key == "" {
			key = mail.To[0]
		}
		ok, err := m.limiter.Allow(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return code.NotifyRateLimited.WithMsgf("mail to %s rate limited", key)
		}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", mail.To...)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	bg := context.WithoutCancel(ctx)
	if err := m.pool.Submit(func() { m.deliver(bg, msg, mail) }); err != nil {
		return code.NotificationErr.WithErr(err)
	}
	return nil
}

func (m *Mailer) deliver(ctx context.Context, msg *gomail.Message, mail *notify.Mail) {
	err := m.send(msg)
	if err == nil {
		return
	}
	logger.Warnf(ctx, "send mail %q err: %v, retrying", mail.Subject, err)
	time.Sleep(m.delay)
	if err := m.send(msg); err != nil {
		logger.Errorf(ctx, "send mail %q to %v failed: %+v", mail.Subject, mail.To, err)
	}
}

// Close waits for queued mails up to timeout.
func (m *Mailer) Close(timeout time.Duration) {
	if err := m.pool.ReleaseTimeout(timeout); err != nil {
		logger.Warnf(context.Background(), "release mail pool err: %v", err)
	}
}
