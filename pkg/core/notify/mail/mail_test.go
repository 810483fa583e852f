package mail

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/core/notify"
	"github.com/scienceol/labinv/pkg/core/notify/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestSendRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	m, err := newMailer(&Config{From: "lab@x.edu", Workers: 2}, nil, func(*gomail.Message) error {
		calls.Add(1)
		return errors.New("smtp down")
	})
	require.NoError(t, err)
	m.delay = time.Millisecond

	require.NoError(t, m.Send(context.Background(), &notify.Mail{
		To: []string{"a@x.edu"}, Subject: "hi", Body: "body",
	}))
	m.Close(time.Second)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSendRateLimited(t *testing.T) {
	var calls atomic.Int32
	m, err := newMailer(&Config{From: "lab@x.edu"}, limiter.NewMemory(1, time.Hour), func(*gomail.Message) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	mail := &notify.Mail{To: []string{"a@x.edu"}, Subject: "hi"}
	require.NoError(t, m.Send(context.Background(), mail))
	assert.ErrorIs(t, m.Send(context.Background(), mail), code.NotifyRateLimited)
	m.Close(time.Second)
	assert.EqualValues(t, 1, calls.Load())
}

type failingMailer struct{ calls int }

func (f *failingMailer) Send(context.Context, *notify.Mail) error {
	f.calls++
	return code.NotifySendMsgErr
}

func TestDeliverSwallowsFailure(t *testing.T) {
	f := &failingMailer{}
	notify.Deliver(context.Background(), f, &notify.Mail{To: []string{"a@x.edu"}})
	notify.Deliver(context.Background(), f, &notify.Mail{})
	notify.Deliver(context.Background(), nil, &notify.Mail{To: []string{"a@x.edu"}})
	assert.Equal(t, 1, f.calls)
}

func TestNewSMTPMailer(t *testing.T) {
	m, err := New(&Config{Host: "localhost", Port: 25, From: "lab@x.edu"}, nil)
	require.NoError(t, err)
	require.NotNil(t, m.send)
	m.Close(time.Second)
}
