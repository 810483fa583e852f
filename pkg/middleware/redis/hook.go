package redis

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/extra/rediscmd/v9"
	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/labinv/pkg/middleware/logger"
)

type slowLogHook struct {
	threshold time.Duration
}

func (h *slowLogHook) DialHook(next r.DialHook) r.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			logger.Errorf(ctx, "redis dial %s err: %+v", addr, err)
		}
		return conn, err
	}
}

func (h *slowLogHook) ProcessHook(next r.ProcessHook) r.ProcessHook {
	return func(ctx context.Context, cmd r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.report(ctx, start, rediscmd.CmdString(cmd), err)
		return err
	}
}

func (h *slowLogHook) ProcessPipelineHook(next r.ProcessPipelineHook) r.ProcessPipelineHook {
	return func(ctx context.Context, cmds []r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		summary, _ := rediscmd.CmdsString(cmds)
		h.report(ctx, start, "pipeline "+summary, err)
		return err
	}
}

func (h *slowLogHook) report(ctx context.Context, start time.Time, cmd string, err error) {
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, r.Nil) && !strings.Contains(cmd, "subscribe") {
		logger.Errorf(ctx, "redis cmd err: %s [%s] %+v", cmd, elapsed, err)
		return
	}
	if elapsed > h.threshold {
		logger.Warnf(ctx, "redis slow cmd: %s [%s]", cmd, elapsed)
	}
}
