package redis

import (
	"context"
	"fmt"
	"time"

	r "github.com/redis/go-redis/v9"
)

func initRedis(conf *Redis) (*r.Client, error) {
	client := r.NewClient(&r.Options{
		Addr:         fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	threshold := time.Duration(conf.SlowThreshold) * time.Millisecond
	if threshold <= 0 {
		threshold = 100 * time.Millisecond
	}
	client.AddHook(&slowLogHook{threshold: threshold})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
