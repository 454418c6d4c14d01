package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"homesafe_backend/platform/config"
)

// Client enqueues score tasks onto redis.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueScoreRecompute schedules a single-property recompute.
func (c *Client) EnqueueScoreRecompute(ctx context.Context, propertyID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewScoreRecomputeTask(ScoreRecomputePayload{PropertyID: propertyID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// EnqueueScoreSweep schedules a full recompute sweep.
func (c *Client) EnqueueScoreSweep(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, NewScoreSweepTask(), asynq.Queue(c.queue))
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
