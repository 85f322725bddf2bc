package redis

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client, instrumented when app is not nil.
func NewClient(addr, password string, db int, app *newrelic.Application) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if app != nil {
		client.AddHook(&nrHook{})
	}
	return client
}

// Ping verifies connectivity.
func Ping(ctx context.Context, client redis.Cmdable) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// nrHook records every command as a datastore segment of the transaction in ctx.
type nrHook struct{}

func (h *nrHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *nrHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		defer startSegment(ctx, cmd.Name()).End()
		return next(ctx, cmd)
	}
}

func (h *nrHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		defer startSegment(ctx, "pipeline").End()
		return next(ctx, cmds)
	}
}

func startSegment(ctx context.Context, operation string) *newrelic.DatastoreSegment {
	return &newrelic.DatastoreSegment{
		StartTime:  newrelic.FromContext(ctx).StartSegmentNow(),
		Product:    newrelic.DatastoreRedis,
		Operation:  operation,
		Collection: "idempotency",
	}
}
