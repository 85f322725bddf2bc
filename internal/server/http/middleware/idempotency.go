package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/schoolpay/internal/server/http/dto"
	redisstore "github.com/polkiloo/schoolpay/internal/storage/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

// IdempotencyStore keeps responses of requests carrying an idempotency key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*redisstore.CachedResponse, error)
	Save(ctx context.Context, key string, resp redisstore.CachedResponse) error
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST carrying a known
// Idempotency-Key. Concurrent requests with the same key are rejected with
// 409 while the first one is in flight. Store failures degrade to normal
// processing.
func Idempotency(store IdempotencyStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		key = c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		cached, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
			c.Next()
			return
		}
		if cached != nil {
			c.Header(replayedHeader, "true")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		reserved, err := store.Reserve(ctx, key)
		if err != nil {
			logger.Warn("idempotency reserve failed", slog.String("key", key), slog.Any("error", err))
			c.Next()
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, dto.ErrorResponse{Message: "request with this idempotency key is in progress"})
			return
		}
		defer func() {
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.Warn("idempotency release failed", slog.String("key", key), slog.Any("error", err))
			}
		}()

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices || !json.Valid(recorder.body.Bytes()) {
			return
		}
		resp := redisstore.CachedResponse{
			StatusCode:  status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        json.RawMessage(recorder.body.Bytes()),
		}
		if err := store.Save(context.WithoutCancel(ctx), key, resp); err != nil {
			logger.Warn("idempotency save failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}
