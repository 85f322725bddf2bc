package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/adapter/events"
	"github.com/polkiloo/schoolpay/internal/adapter/gateway"
	"github.com/polkiloo/schoolpay/internal/app"
	"github.com/polkiloo/schoolpay/internal/config"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/domain/repository"
	"github.com/polkiloo/schoolpay/internal/storage/postgres"
	"github.com/polkiloo/schoolpay/internal/test"
	"github.com/polkiloo/schoolpay/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:        ":0",
		DatabaseURI:       "postgres://stub",
		JWTSecret:         "secret",
		TokenTTL:          time.Hour,
		Currency:          "inr",
		AllowedOrigins:    []string{"http://localhost:5173"},
		IdempotencyTTL:    time.Hour,
		ReconcileInterval: time.Millisecond,
		ReconcileAfter:    time.Minute,
		ReconcileBatch:    1,
		WorkerPoolSize:    1,
		ShutdownTimeout:   time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade     *app.FeeFacade
		engine     *gin.Engine
		reconciler *worker.PaymentReconciler
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.UserRepository(test.NewUserRepositoryStub())),
			fx.Replace(repository.OrderRepository(&test.OrderRepositoryStub{})),
			fx.Replace(repository.OrderStatusRepository(&test.OrderStatusRepositoryStub{Latest: map[string]*model.OrderStatus{}})),
			fx.Replace(repository.TransactionRepository(&test.TransactionRepositoryStub{})),
			fx.Replace(repository.WebhookEventRepository(test.NewWebhookEventRepositoryStub())),
			fx.Replace(gateway.Client(&test.GatewayStub{})),
			fx.Replace(events.Publisher(&test.PublisherStub{})),
		),
		fx.Populate(&facade, &engine, &reconciler),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil || reconciler == nil {
		t.Fatal("expected facade, router and reconciler instances")
	}
}
