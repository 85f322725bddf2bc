package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	testhelpers "github.com/polkiloo/schoolpay/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitForReconciled(t *testing.T, facade *testhelpers.WorkerFacadeStub, want int, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		facade.Lock()
		done := len(facade.Reconciled) >= want
		facade.Unlock()
		if done {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for %d reconciled payments", want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewPaymentReconcilerDefaults(t *testing.T) {
	rec := NewPaymentReconciler(&testhelpers.WorkerFacadeStub{}, 0, 0, 0, discardLogger())
	if rec.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", rec.batchSize)
	}
	if rec.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", rec.workers)
	}
	if rec.interval != time.Minute {
		t.Fatalf("expected interval default to 1m, got %v", rec.interval)
	}
}

func TestPaymentReconcilerProcessesBatches(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{Batches: [][]model.PendingPayment{
		{{OrderID: "a", IntentRef: "pi_a"}, {OrderID: "b", IntentRef: "pi_b"}},
		{{OrderID: "c", IntentRef: "pi_c"}},
	}}
	rec := NewPaymentReconciler(facade, 5*time.Millisecond, 2, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)
	waitForReconciled(t, facade, 3, time.Second)
	rec.Stop()

	facade.Lock()
	defer facade.Unlock()
	seen := map[string]bool{}
	for _, p := range facade.Reconciled {
		seen[p.OrderID] = true
	}
	for _, id := range []string{"a", "b", "c"} {
		if !seen[id] {
			t.Fatalf("expected order %s to be reconciled, got %+v", id, facade.Reconciled)
		}
	}
}

func TestPaymentReconcilerPassesBatchSize(t *testing.T) {
	var gotLimit int32
	facade := &testhelpers.WorkerFacadeStub{
		PendingFn: func(_ context.Context, limit int) ([]model.PendingPayment, error) {
			atomic.StoreInt32(&gotLimit, int32(limit))
			return nil, nil
		},
	}
	rec := NewPaymentReconciler(facade, 5*time.Millisecond, 7, 1, discardLogger())
	rec.Start(context.Background())

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&gotLimit) == 0 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for claim")
		case <-time.After(5 * time.Millisecond):
		}
	}
	rec.Stop()
	if got := atomic.LoadInt32(&gotLimit); got != 7 {
		t.Fatalf("expected limit 7, got %d", got)
	}
}

func TestPaymentReconcilerSurvivesErrors(t *testing.T) {
	var claims int32
	facade := &testhelpers.WorkerFacadeStub{
		PendingFn: func(context.Context, int) ([]model.PendingPayment, error) {
			switch atomic.AddInt32(&claims, 1) {
			case 1:
				return nil, errors.New("db down")
			case 2:
				return []model.PendingPayment{{OrderID: "gw"}, {OrderID: "db"}}, nil
			case 3:
				return []model.PendingPayment{{OrderID: "ok"}}, nil
			}
			return nil, nil
		},
		ReconcileFn: func(_ context.Context, p model.PendingPayment) (model.PaymentStatus, error) {
			switch p.OrderID {
			case "gw":
				return "", fmt.Errorf("%w: timeout", domainErrors.ErrGateway)
			case "db":
				return "", errors.New("settle failed")
			}
			return model.PaymentStatusCancelled, nil
		},
	}
	rec := NewPaymentReconciler(facade, 5*time.Millisecond, 2, 1, discardLogger())
	rec.Start(context.Background())
	waitForReconciled(t, facade, 3, time.Second)
	rec.Stop()
}

func TestPaymentReconcilerStopIsIdempotent(t *testing.T) {
	rec := NewPaymentReconciler(&testhelpers.WorkerFacadeStub{}, time.Hour, 1, 1, discardLogger())
	rec.Start(context.Background())

	done := make(chan struct{})
	go func() {
		rec.Stop()
		rec.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected stop to return")
	}
}
