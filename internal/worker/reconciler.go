package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// ReconcileFacade exposes the subset of application functionality required by the reconciler.
type ReconcileFacade interface {
	PendingPayments(ctx context.Context, limit int) ([]model.PendingPayment, error)
	ReconcilePayment(ctx context.Context, payment model.PendingPayment) (model.PaymentStatus, error)
}

// PaymentReconciler periodically checks pending payments against the gateway
// and settles those the webhook never confirmed.
type PaymentReconciler struct {
	facade    ReconcileFacade
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	jobs   chan model.PendingPayment
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentReconciler constructs the reconciler worker pool.
func NewPaymentReconciler(facade ReconcileFacade, interval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &PaymentReconciler{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		jobs:      make(chan model.PendingPayment, batchSize),
	}
}

// Start launches background reconciliation.
func (r *PaymentReconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop cancels pending work and waits for all workers to finish.
func (r *PaymentReconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *PaymentReconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.claimAndDispatch(ctx)
		}
	}
}

func (r *PaymentReconciler) claimAndDispatch(ctx context.Context) {
	payments, err := r.facade.PendingPayments(ctx, r.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("claim pending payments failed", slog.String("error", err.Error()))
		}
		return
	}
	if len(payments) > 0 {
		r.logger.Debug("reconciling pending payments", slog.Int("count", len(payments)))
	}
	for _, payment := range payments {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- payment:
		}
	}
}

func (r *PaymentReconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case payment, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handlePayment(ctx, payment)
		}
	}
}

func (r *PaymentReconciler) handlePayment(ctx context.Context, payment model.PendingPayment) {
	status, err := r.facade.ReconcilePayment(ctx, payment)
	if err != nil {
		if errors.Is(err, domainErrors.ErrGateway) {
			r.logger.Warn("gateway lookup failed, retrying next pass",
				slog.String("order_id", payment.OrderID),
				slog.String("error", err.Error()),
			)
			return
		}
		r.logger.Error("reconcile payment failed",
			slog.String("order_id", payment.OrderID),
			slog.String("error", err.Error()),
		)
		return
	}

	switch status {
	case model.PaymentStatusSuccess, model.PaymentStatusCancelled:
		r.logger.Info("payment reconciled",
			slog.String("order_id", payment.OrderID),
			slog.String("status", string(status)),
		)
	}
}
