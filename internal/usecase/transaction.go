package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/domain/repository"
)

// TransactionUseCase serves the reporting views over orders and their latest status.
type TransactionUseCase struct {
	transactions repository.TransactionRepository
	orders       repository.OrderRepository
	statuses     repository.OrderStatusRepository
}

// NewTransactionUseCase constructs TransactionUseCase.
func NewTransactionUseCase(transactions repository.TransactionRepository, orders repository.OrderRepository, statuses repository.OrderStatusRepository) *TransactionUseCase {
	return &TransactionUseCase{transactions: transactions, orders: orders, statuses: statuses}
}

// List returns one page of the filtered and sorted transaction view.
func (u *TransactionUseCase) List(ctx context.Context, query model.TransactionQuery) (*model.TransactionPage, error) {
	items, total, err := u.transactions.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if items == nil {
		items = []model.Transaction{}
	}
	return &model.TransactionPage{
		Transactions: items,
		Page:         query.Page.Page,
		Pages:        model.PageCount(total, query.Page.Limit),
		Total:        total,
	}, nil
}

// BySchool lists the transactions of one school, most recent payments first.
func (u *TransactionUseCase) BySchool(ctx context.Context, schoolID string, page model.Pagination) (*model.TransactionPage, error) {
	schoolID = strings.TrimSpace(schoolID)
	if schoolID == "" {
		return nil, fmt.Errorf("%w: school id is required", domainErrors.ErrValidation)
	}
	return u.List(ctx, model.TransactionQuery{
		Filter: model.TransactionFilter{SchoolID: schoolID},
		Sort:   model.TransactionSort{Field: model.SortByPaymentTime, Order: model.SortDesc},
		Page:   page,
	})
}

// Status resolves an order by internal or custom id and flattens it with its latest status.
func (u *TransactionUseCase) Status(ctx context.Context, orderID string) (*model.Transaction, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domainErrors.ErrNotFound
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status, err := u.statuses.LatestFor(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	tx := model.FlattenTransaction(*order, *status)
	return &tx, nil
}

// Stats aggregates the filtered view. The summary, monthly and per-school
// queries run concurrently.
func (u *TransactionUseCase) Stats(ctx context.Context, filter model.TransactionFilter) (*model.TransactionStats, error) {
	var (
		stats   model.TransactionStats
		summary *model.TransactionSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = u.transactions.Summary(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Monthly, err = u.transactions.Monthly(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TopSchools, err = u.transactions.TopSchools(gctx, filter, model.TopSchoolsInStats)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}

	if summary != nil {
		stats.Summary = *summary
	}
	if stats.Monthly == nil {
		stats.Monthly = []model.MonthlyStat{}
	}
	if stats.TopSchools == nil {
		stats.TopSchools = []model.SchoolStat{}
	}
	return &stats, nil
}

// Export returns the filtered and sorted view in a single capped batch.
func (u *TransactionUseCase) Export(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error) {
	query.Page = model.Pagination{Page: 1, Limit: model.MaxExportRows}
	items, _, err := u.transactions.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	return items, nil
}
