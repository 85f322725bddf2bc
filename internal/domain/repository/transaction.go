package repository

import (
	"context"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// TransactionRepository reads the flattened order/status view.
type TransactionRepository interface {
	List(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, int64, error)
	Summary(ctx context.Context, filter model.TransactionFilter) (*model.TransactionSummary, error)
	Monthly(ctx context.Context, filter model.TransactionFilter) ([]model.MonthlyStat, error)
	TopSchools(ctx context.Context, filter model.TransactionFilter, limit int) ([]model.SchoolStat, error)
}
