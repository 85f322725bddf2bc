package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

var sortColumns = map[model.SortField]string{
	model.SortByPaymentTime:       "ls.payment_time",
	model.SortByOrderAmount:       "ls.order_amount",
	model.SortByTransactionAmount: "ls.transaction_amount",
	model.SortByStatus:            "ls.status",
	model.SortBySchoolID:          "o.school_id",
	model.SortByStudentName:       "o.student_name",
	model.SortByCustomOrderID:     "o.custom_order_id",
	model.SortByCreatedAt:         "o.created_at",
}

type transactionRepository struct {
	storage *Storage
}

type whereClause struct {
	conds []string
	args  []any
}

// add appends a condition; format receives the placeholder number of arg.
func (w *whereClause) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an extra argument appended after the filter.
func (w *whereClause) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func buildWhere(f model.TransactionFilter) *whereClause {
	w := &whereClause{}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		w.add("ls.status = ANY($%d)", statuses)
	}
	if f.SchoolID != "" {
		w.add("o.school_id = $%d", f.SchoolID)
	}
	if f.From != nil {
		w.add("ls.payment_time >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("ls.payment_time <= $%d", *f.To)
	}
	return w
}

// orderBy renders a whitelisted ORDER BY. NULLs rank as the smallest value and
// the order id keeps pagination stable.
func orderBy(sort model.TransactionSort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[model.DefaultSortField]
	}
	if sort.Order == model.SortAsc {
		return fmt.Sprintf(" ORDER BY %s ASC NULLS FIRST, o.id ASC", column)
	}
	return fmt.Sprintf(" ORDER BY %s DESC NULLS LAST, o.id ASC", column)
}

const transactionSource = ` FROM orders o ` + latestStatusJoin

// List counts every match and returns the requested page of it.
func (r *transactionRepository) List(ctx context.Context, q model.TransactionQuery) ([]model.Transaction, int64, error) {
	where := buildWhere(q.Filter)

	var total int64
	countQuery := `SELECT COUNT(*)` + transactionSource + where.String()
	if err := r.storage.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	result := []model.Transaction{}
	if total == 0 {
		return result, 0, nil
	}

	filter := where.String()
	limit := where.next(q.Page.Limit)
	offset := where.next(q.Page.Offset())
	listQuery := `SELECT ` + transactionColumns + transactionSource + filter + orderBy(q.Sort) +
		` LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.storage.pool.Query(ctx, listQuery, where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return result, total, nil
}

func (r *transactionRepository) Summary(ctx context.Context, f model.TransactionFilter) (*model.TransactionSummary, error) {
	where := buildWhere(f)
	query := `SELECT COUNT(*),
                     COALESCE(SUM(ls.order_amount), 0)::BIGINT,
                     COUNT(*) FILTER (WHERE ls.status = 'SUCCESS'),
                     COALESCE(MIN(ls.order_amount), 0)::BIGINT,
                     COALESCE(MAX(ls.order_amount), 0)::BIGINT,
                     COUNT(DISTINCT o.school_id)` + transactionSource + where.String()

	var (
		summary            model.TransactionSummary
		total, minA, maxA int64
	)
	err := r.storage.pool.QueryRow(ctx, query, where.args...).Scan(
		&summary.Transactions, &total, &summary.SuccessCount, &minA, &maxA, &summary.Schools,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize transactions: %w", err)
	}
	summary.TotalAmount = model.FromMinorUnits(total)
	summary.MinAmount = model.FromMinorUnits(minA)
	summary.MaxAmount = model.FromMinorUnits(maxA)
	return &summary, nil
}

func (r *transactionRepository) Monthly(ctx context.Context, f model.TransactionFilter) ([]model.MonthlyStat, error) {
	where := buildWhere(f)
	query := `SELECT date_trunc('month', o.created_at) AS month,
                     COUNT(*),
                     COALESCE(SUM(ls.order_amount), 0)::BIGINT,
                     COUNT(*) FILTER (WHERE ls.status = 'SUCCESS'),
                     COUNT(*) FILTER (WHERE ls.status = 'PENDING'),
                     COUNT(*) FILTER (WHERE ls.status = 'FAILED')` + transactionSource + where.String() +
		` GROUP BY month ORDER BY month`

	rows, err := r.storage.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("monthly transactions: %w", err)
	}
	defer rows.Close()

	result := []model.MonthlyStat{}
	for rows.Next() {
		var (
			stat   model.MonthlyStat
			amount int64
		)
		if err := rows.Scan(&stat.Month, &stat.Transactions, &amount, &stat.Success, &stat.Pending, &stat.Failed); err != nil {
			return nil, fmt.Errorf("scan monthly stat: %w", err)
		}
		stat.Amount = model.FromMinorUnits(amount)
		result = append(result, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monthly transactions: %w", err)
	}
	return result, nil
}

func (r *transactionRepository) TopSchools(ctx context.Context, f model.TransactionFilter, limit int) ([]model.SchoolStat, error) {
	where := buildWhere(f)
	query := `SELECT o.school_id, COUNT(*), COALESCE(SUM(ls.order_amount), 0)::BIGINT AS amount` +
		transactionSource + where.String() +
		` GROUP BY o.school_id ORDER BY amount DESC, o.school_id LIMIT ` + where.next(limit)

	rows, err := r.storage.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("top schools: %w", err)
	}
	defer rows.Close()

	result := []model.SchoolStat{}
	for rows.Next() {
		var (
			stat   model.SchoolStat
			amount int64
		)
		if err := rows.Scan(&stat.SchoolID, &stat.Transactions, &amount); err != nil {
			return nil, fmt.Errorf("scan school stat: %w", err)
		}
		stat.Amount = model.FromMinorUnits(amount)
		result = append(result, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top schools: %w", err)
	}
	return result, nil
}
