package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// latestStatusJoin attaches to every order o its authoritative status ls:
// the one created last, ties broken by id.
const latestStatusJoin = `JOIN LATERAL (
        SELECT s.id, s.order_amount, s.transaction_amount, s.status, s.payment_time, s.created_at
        FROM order_statuses s
        WHERE s.collect_id = o.id
        ORDER BY s.created_at DESC, s.id DESC
        LIMIT 1
    ) ls ON TRUE`

// transactionColumns projects the flattened transaction view.
const transactionColumns = `o.id, o.school_id, o.student_name, o.student_id, o.student_email, o.gateway_name,
        ls.order_amount, ls.transaction_amount, ls.status, o.custom_order_id, ls.payment_time`

type orderStatusRepository struct {
	storage *Storage
}

func (r *orderStatusRepository) LatestFor(ctx context.Context, collectID string) (*model.OrderStatus, error) {
	const query = `SELECT ls.id, o.id, ls.order_amount, ls.transaction_amount, ls.status, ls.payment_time, ls.created_at
                   FROM orders o ` + latestStatusJoin + `
                   WHERE o.id=$1`
	var (
		st          model.OrderStatus
		orderAmount int64
		txAmount    *int64
		status      string
	)
	err := r.storage.pool.QueryRow(ctx, query, collectID).Scan(
		&st.ID, &st.CollectID, &orderAmount, &txAmount, &status, &st.PaymentTime, &st.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	st.OrderAmount = model.FromMinorUnits(orderAmount)
	st.TransactionAmount = nullableAmount(txAmount)
	st.Status = model.PaymentStatus(status)
	return &st, nil
}

// Settle moves the latest status of the order to settlement.Status in one
// statement. A SUCCESS keeps the first payment_time. Terminal statuses are
// only rewritten to themselves, so a stale settlement reports ErrNotFound.
func (r *orderStatusRepository) Settle(ctx context.Context, settlement model.Settlement) (*model.Transaction, error) {
	const query = `UPDATE order_statuses ls SET
                       status = $2::text,
                       transaction_amount = COALESCE($3, ls.transaction_amount),
                       payment_time = CASE WHEN $2::text = 'SUCCESS' THEN COALESCE(ls.payment_time, NOW()) ELSE ls.payment_time END
                   FROM orders o
                   WHERE o.id = $1
                     AND ls.collect_id = o.id
                     AND ls.id = (
                         SELECT s.id FROM order_statuses s
                         WHERE s.collect_id = $1
                         ORDER BY s.created_at DESC, s.id DESC
                         LIMIT 1
                     )
                     AND (ls.status NOT IN ('SUCCESS', 'CANCELLED') OR ls.status = $2::text)
                   RETURNING ` + transactionColumns

	var received *int64
	if settlement.AmountReceivedMinor > 0 {
		amount := settlement.AmountReceivedMinor
		received = &amount
	}

	tx, err := scanTransaction(r.storage.pool.QueryRow(ctx, query, settlement.OrderID, string(settlement.Status), received))
	if err != nil {
		return nil, translateError(err)
	}
	return tx, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		tx          model.Transaction
		orderAmount int64
		txAmount    *int64
		status      string
		paymentTime *time.Time
	)
	err := row.Scan(
		&tx.CollectID, &tx.SchoolID, &tx.StudentName, &tx.StudentID, &tx.StudentEmail, &tx.Gateway,
		&orderAmount, &txAmount, &status, &tx.CustomOrderID, &paymentTime,
	)
	if err != nil {
		return nil, err
	}
	tx.OrderAmount = model.FromMinorUnits(orderAmount)
	tx.TransactionAmount = nullableAmount(txAmount)
	tx.Status = model.PaymentStatus(status)
	tx.PaymentTime = paymentTime
	return &tx, nil
}

func nullableAmount(minor *int64) decimal.NullDecimal {
	if minor == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(model.FromMinorUnits(*minor))
}
