package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/domain/repository"
)

type orderRepository struct {
	storage *Storage
}

// CreatePending inserts the order with its PENDING status, asks issue for the
// intent reference and stores it. Any failure rolls the whole unit back.
func (r *orderRepository) CreatePending(ctx context.Context, order *model.Order, amount decimal.Decimal, issue repository.IntentIssuer) (*model.OrderStatus, error) {
	const insertOrder = `INSERT INTO orders (id, school_id, student_name, student_id, student_email, custom_order_id, gateway_name)
                         VALUES ($1, $2, $3, $4, $5, $6, $7)
                         RETURNING created_at, updated_at`
	const insertStatus = `INSERT INTO order_statuses (collect_id, order_amount, status)
                          VALUES ($1, $2, $3)
                          RETURNING id, created_at`
	const attachIntent = `UPDATE orders SET payment_intent_ref=$2, updated_at=NOW() WHERE id=$1`

	status := model.OrderStatus{
		CollectID:   order.ID,
		OrderAmount: amount,
		Status:      model.PaymentStatusPending,
	}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder,
			order.ID, order.SchoolID, order.Student.Name, order.Student.ID, order.Student.Email,
			order.CustomOrderID, order.GatewayName,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return translateError(err)
		}

		err = tx.QueryRow(ctx, insertStatus, order.ID, model.ToMinorUnits(amount), string(model.PaymentStatusPending)).
			Scan(&status.ID, &status.CreatedAt)
		if err != nil {
			return err
		}

		ref, err := issue(ctx, order)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, attachIntent, order.ID, ref); err != nil {
			return err
		}
		order.PaymentIntentRef = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.StatusRefs = []int64{status.ID}
	return &status, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT o.id, o.school_id, o.student_name, o.student_id, o.student_email, o.custom_order_id,
                          o.payment_intent_ref, o.gateway_name, o.created_at, o.updated_at,
                          ARRAY(SELECT s.id FROM order_statuses s WHERE s.collect_id = o.id ORDER BY s.created_at, s.id)
                   FROM orders o
                   WHERE o.id=$1 OR o.custom_order_id=$1
                   ORDER BY (o.id=$1) DESC
                   LIMIT 1`
	var o model.Order
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SchoolID, &o.Student.Name, &o.Student.ID, &o.Student.Email, &o.CustomOrderID,
		&o.PaymentIntentRef, &o.GatewayName, &o.CreatedAt, &o.UpdatedAt, &o.StatusRefs,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// ClaimPending locks due pending orders, stamps checked_at and returns them.
// Orders locked by a concurrent claimer are skipped.
func (r *orderRepository) ClaimPending(ctx context.Context, staleAfter time.Duration, limit int) ([]model.PendingPayment, error) {
	const selectQuery = `SELECT o.id, o.payment_intent_ref, o.created_at
                         FROM orders o ` + latestStatusJoin + `
                         WHERE ls.status = 'PENDING'
                           AND o.payment_intent_ref IS NOT NULL
                           AND o.created_at <= $1
                           AND (o.checked_at IS NULL OR o.checked_at <= $1)
                         ORDER BY o.created_at
                         LIMIT $2
                         FOR UPDATE OF o SKIP LOCKED`
	const stampQuery = `UPDATE orders SET checked_at=NOW() WHERE id = ANY($1)`

	cutoff := time.Now().Add(-staleAfter)

	var pending []model.PendingPayment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, cutoff, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p model.PendingPayment
			if err := rows.Scan(&p.OrderID, &p.IntentRef, &p.CreatedAt); err != nil {
				return err
			}
			pending = append(pending, p)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		ids := make([]string, 0, len(pending))
		for _, p := range pending {
			ids = append(ids, p.OrderID)
		}
		_, err = tx.Exec(ctx, stampQuery, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}
