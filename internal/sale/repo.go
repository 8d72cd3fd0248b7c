package sale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/retailkit/pos/internal/postgres"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB postgres.DB }

// Commit persists the order header and every line in one transaction. Any
// failure rolls the whole order back and returns the error; a partial order
// is never observable. The generated header id is assigned to o only after
// the transaction commits.
func (r *Repo) Commit(ctx context.Context, o *Order) (int64, error) {
	if len(o.Lines) == 0 {
		return 0, errors.New("empty order")
	}
	taxes, err := json.Marshal(o.Taxes)
	if err != nil {
		return 0, err
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(placed_at, operator_id, subtotal, taxes, total, paid, change)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		o.PlacedAt, o.OperatorID, o.Subtotal, taxes, o.Total, o.Paid, o.Change).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, product_id, product_name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			id, l.ProductID, l.ProductName, l.Price, l.Quantity)
		if err != nil {
			return 0, fmt.Errorf("insert line for product %d: %w", l.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	o.ID = id
	return id, nil
}

// Order loads a persisted order with its lines.
func (r *Repo) Order(ctx context.Context, id int64) (Order, error) {
	var (
		o     Order
		taxes []byte
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, placed_at, operator_id, subtotal, taxes, total, paid, change
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.PlacedAt, &o.OperatorID, &o.Subtotal, &taxes, &o.Total, &o.Paid, &o.Change)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(taxes, &o.Taxes); err != nil {
		return Order{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT product_id, product_name, price, quantity
		FROM order_lines WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Price, &l.Quantity); err != nil {
			return Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

// RecentOrders returns the latest order headers without their lines.
func (r *Repo) RecentOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, placed_at, operator_id, subtotal, taxes, total, paid, change
		FROM orders ORDER BY placed_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o     Order
			taxes []byte
		)
		if err := rows.Scan(&o.ID, &o.PlacedAt, &o.OperatorID, &o.Subtotal, &taxes, &o.Total, &o.Paid, &o.Change); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(taxes, &o.Taxes); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
