package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domorder "example.com/orderdesk/internal/domain/order"
)

type OrderRepository struct {
	db *sql.DB
}

var _ domorder.Repository = (*OrderRepository)(nil)

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
    id, full_name, email, phone, address, city, zip_code,
    total_price, discounted_price, order_date, order_status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*domorder.Order, error) {
	var o domorder.Order
	err := s.Scan(&o.ID, &o.FullName, &o.Email, &o.Phone, &o.Address, &o.City, &o.ZipCode,
		&o.TotalPrice, &o.DiscountedPrice, &o.OrderDate, &o.Status)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        ORDER BY order_date DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		items, err := r.listCartItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.CartItems = items
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+orderColumns+`
        FROM orders WHERE id = ?
    `, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	items, err := r.listCartItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.CartItems = items
	return o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	// Affected rows is 0 when the status is unchanged, so existence comes
	// from the re-read instead.
	if _, err := r.db.ExecContext(ctx, `
        UPDATE orders SET order_status = ? WHERE id = ?
    `, status, id); err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) (retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("delete items of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domorder.ErrOrderNotFound
	}
	return tx.Commit()
}

func (r *OrderRepository) listCartItems(ctx context.Context, orderID string) ([]domorder.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT COALESCE(p.name, ''), COALESCE(p.image, '')
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = ?
        ORDER BY oi.position
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domorder.CartItem{}
	for rows.Next() {
		var item domorder.CartItem
		if err := rows.Scan(&item.ProductName, &item.Image); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
