// Package postgres stores order documents as JSONB rows.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domorder "example.com/orderdesk/internal/domain/order"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const Schema = `
CREATE TABLE IF NOT EXISTS products (
    id    TEXT PRIMARY KEY,
    name  TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS orders (
    id  TEXT PRIMARY KEY,
    doc JSONB NOT NULL
);`

const selectOrders = `
    SELECT o.id, o.doc,
           COALESCE((
               SELECT jsonb_agg(jsonb_build_object(
                          'productName', COALESCE(p.name, ''),
                          'image', COALESCE(p.image, '')) ORDER BY ci.ord)
               FROM jsonb_array_elements(COALESCE(o.doc->'cartItems', '[]'::jsonb))
                    WITH ORDINALITY AS ci(item, ord)
               LEFT JOIN products p ON p.id = ci.item->'product'->>'_ref'
           ), '[]'::jsonb) AS items
    FROM orders o`

type OrderRepository struct {
	db DB
}

var _ domorder.Repository = (*OrderRepository)(nil)

func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderDoc struct {
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	ZipCode         string  `json:"zipCode"`
	TotalPrice      float64 `json:"totalPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
	OrderDate       string  `json:"orderDate"`
	OrderStatus     string  `json:"orderStatus"`
}

type itemDoc struct {
	ProductName string `json:"productName"`
	Image       string `json:"image"`
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	return r.query(ctx, selectOrders+` ORDER BY o.doc->>'orderDate' DESC`)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	orders, err := r.query(ctx, selectOrders+` WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE orders SET doc = jsonb_set(doc, '{orderStatus}', to_jsonb($2::text))
        WHERE id = $1
    `, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domorder.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) ([]*domorder.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		var (
			id         string
			doc, items []byte
		)
		if err := rows.Scan(&id, &doc, &items); err != nil {
			return nil, err
		}
		o, err := decodeOrder(id, doc, items)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func decodeOrder(id string, rawDoc, rawItems []byte) (*domorder.Order, error) {
	var d orderDoc
	if err := json.Unmarshal(rawDoc, &d); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	var items []itemDoc
	if len(rawItems) > 0 {
		if err := json.Unmarshal(rawItems, &items); err != nil {
			return nil, fmt.Errorf("decode cart items of %s: %w", id, err)
		}
	}

	cart := make([]domorder.CartItem, 0, len(items))
	for _, it := range items {
		cart = append(cart, domorder.CartItem{ProductName: it.ProductName, Image: it.Image})
	}
	return &domorder.Order{
		ID:              id,
		FullName:        d.FullName,
		Email:           d.Email,
		Phone:           d.Phone,
		Address:         d.Address,
		City:            d.City,
		ZipCode:         d.ZipCode,
		TotalPrice:      decimal.NewFromFloat(d.TotalPrice),
		DiscountedPrice: decimal.NewFromFloat(d.DiscountedPrice),
		OrderDate:       d.OrderDate,
		Status:          domorder.Status(d.OrderStatus),
		CartItems:       cart,
	}, nil
}
