package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faya/preorder-api/internal/domain"
)

// OrderFilter narrows an order listing. Nil fields are not filtered on.
type OrderFilter struct {
	StudentID *string
	VendorID  *string
	Status    *domain.OrderStatus
	Page
}

// OrderRepository persists orders together with their line items.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, student_id, vendor_id, status, total_amount_cents, created_at, updated_at`

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `
            INSERT INTO orders (student_id, vendor_id, status, total_amount_cents)
            VALUES ($1, $2, $3, $4)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.StudentID,
			order.VendorID,
			order.Status,
			order.TotalAmountCents,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		const insertItem = `
            INSERT INTO order_items (order_id, food_item_id, quantity, price_at_purchase_cents)
            VALUES ($1, $2, $3, $4)
            RETURNING id`
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if err := tx.QueryRow(ctx, insertItem,
				item.OrderID,
				item.FoodItemID,
				item.Quantity,
				item.PriceAtPurchaseCents,
			).Scan(&item.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	var order domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &order); err != nil {
		return nil, notFound(err)
	}
	items, err := r.itemsFor(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

// List returns one page of orders, newest first, with the total number of matches.
func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error) {
	query := `SELECT ` + orderColumns + `, COUNT(*) OVER() FROM orders`
	args := []any{}
	clauses := []string{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		clauses = append(clauses, fmt.Sprintf("vendor_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit, offset := filter.normalized()
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		result []domain.Order
		total  int
		ids    []string
	)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.StudentID,
			&order.VendorID,
			&order.Status,
			&order.TotalAmountCents,
			&order.CreatedAt,
			&order.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, total, nil
}

// UpdateStatus moves the order from one status to another. It reports ErrStaleState when
// the stored status is no longer from and ErrNotFound when the order does not exist.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	query := `
        UPDATE orders SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3
        RETURNING ` + orderColumns

	var order domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, to, id, from), &order); err != nil {
		if notFound(err) != ErrNotFound {
			return nil, fmt.Errorf("update order status: %w", err)
		}
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStaleState
	}
	items, err := r.itemsFor(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	result := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT id, order_id, food_item_id, quantity, price_at_purchase_cents
        FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.FoodItemID,
			&item.Quantity,
			&item.PriceAtPurchaseCents,
		); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	return result, rows.Err()
}

func scanOrder(row pgx.Row, order *domain.Order) error {
	return row.Scan(
		&order.ID,
		&order.StudentID,
		&order.VendorID,
		&order.Status,
		&order.TotalAmountCents,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}
