package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faya/preorder-api/internal/domain"
)

// MenuFilter narrows a menu listing.
type MenuFilter struct {
	VendorID      *string
	AvailableOnly bool
	Page
}

// FoodItemRepository reads the menu catalogue.
type FoodItemRepository interface {
	List(ctx context.Context, filter MenuFilter) ([]domain.FoodItem, error)
	GetByID(ctx context.Context, id string) (*domain.FoodItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.FoodItem, error)
}

type foodItemRepository struct {
	pool *pgxpool.Pool
}

// NewFoodItemRepository instantiates repository.
func NewFoodItemRepository(pool *pgxpool.Pool) FoodItemRepository {
	return &foodItemRepository{pool: pool}
}

const foodItemColumns = `id, vendor_id, name, description, price_cents, available, created_at, updated_at`

func (r *foodItemRepository) List(ctx context.Context, filter MenuFilter) ([]domain.FoodItem, error) {
	query := `SELECT ` + foodItemColumns + ` FROM food_items`
	args := []any{}
	clauses := []string{}

	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		clauses = append(clauses, fmt.Sprintf("vendor_id=$%d", len(args)))
	}
	if filter.AvailableOnly {
		clauses = append(clauses, "available")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit, offset := filter.normalized()
	query += fmt.Sprintf(" ORDER BY name ASC, id ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()
	return scanFoodItems(rows)
}

func (r *foodItemRepository) GetByID(ctx context.Context, id string) (*domain.FoodItem, error) {
	query := `SELECT ` + foodItemColumns + ` FROM food_items WHERE id=$1`
	var item domain.FoodItem
	if err := scanFoodItem(r.pool.QueryRow(ctx, query, id), &item); err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// GetByIDs returns the items that exist among ids, in no particular order.
func (r *foodItemRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.FoodItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + foodItemColumns + ` FROM food_items WHERE id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("load food items: %w", err)
	}
	defer rows.Close()
	return scanFoodItems(rows)
}

func scanFoodItems(rows pgx.Rows) ([]domain.FoodItem, error) {
	var result []domain.FoodItem
	for rows.Next() {
		var item domain.FoodItem
		if err := scanFoodItem(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanFoodItem(row pgx.Row, item *domain.FoodItem) error {
	return row.Scan(
		&item.ID,
		&item.VendorID,
		&item.Name,
		&item.Description,
		&item.PriceCents,
		&item.Available,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}
