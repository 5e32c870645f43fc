// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/repository"
)

// Store holds users, food items and orders behind a single lock. Writes mimic the
// database: generated ids and timestamps, and a unique violation on duplicate emails.
type Store struct {
	mu     sync.Mutex
	users  map[string]domain.User
	items  map[string]domain.FoodItem
	orders map[string]domain.Order
	now    func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:  map[string]domain.User{},
		items:  map[string]domain.FoodItem{},
		orders: map[string]domain.Order{},
		now:    time.Now,
	}
}

// Users returns the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// FoodItems returns the store as a FoodItemRepository.
func (s *Store) FoodItems() repository.FoodItemRepository { return foodRepo{s} }

// Orders returns the store as an OrderRepository.
func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }

// AddUser inserts u directly, filling the id when empty.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	u.CreatedAt, u.UpdatedAt = s.now(), s.now()
	s.users[u.ID] = u
	return u
}

// AddFoodItem inserts item directly, filling the id when empty.
func (s *Store) AddFoodItem(item domain.FoodItem) domain.FoodItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt, item.UpdatedAt = s.now(), s.now()
	s.items[item.ID] = item
	return item
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return &pgconn.PgError{
				Severity:       "ERROR",
				Code:           "23505",
				Message:        `duplicate key value violates unique constraint "users_email_key"`,
				Detail:         "Key (email)=(" + user.Email + ") already exists.",
				TableName:      "users",
				ColumnName:     "email",
				ConstraintName: "users_email_key",
			}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = r.s.now(), r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type foodRepo struct{ s *Store }

func (r foodRepo) List(_ context.Context, filter repository.MenuFilter) ([]domain.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []domain.FoodItem
	for _, item := range r.s.items {
		if filter.VendorID != nil && item.VendorID != *filter.VendorID {
			continue
		}
		if filter.AvailableOnly && !item.Available {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return window(out, filter.Page), nil
}

func (r foodRepo) GetByID(_ context.Context, id string) (*domain.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	item, ok := r.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r foodRepo) GetByIDs(_ context.Context, ids []string) ([]domain.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []domain.FoodItem
	for _, id := range ids {
		if item, ok := r.s.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	order.ID = uuid.NewString()
	order.CreatedAt, order.UpdatedAt = r.s.now(), r.s.now()
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	r.s.orders[order.ID] = stored
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &order, nil
}

func (r orderRepo) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []domain.Order
	for _, order := range r.s.orders {
		if filter.StudentID != nil && order.StudentID != *filter.StudentID {
			continue
		}
		if filter.VendorID != nil && order.VendorID != *filter.VendorID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, filter.Page), len(out), nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if order.Status != from {
		return nil, repository.ErrStaleState
	}
	order.Status = to
	order.UpdatedAt = r.s.now()
	r.s.orders[id] = order
	return &order, nil
}

func window[T any](items []T, page repository.Page) []T {
	limit, offset := page.Limit, page.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
