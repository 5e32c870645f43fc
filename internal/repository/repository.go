package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrStaleState is returned when a conditional update lost a race with another writer.
var ErrStaleState = errors.New("record changed concurrently")

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
