package db

import (
	"context"

	"gorm.io/gorm"
)

// ConnProvider hands out one pooled connection for the lifetime of fn.
// The connection goes back to the pool when fn returns, whatever it returns.
type ConnProvider interface {
	Connection(ctx context.Context, fn func(conn *gorm.DB) error) error
}

// Pool is the gorm-backed ConnProvider used in production.
type Pool struct {
	db *gorm.DB
}

// NewPool wraps an opened *gorm.DB.
func NewPool(db *gorm.DB) *Pool {
	return &Pool{db: db}
}

// Connection pins a single *sql.Conn for fn; ctx bounds both acquisition and every statement.
func (p *Pool) Connection(ctx context.Context, fn func(conn *gorm.DB) error) error {
	return p.db.WithContext(ctx).Connection(fn)
}

// DB exposes the underlying handle for callers that manage their own statements (migrations, audit).
func (p *Pool) DB() *gorm.DB {
	return p.db
}
