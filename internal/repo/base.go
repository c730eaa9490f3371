package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base gives console repositories a context-bound GORM handle.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A non-nil tx wins so callers can
// run repository methods inside WithTx.
func (b Base) DB(ctx context.Context, tx ...*gorm.DB) *gorm.DB {
	conn := b.db
	if len(tx) > 0 && tx[0] != nil {
		conn = tx[0]
	}
	if ctx == nil {
		return conn
	}
	return conn.WithContext(ctx)
}
