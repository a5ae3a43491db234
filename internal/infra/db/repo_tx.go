package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction bound to ctx when one is open, so every write
// of a multi-step operation lands in the same unit of work.
func conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

type TxManager struct {
	db *gorm.DB
}

func NewTxManager(gdb *gorm.DB) *TxManager {
	return &TxManager{db: gdb}
}

// InTx runs fn inside one database transaction. Repositories called with the
// derived context join it; an error from fn rolls everything back.
func (m *TxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.db == nil {
		return errDBUnavailable
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
