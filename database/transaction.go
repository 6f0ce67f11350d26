package database

import (
	"context"

	"gorm.io/gorm"
)

// WithinTx runs fn inside a transaction bound to ctx. The transaction is
// rolled back when fn returns an error or ctx expires.
func WithinTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
