package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/gst-billing/internal/application/port"
	"go.uber.org/zap"
)

// txContextKey keys the open slot transaction on a context
type txContextKey struct{}

// DB wraps the billing database and implements port.TransactionManager.
// Slot reads and writes made with a context from WithTransaction all land in
// the same SQLite transaction, so an invoice write and its counter bump
// commit or vanish together.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: logger,
	}
}

// WithTransaction runs fn inside one transaction carried on the context.
// A mutation counts as persisted only once Commit has returned; any error or
// panic from fn rolls every slot back to its previous value.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested call, e.g. a reset inside a caller's transaction: join it
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Slot store calls made with txCtx go through tx
	txCtx := context.WithValue(ctx, txContextKey{}, tx)

	// A panic leaves no half-written slots behind
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, slots rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	// Commit is the durability point reported back to the caller
	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// extractTx returns the slot transaction open on ctx, if any
func extractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// getExecutor picks the open transaction, or the pool for standalone reads
// such as listing invoices for the dashboard
func (db *DB) getExecutor(ctx context.Context) executor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// executor is the part of *sql.DB and *sql.Tx the slot store needs
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var _ port.TransactionManager = (*DB)(nil)
