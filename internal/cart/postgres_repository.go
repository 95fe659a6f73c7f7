package cart

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresRepository stores cart contents in PostgreSQL as
// {cart_id, product_id, quantity} rows.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ConnectPostgres opens a PostgreSQL connection and verifies it.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the cart_items table if it does not exist.
func (r *PostgresRepository) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cart_items (
			cart_id    TEXT    NOT NULL,
			product_id TEXT    NOT NULL,
			quantity   INTEGER NOT NULL CHECK (quantity >= 1),
			position   INTEGER NOT NULL,
			PRIMARY KEY (cart_id, product_id)
		)`)
	return err
}

// Save replaces the cart's rows with the given items in one transaction, so
// a reader never sees a partially written cart.
func (r *PostgresRepository) Save(ctx context.Context, cartID string, items []ItemRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return err
	}

	for pos, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, position)
			 VALUES ($1, $2, $3, $4)`,
			cartID, item.ProductID, item.Quantity, pos,
		)
		if err != nil {
			return fmt.Errorf("insert cart item %s: %w", item.ProductID, err)
		}
	}

	return tx.Commit()
}

// Load returns the cart's persisted items in insertion order. An unknown
// cart id yields an empty slice, not an error.
func (r *PostgresRepository) Load(ctx context.Context, cartID string) ([]ItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, quantity
		 FROM cart_items
		 WHERE cart_id = $1
		 ORDER BY position ASC`,
		cartID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var item ItemRecord
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
