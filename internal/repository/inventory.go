// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"discord-companion-bot/internal/model"
)

// InventoryRepository handles per-user item stacks.
// Quantity reaching zero removes the row.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository instance.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// AddItem adds quantity to a user's item stack, creating it if absent.
func (r *InventoryRepository) AddItem(ctx context.Context, userID, itemID string, quantity int) error {
	const query = `
		INSERT INTO user_inventory (user_id, item_id, quantity, acquired_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = user_inventory.quantity + $3
	`
	_, err := r.pool.Exec(ctx, query, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

// GetQuantity returns the held quantity of an item, zero if none.
func (r *InventoryRepository) GetQuantity(ctx context.Context, userID, itemID string) (int, error) {
	var quantity int
	err := r.pool.QueryRow(ctx, `
		SELECT quantity FROM user_inventory WHERE user_id = $1 AND item_id = $2
	`, userID, itemID).Scan(&quantity)
	if err != nil {
		// No row means the user holds none.
		return 0, nil
	}
	return quantity, nil
}

// ConsumeItem decrements an item stack by one, deleting the row when it
// reaches zero. Returns false when the user holds none.
func (r *InventoryRepository) ConsumeItem(ctx context.Context, userID, itemID string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE user_inventory
		SET quantity = quantity - 1
		WHERE user_id = $1 AND item_id = $2 AND quantity > 0
	`, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to consume item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx, `
		DELETE FROM user_inventory WHERE user_id = $1 AND item_id = $2 AND quantity <= 0
	`, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to prune empty stack: %w", err)
	}
	return true, nil
}

// GetAll returns every item stack a user holds.
func (r *InventoryRepository) GetAll(ctx context.Context, userID string) ([]model.InventoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, item_id, quantity, acquired_at
		FROM user_inventory
		WHERE user_id = $1 AND quantity > 0
		ORDER BY item_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	defer rows.Close()

	var entries []model.InventoryEntry
	for rows.Next() {
		var e model.InventoryEntry
		if err := rows.Scan(&e.UserID, &e.ItemID, &e.Quantity, &e.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
