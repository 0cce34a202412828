// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"discord-companion-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

const userColumns = "user_id, username, balance, total_earned, daily_last_claimed, work_last_used, created_at"

// UserRepository handles user account persistence, including the
// atomic balance-plus-transaction ledger writes.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Balance,
		&user.TotalEarned,
		&user.DailyLastClaimed,
		&user.WorkLastUsed,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user with a zero balance.
func (r *UserRepository) Create(ctx context.Context, userID, username string) (*model.User, error) {
	const query = `
		INSERT INTO users (user_id, username, balance, total_earned, created_at)
		VALUES ($1, $2, 0, 0, NOW())
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, username))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by their Discord ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetOrCreate retrieves a user by ID, creating one if it doesn't exist.
// Accounts are created lazily on first observed activity.
func (r *UserRepository) GetOrCreate(ctx context.Context, userID, username string) (*model.User, bool, error) {
	user, err := r.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user, err = r.Create(ctx, userID, username)
	if err != nil {
		// Handle race: another event may have created the user.
		user, err = r.GetByID(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	return user, true, nil
}

// ApplyDelta atomically applies a balance change and appends the
// matching transaction record. A negative amount that would take the
// balance below zero fails with ErrInsufficientFunds and leaves the
// account untouched. Positive amounts bump total_earned.
func (r *UserRepository) ApplyDelta(ctx context.Context, userID string, amount int64, kind, description string) (*model.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM users WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	if balance+amount < 0 {
		return nil, ErrInsufficientFunds
	}

	earned := int64(0)
	if amount > 0 {
		earned = amount
	}

	const update = `
		UPDATE users
		SET balance = balance + $2, total_earned = total_earned + $3
		WHERE user_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(tx.QueryRow(ctx, update, userID, amount, earned))
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, userID, kind, amount, description)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ledger tx: %w", err)
	}

	return user, nil
}

// SetBalance sets a user's balance to an exact value, recording the
// delta as an admin transaction. Used only by administrative commands.
func (r *UserRepository) SetBalance(ctx context.Context, userID string, balance int64, description string) (*model.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int64
	err = tx.QueryRow(ctx, `SELECT balance FROM users WHERE user_id = $1 FOR UPDATE`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	delta := balance - current
	earned := int64(0)
	if delta > 0 {
		earned = delta
	}

	const update = `
		UPDATE users
		SET balance = $2, total_earned = total_earned + $3
		WHERE user_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(tx.QueryRow(ctx, update, userID, balance, earned))
	if err != nil {
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, userID, model.TxKindAdmin, delta, description)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ledger tx: %w", err)
	}

	return user, nil
}

// UpdateDailyClaimed records the time of the latest daily claim.
func (r *UserRepository) UpdateDailyClaimed(ctx context.Context, userID string, claimedAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET daily_last_claimed = $2 WHERE user_id = $1
	`, userID, claimedAt)
	if err != nil {
		return fmt.Errorf("failed to update daily claim: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateWorkUsed records the time of the latest work claim.
func (r *UserRepository) UpdateWorkUsed(ctx context.Context, userID string, usedAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET work_last_used = $2 WHERE user_id = $1
	`, userID, usedAt)
	if err != nil {
		return fmt.Errorf("failed to update work use: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetTopUsers retrieves the top N users by balance.
func (r *UserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY balance DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUsername updates a user's display name.
func (r *UserRepository) UpdateUsername(ctx context.Context, userID, username string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET username = $2 WHERE user_id = $1
	`, userID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Exists checks if a user with the given ID exists.
func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
