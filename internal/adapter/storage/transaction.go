package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/the-inv-riya/pixify/internal/core/billing"
	"github.com/the-inv-riya/pixify/internal/core/domain"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateTransaction persists a pending purchase record.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, plan, credits, amount, payment)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, t.ID, t.UserID, t.Plan, t.Credits, t.Amount).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, user_id, plan, credits, amount, payment, created_at FROM transactions WHERE id = $1`
	var t domain.Transaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Plan, &t.Credits, &t.Amount, &t.Payment, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &t, nil
}

// Settle flips the payment flag and credits the user inside a single
// database transaction. The flag flip is conditional on its pre-image,
// so two concurrent verification calls for the same session cannot both
// credit: the second sees zero affected rows and gets ErrAlreadySettled.
func (r *TransactionRepository) Settle(ctx context.Context, txID, userID uuid.UUID, credits int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin settle: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE transactions SET payment = TRUE WHERE id = $1 AND payment = FALSE`, txID)
	if err != nil {
		return fmt.Errorf("mark transaction settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrAlreadySettled
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET credit_balance = credit_balance + $1 WHERE id = $2`, credits, userID); err != nil {
		return fmt.Errorf("credit user balance: %w", err)
	}

	return tx.Commit(ctx)
}
