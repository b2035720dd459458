package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/store"
)

type resetTokensRepo struct {
	db dbtx
}

func (r *resetTokensRepo) CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	const q = `INSERT INTO password_reset_tokens (id, token_hash, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, q, t.ID, t.TokenHash, t.UserID, t.CreatedAt, t.ExpiresAt)
	return mapConstraint(err)
}

func (r *resetTokensRepo) GetResetTokenByHash(ctx context.Context, hash string) (domain.PasswordResetToken, error) {
	const q = `SELECT id, token_hash, user_id, created_at, expires_at, used, used_at
FROM password_reset_tokens WHERE token_hash = $1`

	var t domain.PasswordResetToken
	err := r.db.QueryRow(ctx, q, hash).Scan(&t.ID, &t.TokenHash, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.Used, &t.UsedAt)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *resetTokensRepo) InvalidateUserResetTokens(ctx context.Context, userID string, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE password_reset_tokens SET used = TRUE, used_at = $1 WHERE user_id = $2 AND used = FALSE`, at, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *resetTokensRepo) ConsumeResetToken(ctx context.Context, hash string, now time.Time) (string, error) {
	const q = `UPDATE password_reset_tokens SET used = TRUE, used_at = $1
WHERE token_hash = $2 AND used = FALSE AND expires_at > $1
RETURNING user_id`

	var userID string
	err := r.db.QueryRow(ctx, q, now, hash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrConflict
	}
	return userID, err
}

func (r *resetTokensRepo) CountLiveResetTokens(ctx context.Context, userID string, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM password_reset_tokens WHERE user_id = $1 AND used = FALSE AND expires_at > $2`,
		userID, now).Scan(&n)
	return n, err
}
