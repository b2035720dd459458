package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/internal/auth/store/drivers/sqlite/gen"
)

type resetTokensRepo struct {
	q *gen.Queries
}

func (r *resetTokensRepo) CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	err := r.q.CreateResetToken(ctx, gen.CreateResetTokenParams{
		ID:        t.ID,
		TokenHash: t.TokenHash,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt.UTC(),
		ExpiresAt: t.ExpiresAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *resetTokensRepo) GetResetTokenByHash(ctx context.Context, hash string) (domain.PasswordResetToken, error) {
	row, err := r.q.GetResetTokenByHash(ctx, hash)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return mapResetToken(row), nil
}

func (r *resetTokensRepo) InvalidateUserResetTokens(ctx context.Context, userID string, at time.Time) (int64, error) {
	return r.q.InvalidateUserResetTokens(ctx, gen.InvalidateUserResetTokensParams{
		UsedAt: mapTimeNull(at),
		UserID: userID,
	})
}

func (r *resetTokensRepo) ConsumeResetToken(ctx context.Context, hash string, now time.Time) (string, error) {
	userID, err := r.q.ConsumeResetToken(ctx, gen.ConsumeResetTokenParams{
		UsedAt:    mapTimeNull(now),
		TokenHash: hash,
		ExpiresAt: now.UTC(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrConflict
	}
	return userID, err
}

func (r *resetTokensRepo) CountLiveResetTokens(ctx context.Context, userID string, now time.Time) (int64, error) {
	return r.q.CountLiveResetTokens(ctx, gen.CountLiveResetTokensParams{
		UserID:    userID,
		ExpiresAt: now.UTC(),
	})
}
