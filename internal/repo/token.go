package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/enum"
)

var authTokenColumns = []string{"id", "user_id", "token_type", "token_hash", "status", "expires_at", "created_at"}

type AuthTokenStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

// Issue stores a pending token after marking the user's pending tokens of
// the same type as used, so at most one is redeemable at a time.
func (s *AuthTokenStore) Issue(ctx context.Context, t *AuthToken) error {
	_, err := exec(ctx, s.q, s.b.Update("auth_tokens").
		Set("status", int(enum.AuthTokenUsed)).
		Where(entsql.And(
			entsql.EQ("user_id", t.UserID),
			entsql.EQ("token_type", int(t.TokenType)),
			entsql.EQ("status", int(enum.AuthTokenPending)),
		)))
	if err != nil {
		return err
	}

	t.ID = NewID()
	t.Status = enum.AuthTokenPending
	t.CreatedAt = time.Now().UTC()
	_, err = exec(ctx, s.q, s.b.Insert("auth_tokens").
		Columns(authTokenColumns...).
		Values(t.ID, t.UserID, int(t.TokenType), t.TokenHash, int(t.Status), t.ExpiresAt, t.CreatedAt))
	return err
}

// FindPending returns the pending token of the given type and hash.
func (s *AuthTokenStore) FindPending(ctx context.Context, typ enum.AuthTokenType, hash string) (*AuthToken, error) {
	t := &AuthToken{}
	err := queryOne(ctx, s.q, s.b.Select(authTokenColumns...).
		From(s.b.Table("auth_tokens")).
		Where(entsql.And(
			entsql.EQ("token_type", int(typ)),
			entsql.EQ("token_hash", hash),
			entsql.EQ("status", int(enum.AuthTokenPending)),
		)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1), func(rows *entsql.Rows) error {
		return rows.Scan(&t.ID, &t.UserID, &t.TokenType, &t.TokenHash, &t.Status, &t.ExpiresAt, &t.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MarkUsed consumes a pending token. A token already used yields ErrNotFound.
func (s *AuthTokenStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Update("auth_tokens").
		Set("status", int(enum.AuthTokenUsed)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("status", int(enum.AuthTokenPending))))))
}
