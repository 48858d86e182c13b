package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/pkg/util/otp"
)

const maxCodeAttempts = 3

// Notifier hands a freshly issued one-time code to whatever delivers it.
type Notifier interface {
	TokenIssued(ctx context.Context, u *repo.User, typ enum.AuthTokenType, code string)
}

type logNotifier struct {
	withCode bool
}

// NewLogNotifier logs issued tokens. The code itself is only logged outside
// production.
func NewLogNotifier(cfg *config.Config) Notifier {
	return logNotifier{withCode: !cfg.IsProduction()}
}

func (n logNotifier) TokenIssued(ctx context.Context, u *repo.User, typ enum.AuthTokenType, code string) {
	if n.withCode {
		slog.DebugContext(ctx, "auth token issued", "user_id", u.ID, "type", typ.String(), "code", code)
		return
	}
	slog.InfoContext(ctx, "auth token issued", "user_id", u.ID, "type", typ.String())
}

// ---------------------------------------------------------------------------
// VerifyAccount
// ---------------------------------------------------------------------------

func (s *authService) VerifyAccount(ctx context.Context, token string) (*repo.User, error) {
	var u *repo.User
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		t, err := s.redeem(ctx, tx.Stores, enum.AuthTokenVerification, token)
		if err != nil {
			return err
		}
		u, err = tx.Users.Get(ctx, t.UserID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u.IsVerified {
			return ErrAlreadyVerified
		}
		if err := tx.Users.MarkVerified(ctx, u.ID); err != nil {
			return fmt.Errorf("mark verified: %w", err)
		}
		u.IsVerified = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "account verified", "user_id", u.ID)
	return u, nil
}

// ---------------------------------------------------------------------------
// ResendToken / ForgotPassword
// ---------------------------------------------------------------------------

func (s *authService) ResendToken(ctx context.Context, email string, typ enum.AuthTokenType) error {
	if typ != enum.AuthTokenVerification && typ != enum.AuthTokenReset {
		verr := &ValidationError{}
		verr.Add("action", fmt.Errorf("kindly supply an action [verification, password_reset]"))
		return verr
	}

	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if typ == enum.AuthTokenVerification && u.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := s.issueToken(ctx, s.db.Stores, u.ID, typ)
	if err != nil {
		return err
	}
	s.notifier.TokenIssued(ctx, u, typ, code)
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	return s.ResendToken(ctx, email, enum.AuthTokenReset)
}

func (s *authService) userByEmail(ctx context.Context, email string) (*repo.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		verr := &ValidationError{}
		verr.Add("email", ErrRequired)
		return nil, verr
	}
	u, err := s.db.Users.GetByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ---------------------------------------------------------------------------
// ResetPassword
// ---------------------------------------------------------------------------

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	verr := &ValidationError{}
	if strings.TrimSpace(token) == "" {
		verr.Add("token", ErrRequired)
	}
	if newPassword == "" {
		verr.Add("password", ErrRequired)
	}
	if err := verr.Err(); err != nil {
		return err
	}

	var userID uuid.UUID
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		t, err := s.redeem(ctx, tx.Stores, enum.AuthTokenReset, token)
		if err != nil {
			return err
		}
		u, err := tx.Users.Get(ctx, t.UserID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if err := s.policy.Validate(newPassword, u.Username, u.Email, u.FirstName, u.LastName); err != nil {
			verr.Joined("password", err)
			return verr
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := tx.Users.SetPassword(ctx, u.ID, hash); err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "password reset", "user_id", userID)
	return nil
}

// ---------------------------------------------------------------------------
// Token bookkeeping
// ---------------------------------------------------------------------------

// issueToken stores a new pending code for userID, retiring the user's
// earlier codes of the same type. The plaintext code is returned once and
// never stored.
func (s *authService) issueToken(ctx context.Context, stores repo.Stores, userID uuid.UUID, typ enum.AuthTokenType) (string, error) {
	for range maxCodeAttempts {
		code, err := s.otp.Generate()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		hash := otp.Hash(code)

		// Codes are looked up by digest, so two live codes of one type must
		// never share it.
		_, err = stores.AuthTokens.FindPending(ctx, typ, hash)
		if err == nil {
			continue
		}
		if !repo.IsNotFound(err) {
			return "", fmt.Errorf("check code: %w", err)
		}

		err = stores.AuthTokens.Issue(ctx, &repo.AuthToken{
			UserID:    userID,
			TokenType: typ,
			TokenHash: hash,
			ExpiresAt: s.now().Add(s.tokenTTL).UTC(),
		})
		if err != nil {
			return "", fmt.Errorf("store token: %w", err)
		}
		return code, nil
	}
	return "", errors.New("could not allocate a unique code")
}

// redeem consumes a pending code of type typ.
func (s *authService) redeem(ctx context.Context, stores repo.Stores, typ enum.AuthTokenType, code string) (*repo.AuthToken, error) {
	t, err := stores.AuthTokens.FindPending(ctx, typ, otp.Hash(code))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	if t.Expired(s.now()) {
		return nil, ErrTokenExpired
	}
	if err := stores.AuthTokens.MarkUsed(ctx, t.ID); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}
	return t, nil
}
