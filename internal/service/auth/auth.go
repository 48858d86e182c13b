// Package auth registers accounts, signs users in and manages their sessions
// and one-time tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/pkg/authcode"
	pasetotoken "github.com/Alijeyrad/pms_backend/pkg/paseto"
	"github.com/Alijeyrad/pms_backend/pkg/util/otp"
	"github.com/Alijeyrad/pms_backend/pkg/util/password"
	"github.com/Alijeyrad/pms_backend/pkg/util/phone"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockout          = 15 * time.Minute
	defaultTokenTTL         = 72 * time.Hour
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Username      string // optional; generated when empty
	Email         string
	PhoneNumber   string
	Password      string
	FirstName     string
	LastName      string
	AcceptedTerms bool
}

// LoginRequest identifies the user by username, email or phone number.
type LoginRequest struct {
	Identifier string
	Password   string
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until access token expires
}

type LoginResult struct {
	User     *repo.User
	Tokens   AuthTokens
	AuthCode string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, accountType enum.AccountType, req RegisterRequest) (*repo.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ExchangeCode(ctx context.Context, code string) (*AuthTokens, error)
	VerifyAccount(ctx context.Context, token string) (*repo.User, error)
	ResendToken(ctx context.Context, email string, typ enum.AuthTokenType) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	db       *repo.Client
	sessions SessionStore
	paseto   *pasetotoken.Manager
	codes    *authcode.Signer
	notifier Notifier
	hasher   *password.Hasher
	policy   password.Policy
	otp      otp.Generator

	region      string
	maxAttempts int
	lockout     time.Duration
	tokenTTL    time.Duration
	now         func() time.Time
}

func New(
	db *repo.Client,
	sessions SessionStore,
	paseto *pasetotoken.Manager,
	codes *authcode.Signer,
	notifier Notifier,
	cfg *config.Config,
) (Service, error) {
	gen, err := otp.NewGenerator(cfg.OTP)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	if notifier == nil {
		notifier = NewLogNotifier(cfg)
	}

	a := cfg.Authentication
	s := &authService{
		db:          db,
		sessions:    sessions,
		paseto:      paseto,
		codes:       codes,
		notifier:    notifier,
		hasher:      password.NewHasher(password.ParamsFromConfig(cfg.Password)),
		policy:      password.Policy{MinLength: a.MinPasswordLength},
		otp:         gen,
		region:      a.DefaultRegion,
		maxAttempts: a.MaxLoginAttempts,
		lockout:     time.Duration(a.LockoutMinutes) * time.Minute,
		tokenTTL:    time.Duration(a.TokenTTLHours) * time.Hour,
		now:         time.Now,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxLoginAttempts
	}
	if s.lockout <= 0 {
		s.lockout = defaultLockout
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = defaultTokenTTL
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func (s *authService) Register(ctx context.Context, accountType enum.AccountType, req RegisterRequest) (*repo.User, error) {
	verr := &ValidationError{}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.FirstName == "" {
		verr.Add("first_name", ErrRequired)
	}
	if req.LastName == "" {
		verr.Add("last_name", ErrRequired)
	}
	if !req.AcceptedTerms {
		verr.Add("is_accept_terms_and_condition", ErrTermsNotAccepted)
	}

	if err := s.checkEmail(ctx, req.Email, verr); err != nil {
		return nil, err
	}

	if req.Username == "" {
		req.Username = "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	} else if taken, err := s.db.Users.UsernameExists(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		verr.Add("username", ErrUsernameExists)
	}

	phoneE164, err := s.checkPhone(ctx, req.PhoneNumber, verr)
	if err != nil {
		return nil, err
	}

	if req.Password == "" {
		verr.Add("password", ErrRequired)
	} else if err := s.policy.Validate(req.Password, req.Username, req.Email, req.FirstName, req.LastName); err != nil {
		verr.Joined("password", err)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	passHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &repo.User{
		Username:      req.Username,
		Email:         req.Email,
		PhoneNumber:   &phoneE164,
		PasswordHash:  passHash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		UserRole:      accountType.UserType(),
		IsActive:      true,
		AcceptedTerms: req.AcceptedTerms,
		FirstLogin:    true,
	}

	var code string
	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Users.Create(ctx, u); err != nil {
			if repo.IsUnique(err) {
				return ErrEmailExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		switch accountType {
		case enum.AccountTypePractitioner:
			if _, err := tx.Practitioners.Create(ctx, u.ID); err != nil {
				return fmt.Errorf("create practitioner profile: %w", err)
			}
		default:
			if _, err := tx.Patients.Create(ctx, u.ID); err != nil {
				return fmt.Errorf("create patient profile: %w", err)
			}
		}
		var err error
		code, err = s.issueToken(ctx, tx.Stores, u.ID, enum.AuthTokenVerification)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.TokenIssued(ctx, u, enum.AuthTokenVerification, code)
	slog.InfoContext(ctx, "account registered", "user_id", u.ID, "role", u.UserRole.String())
	return u, nil
}

func (s *authService) checkEmail(ctx context.Context, email string, verr *ValidationError) error {
	if email == "" {
		verr.Add("email", ErrRequired)
		return nil
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.Add("email", ErrInvalidEmail)
		return nil
	}
	taken, err := s.db.Users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		verr.Add("email", ErrEmailExists)
	}
	return nil
}

func (s *authService) checkPhone(ctx context.Context, raw string, verr *ValidationError) (string, error) {
	if strings.TrimSpace(raw) == "" {
		verr.Add("phone_number", ErrRequired)
		return "", nil
	}
	e164, err := phone.Normalize(raw, s.region)
	if err != nil {
		verr.Add("phone_number", err)
		return "", nil
	}
	taken, err := s.db.Users.PhoneTaken(ctx, e164, uuid.Nil)
	if err != nil {
		return "", fmt.Errorf("check phone: %w", err)
	}
	if taken {
		verr.Add("phone_number", ErrPhoneAlreadyExists)
	}
	return e164, nil
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Identifier = strings.TrimSpace(req.Identifier)

	verr := &ValidationError{}
	if req.Identifier == "" {
		verr.Add("username", ErrRequired)
	}
	if req.Password == "" {
		verr.Add("password", ErrRequired)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	u, err := s.findByIdentifier(ctx, req.Identifier)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := s.hasher.Verify(u.PasswordHash, req.Password); err != nil {
		s.recordFailedLogin(ctx, u)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	if err := s.db.Users.RecordLogin(ctx, u.ID, now.UTC()); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	u.LastLogin = &now
	u.FirstLogin = false
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil

	if s.hasher.NeedsRehash(u.PasswordHash) {
		if h, err := s.hasher.Hash(req.Password); err == nil {
			if err := s.db.Users.SetPassword(ctx, u.ID, h); err != nil {
				slog.WarnContext(ctx, "rehash password failed", "user_id", u.ID, "error", err)
			}
		}
	}

	sessionID, tokens, err := s.createSession(ctx, u)
	if err != nil {
		return nil, err
	}
	code, _, err := s.codes.Issue(u.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue auth code: %w", err)
	}

	slog.InfoContext(ctx, "user signed in", "user_id", u.ID, "session_id", sessionID)
	return &LoginResult{User: u, Tokens: *tokens, AuthCode: code}, nil
}

// findByIdentifier resolves an email, a username or a phone number.
func (s *authService) findByIdentifier(ctx context.Context, id string) (*repo.User, error) {
	if strings.Contains(id, "@") {
		return s.db.Users.GetByEmail(ctx, id)
	}
	u, err := s.db.Users.GetByUsername(ctx, id)
	if err == nil || !repo.IsNotFound(err) || !phone.Looks(id) {
		return u, err
	}
	e164, perr := phone.Normalize(id, s.region)
	if perr != nil {
		return nil, repo.ErrNotFound
	}
	return s.db.Users.GetByPhone(ctx, e164)
}

func (s *authService) recordFailedLogin(ctx context.Context, u *repo.User) {
	attempts := u.FailedLoginAttempts + 1
	var lockUntil *time.Time
	if attempts >= s.maxAttempts {
		t := s.now().Add(s.lockout).UTC()
		lockUntil = &t
		attempts = 0
	}
	if err := s.db.Users.RecordFailedLogin(ctx, u.ID, attempts, lockUntil); err != nil {
		slog.WarnContext(ctx, "record failed login", "user_id", u.ID, "error", err)
		return
	}
	if lockUntil != nil {
		slog.WarnContext(ctx, "account locked", "user_id", u.ID, "until", *lockUntil)
	}
}

// ---------------------------------------------------------------------------
// ExchangeCode
// ---------------------------------------------------------------------------

func (s *authService) ExchangeCode(ctx context.Context, code string) (*AuthTokens, error) {
	claims, err := s.codes.Parse(strings.TrimSpace(code))
	if errors.Is(err, authcode.ErrExpired) {
		return nil, ErrCodeExpired
	}
	if err != nil {
		return nil, ErrInvalidCode
	}

	fresh, err := s.sessions.ClaimCode(ctx, claims.ID, s.codes.TTL())
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, ErrInvalidCode
	}

	sessionID := claims.Session()
	live, err := s.sessions.Exists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrSessionNotFound
	}

	u, err := s.db.Users.Get(ctx, claims.UserID())
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.issuePair(u, sessionID)
}

// ---------------------------------------------------------------------------
// Refresh / Logout
// ---------------------------------------------------------------------------

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.paseto.Verify(refreshToken, pasetotoken.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := s.sessions.Touch(ctx, claims.SessionID, s.paseto.RefreshTTL())
	if err != nil {
		return nil, err
	}
	if userID != claims.UserID {
		return nil, ErrInvalidToken
	}

	// The role is reloaded so a role change applies to the next access token.
	u, err := s.db.Users.Get(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	access, err := s.paseto.IssueAccess(u.ID, claims.SessionID, u.UserRole)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken, // unchanged
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		slog.DebugContext(ctx, "logout: session already expired", "session_id", sessionID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createSession(ctx context.Context, u *repo.User) (uuid.UUID, *AuthTokens, error) {
	sessionID := uuid.Must(uuid.NewV7())
	if err := s.sessions.Create(ctx, sessionID, u.ID, s.paseto.RefreshTTL()); err != nil {
		return uuid.Nil, nil, err
	}
	tokens, err := s.issuePair(u, sessionID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return sessionID, tokens, nil
}

func (s *authService) issuePair(u *repo.User, sessionID uuid.UUID) (*AuthTokens, error) {
	access, err := s.paseto.IssueAccess(u.ID, sessionID, u.UserRole)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.paseto.IssueRefresh(u.ID, sessionID, u.UserRole)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
	}, nil
}
