// Package authcode signs the short-lived code returned on login that an
// OAuth-style client exchanges for a token pair.
package authcode

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
)

var (
	ErrInvalid  = errors.New("invalid or expired authorization code")
	ErrExpired  = errors.New("authorization code expired")
	ErrNoSecret = errors.New("auth code secret is not configured")
)

const codeAudience = "auth_code"

// Claims identify the session a code was issued for.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func New(secret []byte, issuer string, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Signer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

func NewFromConfig(cfg *config.Config) (*Signer, error) {
	a := cfg.Authentication.AuthCode
	return New([]byte(a.Secret), cfg.Authentication.Paseto.Issuer, time.Duration(a.TTLSeconds)*time.Second)
}

func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue returns a signed code and its id (jti); the id is what single-use
// bookkeeping keys on.
func (s *Signer) Issue(userID, sessionID uuid.UUID) (code, id string, err error) {
	now := s.now()
	id = uuid.NewString()
	claims := Claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   userID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{codeAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	code, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign auth code: %w", err)
	}
	return code, id, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (s *Signer) Parse(code string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(code, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(codeAudience),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, ErrExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalid
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, ErrInvalid
	}
	return &claims, nil
}

// UserID and Session return the parsed ids; Parse has validated both.
func (c *Claims) UserID() uuid.UUID  { return uuid.MustParse(c.Subject) }
func (c *Claims) Session() uuid.UUID { return uuid.MustParse(c.SessionID) }
