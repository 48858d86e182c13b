// Package pasetotoken issues and verifies v4 PASETO access and refresh
// tokens.
package pasetotoken

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
)

type Config struct {
	Mode Mode

	Issuer   string
	Audience string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Implicit []byte
}

type Manager struct {
	cfg  Config
	keys Keys
	now  func() time.Time
}

func New(cfg Config, keys Keys) (*Manager, error) {
	if cfg.Mode != keys.Mode {
		return nil, ErrConfig{Msg: "cfg.Mode must match keys.Mode"}
	}
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.Audience == "" {
		return nil, ErrConfig{Msg: "Audience is required"}
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Manager{cfg: cfg, keys: keys, now: time.Now}, nil
}

// NewPasetoManager creates a manager from the authentication config.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	mode := Mode(p.Mode)
	if mode == "" {
		mode = ModeLocal
	}
	keys, err := LoadKeys(KeyStrings{
		Mode:         mode,
		SymmetricHex: p.LocalKeyHex,
		SecretHex:    p.SecretKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:       mode,
		Issuer:     p.Issuer,
		Audience:   p.Audience,
		AccessTTL:  time.Duration(p.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(p.RefreshTTLDays) * 24 * time.Hour,
	}, keys)
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(userID, sessionID uuid.UUID, role enum.UserType) (string, error) {
	return m.issue(TokenTypeAccess, userID, sessionID, role, m.cfg.AccessTTL)
}

func (m *Manager) IssueRefresh(userID, sessionID uuid.UUID, role enum.UserType) (string, error) {
	return m.issue(TokenTypeRefresh, userID, sessionID, role, m.cfg.RefreshTTL)
}

// Verify parses tokenStr and checks that it is of the wanted type.
func (m *Manager) Verify(tokenStr string, want TokenType) (*Claims, error) {
	p := paseto.MakeParser([]paseto.Rule{
		paseto.IssuedBy(m.cfg.Issuer),
		paseto.ForAudience(m.cfg.Audience),
		paseto.ValidAt(m.now()),
	})

	var (
		tok *paseto.Token
		err error
	)
	switch m.cfg.Mode {
	case ModeLocal:
		if m.keys.Symmetric == nil {
			return nil, ErrConfig{Msg: "missing symmetric key"}
		}
		tok, err = p.ParseV4Local(*m.keys.Symmetric, tokenStr, m.cfg.Implicit)
	case ModePublic:
		if m.keys.Public == nil {
			return nil, ErrConfig{Msg: "missing public key"}
		}
		tok, err = p.ParseV4Public(*m.keys.Public, tokenStr, m.cfg.Implicit)
	default:
		return nil, ErrConfig{Msg: "unknown mode"}
	}
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	claims, err := extractClaims(tok)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	if claims.Type != want {
		return nil, ErrInvalidToken{Err: ErrWrongTokenType}
	}
	return claims, nil
}

func (m *Manager) issue(tt TokenType, userID, sessionID uuid.UUID, role enum.UserType, ttl time.Duration) (string, error) {
	now := m.now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(randHex(16))
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(ttl))
	tok.SetSubject(userID.String())

	tok.SetString("typ", string(tt))
	tok.SetString("sid", sessionID.String())
	tok.SetString("rol", strconv.Itoa(int(role)))

	switch m.cfg.Mode {
	case ModeLocal:
		if m.keys.Symmetric == nil {
			return "", ErrConfig{Msg: "missing symmetric key"}
		}
		return tok.V4Encrypt(*m.keys.Symmetric, m.cfg.Implicit), nil
	case ModePublic:
		if m.keys.Secret == nil {
			return "", ErrConfig{Msg: "missing secret key"}
		}
		return tok.V4Sign(*m.keys.Secret, m.cfg.Implicit), nil
	default:
		return "", ErrConfig{Msg: "unknown mode"}
	}
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func extractClaims(tok *paseto.Token) (*Claims, error) {
	jti, err := tok.GetJti()
	if err != nil {
		return nil, err
	}
	iat, err := tok.GetIssuedAt()
	if err != nil {
		return nil, err
	}
	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}
	typ, err := tok.GetString("typ")
	if err != nil {
		return nil, err
	}

	sub, err := tok.GetSubject()
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}

	sidStr, err := tok.GetString("sid")
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(sidStr)
	if err != nil {
		return nil, fmt.Errorf("sid: %w", err)
	}

	rolStr, err := tok.GetString("rol")
	if err != nil {
		return nil, err
	}
	rol, err := strconv.Atoi(rolStr)
	if err != nil || !enum.UserType(rol).Valid() {
		return nil, fmt.Errorf("rol: invalid role %q", rolStr)
	}

	return &Claims{
		Type:      TokenType(typ),
		UserID:    uid,
		SessionID: sid,
		Role:      enum.UserType(rol),
		IssuedAt:  iat,
		ExpiresAt: exp,
		TokenID:   jti,
	}, nil
}
