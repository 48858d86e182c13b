package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/auth"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type tokenPair struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

func pair(t *auth.AuthTokens) tokenPair {
	return tokenPair{Access: t.AccessToken, Refresh: t.RefreshToken, ExpiresIn: t.ExpiresIn}
}

// POST /api/v1/auth/register/:account_type
func (h *AuthHandler) Register(c fiber.Ctx) error {
	accountType, err := enum.ParseAccountType(c.Params("account_type"))
	if err != nil {
		return badRequest(c, "Account type must be one of [user, practitioner].")
	}

	var body struct {
		Username      string `json:"username"`
		Email         string `json:"email"`
		PhoneNumber   string `json:"phone_number"`
		Password      string `json:"password"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		AcceptedTerms bool   `json:"is_accept_terms_and_condition"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	u, err := h.svc.Register(c.Context(), accountType, auth.RegisterRequest{
		Username:      body.Username,
		Email:         body.Email,
		PhoneNumber:   body.PhoneNumber,
		Password:      body.Password,
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		AcceptedTerms: body.AcceptedTerms,
	})
	if err != nil {
		return mapAuthError(c, err)
	}
	return created(c, u, "Account created successfully")
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	res, err := h.svc.Login(c.Context(), auth.LoginRequest{Identifier: body.Username, Password: body.Password})
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, struct {
		User     *repo.User `json:"user"`
		Token    tokenPair  `json:"token"`
		AuthCode string     `json:"auth_code"`
	}{res.User, pair(&res.Tokens), res.AuthCode}, "")
}

// POST /api/v1/auth/oauth
func (h *AuthHandler) ExchangeCode(c fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if strings.TrimSpace(body.Code) == "" {
		verr := &auth.ValidationError{}
		verr.Add("code", auth.ErrRequired)
		return invalid(c, verr)
	}

	tokens, err := h.svc.ExchangeCode(c.Context(), body.Code)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, pair(tokens), "")
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	tokens, err := h.svc.Refresh(c.Context(), body.Refresh)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, pair(tokens), "")
}

// POST /api/v1/auth/verify-token/:token
func (h *AuthHandler) VerifyAccount(c fiber.Ctx) error {
	u, err := h.svc.VerifyAccount(c.Context(), c.Params("token"))
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, u, "Account verified successfully")
}

// POST /api/v1/auth/resend-token/:email?action=verification|password_reset
func (h *AuthHandler) ResendToken(c fiber.Ctx) error {
	typ := enum.AuthTokenType(-1)
	switch c.Query("action", "verification") {
	case "verification":
		typ = enum.AuthTokenVerification
	case "password_reset":
		typ = enum.AuthTokenReset
	}

	if err := h.svc.ResendToken(c.Context(), c.Params("email"), typ); err != nil {
		return mapAuthError(c, err)
	}
	return message(c, fiber.StatusOK, "Token sent successfully")
}

// POST /api/v1/auth/password/forget
func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	if err := h.svc.ForgotPassword(c.Context(), body.Email); err != nil {
		return mapAuthError(c, err)
	}
	return message(c, fiber.StatusOK, "Token generated successfully")
}

// POST /api/v1/auth/password/reset
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	if err := h.svc.ResetPassword(c.Context(), body.Token, body.Password); err != nil {
		return mapAuthError(c, err)
	}
	return message(c, fiber.StatusOK, "Password updated successfully")
}

// GET /api/v1/auth/logout  (requires AuthRequired middleware)
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.svc.Logout(c.Context(), id.SessionID); err != nil {
		return mapAuthError(c, err)
	}
	return message(c, fiber.StatusOK, "Logged out successfully")
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapAuthError(c fiber.Ctx, err error) error {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return invalid(c, verr)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return badRequest(c, "Invalid credentials. Please provide valid credentials.")
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, auth.ErrPhoneAlreadyExists):
		return conflict(c, err)
	case errors.Is(err, auth.ErrAccountLocked):
		return message(c, fiber.StatusTooManyRequests, sentence(err))
	case errors.Is(err, auth.ErrAccountInactive):
		return message(c, fiber.StatusForbidden, sentence(err))
	case errors.Is(err, auth.ErrInvalidCode):
		return badRequest(c, "Invalid authorization code")
	case errors.Is(err, auth.ErrCodeExpired):
		return badRequest(c, "Authorization code expired")
	case errors.Is(err, auth.ErrUnknownEmail):
		return notFound(c, err)
	case errors.Is(err, auth.ErrInvalidToken):
		return badRequest(c, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrAlreadyVerified):
		return badRequest(c, sentence(err))
	case errors.Is(err, auth.ErrSessionNotFound):
		return message(c, fiber.StatusUnauthorized, sentence(err))
	default:
		return fail(c, err)
	}
}
