package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/internal/service/user"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// GET /api/v1/users/me
func (h *UserHandler) Me(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetMe(c.Context(), id.UserID)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, p, "")
}

// PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var body struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		PhoneNumber *string `json:"phone_number"`
		Gender      *string `json:"gender"`
		DateOfBirth *string `json:"date_of_birth"`
		Address     *struct {
			Country string `json:"country"`
			State   string `json:"state"`
			City    string `json:"city"`
			ZipCode string `json:"zip_code"`
			Town    string `json:"town"`
			Address string `json:"address"`
		} `json:"address"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	req := user.UpdateRequest{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		PhoneNumber: body.PhoneNumber,
		Gender:      body.Gender,
	}
	verr := &user.ValidationError{}
	req.DateOfBirth = parseDate(body.DateOfBirth, "date_of_birth", verr)
	if len(verr.Fields) > 0 {
		return invalid(c, verr)
	}
	if a := body.Address; a != nil {
		req.Address = &user.AddressInput{
			Country: a.Country, State: a.State, City: a.City,
			ZipCode: a.ZipCode, Town: a.Town, Address: a.Address,
		}
	}

	p, err := h.svc.UpdateMe(c.Context(), id.UserID, req)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, p, "Profile updated successfully")
}

// PUT /api/v1/users/upload  (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	f, closer, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	if f == nil {
		return badRequest(c, "Kindly upload a valid image")
	}
	defer closeAll(closer)

	p, err := h.svc.UploadAvatar(c.Context(), id.UserID, *f)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, p, "Profile picture upload successfully")
}

// PUT /api/v1/users/password
func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	if err := h.svc.ChangePassword(c.Context(), id.UserID, user.ChangePasswordRequest{
		CurrentPassword: body.OldPassword,
		NewPassword:     body.NewPassword,
	}); err != nil {
		return mapUserError(c, err)
	}
	return message(c, fiber.StatusOK, "Password updated successfully")
}

// GET /api/v1/users?page=&per_page=&role=&search=
func (h *UserHandler) List(c fiber.Ctx) error {
	var q struct {
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
		Role    string `query:"role"`
		Search  string `query:"search"`
	}
	_ = c.Bind().Query(&q)

	req := user.ListRequest{
		Params: paging.Params{Page: q.Page, PerPage: q.PerPage},
		Search: q.Search,
	}
	if q.Role != "" {
		role, found := enum.UserTypes.ByLabel(q.Role)
		if !found {
			return badRequest(c, "Role must be one of [USER, PRACTITIONER, ADMIN].")
		}
		req.Role = &role
	}

	res, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, res, "")
}

// GET /api/v1/users/:id
func (h *UserHandler) Get(c fiber.Ctx) error {
	uid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Context(), uid)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, p, "")
}

// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	uid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), caller.UserID, uid); err != nil {
		return mapUserError(c, err)
	}
	return message(c, fiber.StatusOK, "Account deleted successfully")
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case isInvalid(err):
		return fail(c, err)
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err)
	case errors.Is(err, user.ErrPhoneAlreadyExists):
		return conflict(c, err)
	case errors.Is(err, s3.ErrDisabled):
		return message(c, fiber.StatusServiceUnavailable, "File uploads are not available.")
	case errors.Is(err, s3.ErrContentType), errors.Is(err, s3.ErrTooLarge):
		return badRequest(c, sentence(err))
	default:
		return fail(c, err)
	}
}
