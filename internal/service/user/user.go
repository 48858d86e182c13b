// Package user serves the signed-in user's own account and the admin user
// directory.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
	"github.com/Alijeyrad/pms_backend/pkg/util/password"
	"github.com/Alijeyrad/pms_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type AddressInput struct {
	Country string
	State   string
	City    string
	ZipCode string
	Town    string
	Address string
}

// UpdateRequest changes the caller's own profile. Nil fields are left as is.
type UpdateRequest struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Gender      *string
	DateOfBirth *time.Time
	Address     *AddressInput
}

type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
}

type ListRequest struct {
	paging.Params
	Role   *enum.UserType
	Search string
}

// Profile is a user as returned to clients.
type Profile struct {
	repo.User
	AvatarURL *string `json:"avatar"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, f s3.File) (*Profile, error)
	List(ctx context.Context, req ListRequest) (*paging.Result[Profile], error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type userService struct {
	db      *repo.Client
	files   s3.Store
	hasher  *password.Hasher
	policy  password.Policy
	region  string
	maxMB   int
	pageDef int
	pageMax int
	now     func() time.Time
}

func New(db *repo.Client, files s3.Store, cfg *config.Config) Service {
	if files == nil {
		files = s3.Disabled{}
	}
	return &userService{
		db:      db,
		files:   files,
		hasher:  password.NewHasher(password.ParamsFromConfig(cfg.Password)),
		policy:  password.Policy{MinLength: cfg.Authentication.MinPasswordLength},
		region:  cfg.Authentication.DefaultRegion,
		maxMB:   cfg.S3.MaxUploadMB,
		pageDef: cfg.Assessment.DefaultPageSize,
		pageMax: cfg.Assessment.MaxPageSize,
		now:     time.Now,
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.Get(ctx, userID)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	u, err := s.db.Users.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.AddressID != nil {
		a, err := s.db.Users.GetAddress(ctx, *u.AddressID)
		if err != nil && !repo.IsNotFound(err) {
			return nil, fmt.Errorf("get address: %w", err)
		}
		u.Address = a
	}
	return s.profile(ctx, u), nil
}

// profile attaches a presigned avatar URL when storage is available.
func (s *userService) profile(ctx context.Context, u *repo.User) *Profile {
	p := &Profile{User: *u}
	if u.AvatarKey != nil {
		url, err := s.files.PresignDownload(ctx, *u.AvatarKey)
		if err == nil {
			p.AvatarURL = &url
		} else if !errors.Is(err, s3.ErrDisabled) {
			slog.WarnContext(ctx, "presign avatar", "user_id", u.ID, "error", err)
		}
	}
	return p
}

// ---------------------------------------------------------------------------
// UpdateMe
// ---------------------------------------------------------------------------

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error) {
	verr := &ValidationError{}
	upd := repo.UserUpdate{}

	if req.FirstName != nil {
		v := strings.TrimSpace(*req.FirstName)
		if v == "" {
			verr.Add("first_name", ErrRequiredField)
		}
		upd.FirstName = &v
	}
	if req.LastName != nil {
		v := strings.TrimSpace(*req.LastName)
		if v == "" {
			verr.Add("last_name", ErrRequiredField)
		}
		upd.LastName = &v
	}
	if req.Gender != nil {
		g := enum.Gender(strings.ToLower(strings.TrimSpace(*req.Gender)))
		if !g.Valid() {
			verr.Add("gender", ErrInvalidGender)
		}
		v := string(g)
		upd.Gender = &v
	}
	if req.DateOfBirth != nil {
		if req.DateOfBirth.After(s.now()) {
			verr.Add("date_of_birth", ErrFutureDateOfBirth)
		}
		dob := req.DateOfBirth.UTC()
		upd.DateOfBirth = &dob
	}
	if req.PhoneNumber != nil {
		e164, err := phone.Normalize(*req.PhoneNumber, s.region)
		switch {
		case err != nil:
			verr.Add("phone_number", err)
		case e164 == "":
			verr.Add("phone_number", ErrRequiredField)
		default:
			taken, err := s.db.Users.PhoneTaken(ctx, e164, userID)
			if err != nil {
				return nil, fmt.Errorf("check phone: %w", err)
			}
			if taken {
				verr.Add("phone_number", ErrPhoneAlreadyExists)
			}
			upd.PhoneNumber = &e164
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		u, err := tx.Users.Get(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}

		if req.Address != nil {
			a := &repo.Address{
				Country: strings.TrimSpace(req.Address.Country),
				State:   strings.TrimSpace(req.Address.State),
				City:    strings.TrimSpace(req.Address.City),
				ZipCode: strings.TrimSpace(req.Address.ZipCode),
				Town:    strings.TrimSpace(req.Address.Town),
				Address: strings.TrimSpace(req.Address.Address),
			}
			if u.AddressID != nil {
				a.ID = *u.AddressID
				err = tx.Users.UpdateAddress(ctx, a)
			} else {
				err = tx.Users.CreateAddress(ctx, a)
				upd.AddressID = &a.ID
			}
			if err != nil {
				return fmt.Errorf("save address: %w", err)
			}
		}

		if err := tx.Users.Update(ctx, userID, upd); err != nil {
			if repo.IsUnique(err) {
				return ErrPhoneAlreadyExists
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// ---------------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------------

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	u, err := s.db.Users.Get(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	verr := &ValidationError{}
	if req.CurrentPassword == "" {
		verr.Add("old_password", ErrRequiredField)
	} else if err := s.hasher.Verify(u.PasswordHash, req.CurrentPassword); err != nil {
		verr.Add("old_password", ErrInvalidPassword)
	}
	switch {
	case req.NewPassword == "":
		verr.Add("new_password", ErrRequiredField)
	case req.NewPassword == req.CurrentPassword:
		verr.Add("new_password", ErrSamePassword)
	default:
		if err := s.policy.Validate(req.NewPassword, u.Username, u.Email, u.FirstName, u.LastName); err != nil {
			verr.Joined("new_password", err)
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Users.SetPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	slog.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// ---------------------------------------------------------------------------
// UploadAvatar
// ---------------------------------------------------------------------------

func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, f s3.File) (*Profile, error) {
	u, err := s.db.Users.Get(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	key, err := s3.Put(ctx, s.files, "avatars", userID, f, s.maxMB)
	if err != nil {
		return nil, err
	}
	if err := s.db.Users.Update(ctx, userID, repo.UserUpdate{AvatarKey: &key}); err != nil {
		_ = s.files.Delete(ctx, key)
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	if u.AvatarKey != nil {
		if err := s.files.Delete(ctx, *u.AvatarKey); err != nil {
			slog.WarnContext(ctx, "delete old avatar", "user_id", userID, "key", *u.AvatarKey, "error", err)
		}
	}
	return s.Get(ctx, userID)
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

func (s *userService) List(ctx context.Context, req ListRequest) (*paging.Result[Profile], error) {
	p := req.Params.Normalize(s.pageDef, s.pageMax)
	f := repo.UserFilter{Search: strings.TrimSpace(req.Search), Page: p.Repo()}
	if req.Role != nil {
		r := int(*req.Role)
		f.Role = &r
	}

	users, total, err := s.db.Users.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]Profile, len(users))
	for i := range users {
		out[i] = *s.profile(ctx, &users[i])
	}
	return paging.NewResult(out, total, p), nil
}

func (s *userService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID == id {
		return ErrCannotDeleteSelf
	}
	u, err := s.db.Users.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.db.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if u.AvatarKey != nil {
		_ = s.files.Delete(ctx, *u.AvatarKey)
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id, "by", callerID)
	return nil
}
