package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/repotest"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
	"github.com/Alijeyrad/pms_backend/pkg/util/password"
)

func testConfig() *config.Config {
	return &config.Config{
		Authentication: config.AuthenticationConfig{DefaultRegion: "NG", MinPasswordLength: 8},
		Password:       config.PasswordConfig{MemoryKiB: 1024, Iterations: 1, Parallelism: 1},
		Assessment:     config.AssessmentConfig{DefaultPageSize: 20, MaxPageSize: 100},
		S3:             config.S3Config{MaxUploadMB: 1},
	}
}

func newService(t *testing.T) (*repo.Client, *userService, *s3.Memory) {
	t.Helper()
	db := repotest.Open(t)
	files := s3.NewMemory()
	return db, New(db, files, testConfig()).(*userService), files
}

func ptr[T any](v T) *T { return &v }

func TestGetMe(t *testing.T) {
	db, svc, _ := newService(t)
	u := repotest.User(t, db, enum.UserTypeUser)

	got, err := svc.GetMe(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.AvatarURL)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateMe(t *testing.T) {
	db, svc, _ := newService(t)
	u := repotest.User(t, db, enum.UserTypeUser)
	ctx := context.Background()
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	got, err := svc.UpdateMe(ctx, u.ID, UpdateRequest{
		FirstName:   ptr(" Ada "),
		Gender:      ptr("Female"),
		DateOfBirth: &dob,
		PhoneNumber: ptr("0803 123 4567"),
		Address:     &AddressInput{Country: "Nigeria", City: "Lagos"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	require.NotNil(t, got.Gender)
	assert.Equal(t, enum.GenderFemale, *got.Gender)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, "+2348031234567", *got.PhoneNumber)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Lagos", got.Address.City)
	addrID := got.Address.ID

	// A second address update edits the same row.
	got, err = svc.UpdateMe(ctx, u.ID, UpdateRequest{Address: &AddressInput{Country: "Nigeria", City: "Abuja"}})
	require.NoError(t, err)
	assert.Equal(t, addrID, got.Address.ID)
	assert.Equal(t, "Abuja", got.Address.City)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestUpdateMeValidation(t *testing.T) {
	db, svc, _ := newService(t)
	ctx := context.Background()
	u := repotest.User(t, db, enum.UserTypeUser)
	other := repotest.User(t, db, enum.UserTypeUser)

	_, err := svc.UpdateMe(ctx, other.ID, UpdateRequest{PhoneNumber: ptr("+2348031234567")})
	require.NoError(t, err)

	future := time.Now().Add(48 * time.Hour)
	_, err = svc.UpdateMe(ctx, u.ID, UpdateRequest{
		FirstName:   ptr(""),
		Gender:      ptr("robot"),
		DateOfBirth: &future,
		PhoneNumber: ptr("0803 123 4567"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidGender)
	assert.ErrorIs(t, err, ErrFutureDateOfBirth)
	assert.ErrorIs(t, err, ErrPhoneAlreadyExists)
	assert.True(t, verr.Has("first_name"))

	stored, err := db.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.FirstName, stored.FirstName)
}

func TestChangePassword(t *testing.T) {
	db, svc, _ := newService(t)
	ctx := context.Background()
	u := repotest.User(t, db, enum.UserTypeUser)

	hash, err := svc.hasher.Hash("old-secret-pass")
	require.NoError(t, err)
	require.NoError(t, db.Users.SetPassword(ctx, u.ID, hash))

	var verr *ValidationError
	err = svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-secret-pass"})
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidPassword)

	err = svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "old-secret-pass", NewPassword: "old-secret-pass"})
	assert.ErrorIs(t, err, ErrSamePassword)

	err = svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "old-secret-pass", NewPassword: "password"})
	assert.ErrorIs(t, err, password.ErrTooCommon)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "old-secret-pass", NewPassword: "new-secret-pass"}))
	stored, err := db.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, svc.hasher.Verify(stored.PasswordHash, "new-secret-pass"))
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
	db, svc, files := newService(t)
	ctx := context.Background()
	u := repotest.User(t, db, enum.UserTypeUser)

	got, err := svc.UploadAvatar(ctx, u.ID, s3.File{ContentType: "image/png", Size: 4, Body: strings.NewReader("img1")})
	require.NoError(t, err)
	require.NotNil(t, got.AvatarURL)
	assert.True(t, strings.HasPrefix(*got.AvatarURL, "memory://avatars/"))
	first := *got.AvatarKey

	got, err = svc.UploadAvatar(ctx, u.ID, s3.File{ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("img2")})
	require.NoError(t, err)
	assert.NotEqual(t, first, *got.AvatarKey)
	assert.NotContains(t, files.Objects, first)
	assert.Len(t, files.Objects, 1)

	_, err = svc.UploadAvatar(ctx, u.ID, s3.File{ContentType: "application/zip", Size: 4, Body: strings.NewReader("zip!")})
	assert.ErrorIs(t, err, s3.ErrContentType)
}

func TestUploadAvatarWithoutStorage(t *testing.T) {
	db := repotest.Open(t)
	svc := New(db, nil, testConfig())
	u := repotest.User(t, db, enum.UserTypeUser)

	_, err := svc.UploadAvatar(context.Background(), u.ID, s3.File{ContentType: "image/png", Size: 4, Body: strings.NewReader("img1")})
	assert.ErrorIs(t, err, s3.ErrDisabled)
}

func TestListAndDelete(t *testing.T) {
	db, svc, _ := newService(t)
	ctx := context.Background()
	admin := repotest.User(t, db, enum.UserTypeAdmin)
	p1 := repotest.User(t, db, enum.UserTypePractitioner)
	repotest.User(t, db, enum.UserTypeUser)
	repotest.User(t, db, enum.UserTypeUser)

	all, err := svc.List(ctx, ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)

	role := enum.UserTypeUser
	patients, err := svc.List(ctx, ListRequest{Role: &role, Params: paging.Params{PerPage: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, patients.Total)
	assert.Len(t, patients.Data, 1)
	assert.Equal(t, 2, patients.TotalPages)

	assert.ErrorIs(t, svc.Delete(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(ctx, admin.ID, p1.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin.ID, p1.ID), ErrUserNotFound)
}
