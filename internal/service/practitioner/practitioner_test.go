package practitioner

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/repotest"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testConfig(key string) *config.Config {
	return &config.Config{
		Authentication: config.AuthenticationConfig{EncryptionKey: key},
		Assessment:     config.AssessmentConfig{DefaultPageSize: 20, MaxPageSize: 100},
		S3:             config.S3Config{MaxUploadMB: 1},
	}
}

type fixture struct {
	db    *repo.Client
	svc   Service
	files *s3.Memory
	user  *repo.User
	prof  *repo.Practitioner
}

func setup(t *testing.T, key string) fixture {
	t.Helper()
	db := repotest.Open(t)
	files := s3.NewMemory()
	svc, err := New(db, files, testConfig(key))
	require.NoError(t, err)

	u := repotest.User(t, db, enum.UserTypePractitioner)
	p, err := db.Practitioners.Create(context.Background(), u.ID)
	require.NoError(t, err)
	return fixture{db: db, svc: svc, files: files, user: u, prof: p}
}

func specialization(t *testing.T, svc Service, name string) uuid.UUID {
	t.Helper()
	sp, err := svc.CreateSpecialization(context.Background(), SpecializationRequest{Name: name})
	require.NoError(t, err)
	return sp.ID
}

func ptr[T any](v T) *T { return &v }

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New(repotest.Open(t), nil, testConfig("abcd"))
	assert.Error(t, err)
}

func TestGetProfile(t *testing.T) {
	f := setup(t, testKey)
	ctx := context.Background()

	got, err := f.svc.GetProfile(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, f.prof.ID, got.ID)
	require.NotNil(t, got.User)
	assert.Equal(t, f.user.Username, got.User.Username)
	assert.Empty(t, got.Specializations)
	assert.Nil(t, got.IdentificationURL)

	_, err = f.svc.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
	_, err = f.svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t, testKey)
	ctx := context.Background()
	cardio := specialization(t, f.svc, "Cardiology")
	neuro := specialization(t, f.svc, "Neurology")

	got, err := f.svc.UpdateProfile(ctx, f.user.ID, UpdateRequest{
		LicenseNumber:         ptr("MDCN-1234"),
		Category:              ptr("DOCTOR"),
		MeansOfIdentification: ptr("PASSPORT"),
		IdentificationNumber:  ptr("A01234567"),
		Specializations:       &[]uuid.UUID{cardio, neuro, cardio},
	})
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, enum.CategoryDoctor, *got.Category)
	require.NotNil(t, got.MeansOfIdentification)
	assert.Equal(t, enum.IDTypePassport, *got.MeansOfIdentification)
	assert.Len(t, got.Specializations, 2)
	require.NotNil(t, got.IdentificationNumber)
	assert.Equal(t, "A01234567", *got.IdentificationNumber)

	stored, err := f.db.Practitioners.Get(ctx, f.prof.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.IdentificationNumber)
	assert.NotEqual(t, "A01234567", *stored.IdentificationNumber)

	// Other practitioners never see the identification number.
	public, err := f.svc.Get(ctx, f.prof.ID)
	require.NoError(t, err)
	assert.Nil(t, public.IdentificationNumber)

	got, err = f.svc.UpdateProfile(ctx, f.user.ID, UpdateRequest{Specializations: &[]uuid.UUID{neuro}})
	require.NoError(t, err)
	require.Len(t, got.Specializations, 1)
	assert.Equal(t, "Neurology", got.Specializations[0].Name)
	assert.Equal(t, "MDCN-1234", *got.LicenseNumber)
}

func TestUpdateProfileValidation(t *testing.T) {
	f := setup(t, testKey)
	ctx := context.Background()
	a := specialization(t, f.svc, "A")
	b := specialization(t, f.svc, "B")
	c := specialization(t, f.svc, "C")

	var verr *ValidationError
	_, err := f.svc.UpdateProfile(ctx, f.user.ID, UpdateRequest{
		Category:              ptr("wizard"),
		MeansOfIdentification: ptr("library card"),
		Specializations:       &[]uuid.UUID{a, b, c},
	})
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.ErrorIs(t, err, ErrInvalidIDType)
	assert.ErrorIs(t, err, ErrSpecializationCount)

	_, err = f.svc.UpdateProfile(ctx, f.user.ID, UpdateRequest{Specializations: &[]uuid.UUID{a, uuid.New()}})
	assert.ErrorIs(t, err, ErrSpecializationNotFound)

	other := repotest.User(t, f.db, enum.UserTypePractitioner)
	_, err = f.db.Practitioners.Create(ctx, other.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateProfile(ctx, f.user.ID, UpdateRequest{LicenseNumber: ptr("L-1")})
	require.NoError(t, err)
	_, err = f.svc.UpdateProfile(ctx, other.ID, UpdateRequest{LicenseNumber: ptr("L-1")})
	assert.ErrorIs(t, err, ErrLicenseTaken)
}

func TestIdentificationNumberNeedsKey(t *testing.T) {
	f := setup(t, "")
	_, err := f.svc.UpdateProfile(context.Background(), f.user.ID, UpdateRequest{IdentificationNumber: ptr("A0123")})
	assert.ErrorIs(t, err, ErrEncryptionDisabled)
}

func TestUploadDocuments(t *testing.T) {
	f := setup(t, testKey)
	ctx := context.Background()

	_, err := f.svc.UploadDocuments(ctx, f.user.ID, Documents{})
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = f.svc.UploadDocuments(ctx, f.user.ID, Documents{
		Identification:     &s3.File{ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
		IdentificationType: ptr("library card"),
	})
	assert.ErrorIs(t, err, ErrInvalidIDType)
	assert.Empty(t, f.files.Objects)

	got, err := f.svc.UploadDocuments(ctx, f.user.ID, Documents{
		Identification:     &s3.File{ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
		IdentificationType: ptr("VOTERS CARD"),
		Certificate:        &s3.File{ContentType: "image/png", Size: 3, Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	require.NotNil(t, got.MeansOfIdentification)
	assert.Equal(t, enum.IDTypeVotersCard, *got.MeansOfIdentification)
	require.NotNil(t, got.IdentificationURL)
	require.NotNil(t, got.CertificateURL)
	assert.True(t, strings.HasPrefix(*got.IdentificationURL, "memory://identification/"))
	assert.True(t, strings.HasPrefix(*got.CertificateURL, "memory://certificates/"))
	assert.Len(t, f.files.Objects, 2)

	// Replacing one document removes the old object and keeps the other.
	got, err = f.svc.UploadDocuments(ctx, f.user.ID, Documents{
		Certificate: &s3.File{ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("jpg")},
	})
	require.NoError(t, err)
	assert.Len(t, f.files.Objects, 2)
	assert.NotNil(t, got.IdentificationURL)

	_, err = f.svc.UploadDocuments(ctx, f.user.ID, Documents{
		Certificate: &s3.File{ContentType: "text/html", Size: 3, Body: strings.NewReader("htm")},
	})
	assert.ErrorIs(t, err, s3.ErrContentType)
}

func TestListAndSpecializations(t *testing.T) {
	f := setup(t, testKey)
	ctx := context.Background()
	for range 2 {
		u := repotest.User(t, f.db, enum.UserTypePractitioner)
		_, err := f.db.Practitioners.Create(ctx, u.ID)
		require.NoError(t, err)
	}

	res, err := f.svc.List(ctx, paging.Params{PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Data, 2)
	for _, p := range res.Data {
		assert.NotNil(t, p.User)
		assert.Nil(t, p.IdentificationNumber)
	}

	specialization(t, f.svc, "Dermatology")
	_, err = f.svc.CreateSpecialization(ctx, SpecializationRequest{Name: "Dermatology"})
	assert.ErrorIs(t, err, ErrSpecializationTaken)
	_, err = f.svc.CreateSpecialization(ctx, SpecializationRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrRequired)

	all, err := f.svc.ListSpecializations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteRemovesAccountAndFiles(t *testing.T) {
	f := setup(t, testKey)
	ctx := context.Background()

	_, err := f.svc.UploadDocuments(ctx, f.user.ID, Documents{
		Certificate: &s3.File{ContentType: "image/png", Size: 3, Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	require.Len(t, f.files.Objects, 1)

	require.NoError(t, f.svc.Delete(ctx, f.prof.ID))
	assert.Empty(t, f.files.Objects)

	_, err = f.db.Users.Get(ctx, f.user.ID)
	assert.True(t, repo.IsNotFound(err))
	_, err = f.svc.Get(ctx, f.prof.ID)
	assert.ErrorIs(t, err, ErrPractitionerNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.prof.ID), ErrPractitionerNotFound)
}
