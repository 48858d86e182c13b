package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/repotest"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
)

func setup(t *testing.T) (*repo.Client, Service, *repo.User) {
	t.Helper()
	db := repotest.Open(t)
	svc := New(db, &config.Config{
		Authentication: config.AuthenticationConfig{DefaultRegion: "NG"},
		Assessment:     config.AssessmentConfig{DefaultPageSize: 20, MaxPageSize: 100},
	})
	u := patientUser(t, db)
	return db, svc, u
}

func patientUser(t *testing.T, db *repo.Client) *repo.User {
	t.Helper()
	u := repotest.User(t, db, enum.UserTypeUser)
	_, err := db.Patients.Create(context.Background(), u.ID)
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func TestGetProfile(t *testing.T) {
	_, svc, u := setup(t)
	ctx := context.Background()

	got, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, u.Email, got.User.Email)
	assert.NotNil(t, got.Allergies)
	assert.Empty(t, got.Allergies)

	_, err = svc.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPatientNotFound)
	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestUpdateProfile(t *testing.T) {
	_, svc, u := setup(t)
	ctx := context.Background()

	pollen, err := svc.CreateAllergy(ctx, CatalogItem{Name: "Pollen"})
	require.NoError(t, err)
	nuts, err := svc.CreateAllergy(ctx, CatalogItem{Name: "Peanuts", Description: "anaphylaxis"})
	require.NoError(t, err)
	ibu, err := svc.CreateMedication(ctx, CatalogItem{Name: "Ibuprofen"})
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, u.ID, UpdateRequest{
		BloodGroup:       ptr("o+"),
		Genotype:         ptr("AS"),
		Nationality:      ptr(" Nigerian "),
		EmergencyContact: &EmergencyContactInput{Name: "Kemi", PhoneNumber: "0803 123 4567"},
		Allergies:        &[]uuid.UUID{pollen.ID, nuts.ID, pollen.ID},
		Medications:      &[]uuid.UUID{ibu.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, got.BloodGroup)
	assert.Equal(t, enum.BloodGroupOPos, *got.BloodGroup)
	assert.Equal(t, enum.GenotypeAS, *got.Genotype)
	assert.Equal(t, "Nigerian", got.Nationality)
	require.NotNil(t, got.EmergencyContact)
	assert.Equal(t, "+2348031234567", got.EmergencyContact.PhoneNumber)
	assert.Len(t, got.Allergies, 2)
	assert.Len(t, got.Medications, 1)
	contactID := got.EmergencyContact.ID

	// Replacing the contact edits the same row; an empty list clears allergies.
	got, err = svc.SetEmergencyContact(ctx, u.ID, EmergencyContactInput{Name: "Tunde", PhoneNumber: "+2348037654321"})
	require.NoError(t, err)
	assert.Equal(t, contactID, got.EmergencyContact.ID)
	assert.Equal(t, "Tunde", got.EmergencyContact.Name)

	got, err = svc.UpdateProfile(ctx, u.ID, UpdateRequest{Allergies: &[]uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, got.Allergies)
	assert.Len(t, got.Medications, 1)
}

func TestUpdateProfileValidation(t *testing.T) {
	db, svc, u := setup(t)
	ctx := context.Background()

	var verr *ValidationError
	_, err := svc.UpdateProfile(ctx, u.ID, UpdateRequest{
		BloodGroup:       ptr("C+"),
		Genotype:         ptr("XY"),
		EmergencyContact: &EmergencyContactInput{PhoneNumber: "12"},
		Allergies:        &[]uuid.UUID{uuid.New()},
		Medications:      &[]uuid.UUID{uuid.New()},
	})
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidBloodGroup)
	assert.ErrorIs(t, err, ErrInvalidGenotype)
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.ErrorIs(t, err, ErrAllergyNotFound)
	assert.ErrorIs(t, err, ErrMedicationNotFound)
	assert.True(t, verr.Has("name"))

	stored, err := db.Patients.GetByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.BloodGroup)
	assert.Nil(t, stored.EmergencyContact)
}

func TestAddByName(t *testing.T) {
	_, svc, u := setup(t)
	ctx := context.Background()

	_, err := svc.CreateAllergy(ctx, CatalogItem{Name: "Latex"})
	require.NoError(t, err)

	got, err := svc.AddAllergies(ctx, u.ID, []CatalogItem{{Name: "latex"}, {Name: "Dust"}})
	require.NoError(t, err)
	assert.Len(t, got.Allergies, 2)

	// Additions keep what the patient already has.
	got, err = svc.AddAllergies(ctx, u.ID, []CatalogItem{{Name: "Penicillin"}, {Name: "Dust"}})
	require.NoError(t, err)
	assert.Len(t, got.Allergies, 3)

	all, err := svc.ListAllergies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err = svc.AddMedications(ctx, u.ID, []CatalogItem{{Name: "Insulin"}})
	require.NoError(t, err)
	require.Len(t, got.Medications, 1)
	assert.Equal(t, "Insulin", got.Medications[0].Name)

	_, err = svc.AddMedications(ctx, u.ID, nil)
	assert.ErrorIs(t, err, ErrRequired)
	_, err = svc.AddAllergies(ctx, uuid.New(), []CatalogItem{{Name: "Dust"}})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCatalogConflicts(t *testing.T) {
	_, svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateMedication(ctx, CatalogItem{Name: "Aspirin"})
	require.NoError(t, err)
	_, err = svc.CreateMedication(ctx, CatalogItem{Name: "Aspirin"})
	assert.ErrorIs(t, err, ErrMedicationTaken)

	_, err = svc.CreateAllergy(ctx, CatalogItem{Name: "Eggs"})
	require.NoError(t, err)
	_, err = svc.CreateAllergy(ctx, CatalogItem{Name: "Eggs"})
	assert.ErrorIs(t, err, ErrAllergyTaken)

	meds, err := svc.ListMedications(ctx)
	require.NoError(t, err)
	assert.Len(t, meds, 1)
}

func TestList(t *testing.T) {
	db, svc, _ := setup(t)
	patientUser(t, db)
	repotest.User(t, db, enum.UserTypePractitioner)

	res, err := svc.List(context.Background(), paging.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	for _, p := range res.Data {
		assert.NotNil(t, p.User)
	}
}

func TestDeleteRemovesAccount(t *testing.T) {
	db, svc, u := setup(t)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = db.Users.Get(ctx, u.ID)
	assert.True(t, repo.IsNotFound(err))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrPatientNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrPatientNotFound)
}
