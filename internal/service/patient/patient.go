// Package patient manages patient health profiles and the allergy and
// medication catalogs they reference.
package patient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type EmergencyContactInput struct {
	Name        string
	PhoneNumber string
}

// UpdateRequest edits the caller's health profile. Nil fields are left as
// is; non-nil id lists replace the whole set.
type UpdateRequest struct {
	BloodGroup       *string
	Genotype         *string
	Nationality      *string
	EmergencyContact *EmergencyContactInput
	Allergies        *[]uuid.UUID
	Medications      *[]uuid.UUID
}

// CatalogItem names an allergy or medication. Description is ignored for
// medications.
type CatalogItem struct {
	Name        string
	Description string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*repo.Patient, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*repo.Patient, error)
	SetEmergencyContact(ctx context.Context, userID uuid.UUID, in EmergencyContactInput) (*repo.Patient, error)
	// AddAllergies looks items up by name, creating missing ones, and adds
	// them to the caller's allergies.
	AddAllergies(ctx context.Context, userID uuid.UUID, items []CatalogItem) (*repo.Patient, error)
	AddMedications(ctx context.Context, userID uuid.UUID, items []CatalogItem) (*repo.Patient, error)

	List(ctx context.Context, p paging.Params) (*paging.Result[repo.Patient], error)
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListAllergies(ctx context.Context) ([]repo.Allergy, error)
	CreateAllergy(ctx context.Context, item CatalogItem) (*repo.Allergy, error)
	ListMedications(ctx context.Context) ([]repo.Medication, error)
	CreateMedication(ctx context.Context, item CatalogItem) (*repo.Medication, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db      *repo.Client
	region  string
	pageDef int
	pageMax int
}

func New(db *repo.Client, cfg *config.Config) Service {
	return &patientService{
		db:      db,
		region:  cfg.Authentication.DefaultRegion,
		pageDef: cfg.Assessment.DefaultPageSize,
		pageMax: cfg.Assessment.MaxPageSize,
	}
}

func (s *patientService) GetProfile(ctx context.Context, userID uuid.UUID) (*repo.Patient, error) {
	p, err := s.db.Patients.GetByUser(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return s.withUser(ctx, p)
}

func (s *patientService) Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error) {
	p, err := s.db.Patients.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return s.withUser(ctx, p)
}

// Delete removes the patient's account. The profile and the assessments
// recorded for the patient go with the user row.
func (s *patientService) Delete(ctx context.Context, id uuid.UUID) error {
	// TODO: remove the avatar object once this service holds the file store.
	return s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Patients.Get(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("get patient: %w", err)
		}
		if err := tx.Users.Delete(ctx, p.UserID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		slog.InfoContext(ctx, "patient account deleted", "patient_id", id, "user_id", p.UserID)
		return nil
	})
}

func (s *patientService) List(ctx context.Context, p paging.Params) (*paging.Result[repo.Patient], error) {
	p = p.Normalize(s.pageDef, s.pageMax)
	rows, total, err := s.db.Patients.List(ctx, p.Repo())
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	for i := range rows {
		if _, err := s.withUser(ctx, &rows[i]); err != nil {
			return nil, err
		}
	}
	return paging.NewResult(rows, total, p), nil
}

func (s *patientService) withUser(ctx context.Context, p *repo.Patient) (*repo.Patient, error) {
	u, err := s.db.Users.Get(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("get patient user: %w", err)
	}
	p.User = u
	return p, nil
}

// ---------------------------------------------------------------------------
// Profile updates
// ---------------------------------------------------------------------------

func (s *patientService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*repo.Patient, error) {
	verr := &ValidationError{}
	upd := repo.PatientUpdate{}

	if req.BloodGroup != nil {
		v := enum.BloodGroup(strings.ToUpper(strings.TrimSpace(*req.BloodGroup)))
		if !v.Valid() {
			verr.Add("blood_group", ErrInvalidBloodGroup)
		}
		str := string(v)
		upd.BloodGroup = &str
	}
	if req.Genotype != nil {
		v := enum.Genotype(strings.ToUpper(strings.TrimSpace(*req.Genotype)))
		if !v.Valid() {
			verr.Add("genotype", ErrInvalidGenotype)
		}
		str := string(v)
		upd.Genotype = &str
	}
	if req.Nationality != nil {
		v := strings.TrimSpace(*req.Nationality)
		upd.Nationality = &v
	}

	var contact *repo.EmergencyContact
	if req.EmergencyContact != nil {
		contact = s.checkContact(*req.EmergencyContact, verr)
	}

	allergies, err := s.checkIDs(ctx, "allergies", "allergies", req.Allergies, ErrAllergyNotFound, verr)
	if err != nil {
		return nil, err
	}
	medications, err := s.checkIDs(ctx, "medications", "medications", req.Medications, ErrMedicationNotFound, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Patients.GetByUser(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("get patient: %w", err)
		}
		if contact != nil {
			if p.EmergencyContactID != nil {
				contact.ID = *p.EmergencyContactID
			}
			if err := tx.Catalog.SaveEmergencyContact(ctx, contact); err != nil {
				return fmt.Errorf("save emergency contact: %w", err)
			}
			upd.EmergencyContactID = &contact.ID
		}
		if err := tx.Patients.Update(ctx, p.ID, upd); err != nil {
			return fmt.Errorf("update patient: %w", err)
		}
		if req.Allergies != nil {
			if err := tx.Patients.SetAllergies(ctx, p.ID, allergies); err != nil {
				return fmt.Errorf("set allergies: %w", err)
			}
		}
		if req.Medications != nil {
			if err := tx.Patients.SetMedications(ctx, p.ID, medications); err != nil {
				return fmt.Errorf("set medications: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *patientService) SetEmergencyContact(ctx context.Context, userID uuid.UUID, in EmergencyContactInput) (*repo.Patient, error) {
	return s.UpdateProfile(ctx, userID, UpdateRequest{EmergencyContact: &in})
}

func (s *patientService) checkContact(in EmergencyContactInput, verr *ValidationError) *repo.EmergencyContact {
	c := &repo.EmergencyContact{Name: strings.TrimSpace(in.Name)}
	if c.Name == "" {
		verr.Add("name", ErrRequired)
	}
	raw := strings.TrimSpace(in.PhoneNumber)
	if raw == "" {
		verr.Add("phone_number", ErrRequired)
		return c
	}
	n, err := phone.Normalize(raw, s.region)
	if err != nil {
		verr.Add("phone_number", ErrInvalidPhone)
		return c
	}
	c.PhoneNumber = n
	return c
}

// checkIDs dedupes ids and reports notFound on field when any is missing
// from table.
func (s *patientService) checkIDs(ctx context.Context, table, field string, ids *[]uuid.UUID, notFound error, verr *ValidationError) ([]uuid.UUID, error) {
	if ids == nil {
		return nil, nil
	}
	out := dedupe(*ids)
	if len(out) == 0 {
		return out, nil
	}
	n, err := s.db.Catalog.CountExisting(ctx, table, out)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}
	if n != len(out) {
		verr.Add(field, notFound)
	}
	return out, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ---------------------------------------------------------------------------
// Add by name
// ---------------------------------------------------------------------------

func (s *patientService) AddAllergies(ctx context.Context, userID uuid.UUID, items []CatalogItem) (*repo.Patient, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Patients.GetByUser(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("get patient: %w", err)
		}
		known, err := tx.Catalog.ListAllergies(ctx)
		if err != nil {
			return fmt.Errorf("list allergies: %w", err)
		}
		byName := make(map[string]uuid.UUID, len(known))
		for _, a := range known {
			byName[strings.ToLower(a.Name)] = a.ID
		}

		ids := make([]uuid.UUID, 0, len(p.Allergies)+len(items))
		for _, a := range p.Allergies {
			ids = append(ids, a.ID)
		}
		for _, it := range items {
			name := strings.TrimSpace(it.Name)
			id, ok := byName[strings.ToLower(name)]
			if !ok {
				a := &repo.Allergy{Name: name, Description: strings.TrimSpace(it.Description)}
				if err := tx.Catalog.CreateAllergy(ctx, a); err != nil {
					return fmt.Errorf("create allergy: %w", err)
				}
				id = a.ID
				byName[strings.ToLower(name)] = id
			}
			ids = append(ids, id)
		}
		return tx.Patients.SetAllergies(ctx, p.ID, dedupe(ids))
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "patient allergies added", "user_id", userID, "count", len(items))
	return s.GetProfile(ctx, userID)
}

func (s *patientService) AddMedications(ctx context.Context, userID uuid.UUID, items []CatalogItem) (*repo.Patient, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Patients.GetByUser(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("get patient: %w", err)
		}
		known, err := tx.Catalog.ListMedications(ctx)
		if err != nil {
			return fmt.Errorf("list medications: %w", err)
		}
		byName := make(map[string]uuid.UUID, len(known))
		for _, m := range known {
			byName[strings.ToLower(m.Name)] = m.ID
		}

		ids := make([]uuid.UUID, 0, len(p.Medications)+len(items))
		for _, m := range p.Medications {
			ids = append(ids, m.ID)
		}
		for _, it := range items {
			name := strings.TrimSpace(it.Name)
			id, ok := byName[strings.ToLower(name)]
			if !ok {
				m := &repo.Medication{Name: name}
				if err := tx.Catalog.CreateMedication(ctx, m); err != nil {
					return fmt.Errorf("create medication: %w", err)
				}
				id = m.ID
				byName[strings.ToLower(name)] = id
			}
			ids = append(ids, id)
		}
		return tx.Patients.SetMedications(ctx, p.ID, dedupe(ids))
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "patient medications added", "user_id", userID, "count", len(items))
	return s.GetProfile(ctx, userID)
}

func checkItems(items []CatalogItem) error {
	verr := &ValidationError{}
	if len(items) == 0 {
		verr.Add("name", ErrRequired)
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			verr.Add("name", ErrRequired)
			break
		}
	}
	return verr.Err()
}

// ---------------------------------------------------------------------------
// Catalogs
// ---------------------------------------------------------------------------

func (s *patientService) ListAllergies(ctx context.Context) ([]repo.Allergy, error) {
	out, err := s.db.Catalog.ListAllergies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list allergies: %w", err)
	}
	return out, nil
}

func (s *patientService) CreateAllergy(ctx context.Context, item CatalogItem) (*repo.Allergy, error) {
	if err := checkItems([]CatalogItem{item}); err != nil {
		return nil, err
	}
	a := &repo.Allergy{Name: strings.TrimSpace(item.Name), Description: strings.TrimSpace(item.Description)}
	if err := s.db.Catalog.CreateAllergy(ctx, a); err != nil {
		if repo.IsUnique(err) {
			return nil, ErrAllergyTaken
		}
		return nil, fmt.Errorf("create allergy: %w", err)
	}
	return a, nil
}

func (s *patientService) ListMedications(ctx context.Context) ([]repo.Medication, error) {
	out, err := s.db.Catalog.ListMedications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return out, nil
}

func (s *patientService) CreateMedication(ctx context.Context, item CatalogItem) (*repo.Medication, error) {
	if err := checkItems([]CatalogItem{item}); err != nil {
		return nil, err
	}
	m := &repo.Medication{Name: strings.TrimSpace(item.Name)}
	if err := s.db.Catalog.CreateMedication(ctx, m); err != nil {
		if repo.IsUnique(err) {
			return nil, ErrMedicationTaken
		}
		return nil, fmt.Errorf("create medication: %w", err)
	}
	return m, nil
}
