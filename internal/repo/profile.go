package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Patients
// ---------------------------------------------------------------------------

var patientColumns = []string{
	"id", "user_id", "blood_group", "genotype", "nationality", "emergency_contact_id", "created_at", "updated_at",
}

func scanPatient(rows *entsql.Rows, p *Patient) error {
	return rows.Scan(&p.ID, &p.UserID, &p.BloodGroup, &p.Genotype, &p.Nationality, &p.EmergencyContactID, &p.CreatedAt, &p.UpdatedAt)
}

type PatientStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

// Create inserts an empty patient profile for userID.
func (s *PatientStore) Create(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	now := time.Now().UTC()
	p := &Patient{ID: NewID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	_, err := exec(ctx, s.q, s.b.Insert("patients").
		Columns(patientColumns...).
		Values(p.ID, p.UserID, p.BloodGroup, p.Genotype, p.Nationality, p.EmergencyContactID, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientStore) get(ctx context.Context, pred *entsql.Predicate) (*Patient, error) {
	p := &Patient{}
	err := queryOne(ctx, s.q, s.b.Select(patientColumns...).From(s.b.Table("patients")).Where(pred), func(rows *entsql.Rows) error {
		return scanPatient(rows, p)
	})
	if err != nil {
		return nil, err
	}
	return p, s.loadEdges(ctx, p)
}

func (s *PatientStore) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.get(ctx, entsql.EQ("id", id))
}

func (s *PatientStore) GetByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.get(ctx, entsql.EQ("user_id", userID))
}

func (s *PatientStore) List(ctx context.Context, page Page) ([]Patient, int, error) {
	t := s.b.Table("patients")
	total, err := count(ctx, s.q, s.b.Select(entsql.Count("*")).From(t))
	if err != nil {
		return nil, 0, err
	}
	var out []Patient
	err = query(ctx, s.q, page.apply(s.b.Select(patientColumns...).From(t).OrderBy(entsql.Desc("created_at"))), func(rows *entsql.Rows) error {
		var p Patient
		if err := scanPatient(rows, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := s.loadEdges(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (s *PatientStore) loadEdges(ctx context.Context, p *Patient) error {
	p.Allergies = []Allergy{}
	p.Medications = []Medication{}

	at, jt := s.b.Table("allergies").As("a"), s.b.Table("patient_allergies").As("j")
	err := query(ctx, s.q, s.b.Select(at.C("id"), at.C("name"), at.C("description")).
		From(at).
		Join(jt).On(at.C("id"), jt.C("allergy_id")).
		Where(entsql.EQ(jt.C("patient_id"), p.ID)).
		OrderBy(at.C("name")), func(rows *entsql.Rows) error {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return err
		}
		p.Allergies = append(p.Allergies, a)
		return nil
	})
	if err != nil {
		return err
	}

	mt, mj := s.b.Table("medications").As("m"), s.b.Table("patient_medications").As("j")
	err = query(ctx, s.q, s.b.Select(mt.C("id"), mt.C("name")).
		From(mt).
		Join(mj).On(mt.C("id"), mj.C("medication_id")).
		Where(entsql.EQ(mj.C("patient_id"), p.ID)).
		OrderBy(mt.C("name")), func(rows *entsql.Rows) error {
		var m Medication
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return err
		}
		p.Medications = append(p.Medications, m)
		return nil
	})
	if err != nil {
		return err
	}

	if p.EmergencyContactID != nil {
		c := &EmergencyContact{}
		err := queryOne(ctx, s.q, s.b.Select("id", "name", "phone_number").
			From(s.b.Table("emergency_contacts")).
			Where(entsql.EQ("id", *p.EmergencyContactID)), func(rows *entsql.Rows) error {
			return rows.Scan(&c.ID, &c.Name, &c.PhoneNumber)
		})
		if err != nil && !IsNotFound(err) {
			return err
		}
		if err == nil {
			p.EmergencyContact = c
		}
	}
	return nil
}

type PatientUpdate struct {
	BloodGroup         *string
	Genotype           *string
	Nationality        *string
	EmergencyContactID *uuid.UUID
}

func (s *PatientStore) Update(ctx context.Context, id uuid.UUID, in PatientUpdate) error {
	upd := s.b.Update("patients").Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", id))
	if in.BloodGroup != nil {
		upd.Set("blood_group", *in.BloodGroup)
	}
	if in.Genotype != nil {
		upd.Set("genotype", *in.Genotype)
	}
	if in.Nationality != nil {
		upd.Set("nationality", *in.Nationality)
	}
	if in.EmergencyContactID != nil {
		upd.Set("emergency_contact_id", *in.EmergencyContactID)
	}
	return mustAffect(exec(ctx, s.q, upd))
}

// SetAllergies replaces the patient's allergy set.
func (s *PatientStore) SetAllergies(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error {
	return replaceLinks(ctx, s.q, s.b, "patient_allergies", "patient_id", "allergy_id", patientID, ids)
}

// SetMedications replaces the patient's medication set.
func (s *PatientStore) SetMedications(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error {
	return replaceLinks(ctx, s.q, s.b, "patient_medications", "patient_id", "medication_id", patientID, ids)
}

// replaceLinks rewrites the rows of a join table owned by ownerID.
func replaceLinks(ctx context.Context, q dialect.ExecQuerier, b *entsql.DialectBuilder, table, ownerCol, refCol string, ownerID uuid.UUID, ids []uuid.UUID) error {
	if _, err := exec(ctx, q, b.Delete(table).Where(entsql.EQ(ownerCol, ownerID))); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	ins := b.Insert(table).Columns(ownerCol, refCol)
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ins.Values(ownerID, id)
	}
	_, err := exec(ctx, q, ins)
	return err
}

// ---------------------------------------------------------------------------
// Practitioners
// ---------------------------------------------------------------------------

var practitionerColumns = []string{
	"id", "user_id", "license_number", "category", "means_of_identification",
	"identification_number", "identification_key", "certificate_key", "created_at", "updated_at",
}

func scanPractitioner(rows *entsql.Rows, p *Practitioner) error {
	return rows.Scan(&p.ID, &p.UserID, &p.LicenseNumber, &p.Category, &p.MeansOfIdentification,
		&p.IdentificationNumber, &p.IdentificationKey, &p.CertificateKey, &p.CreatedAt, &p.UpdatedAt)
}

type PractitionerStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *PractitionerStore) Create(ctx context.Context, userID uuid.UUID) (*Practitioner, error) {
	now := time.Now().UTC()
	p := &Practitioner{ID: NewID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	_, err := exec(ctx, s.q, s.b.Insert("practitioners").
		Columns(practitionerColumns...).
		Values(p.ID, p.UserID, p.LicenseNumber, p.Category, p.MeansOfIdentification,
			p.IdentificationNumber, p.IdentificationKey, p.CertificateKey, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PractitionerStore) get(ctx context.Context, pred *entsql.Predicate) (*Practitioner, error) {
	p := &Practitioner{}
	err := queryOne(ctx, s.q, s.b.Select(practitionerColumns...).From(s.b.Table("practitioners")).Where(pred), func(rows *entsql.Rows) error {
		return scanPractitioner(rows, p)
	})
	if err != nil {
		return nil, err
	}
	return p, s.loadSpecializations(ctx, p)
}

func (s *PractitionerStore) Get(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return s.get(ctx, entsql.EQ("id", id))
}

func (s *PractitionerStore) GetByUser(ctx context.Context, userID uuid.UUID) (*Practitioner, error) {
	return s.get(ctx, entsql.EQ("user_id", userID))
}

func (s *PractitionerStore) List(ctx context.Context, page Page) ([]Practitioner, int, error) {
	t := s.b.Table("practitioners")
	total, err := count(ctx, s.q, s.b.Select(entsql.Count("*")).From(t))
	if err != nil {
		return nil, 0, err
	}
	var out []Practitioner
	err = query(ctx, s.q, page.apply(s.b.Select(practitionerColumns...).From(t).OrderBy(entsql.Desc("created_at"))), func(rows *entsql.Rows) error {
		var p Practitioner
		if err := scanPractitioner(rows, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := s.loadSpecializations(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (s *PractitionerStore) loadSpecializations(ctx context.Context, p *Practitioner) error {
	p.Specializations = []Specialization{}
	st, jt := s.b.Table("specializations").As("s"), s.b.Table("practitioner_specializations").As("j")
	return query(ctx, s.q, s.b.Select(st.C("id"), st.C("name"), st.C("description")).
		From(st).
		Join(jt).On(st.C("id"), jt.C("specialization_id")).
		Where(entsql.EQ(jt.C("practitioner_id"), p.ID)).
		OrderBy(st.C("name")), func(rows *entsql.Rows) error {
		var sp Specialization
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description); err != nil {
			return err
		}
		p.Specializations = append(p.Specializations, sp)
		return nil
	})
}

type PractitionerUpdate struct {
	LicenseNumber         *string
	Category              *string
	MeansOfIdentification *string
	IdentificationNumber  *string
	IdentificationKey     *string
	CertificateKey        *string
}

func (s *PractitionerStore) Update(ctx context.Context, id uuid.UUID, in PractitionerUpdate) error {
	upd := s.b.Update("practitioners").Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", id))
	set := func(col string, v *string) {
		if v != nil {
			upd.Set(col, *v)
		}
	}
	set("license_number", in.LicenseNumber)
	set("category", in.Category)
	set("means_of_identification", in.MeansOfIdentification)
	set("identification_number", in.IdentificationNumber)
	set("identification_key", in.IdentificationKey)
	set("certificate_key", in.CertificateKey)
	return mustAffect(exec(ctx, s.q, upd))
}

func (s *PractitionerStore) SetSpecializations(ctx context.Context, practitionerID uuid.UUID, ids []uuid.UUID) error {
	return replaceLinks(ctx, s.q, s.b, "practitioner_specializations", "practitioner_id", "specialization_id", practitionerID, ids)
}

// ---------------------------------------------------------------------------
// Profile catalogs: allergies, medications, specializations, emergency contacts
// ---------------------------------------------------------------------------

type ProfileCatalogStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *ProfileCatalogStore) CreateAllergy(ctx context.Context, a *Allergy) error {
	a.ID = NewID()
	_, err := exec(ctx, s.q, s.b.Insert("allergies").Columns("id", "name", "description").Values(a.ID, a.Name, a.Description))
	return err
}

func (s *ProfileCatalogStore) ListAllergies(ctx context.Context) ([]Allergy, error) {
	out := []Allergy{}
	err := query(ctx, s.q, s.b.Select("id", "name", "description").From(s.b.Table("allergies")).OrderBy("name"), func(rows *entsql.Rows) error {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

func (s *ProfileCatalogStore) CreateMedication(ctx context.Context, m *Medication) error {
	m.ID = NewID()
	_, err := exec(ctx, s.q, s.b.Insert("medications").Columns("id", "name").Values(m.ID, m.Name))
	return err
}

func (s *ProfileCatalogStore) ListMedications(ctx context.Context) ([]Medication, error) {
	out := []Medication{}
	err := query(ctx, s.q, s.b.Select("id", "name").From(s.b.Table("medications")).OrderBy("name"), func(rows *entsql.Rows) error {
		var m Medication
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (s *ProfileCatalogStore) CreateSpecialization(ctx context.Context, sp *Specialization) error {
	sp.ID = NewID()
	_, err := exec(ctx, s.q, s.b.Insert("specializations").Columns("id", "name", "description").Values(sp.ID, sp.Name, sp.Description))
	return err
}

func (s *ProfileCatalogStore) ListSpecializations(ctx context.Context) ([]Specialization, error) {
	out := []Specialization{}
	err := query(ctx, s.q, s.b.Select("id", "name", "description").From(s.b.Table("specializations")).OrderBy("name"), func(rows *entsql.Rows) error {
		var sp Specialization
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description); err != nil {
			return err
		}
		out = append(out, sp)
		return nil
	})
	return out, err
}

// CountExisting returns how many of ids exist in table.
func (s *ProfileCatalogStore) CountExisting(ctx context.Context, table string, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return count(ctx, s.q, s.b.Select(entsql.Count("*")).From(s.b.Table(table)).Where(entsql.In("id", uuidArgs(ids)...)))
}

// SaveEmergencyContact inserts c when it has no ID, otherwise updates it.
func (s *ProfileCatalogStore) SaveEmergencyContact(ctx context.Context, c *EmergencyContact) error {
	if c.ID == uuid.Nil {
		c.ID = NewID()
		_, err := exec(ctx, s.q, s.b.Insert("emergency_contacts").Columns("id", "name", "phone_number").Values(c.ID, c.Name, c.PhoneNumber))
		return err
	}
	return mustAffect(exec(ctx, s.q, s.b.Update("emergency_contacts").
		Set("name", c.Name).
		Set("phone_number", c.PhoneNumber).
		Where(entsql.EQ("id", c.ID))))
}

func uuidArgs(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
